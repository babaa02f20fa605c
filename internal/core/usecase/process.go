package usecase

import (
	"context"
	"fmt"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
)

// ProcessUploadUseCase is the worker-side pipeline: for each language the
// upload has text in, run the first load so the base dictionary and NER
// record exist before a client asks for them.
type ProcessUploadUseCase struct {
	uploads    ports.UploadRepository
	reconciler ports.Reconciler
}

func NewProcessUploadUseCase(uploads ports.UploadRepository, reconciler ports.Reconciler) *ProcessUploadUseCase {
	return &ProcessUploadUseCase{
		uploads:    uploads,
		reconciler: reconciler,
	}
}

func (uc *ProcessUploadUseCase) ProcessByID(ctx context.Context, uploadID string) error {
	up, err := uc.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("fetch upload by id: %w", err)
	}

	for _, lang := range domain.Languages() {
		text := up.Text(lang)
		if text == "" {
			continue
		}
		if _, err := uc.reconciler.Load(ctx, up.TxtPath(lang), lang, text, up.StorageKey); err != nil {
			return fmt.Errorf("materialize %s dictionary: %w", lang, err)
		}
	}
	return nil
}
