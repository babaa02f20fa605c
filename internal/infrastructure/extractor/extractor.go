// Package extractor converts uploaded documents into the plain text the
// tagging and QA pipelines operate on.
package extractor

import (
	"context"
	"fmt"

	"github.com/odner-app/odner/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the cleaned plain text of data according to its upload
// kind. The cleanup pass repairs hyphenation across line breaks and
// collapses whitespace so downstream answer offsets stay meaningful.
func (e *Extractor) Extract(ctx context.Context, kind domain.UploadKind, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch kind {
	case domain.UploadPDF:
		text, err = extractPDF(data)
	case domain.UploadDOCX:
		text, err = extractDOCX(data)
	case domain.UploadXLSX:
		text, err = extractXLSX(data)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported upload kind %q", kind))
	}
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptArtifact, "extract "+string(kind), err)
	}
	return CleanText(text), nil
}
