package httpadapter

import (
	"context"
	"time"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
	"github.com/odner-app/odner/internal/observability/metrics"
)

// InstrumentedReconciler records per-operation reconciliation metrics around
// the wrapped implementation.
type InstrumentedReconciler struct {
	next    ports.Reconciler
	metrics *metrics.HTTPServerMetrics
	service string
}

func NewInstrumentedReconciler(next ports.Reconciler, m *metrics.HTTPServerMetrics, service string) *InstrumentedReconciler {
	return &InstrumentedReconciler{next: next, metrics: m, service: service}
}

func (r *InstrumentedReconciler) Load(ctx context.Context, docPath string, lang domain.Language, text, rawKey string) (*domain.NERRecord, error) {
	start := time.Now()
	rec, err := r.next.Load(ctx, docPath, lang, text, rawKey)
	r.metrics.RecordReconciliation(r.service, "load", err, time.Since(start))
	return rec, err
}

func (r *InstrumentedReconciler) Switch(ctx context.Context, docPath, configPath, contextText string) (*domain.NERRecord, error) {
	start := time.Now()
	rec, err := r.next.Switch(ctx, docPath, configPath, contextText)
	r.metrics.RecordReconciliation(r.service, "switch", err, time.Since(start))
	return rec, err
}

func (r *InstrumentedReconciler) SaveQuestion(ctx context.Context, in domain.SaveQuestionInput) (*domain.NERRecord, error) {
	start := time.Now()
	rec, err := r.next.SaveQuestion(ctx, in)
	r.metrics.RecordReconciliation(r.service, "save_question", err, time.Since(start))
	return rec, err
}

func (r *InstrumentedReconciler) EditText(ctx context.Context, docPath, uploadTitle string, lang domain.Language, newText string) (*domain.EditEntry, error) {
	start := time.Now()
	entry, err := r.next.EditText(ctx, docPath, uploadTitle, lang, newText)
	r.metrics.RecordReconciliation(r.service, "edit_text", err, time.Since(start))
	return entry, err
}

// InstrumentedQA records interactive QA metrics around the wrapped
// implementation.
type InstrumentedQA struct {
	next    ports.QuestionAnswering
	metrics *metrics.HTTPServerMetrics
	service string
}

func NewInstrumentedQA(next ports.QuestionAnswering, m *metrics.HTTPServerMetrics, service string) *InstrumentedQA {
	return &InstrumentedQA{next: next, metrics: m, service: service}
}

func (q *InstrumentedQA) Ask(ctx context.Context, question, model, contextText string) (*domain.QAResult, error) {
	start := time.Now()
	result, err := q.next.Ask(ctx, question, model, contextText)
	q.metrics.RecordQA(q.service, err, time.Since(start))
	return result, err
}
