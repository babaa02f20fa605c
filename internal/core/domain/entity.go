package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SpacyMethod marks a label extracted by the built-in NER tagger rather
// than a question-answering model.
const SpacyMethod = "Spacy"

// EntityDict is a per-document dictionary: label -> extracted strings.
type EntityDict map[string][]string

// Questions maps an entity label to the question used to extract it.
type Questions map[string]string

// EntityModel maps an entity label to its extraction method: SpacyMethod
// or the name of a QA model. It is co-indexed with Questions.
type EntityModel map[string]string

func (d EntityDict) Clone() EntityDict {
	out := make(EntityDict, len(d))
	for label, values := range d {
		out[label] = append([]string(nil), values...)
	}
	return out
}

func (q Questions) Clone() Questions {
	out := make(Questions, len(q))
	for label, question := range q {
		out[label] = question
	}
	return out
}

func (m EntityModel) Clone() EntityModel {
	out := make(EntityModel, len(m))
	for label, method := range m {
		out[label] = method
	}
	return out
}

// Merge returns a copy with label mapped to method, preserving all others.
func (m EntityModel) Merge(label, method string) EntityModel {
	out := m.Clone()
	out[label] = method
	return out
}

// Remove returns a copy without the given labels. Absent labels are ignored.
func (m EntityModel) Remove(labels ...string) EntityModel {
	out := m.Clone()
	for _, label := range labels {
		delete(out, label)
	}
	return out
}

// SortedLabels gives a deterministic iteration order for backfill loops.
func (m EntityModel) SortedLabels() []string {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// SeedBaseModel builds the entity model of a base configuration: every
// label of the built-in tagger, all mapped to SpacyMethod.
func SeedBaseModel(questions Questions) EntityModel {
	model := make(EntityModel, len(questions))
	for label := range questions {
		model[label] = SpacyMethod
	}
	return model
}

// CanonicalJSON is the single serialization used for string caches so that
// a cache string always byte-matches a canonical re-serialization of the
// file it mirrors (encoding/json sorts map keys).
func CanonicalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal canonical json: %w", err)
	}
	return string(raw), nil
}

func ParseEntityModel(raw string) (EntityModel, error) {
	var model EntityModel
	if err := json.Unmarshal([]byte(raw), &model); err != nil {
		return nil, WrapError(ErrCorruptArtifact, "parse entity model", err)
	}
	return model, nil
}

func ParseEntityDict(raw string) (EntityDict, error) {
	var dict EntityDict
	if err := json.Unmarshal([]byte(raw), &dict); err != nil {
		return nil, WrapError(ErrCorruptArtifact, "parse entity dictionary", err)
	}
	return dict, nil
}

func ParseQuestions(raw string) (Questions, error) {
	var questions Questions
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, WrapError(ErrCorruptArtifact, "parse questions", err)
	}
	return questions, nil
}

// Answer is a span returned by the QA collaborator.
type Answer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}
