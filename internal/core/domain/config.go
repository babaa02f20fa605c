package domain

import "time"

// Configuration is a named, language-scoped set of entity labels, each
// with an extraction question and an assigned extraction method. Its
// externally meaningful identity is the normalized absolute path of its
// questions JSON file.
type Configuration struct {
	ID       string
	Path     string
	Language Language

	// Questions and Model are co-indexed: every label present in one is
	// present in the other, except labels sourced purely from the tagger.
	Questions Questions
	Model     EntityModel

	// String caches mirroring the questions file and the model mapping.
	QuestionsJSON string
	ModelJSON     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBase reports whether this is one of the immutable base configurations.
func (c *Configuration) IsBase() bool {
	return IsBaseConfigPath(c.Path)
}

// Name is the configuration name used when constructing per-document
// dictionary paths.
func (c *Configuration) Name() string {
	return ConfigNameFromPath(c.Path)
}

// RefreshCaches recomputes both string caches from the maps. Callers must
// invoke it after mutating Questions or Model and before persisting.
func (c *Configuration) RefreshCaches() error {
	questionsJSON, err := CanonicalJSON(c.Questions)
	if err != nil {
		return err
	}
	modelJSON, err := CanonicalJSON(c.Model)
	if err != nil {
		return err
	}
	c.QuestionsJSON = questionsJSON
	c.ModelJSON = modelJSON
	return nil
}
