package domain

// SaveQuestionInput is the entity-add request: a new label answered via an
// interactive QA session, targeting an existing configuration or a new one.
type SaveQuestionInput struct {
	DocPath  string
	Language Language

	Label    string
	Question string
	Model    string
	Answer   string

	// TargetConfigPath names the configuration to extend when CreateNew
	// is false.
	TargetConfigPath string

	// CreateNew derives a brand-new configuration first. DeriveFromBase
	// seeds it from the language's base dictionary; otherwise it is
	// derived from the document's currently bound configuration.
	CreateNew      bool
	NewConfigName  string
	DeriveFromBase bool
}

// SentenceAnswer is a QA result scoped to one sentence of the context.
type SentenceAnswer struct {
	Sentence    string  `json:"sentence"`
	Answer      string  `json:"answer"`
	Score       float64 `json:"score"`
	Highlighted string  `json:"highlighted"`
}

// QAResult is the interactive QA response: the whole-context answer plus
// per-sentence answers, with answer spans highlighted.
type QAResult struct {
	Answer      string           `json:"answer"`
	Score       float64          `json:"score"`
	Start       int              `json:"start"`
	End         int              `json:"end"`
	Highlighted string           `json:"highlighted"`
	Sentences   []SentenceAnswer `json:"sentences"`
}
