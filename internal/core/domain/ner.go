package domain

import "time"

// NERRecord tracks, for one ingested document text file, which dictionary
// file currently represents its extracted entities and which configuration
// it is bound to. Identity is the text-file path.
type NERRecord struct {
	ID      string
	DocPath string
	RawFile string

	// DictPath points at the current per-document dictionary file,
	// ConfigPath at the bound configuration's questions file. The JSON
	// fields are string caches kept in sync with the files they mirror.
	DictPath   string
	ConfigPath string
	DictJSON   string
	ConfigJSON string

	// ModelJSON caches the entity model as currently materialized for
	// this document. It is a point-in-time snapshot: it may lag the bound
	// configuration's own model until the next rebind.
	ModelJSON string

	Language  Language
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *NERRecord) Model() (EntityModel, error) {
	return ParseEntityModel(r.ModelJSON)
}

func (r *NERRecord) Dict() (EntityDict, error) {
	return ParseEntityDict(r.DictJSON)
}

// Rebind is the single atomic mutation of a record's configuration
// binding: dictionary pointer, configuration pointer, both string caches
// and the materialized model move together or not at all.
type Rebind struct {
	DictPath   string
	ConfigPath string
	DictJSON   string
	ConfigJSON string
	ModelJSON  string
}
