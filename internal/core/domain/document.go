package domain

import "time"

type UploadKind string

const (
	UploadPDF  UploadKind = "pdf"
	UploadDOCX UploadKind = "docx"
	UploadXLSX UploadKind = "xlsx"
)

func ParseUploadKind(s string) (UploadKind, error) {
	switch UploadKind(s) {
	case UploadPDF, UploadDOCX, UploadXLSX:
		return UploadKind(s), nil
	default:
		return "", WrapError(ErrInvalidInput, "parse upload kind", errUnsupportedKind(s))
	}
}

type errUnsupportedKind string

func (e errUnsupportedKind) Error() string { return "unsupported upload kind " + string(e) }

// Upload is an ingested source document with its extracted (and possibly
// translated) text per language.
type Upload struct {
	ID         string
	Title      string
	Kind       UploadKind
	StorageKey string

	TextIT    string
	TextEN    string
	TxtPathIT string
	TxtPathEN string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *Upload) Text(lang Language) string {
	if lang == LanguageItalian {
		return u.TextIT
	}
	return u.TextEN
}

func (u *Upload) TxtPath(lang Language) string {
	if lang == LanguageItalian {
		return u.TxtPathIT
	}
	return u.TxtPathEN
}

func (u *Upload) SetText(lang Language, text, txtPath string) {
	if lang == LanguageItalian {
		u.TextIT = text
		u.TxtPathIT = txtPath
		return
	}
	u.TextEN = text
	u.TxtPathEN = txtPath
}

// EditEntry is an append-only audit record of a text revision. Entries are
// never updated or deleted.
type EditEntry struct {
	ID       string
	DocPath  string
	Text     string
	EditedAt time.Time
}
