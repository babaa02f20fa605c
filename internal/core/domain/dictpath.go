package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Naming authority for every path-derived identity in the system.
//
// Layout:
//
//	text files            <stem>-<lang>.txt
//	configuration files   <name>-<lang>.json   (base configs use name "base")
//	dictionary cache      <stem>-<name>-<lang>.json
//
// All construction and parsing of these names goes through this file; no
// caller slices file names by hand. Stems and configuration names never
// contain '-' (upload sanitization and ValidateConfigName enforce it), so
// a cache file name decomposes into exactly one (stem, name, lang) triple.

const baseConfigName = "base"

// ValidateConfigName rejects names that would make a derived file name
// ambiguous: '-' separates the stem, config name and language segments.
func ValidateConfigName(name string) error {
	if name == "" {
		return WrapError(ErrInvalidInput, "validate config name", fmt.Errorf("empty config name"))
	}
	if strings.Contains(name, "-") {
		return WrapError(ErrInvalidInput, "validate config name", fmt.Errorf("config name contains '-': %s", name))
	}
	return nil
}

// ConfigFileName builds the file name of a configuration.
func ConfigFileName(name string, lang Language) string {
	return fmt.Sprintf("%s-%s.json", name, lang)
}

// ConfigNameFromPath derives the configuration name by stripping the
// "-<lang>.json" suffix from the file name.
func ConfigNameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(base, "-"); i >= 0 {
		return base[:i]
	}
	return base
}

// IsBaseConfigPath reports whether path names one of the immutable base
// configurations.
func IsBaseConfigPath(path string) bool {
	base := filepath.Base(path)
	for _, lang := range Languages() {
		if base == ConfigFileName(baseConfigName, lang) {
			return true
		}
	}
	return false
}

// LanguageFromPath extracts the language encoded in a file name of the
// form <anything>-<lang>.<ext>.
func LanguageFromPath(path string) (Language, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if len(base) < 3 || base[len(base)-3] != '-' {
		return "", false
	}
	lang, err := ParseLanguage(base[len(base)-2:])
	if err != nil {
		return "", false
	}
	return lang, true
}

// DocStem derives the document stem from its text-file path by stripping
// the "-<lang>.txt" suffix.
func DocStem(txtPath string) string {
	base := filepath.Base(txtPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if _, ok := LanguageFromPath(txtPath); ok {
		return base[:len(base)-3]
	}
	return base
}

// DictFileName builds the name of the per-document dictionary materialized
// for one document under one configuration.
func DictFileName(stem, configName string, lang Language) string {
	return fmt.Sprintf("%s-%s-%s.json", stem, configName, lang)
}

// BaseDictFileName names the dictionary produced by the built-in tagger.
func BaseDictFileName(stem string, lang Language) string {
	return DictFileName(stem, baseConfigName, lang)
}

// DictPath resolves the cache path of a per-document dictionary.
func DictPath(cacheDir, stem, configName string, lang Language) string {
	return filepath.Join(cacheDir, DictFileName(stem, configName, lang))
}

// BaseDictPath resolves the cache path of a document's base dictionary.
func BaseDictPath(cacheDir, stem string, lang Language) string {
	return filepath.Join(cacheDir, BaseDictFileName(stem, lang))
}

// TextFileName builds the name of a document's per-language text file.
func TextFileName(stem string, lang Language) string {
	return fmt.Sprintf("%s-%s.txt", stem, lang)
}

// ParseDictFileName decomposes a cache file name into the (stem, config
// name, language) triple it was materialized for. Files that do not split
// into exactly those three segments are not dictionary artifacts of this
// system and match nothing.
func ParseDictFileName(cacheFile string) (stem, configName string, lang Language, ok bool) {
	base := filepath.Base(cacheFile)
	if filepath.Ext(base) != ".json" {
		return "", "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(base, ".json"), "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", false
	}
	lang, err := ParseLanguage(parts[2])
	if err != nil {
		return "", "", "", false
	}
	return parts[0], parts[1], lang, true
}

// BelongsToDoc reports whether a cache file name is one of the document's
// per-config dictionaries.
func BelongsToDoc(cacheFile, stem string) bool {
	fileStem, _, _, ok := ParseDictFileName(cacheFile)
	return ok && fileStem == stem
}

// EncodesConfig reports whether a cache file name was materialized under
// the configuration with the given name and language, for any document.
func EncodesConfig(cacheFile, configName string, lang Language) bool {
	_, name, fileLang, ok := ParseDictFileName(cacheFile)
	return ok && name == configName && fileLang == lang
}

// NormalizePath makes a client-supplied path comparable with stored
// identities.
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", WrapError(ErrInvalidInput, "normalize path", err)
	}
	return abs, nil
}
