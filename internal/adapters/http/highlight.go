package httpadapter

import (
	"html"
	"sort"
	"strings"

	"github.com/odner-app/odner/internal/core/domain"
)

// entityPalette cycles per label so each entity type gets a stable color
// within one rendering.
var entityPalette = []string{
	"#ffadad", "#ffd6a5", "#fdffb6", "#caffbf",
	"#9bf6ff", "#a0c4ff", "#bdb2ff", "#ffc6ff",
}

// HighlightEntities renders the document text as HTML with every occurrence
// of the selected labels' dictionary values wrapped in a colored span. An
// empty label selection highlights every label in the dictionary. Longer
// values are replaced first so a value that contains another value as a
// substring keeps a single span.
func HighlightEntities(text string, dict domain.EntityDict, labels []string) string {
	selected := labels
	if len(selected) == 0 {
		for label := range dict {
			selected = append(selected, label)
		}
	}
	sort.Strings(selected)

	colors := make(map[string]string, len(selected))
	for i, label := range selected {
		colors[label] = entityPalette[i%len(entityPalette)]
	}

	type match struct {
		value string
		label string
	}
	var matches []match
	for _, label := range selected {
		for _, value := range dict[label] {
			if strings.TrimSpace(value) == "" {
				continue
			}
			matches = append(matches, match{value: value, label: label})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i].value) != len(matches[j].value) {
			return len(matches[i].value) > len(matches[j].value)
		}
		return matches[i].value < matches[j].value
	})

	escaped := html.EscapeString(text)
	for _, m := range matches {
		needle := html.EscapeString(m.value)
		span := "<span style='background-color: " + colors[m.label] + ";' title='" +
			html.EscapeString(m.label) + "'>" + needle + "</span>"
		escaped = replaceOutsideSpans(escaped, needle, span)
	}
	return escaped
}

// replaceOutsideSpans substitutes needle with repl everywhere it occurs
// outside an already-inserted span, so nested replacements cannot corrupt
// earlier markup.
func replaceOutsideSpans(s, needle, repl string) string {
	if needle == "" {
		return s
	}
	var b strings.Builder
	for len(s) > 0 {
		open := strings.Index(s, "<span ")
		hit := strings.Index(s, needle)
		if hit == -1 {
			b.WriteString(s)
			break
		}
		if open != -1 && open < hit {
			end := strings.Index(s, "</span>")
			if end == -1 {
				b.WriteString(s)
				break
			}
			end += len("</span>")
			b.WriteString(s[:end])
			s = s[end:]
			continue
		}
		b.WriteString(s[:hit])
		b.WriteString(repl)
		s = s[hit+len(needle):]
	}
	return b.String()
}
