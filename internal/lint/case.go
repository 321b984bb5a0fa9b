package lint

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers keep state between calls, so each conversion gets its own.
func lowerString(s string) string { return cases.Lower(language.Und).String(s) }

func upperString(s string) string { return cases.Upper(language.Und).String(s) }

// toCase converts s to the named letter case.
func toCase(s, name string) (string, error) {
	switch name {
	case "lower-case", "lowercase":
		return lowerString(s), nil
	case "upper-case", "uppercase":
		return upperString(s), nil
	case "sentence-case", "sentencecase":
		return sentence(s), nil
	case "camel-case":
		return camel(words(s)), nil
	case "pascal-case":
		return upperFirst(camel(words(s))), nil
	case "kebab-case":
		return lowerString(strings.Join(words(s), "-")), nil
	case "snake-case":
		return lowerString(strings.Join(words(s), "_")), nil
	case "start-case":
		ws := words(s)
		for i, w := range ws {
			ws[i] = upperFirst(w)
		}
		return strings.Join(ws, " "), nil
	default:
		return "", fmt.Errorf("unknown case %q", name)
	}
}

// isCase reports whether s is already in the named case. Empty results and
// results starting with a digit count as matching.
func isCase(s, name string) (bool, error) {
	converted, err := toCase(s, name)
	if err != nil {
		return false, err
	}
	if converted == "" {
		return true, nil
	}
	if r, _ := utf8.DecodeRuneInString(converted); unicode.IsDigit(r) {
		return true, nil
	}
	return converted == s, nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// sentence capitalizes the first word and lowercases its remaining letters.
// The rest of s is left as is.
func sentence(s string) string {
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		end = len(s)
	}
	return upperFirst(lowerString(s[:end])) + s[end:]
}

func camel(ws []string) string {
	var b strings.Builder
	for i, w := range ws {
		w = lowerString(w)
		if i > 0 {
			w = upperFirst(w)
		}
		b.WriteString(w)
	}
	return b.String()
}

// words splits s into words at non-alphanumeric runs, lower-to-upper
// transitions, the end of an acronym ("HTTPServer" -> HTTP, Server) and
// letter/digit boundaries.
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}

	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
				i+1 < len(rs) && unicode.IsLower(rs[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
