package resolve

import (
	"fmt"
	"strings"
)

// Template is a path template with {placeholder} substitution. "\{" and
// "\\" escape a literal brace and backslash; any other backslash use is
// an error.
type Template struct {
	chunks []chunk
	vars   map[string]struct{}
}

type chunk struct {
	text        string
	placeholder bool
}

func isPlaceholderRune(r rune) bool {
	return r == '-' || r == '.' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func ParseTemplate(s string) (*Template, error) {
	t := &Template{vars: map[string]struct{}{}}
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			t.chunks = append(t.chunks, chunk{text: literal.String()})
			literal.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '\\':
			if i+1 >= len(runes) || (runes[i+1] != '{' && runes[i+1] != '\\') {
				return nil, fmt.Errorf("invalid escape sequence at offset %d in template %q", i, s)
			}
			literal.WriteRune(runes[i+1])
			i++
		case '{':
			j := i + 1
			for j < len(runes) && isPlaceholderRune(runes[j]) {
				j++
			}
			if j == i+1 || j >= len(runes) || runes[j] != '}' {
				return nil, fmt.Errorf("invalid placeholder at offset %d in template %q", i, s)
			}
			flush()
			name := string(runes[i+1 : j])
			t.chunks = append(t.chunks, chunk{text: name, placeholder: true})
			t.vars[name] = struct{}{}
			i = j
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	return t, nil
}

// Vars reports the placeholder names the template uses.
func (t *Template) Vars() []string {
	out := make([]string, 0, len(t.vars))
	for v := range t.vars {
		out = append(out, v)
	}
	return out
}

func (t *Template) Render(bindings map[string]string) (string, error) {
	var b strings.Builder
	for _, c := range t.chunks {
		if !c.placeholder {
			b.WriteString(c.text)
			continue
		}
		v, ok := bindings[c.text]
		if !ok {
			return "", fmt.Errorf("no value bound for placeholder %q", c.text)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// validateRelativePath rejects rendered keys that could escape the
// storage root: absolute paths and "." / ".." segments.
func validateRelativePath(p string) error {
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("path is not relative: %q", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("path contains a %q segment: %q", seg, p)
		}
	}
	return nil
}
