// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beckon

import (
	"net/url"
	"strings"
)

// segment is a parsed piece of a URI template: either literal text or a
// variable reference.
type segment struct {
	text     string
	variable bool
}

// Template is a parsed URI template using simple {name} expansion.  A
// Template is parsed once, at endpoint definition time, and is immutable
// afterward.  Variable values are path-escaped during expansion.
type Template struct {
	raw      string
	segments []segment
	vars     []string
}

// ParseTemplate parses a URI template.  Variable names may contain letters,
// digits, underscores, and hyphens.  A variable may appear more than once;
// each occurrence is substituted.
func ParseTemplate(raw string) (Template, error) {
	t := Template{raw: raw}
	remaining := raw
	for len(remaining) > 0 {
		open := strings.IndexByte(remaining, '{')
		if open < 0 {
			if strings.IndexByte(remaining, '}') >= 0 {
				return Template{}, &TemplateError{Template: raw, Reason: "unmatched '}'"}
			}

			t.segments = append(t.segments, segment{text: remaining})
			break
		}

		if open > 0 {
			if strings.IndexByte(remaining[:open], '}') >= 0 {
				return Template{}, &TemplateError{Template: raw, Reason: "unmatched '}'"}
			}

			t.segments = append(t.segments, segment{text: remaining[:open]})
		}

		remaining = remaining[open+1:]
		closing := strings.IndexByte(remaining, '}')
		if closing < 0 {
			return Template{}, &TemplateError{Template: raw, Reason: "unmatched '{'"}
		}

		name := remaining[:closing]
		if !validVariableName(name) {
			return Template{}, &TemplateError{Template: raw, Variable: name, Reason: "invalid variable name"}
		}

		t.segments = append(t.segments, segment{text: name, variable: true})
		if !t.Has(name) {
			t.vars = append(t.vars, name)
		}

		remaining = remaining[closing+1:]
	}

	return t, nil
}

func validVariableName(name string) bool {
	if len(name) == 0 {
		return false
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}

	return true
}

// Raw returns the original template text.
func (t Template) Raw() string { return t.raw }

// Variables returns the distinct variable names in this template, in
// order of first appearance.
func (t Template) Variables() []string {
	return append([]string{}, t.vars...)
}

// Has tests whether the named variable appears in this template.
func (t Template) Has(name string) bool {
	for _, v := range t.vars {
		if v == name {
			return true
		}
	}

	return false
}

// Expand substitutes the given variable values into this template.  Every
// template variable must have a value, and values are path-escaped.  A
// missing variable results in a *TemplateError.
func (t Template) Expand(vars map[string]string) (string, error) {
	var o strings.Builder
	for _, s := range t.segments {
		if !s.variable {
			o.WriteString(s.text)
			continue
		}

		v, ok := vars[s.text]
		if !ok {
			return "", &TemplateError{Template: t.raw, Variable: s.text, Reason: "no value for variable"}
		}

		o.WriteString(url.PathEscape(v))
	}

	return o.String(), nil
}
