package scripts

import (
	"strings"
	"text/template"
)

// Substituter compiles template bodies for named-variable replacement.
type Substituter interface {
	Compile(name, body string) (Renderer, error)
}

// Renderer produces a document from a compiled template.
type Renderer interface {
	Render(vars map[string]string) (string, error)
}

// TextTemplateSubstituter uses text/template with {{.name}} placeholders.
// Unknown names render as empty strings.
type TextTemplateSubstituter struct{}

func (TextTemplateSubstituter) Compile(name, body string) (Renderer, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return nil, err
	}
	return textRenderer{tmpl: tmpl}, nil
}

type textRenderer struct {
	tmpl *template.Template
}

func (r textRenderer) Render(vars map[string]string) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, vars); err != nil {
		return "", err
	}
	return sb.String(), nil
}
