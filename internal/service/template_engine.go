// Package service provides the messaging core's business logic.
package service

import (
	"strings"

	"hirelink/internal/models"
)

// Rendered is the output of a template render: final subject and content
// plus the inputs recorded on the resulting message.
type Rendered struct {
	Subject   string
	Content   string
	Variables map[string]string
}

// RenderTemplate substitutes {{name}} placeholders in the template's subject
// and content with the given variables. Placeholders without a matching
// variable stay verbatim and extra variables are ignored; callers rely on
// this leniency, so it is a contract, not a gap. When the rendered subject
// comes out empty the template's display name is used instead. Pure: the
// template is never mutated and rendering never fails.
func RenderTemplate(tmpl *models.MessageTemplate, variables map[string]string) Rendered {
	content := tmpl.Content
	subject := tmpl.Subject

	for name, value := range variables {
		placeholder := "{{" + name + "}}"
		content = strings.ReplaceAll(content, placeholder, value)
		subject = strings.ReplaceAll(subject, placeholder, value)
	}

	if subject == "" {
		subject = tmpl.TemplateName
	}

	return Rendered{
		Subject:   subject,
		Content:   content,
		Variables: variables,
	}
}
