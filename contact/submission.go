// Package contact validates contact form submissions and delivers them as
// email, either through a remote email function or in process.
package contact

import (
	"context"
	"slices"
	"strings"

	"github.com/asaskevich/govalidator"
)

// Submission is one contact form post. It lives for a single interaction and
// is never stored.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Trimmed returns s with surrounding whitespace removed from every field.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Company: strings.TrimSpace(s.Company),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Form field names, used as FieldErrors keys.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// FieldErrors maps a form field to the message ID describing its problem.
type FieldErrors map[string]string

// Has reports whether field failed validation.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// DefaultSubjects is the subject list offered by the contact page.
var DefaultSubjects = []string{"general", "sales", "support", "partnership"}

// Rules is the local validation applied before anything leaves the browser
// or page handler. A non-empty Subjects list makes the subject mandatory and
// restricts it to those values.
type Rules struct {
	Subjects []string
}

// Validate checks s and returns nil when it may be sent.
func (r Rules) Validate(s Submission) FieldErrors {
	errs := FieldErrors{}
	if s.Name == "" {
		errs[FieldName] = "contact.error.name"
	}
	if s.Email == "" || !govalidator.IsEmail(s.Email) {
		errs[FieldEmail] = "contact.error.email"
	}
	if len(r.Subjects) > 0 && !slices.Contains(r.Subjects, s.Subject) {
		errs[FieldSubject] = "contact.error.subject"
	}
	if s.Message == "" {
		errs[FieldMessage] = "contact.error.message"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Sender delivers a validated submission to the email function.
type Sender interface {
	Send(ctx context.Context, s Submission) error
}
