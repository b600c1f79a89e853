package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Field length limits enforced by the relay.
const (
	MaxNameLen    = 100
	MaxEmailLen   = 254
	MaxCompanyLen = 200
	MaxSubjectLen = 200
	MaxMessageLen = 5000
)

// ErrRateLimited is returned when a client exceeds the submission limit.
var ErrRateLimited = errors.New("contact: rate limited")

// ValidationError names the field the relay rejected. Its text is safe to
// return to callers.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

var reJavascriptScheme = regexp.MustCompile(`(?i)javascript\s*:`)

// Sanitize strips angle brackets and javascript: URL schemes and trims s.
func Sanitize(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = reJavascriptScheme.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Relay is the email function: it sanitizes, validates and formats a
// submission and passes it to a Deliverer. It serves the public JSON
// endpoint and also satisfies Sender for in-process use.
type Relay struct {
	deliverer Deliverer
	limiter   Limiter
	logger    *slog.Logger
}

// NewRelay builds a Relay. limiter applies to the HTTP endpoint only.
func NewRelay(d Deliverer, limiter Limiter, logger *slog.Logger) *Relay {
	return &Relay{deliverer: d, limiter: limiter, logger: logger}
}

func checkLen(field, v string, max int, required bool) error {
	if required && v == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if utf8.RuneCountInString(v) > max {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}

func clean(s Submission) (Submission, error) {
	s = Submission{
		Name:    Sanitize(s.Name),
		Email:   Sanitize(s.Email),
		Company: Sanitize(s.Company),
		Subject: Sanitize(s.Subject),
		Message: Sanitize(s.Message),
	}
	if err := checkLen(FieldName, s.Name, MaxNameLen, true); err != nil {
		return s, err
	}
	if err := checkLen(FieldEmail, s.Email, MaxEmailLen, true); err != nil {
		return s, err
	}
	if !govalidator.IsEmail(s.Email) {
		return s, &ValidationError{Field: FieldEmail, Reason: "is not a valid address"}
	}
	if err := checkLen("company", s.Company, MaxCompanyLen, false); err != nil {
		return s, err
	}
	if err := checkLen(FieldSubject, s.Subject, MaxSubjectLen, false); err != nil {
		return s, err
	}
	if err := checkLen(FieldMessage, s.Message, MaxMessageLen, true); err != nil {
		return s, err
	}
	return s, nil
}

// Format renders s as the email sent to the site owner.
func Format(s Submission) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", s.Name, s.Email)
	if s.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", s.Company)
	}
	if s.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", s.Subject)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", s.Message)

	text := b.String()
	return Message{
		ID:          uuid.NewString(),
		Subject:     "New contact request from " + s.Name,
		Text:        text,
		HTML:        "<pre style=\"font-family:inherit;white-space:pre-wrap\">" + html.EscapeString(text) + "</pre>",
		ReplyTo:     s.Email,
		ReplyToName: s.Name,
	}
}

// Send sanitizes, validates and delivers s.
func (r *Relay) Send(ctx context.Context, s Submission) error {
	s, err := clean(s)
	if err != nil {
		return err
	}
	m := Format(s)
	if err := r.deliverer.Deliver(ctx, m); err != nil {
		return fmt.Errorf("contact: deliver %s: %w", m.ID, err)
	}
	return nil
}

// Handle serves POST /api/send-email.
func (r *Relay) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	if r.limiter != nil && !r.limiter.Allow(ctx, "api:"+c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, Response{Error: "Too many requests. Please try again later."})
	}
	var s Submission
	if err := json.NewDecoder(io.LimitReader(c.Request().Body, 1<<16)).Decode(&s); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Error: "Invalid request body."})
	}
	if err := r.Send(ctx, s); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, Response{Error: ve.Error()})
		}
		r.logger.ErrorContext(ctx, "contact delivery failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, Response{Error: "Failed to send message. Please try again later."})
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "Message sent."})
}
