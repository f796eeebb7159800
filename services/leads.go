package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deal-search/metrics"
	"deal-search/models"
	"deal-search/normalize"
	"deal-search/storage"
	"deal-search/utils"
)

// ErrMissingLeadFields is returned when a required lead field is blank.
var ErrMissingLeadFields = errors.New("missing required lead fields")

// LeadRequest is the inbound lead form. Any field may arrive as text, a
// number or a boolean.
type LeadRequest struct {
	Name     any `json:"name"`
	Email    any `json:"email"`
	Company  any `json:"company"`
	Phone    any `json:"phone"`
	Role     any `json:"role"`
	Timeline any `json:"timeline"`
	Quantity any `json:"quantity"`
	Notes    any `json:"notes"`
}

// Validate normalises the request into a Lead, or returns ErrMissingLeadFields.
func (r LeadRequest) Validate() (*models.Lead, error) {
	lead := &models.Lead{
		Name:     leadField(r.Name),
		Email:    leadField(r.Email),
		Company:  leadField(r.Company),
		Phone:    leadField(r.Phone),
		Role:     leadField(r.Role),
		Timeline: leadField(r.Timeline),
		Quantity: leadField(r.Quantity),
		Notes:    leadField(r.Notes),
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", lead.Name}, {"email", lead.Email}, {"company", lead.Company},
		{"phone", lead.Phone}, {"role", lead.Role}, {"timeline", lead.Timeline},
		{"quantity", lead.Quantity},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingLeadFields, strings.Join(missing, ", "))
	}
	return lead, nil
}

// leadField renders one form value as text. Zero and false count as blank.
func leadField(x any) string {
	switch v := x.(type) {
	case bool:
		if !v {
			return ""
		}
	case float64:
		if v == 0 {
			return ""
		}
	}
	return normalize.String(x)
}

// Message is a plain-text email.
type Message struct {
	FromName string
	To       string
	Subject  string
	Body     string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LeadService validates leads, emails them to the sales inbox and optionally
// archives them.
type LeadService struct {
	mailer  Mailer
	archive storage.LeadWriter
	to      string
	retry   *utils.RetryConfig
	metrics *metrics.Registry
	logger  *utils.Logger
}

// NewLeadService creates a LeadService. archive and m may be nil.
func NewLeadService(mailer Mailer, archive storage.LeadWriter, to string, maxRetries int, m *metrics.Registry, logger *utils.Logger) *LeadService {
	return &LeadService{
		mailer:  mailer,
		archive: archive,
		to:      to,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   500 * time.Millisecond,
			Logger:      logger,
		},
		metrics: m,
		logger:  logger,
	}
}

// Capture validates req and delivers the lead. Validation failures wrap
// ErrMissingLeadFields; delivery failures are returned after retries.
func (s *LeadService) Capture(ctx context.Context, req LeadRequest) error {
	lead, err := req.Validate()
	if err != nil {
		s.count(metrics.OutcomeInvalid)
		return err
	}
	lead.ReceivedAt = time.Now().UTC()

	msg := Message{
		FromName: "Sunhub GPT",
		To:       s.to,
		Subject:  "New Lead from Sunhub GPT",
		Body:     leadEmailBody(lead),
	}
	err = s.retry.Do(ctx, "lead-email", func() error {
		return s.mailer.Send(ctx, msg)
	})
	if err != nil {
		s.count(metrics.OutcomeError)
		s.logger.Error("[leads] Lead email failed: %v", err)
		return err
	}

	if s.archive != nil {
		if err := s.archive.WriteLead(ctx, lead); err != nil {
			s.logger.Warn("[leads] Archiving lead from %s failed: %v", lead.Email, err)
		}
	}

	s.count(metrics.OutcomeOK)
	s.logger.Info("[leads] Lead from %s (%s) delivered", lead.Company, lead.Email)
	return nil
}

func (s *LeadService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Leads.WithLabelValues(outcome).Inc()
	}
}

func leadEmailBody(l *models.Lead) string {
	notes := l.Notes
	if notes == "" {
		notes = "None"
	}

	var b strings.Builder
	b.WriteString("New Sunhub GPT Lead\n\n")
	fmt.Fprintf(&b, "Name: %s\n", l.Name)
	fmt.Fprintf(&b, "Email: %s\n", l.Email)
	fmt.Fprintf(&b, "Company: %s\n", l.Company)
	fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	fmt.Fprintf(&b, "Role: %s\n", l.Role)
	fmt.Fprintf(&b, "Timeline: %s\n", l.Timeline)
	fmt.Fprintf(&b, "Quantity: %s\n", l.Quantity)
	fmt.Fprintf(&b, "Notes: %s\n\n", notes)
	b.WriteString("Source: Sunhub GPT\n")
	return b.String()
}
