// Package lead builds lead records from calculator submissions and hands
// them to the CRM and the team notification channel.
package lead

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/mathutil"
)

var (
	// ErrValidation is wrapped by every lead validation error.
	ErrValidation = errors.New("invalid lead")

	// ErrMissingName is returned when a submission has no name.
	ErrMissingName = fmt.Errorf("%w: name is required", ErrValidation)

	// ErrMissingEmail is returned when a submission has no email.
	ErrMissingEmail = fmt.Errorf("%w: email is required", ErrValidation)
)

// Attribution carries the marketing tags a lead arrived with.
type Attribution struct {
	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Campaign string `json:"campaign"`
}

// String renders the tags as source/medium/campaign.
func (a Attribution) String() string {
	return a.Source + "/" + a.Medium + "/" + a.Campaign
}

func (a Attribution) withDefaults() Attribution {
	if a.Source == "" {
		a.Source = constants.DefaultUTMSource
	}
	if a.Medium == "" {
		a.Medium = constants.DefaultUTMMedium
	}
	if a.Campaign == "" {
		a.Campaign = constants.DefaultUTMCampaign
	}
	return a
}

// Input is an unvalidated lead submission.
type Input struct {
	Name                 string
	Email                string
	Phone                string
	Region               string
	Product              string
	ConsentGranted       bool
	DeltaBps             int
	EstimatedDeltaIncome float64
	Attribution          Attribution
}

// Record is a validated lead, built fresh for each submission.
type Record struct {
	ID                   uuid.UUID   `json:"id"`
	CreatedAt            time.Time   `json:"createdAt"`
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	Phone                string      `json:"phone,omitempty"`
	Region               string      `json:"region,omitempty"`
	Product              string      `json:"product,omitempty"`
	ConsentGranted       bool        `json:"consentGranted"`
	DeltaBps             int         `json:"deltaBps"`
	EstimatedDeltaIncome int64       `json:"estimatedDeltaIncome"`
	Attribution          Attribution `json:"attribution"`
}

// Build validates a submission and produces a record. Name and email are
// the only required fields.
func Build(in Input) (Record, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	var errs []error
	if name == "" {
		errs = append(errs, ErrMissingName)
	}
	if email == "" {
		errs = append(errs, ErrMissingEmail)
	}
	if len(errs) > 0 {
		return Record{}, errors.Join(errs...)
	}

	return Record{
		ID:                   uuid.New(),
		CreatedAt:            time.Now().UTC(),
		Name:                 name,
		Email:                email,
		Phone:                strings.TrimSpace(in.Phone),
		Region:               strings.ToUpper(strings.TrimSpace(in.Region)),
		Product:              strings.TrimSpace(in.Product),
		ConsentGranted:       in.ConsentGranted,
		DeltaBps:             in.DeltaBps,
		EstimatedDeltaIncome: mathutil.RoundWhole(in.EstimatedDeltaIncome),
		Attribution: Attribution{
			Source:   strings.TrimSpace(in.Attribution.Source),
			Medium:   strings.TrimSpace(in.Attribution.Medium),
			Campaign: strings.TrimSpace(in.Attribution.Campaign),
		}.withDefaults(),
	}, nil
}

// SplitName splits a full name into first and last names. The last
// whitespace-separated token is the last name.
func (r Record) SplitName() (first, last string) {
	fields := strings.Fields(r.Name)
	if len(fields) == 0 {
		return "", constants.DefaultLastName
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

// Description is the free-text summary attached to the CRM lead.
func (r Record) Description() string {
	return fmt.Sprintf("Product: %s\nΔ bps: %d\nΔ income (est): %d\nConsent: %t\nUTM: %s",
		r.Product, r.DeltaBps, r.EstimatedDeltaIncome, r.ConsentGranted, r.Attribution)
}
