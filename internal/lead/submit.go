package lead

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CRM creates a lead entry and returns the CRM's identifier for it.
type CRM interface {
	CreateLead(ctx context.Context, rec Record) (string, error)
}

// Notifier tells a human channel about a new lead.
type Notifier interface {
	Notify(ctx context.Context, rec Record) error
}

// Attempt statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Attempt is the outcome of one side effect.
type Attempt struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether the side effect succeeded.
func (a Attempt) OK() bool {
	return a.Status == StatusOK
}

// Outcome reports each side effect of a submission separately.
type Outcome struct {
	CRM          Attempt `json:"crm"`
	Notification Attempt `json:"notification"`
}

// Submitter hands records to the CRM and the notifier. Either collaborator
// may be nil, in which case its attempt is reported as skipped.
type Submitter struct {
	crm      CRM
	notifier Notifier
	logger   *zap.Logger
}

// NewSubmitter creates a submitter.
func NewSubmitter(crm CRM, notifier Notifier, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{crm: crm, notifier: notifier, logger: logger}
}

// Submit runs the CRM create and the notification concurrently and returns
// once both have finished. A failure or panic in one never stops or fails
// the other.
func (s *Submitter) Submit(ctx context.Context, rec Record) Outcome {
	var outcome Outcome
	var g errgroup.Group

	g.Go(func() error {
		outcome.CRM = s.attempt(rec, "crm", func() (string, error) {
			if s.crm == nil {
				return "", errSkipped
			}
			return s.crm.CreateLead(ctx, rec)
		})
		return nil
	})

	g.Go(func() error {
		outcome.Notification = s.attempt(rec, "notification", func() (string, error) {
			if s.notifier == nil {
				return "", errSkipped
			}
			return "", s.notifier.Notify(ctx, rec)
		})
		return nil
	})

	_ = g.Wait()
	return outcome
}

// Handoff validates a submission and, only if it is valid, submits it.
func (s *Submitter) Handoff(ctx context.Context, in Input) (Record, Outcome, error) {
	rec, err := Build(in)
	if err != nil {
		return Record{}, Outcome{}, err
	}
	return rec, s.Submit(ctx, rec), nil
}

type skipError struct{}

func (skipError) Error() string { return "not configured" }

var errSkipped error = skipError{}

func (s *Submitter) attempt(rec Record, target string, fn func() (string, error)) (result Attempt) {
	defer func() {
		if r := recover(); r != nil {
			result = Attempt{Status: StatusFailed, Error: fmt.Sprintf("panic: %v", r)}
			s.logger.Error("lead hand-off panicked",
				zap.String("op", "lead.Submit"),
				zap.String("target", target),
				zap.String("lead", rec.ID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	id, err := fn()
	switch {
	case errors.Is(err, errSkipped):
		s.logger.Debug("lead hand-off target not configured",
			zap.String("op", "lead.Submit"),
			zap.String("target", target),
			zap.String("lead", rec.ID.String()),
		)
		return Attempt{Status: StatusSkipped}
	case err != nil:
		s.logger.Warn("lead hand-off failed",
			zap.String("op", "lead.Submit"),
			zap.String("target", target),
			zap.String("lead", rec.ID.String()),
			zap.Error(err),
		)
		return Attempt{Status: StatusFailed, Error: err.Error()}
	}

	s.logger.Info("lead handed off",
		zap.String("op", "lead.Submit"),
		zap.String("target", target),
		zap.String("lead", rec.ID.String()),
	)
	return Attempt{Status: StatusOK, ID: id}
}
