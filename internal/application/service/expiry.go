package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// ExpiryReport summarises one sweep.
type ExpiryReport struct {
	CheckedAt time.Time          `json:"checked_at"`
	Checked   int                `json:"checked"`
	Expired   []id.ApplicationID `json:"expired"`
	Failures  []ExpiryFailure    `json:"failures"`
}

// Err joins the per-application failures, or returns nil when there are none.
func (r *ExpiryReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// ExpireApplications marks every ACTIVE application past its validity window
// as EXPIRED and notifies the applicant. Applications are processed one at a
// time; a failed update or notification is recorded in the report and the
// sweep moves on to the next application.
func (s *Service) ExpireApplications(ctx context.Context) (_ *ExpiryReport, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "application.expire")
	defer func() { endSpan(span, err) }()
	if s.metrics != nil {
		defer s.metrics.ObserveExpirySweep(start)
	}

	now := s.clock()
	active, err := s.applications.ListByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active applications")
	}

	report := &ExpiryReport{CheckedAt: now, Checked: len(active), Expired: []id.ApplicationID{}, Failures: []ExpiryFailure{}}
	for _, app := range active {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if app.IsValid(now) {
			continue
		}
		updated, err := s.transition(ctx, app, models.StatusExpired, models.ExpiredMessage(app.ID))
		if updated == nil {
			report.Failures = append(report.Failures, newExpiryFailure(app.ID, StageUpdate, err))
			continue
		}
		report.Expired = append(report.Expired, app.ID)
		if err != nil {
			report.Failures = append(report.Failures, newExpiryFailure(app.ID, StageNotify, err))
		}
	}

	span.SetAttributes(
		attribute.Int("expiry.checked", report.Checked),
		attribute.Int("expiry.expired", len(report.Expired)),
		attribute.Int("expiry.failures", len(report.Failures)),
	)
	s.logAudit(ctx, "expiry_sweep_completed",
		"checked", report.Checked,
		"expired", len(report.Expired),
		"failures", len(report.Failures),
	)
	return report, nil
}
