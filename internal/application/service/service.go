package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appmetrics "onboarding/internal/application/metrics"
	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/requestcontext"
)

// Dependencies are the collaborators the lifecycle manager is built from.
// Clock defaults to time.Now when nil.
type Dependencies struct {
	Applications ApplicationStore
	Customers    CustomerDirectory
	Notifier     NotificationSender
	Clock        Clock
}

// Service moves applications through ACTIVE -> APPROVED | DENIED | EXPIRED.
// Every transition is persisted before the applicant is notified, and a
// failed notification never undoes the persisted transition.
type Service struct {
	applications ApplicationStore
	customers    CustomerDirectory
	notifier     NotificationSender
	clock        Clock
	logger       *slog.Logger
	metrics      *appmetrics.Metrics
	tracer       trace.Tracer
}

type Option func(s *Service)

const tracerName = "onboarding/application"

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. Applications, Customers and Notifier are required.
func New(deps Dependencies, opts ...Option) (*Service, error) {
	if deps.Applications == nil {
		return nil, errors.New("application store is required")
	}
	if deps.Customers == nil {
		return nil, errors.New("customer directory is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("notification sender is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	s := &Service{
		applications: deps.Applications,
		customers:    deps.Customers,
		notifier:     deps.Notifier,
		clock:        clock,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterInitialApplication adds the customer when the directory does not
// know it yet, then stores the application. Callers supply an ACTIVE
// application.
func (s *Service) RegisterInitialApplication(ctx context.Context, customer models.Customer, application models.Application) (err error) {
	ctx, span := s.startSpan(ctx, "application.register", application.ID)
	defer func() { endSpan(span, err) }()

	if _, err := s.customers.FindByID(ctx, customer.ID); err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up customer")
		}
		switch err := s.customers.Create(ctx, &customer); {
		case err == nil:
			s.logAudit(ctx, "customer_added", "customer_id", customer.ID)
		case errors.Is(err, sentinel.ErrConflict):
			// added by a concurrent registration
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add customer")
		}
	}

	if err := s.applications.Create(ctx, &application); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "application already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add application")
	}
	s.logAudit(ctx, "application_registered",
		"application_id", application.ID,
		"customer_id", application.CustomerID,
		"status", application.Status,
	)
	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	return nil
}

// SetCustomerActive changes whether a customer may have applications
// approved. Existing applications keep their status.
func (s *Service) SetCustomerActive(ctx context.Context, customerID id.CustomerID, active bool) error {
	if err := s.customers.SetActive(ctx, customerID, active); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update customer")
	}
	s.logAudit(ctx, "customer_active_changed", "customer_id", customerID, "active", active)
	return nil
}

// GetApplication returns one application.
func (s *Service) GetApplication(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	return s.loadApplication(ctx, applicationID)
}

// ApplicationsForName returns every application registered under name.
func (s *Service) ApplicationsForName(ctx context.Context, name string) ([]*models.Application, error) {
	apps, err := s.applications.ListByName(ctx, name)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ActiveApplicationsFor returns the ACTIVE applications registered under name.
func (s *Service) ActiveApplicationsFor(ctx context.Context, name string) ([]*models.Application, error) {
	apps, err := s.ApplicationsForName(ctx, name)
	if err != nil {
		return nil, err
	}
	active := make([]*models.Application, 0, len(apps))
	for _, app := range apps {
		if app.IsActive() {
			active = append(active, app)
		}
	}
	return active, nil
}

// ApproveApplication approves an application whose customer is active and
// which has not been denied. The returned application reflects the persisted
// state even when the error is a *NotificationSendError.
func (s *Service) ApproveApplication(ctx context.Context, applicationID id.ApplicationID) (_ *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "application.approve", applicationID)
	defer func() { endSpan(span, err) }()

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, app.CustomerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}
	if !customer.IsActive() {
		return nil, dErrors.New(dErrors.CodeConflict, "Customer not active")
	}
	if err := app.CanApprove(); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeConflict, "Cannot approve a denied application")
		}
		return nil, err
	}

	return s.transition(ctx, app, models.StatusApproved, models.ApprovedMessage(app.ID))
}

// RejectApplication denies an application unconditionally.
func (s *Service) RejectApplication(ctx context.Context, applicationID id.ApplicationID) (_ *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "application.reject", applicationID)
	defer func() { endSpan(span, err) }()

	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, app, models.StatusDenied, models.DeniedMessage(app.ID))
}

// transition persists the new status, then notifies.
func (s *Service) transition(ctx context.Context, app *models.Application, status models.ApplicationStatus, message string) (*models.Application, error) {
	updated := app.WithStatus(status)
	if err := s.applications.Update(ctx, updated); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
	}
	s.logAudit(ctx, "application_"+string(status),
		"application_id", updated.ID,
		"previous_status", app.Status,
		"status", updated.Status,
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(status))
	}

	if err := s.notify(ctx, updated, message); err != nil {
		return updated, err
	}
	return updated, nil
}

func (s *Service) notify(ctx context.Context, app *models.Application, message string) error {
	if err := s.notifier.Notify(ctx, app.ID, app.Name, message); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementNotificationFailure()
		}
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "notification failed",
				"application_id", app.ID,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return &NotificationSendError{ApplicationID: app.ID, Err: err}
	}
	return nil
}

func (s *Service) loadApplication(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) startSpan(ctx context.Context, name string, applicationID id.ApplicationID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("application.id", applicationID.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
