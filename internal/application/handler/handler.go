package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/application/models"
	"onboarding/internal/application/service"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the lifecycle operations exposed over HTTP.
type Service interface {
	RegisterInitialApplication(ctx context.Context, customer models.Customer, application models.Application) error
	GetApplication(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	ApplicationsForName(ctx context.Context, name string) ([]*models.Application, error)
	ActiveApplicationsFor(ctx context.Context, name string) ([]*models.Application, error)
	ApproveApplication(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	RejectApplication(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	ExpireApplications(ctx context.Context) (*service.ExpiryReport, error)
	SetCustomerActive(ctx context.Context, customerID id.CustomerID, active bool) error
}

// Handler wires application lifecycle endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the lifecycle endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/applications", func(r chi.Router) {
		r.Post("/", h.HandleRegisterApplication)
		r.Get("/", h.HandleListApplications)
		r.Post("/expire", h.HandleExpire)
		r.Get("/{id}", h.HandleGetApplication)
		r.Post("/{id}/approve", h.HandleApprove)
		r.Post("/{id}/reject", h.HandleReject)
	})
	r.Put("/customers/{id}/active", h.HandleSetCustomerActive)
}

type applicationsResponse struct {
	Applications []*models.Application `json:"applications"`
}

// transitionResponse carries the persisted application; NotificationError
// is set when the applicant could not be told about it.
type transitionResponse struct {
	Application       *models.Application `json:"application"`
	NotificationError string              `json:"notification_error,omitempty"`
}

// HandleRegisterApplication handles POST /applications.
func (h *Handler) HandleRegisterApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, err := httputil.DecodeJSON[RegisterApplicationRequest](r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid register application request", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	req.Normalize()
	customer, app, err := req.Parse()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid register application request", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RegisterInitialApplication(ctx, *customer, *app); err != nil {
		h.logError(ctx, "failed to register application", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

// HandleListApplications handles GET /applications?name=...&active=true.
func (h *Handler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "name query parameter is required"))
		return
	}

	var (
		apps []*models.Application
		err  error
	)
	switch r.URL.Query().Get("active") {
	case "", "false":
		apps, err = h.service.ApplicationsForName(ctx, name)
	case "true":
		apps, err = h.service.ActiveApplicationsFor(ctx, name)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "active must be true or false"))
		return
	}
	if err != nil {
		h.logError(ctx, "failed to list applications", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, applicationsResponse{Applications: apps})
}

// HandleGetApplication handles GET /applications/{id}.
func (h *Handler) HandleGetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	app, err := h.service.GetApplication(r.Context(), applicationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleApprove handles POST /applications/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "approve", h.service.ApproveApplication)
}

// HandleReject handles POST /applications/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "reject", h.service.RejectApplication)
}

func (h *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	transition func(context.Context, id.ApplicationID) (*models.Application, error),
) {
	ctx := r.Context()
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := transition(ctx, applicationID)
	if err != nil {
		var nse *service.NotificationSendError
		if errors.As(err, &nse) && app != nil {
			h.logger.WarnContext(ctx, "transition persisted but notification failed",
				"request_id", requestcontext.RequestID(ctx),
				"action", action,
				"application_id", applicationID,
				"error", nse.Err,
			)
			httputil.WriteJSON(w, http.StatusBadGateway, transitionResponse{
				Application:       app,
				NotificationError: nse.Error(),
			})
			return
		}
		h.logError(ctx, "failed to "+action+" application", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transitionResponse{Application: app})
}

// HandleExpire handles POST /applications/expire.
func (h *Handler) HandleExpire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.service.ExpireApplications(ctx)
	if err != nil {
		h.logError(ctx, "expiry sweep failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleSetCustomerActive handles PUT /customers/{id}/active.
func (h *Handler) HandleSetCustomerActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, err := id.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[SetActiveRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Active == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "active is required"))
		return
	}
	if err := h.service.SetCustomerActive(ctx, customerID, *req.Active); err != nil {
		h.logError(ctx, "failed to update customer", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
		return
	}
	h.logger.InfoContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
}
