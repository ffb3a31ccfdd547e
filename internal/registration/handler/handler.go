package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboarding/internal/registration/models"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// Service defines the interface for registration operations.
type Service interface {
	Register(ctx context.Context, form models.ValidForm) error
}

// Handler wires registration endpoints to the registration service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registrations", h.HandleRegister)
}

type resultResponse struct {
	Result string `json:"result"`
}

type errorsResponse struct {
	Errors []models.ValidationError `json:"errors"`
}

// HandleRegister handles POST /registrations.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, err := httputil.ReadBody(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := DecodeRegisterRequest(body)
	if err != nil {
		h.logger.InfoContext(ctx, "registration request rejected", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	switch form := req.Form().(type) {
	case models.InvalidRegistration:
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, errorsResponse{Errors: form.Errors()})
	case models.Registration:
		h.register(w, r, form, "Congrats "+form.Name+"!")
	case models.AnonymousRegistration:
		h.register(w, r, form, "Congrats!")
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "unexpected registration form"))
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, form models.ValidForm, message string) {
	ctx := r.Context()
	if err := h.service.Register(ctx, form); err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resultResponse{Result: message})
}
