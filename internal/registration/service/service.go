package service

import (
	"context"
	"log/slog"
	"strings"

	"onboarding/internal/registration/models"
	dErrors "onboarding/pkg/domain-errors"
	strs "onboarding/pkg/platform/strings"
	"onboarding/pkg/requestcontext"
)

type Store interface {
	Save(ctx context.Context, form models.ValidForm) error
}

// Service decides whether a valid registration may be stored.
type Service struct {
	store        Store
	logger       *slog.Logger
	domainSuffix string
	blockedWords []string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAllowedDomainSuffix restricts registrations to emails whose domain ends
// with suffix.
func WithAllowedDomainSuffix(suffix string) Option {
	return func(s *Service) {
		s.domainSuffix = suffix
	}
}

// WithBlockedWords replaces the words a registration name may not contain.
// Matching is case-insensitive.
func WithBlockedWords(words ...string) Option {
	return func(s *Service) {
		s.blockedWords = strs.DedupeAndTrimLower(words)
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		domainSuffix: ".com",
		blockedWords: []string{"fuck"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores the registration when policy allows it.
func (s *Service) Register(ctx context.Context, form models.ValidForm) error {
	if !s.isAllowed(form) {
		s.log(ctx, "registration rejected by policy", "domain", form.ValidEmail().Domain)
		return dErrors.New(dErrors.CodeForbidden, "registration not allowed")
	}
	if err := s.store.Save(ctx, form); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store registration")
	}
	s.log(ctx, "registration stored", "anonymous", isAnonymous(form))
	return nil
}

func (s *Service) isAllowed(form models.ValidForm) bool {
	if !strings.HasSuffix(form.ValidEmail().Domain, s.domainSuffix) {
		return false
	}
	switch f := form.(type) {
	case models.Registration:
		name := strings.ToLower(f.Name)
		for _, word := range s.blockedWords {
			if strings.Contains(name, word) {
				return false
			}
		}
		return true
	case models.AnonymousRegistration:
		return true
	default:
		return false
	}
}

func isAnonymous(form models.ValidForm) bool {
	_, ok := form.(models.AnonymousRegistration)
	return ok
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, msg, args...)
}
