package store

import (
	"context"
	"sync"

	"onboarding/internal/registration/models"
	"onboarding/pkg/platform/sentinel"
)

// InMemory keeps accepted registrations keyed by email. A later registration
// with the same email replaces the earlier one.
type InMemory struct {
	mu            sync.RWMutex
	registrations map[models.ValidEmail]models.ValidForm
}

func NewInMemory() *InMemory {
	return &InMemory{registrations: make(map[models.ValidEmail]models.ValidForm)}
}

func (s *InMemory) Save(_ context.Context, form models.ValidForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[form.ValidEmail()] = form
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email models.ValidEmail) (models.ValidForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.registrations[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return form, nil
}
