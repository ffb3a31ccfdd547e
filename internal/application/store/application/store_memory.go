package application

import (
	"context"
	"sort"
	"sync"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map. Values are copied on the way in
// and out so callers never share state with the store.
type InMemoryStore struct {
	mu           sync.RWMutex
	applications map[id.ApplicationID]models.Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{applications: make(map[id.ApplicationID]models.Application)}
}

func (s *InMemoryStore) Create(_ context.Context, application *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[application.ID]; ok {
		return sentinel.ErrConflict
	}
	s.applications[application.ID] = *application
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, application *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[application.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.applications[application.ID] = *application
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &app, nil
}

// ListByStatus returns applications in any of the given statuses, oldest
// application date first.
func (s *InMemoryStore) ListByStatus(_ context.Context, statuses ...models.ApplicationStatus) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[models.ApplicationStatus]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	return s.collect(func(app models.Application) bool {
		_, ok := wanted[app.Status]
		return ok
	}), nil
}

func (s *InMemoryStore) ListByName(_ context.Context, name string) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(app models.Application) bool {
		return app.Name == name
	}), nil
}

// collect must be called with the lock held.
func (s *InMemoryStore) collect(match func(models.Application) bool) []*models.Application {
	result := make([]*models.Application, 0)
	for _, app := range s.applications {
		if match(app) {
			a := app
			result = append(result, &a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ApplicationDate.Equal(result[j].ApplicationDate) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].ApplicationDate.Before(result[j].ApplicationDate)
	})
	return result
}
