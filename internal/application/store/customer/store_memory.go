package customer

import (
	"context"
	"sync"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	customers map[id.CustomerID]models.Customer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{customers: make(map[id.CustomerID]models.Customer)}
}

func (s *InMemoryStore) Create(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[customer.ID]; ok {
		return sentinel.ErrConflict
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, customerID id.CustomerID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[customerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// SetActive flips a customer's active flag. Customers are otherwise
// immutable once added.
func (s *InMemoryStore) SetActive(_ context.Context, customerID id.CustomerID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Active = active
	s.customers[customerID] = c
	return nil
}
