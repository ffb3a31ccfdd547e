package service

import (
	"context"
	"time"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
)

// ApplicationStore persists applications. FindByID returns
// sentinel.ErrNotFound for unknown ids; Create returns sentinel.ErrConflict
// for duplicates.
type ApplicationStore interface {
	FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	ListByStatus(ctx context.Context, statuses ...models.ApplicationStatus) ([]*models.Application, error)
	ListByName(ctx context.Context, name string) ([]*models.Application, error)
	Create(ctx context.Context, application *models.Application) error
	Update(ctx context.Context, application *models.Application) error
}

// CustomerDirectory looks up customers. FindByID returns sentinel.ErrNotFound
// for unknown customers.
type CustomerDirectory interface {
	FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	SetActive(ctx context.Context, customerID id.CustomerID, active bool) error
}

// NotificationSender delivers a message about an application to the
// applicant. Any returned error is treated as a delivery failure.
type NotificationSender interface {
	Notify(ctx context.Context, applicationID id.ApplicationID, name, message string) error
}

// Clock returns the current time.
type Clock func() time.Time
