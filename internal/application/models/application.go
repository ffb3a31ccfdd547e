package models

import (
	"strings"
	"time"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// ValidityMonths is how long an ACTIVE application stays valid after its
// application date.
const ValidityMonths = 6

// Application is the aggregate moved through the lifecycle.
//
// Invariants:
//   - Name is non-empty
//   - Status is one of the four known statuses
//   - New applications start ACTIVE
//   - A DENIED application is never approved
//
// Applications are handled by value: transitions return a new copy for the
// store to persist, leaving the loaded one untouched.
type Application struct {
	ID              id.ApplicationID  `json:"id"`
	CustomerID      id.CustomerID     `json:"customer_id"`
	Name            string            `json:"name"`
	BirthDate       time.Time         `json:"birth_date"`
	ApplicationDate time.Time         `json:"application_date"`
	Status          ApplicationStatus `json:"status"`
}

func NewApplication(applicationID id.ApplicationID, customerID id.CustomerID, name string, birthDate, applicationDate time.Time) (*Application, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application name cannot be empty")
	}
	if applicationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application id cannot be nil")
	}
	if customerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer id cannot be nil")
	}
	return &Application{
		ID:              applicationID,
		CustomerID:      customerID,
		Name:            name,
		BirthDate:       DateOf(birthDate),
		ApplicationDate: DateOf(applicationDate),
		Status:          StatusActive,
	}, nil
}

func (a *Application) IsActive() bool {
	return a.Status == StatusActive
}

// ExpiresOn is the last calendar day on which the application is valid.
func (a *Application) ExpiresOn() time.Time {
	return AddMonths(DateOf(a.ApplicationDate), ValidityMonths)
}

// IsValid reports whether the application is still within its validity
// window on the calendar day of now. The expiry day itself is still valid.
func (a *Application) IsValid(now time.Time) bool {
	return !DateOf(now).After(a.ExpiresOn())
}

// CanApprove checks the approval transition. Only DENIED blocks it.
func (a *Application) CanApprove() error {
	if a.Status == StatusDenied {
		return dErrors.New(dErrors.CodeInvariantViolation, "Cannot approve a denied application")
	}
	return nil
}

// WithStatus returns a copy of the application in the given status.
func (a *Application) WithStatus(status ApplicationStatus) *Application {
	updated := *a
	updated.Status = status
	return &updated
}

// DateOf returns UTC midnight of the calendar date t falls on in its own
// location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds calendar months, clamping to the last day of the target
// month (Aug 31 + 6 months is Feb 28 or 29).
func AddMonths(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
