package models

import (
	"strings"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// Customer owns applications. Only active customers get approvals.
type Customer struct {
	ID     id.CustomerID `json:"id"`
	Name   string        `json:"name"`
	Active bool          `json:"active"`
}

func NewCustomer(customerID id.CustomerID, name string, active bool) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer name cannot be empty")
	}
	if customerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "customer id cannot be nil")
	}
	return &Customer{ID: customerID, Name: name, Active: active}, nil
}

func (c *Customer) IsActive() bool {
	return c.Active
}
