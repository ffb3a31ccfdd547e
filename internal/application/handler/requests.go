package handler

import (
	"strings"
	"time"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// DateLayout is the wire format of birth and application dates.
const DateLayout = "2006-01-02"

type CustomerRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

type ApplicationRequest struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	BirthDate       string `json:"birth_date"`
	ApplicationDate string `json:"application_date"`
}

// RegisterApplicationRequest is the body of POST /applications.
type RegisterApplicationRequest struct {
	Customer    CustomerRequest    `json:"customer"`
	Application ApplicationRequest `json:"application"`
}

func (r *RegisterApplicationRequest) Normalize() {
	r.Customer.ID = strings.TrimSpace(r.Customer.ID)
	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Application.ID = strings.TrimSpace(r.Application.ID)
	r.Application.Name = strings.TrimSpace(r.Application.Name)
	r.Application.BirthDate = strings.TrimSpace(r.Application.BirthDate)
	r.Application.ApplicationDate = strings.TrimSpace(r.Application.ApplicationDate)
}

// Parse builds the customer and the ACTIVE application. A missing
// application id is generated.
func (r *RegisterApplicationRequest) Parse() (*models.Customer, *models.Application, error) {
	customerID, err := id.ParseCustomerID(r.Customer.ID)
	if err != nil {
		return nil, nil, err
	}
	if r.Customer.Active == nil {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "customer.active is required")
	}
	customer, err := models.NewCustomer(customerID, r.Customer.Name, *r.Customer.Active)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid customer")
	}

	applicationID := id.NewApplicationID()
	if r.Application.ID != "" {
		if applicationID, err = id.ParseApplicationID(r.Application.ID); err != nil {
			return nil, nil, err
		}
	}
	birthDate, err := parseDate("application.birth_date", r.Application.BirthDate)
	if err != nil {
		return nil, nil, err
	}
	applicationDate, err := parseDate("application.application_date", r.Application.ApplicationDate)
	if err != nil {
		return nil, nil, err
	}
	app, err := models.NewApplication(applicationID, customerID, r.Application.Name, birthDate, applicationDate)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid application")
	}
	return customer, app, nil
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be YYYY-MM-DD")
	}
	return t, nil
}

// SetActiveRequest is the body of PUT /customers/{id}/active.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}
