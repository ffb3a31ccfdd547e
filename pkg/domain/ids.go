package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "onboarding/pkg/domain-errors"
)

// ApplicationID identifies an application across stores and notifications.
type ApplicationID uuid.UUID

// CustomerID identifies the customer an application belongs to.
type CustomerID uuid.UUID

// NewApplicationID returns a random application id.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewCustomerID returns a random customer id.
func NewCustomerID() CustomerID { return CustomerID(uuid.New()) }

func (i ApplicationID) String() string { return uuid.UUID(i).String() }
func (i ApplicationID) IsNil() bool     { return uuid.UUID(i) == uuid.Nil }

func (i ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *ApplicationID) UnmarshalText(b []byte) error {
	parsed, err := ParseApplicationID(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i CustomerID) String() string { return uuid.UUID(i).String() }
func (i CustomerID) IsNil() bool     { return uuid.UUID(i) == uuid.Nil }

func (i CustomerID) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *CustomerID) UnmarshalText(b []byte) error {
	parsed, err := ParseCustomerID(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseApplicationID parses a non-nil UUID at a trust boundary.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application_id")
	return ApplicationID(u), err
}

// ParseCustomerID parses a non-nil UUID at a trust boundary.
func ParseCustomerID(s string) (CustomerID, error) {
	u, err := parseUUID(s, "customer_id")
	return CustomerID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}
