package models

import (
	"strings"

	dErrors "onboarding/pkg/domain-errors"
)

// ApplicationStatus is the lifecycle state of an application.
// ACTIVE is initial; APPROVED, DENIED and EXPIRED are terminal.
type ApplicationStatus string

const (
	StatusActive   ApplicationStatus = "ACTIVE"
	StatusApproved ApplicationStatus = "APPROVED"
	StatusDenied   ApplicationStatus = "DENIED"
	StatusExpired  ApplicationStatus = "EXPIRED"
)

func (s ApplicationStatus) String() string { return string(s) }

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusApproved, StatusDenied, StatusExpired:
		return true
	default:
		return false
	}
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDenied || s == StatusExpired
}

// ParseApplicationStatus accepts any casing of a known status.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	s := ApplicationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid application status: "+raw)
	}
	return s, nil
}
