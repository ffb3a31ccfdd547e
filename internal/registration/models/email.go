package models

import "strings"

const MessageInvalidEmail = "Not a valid Email ;)"

// Email is either a ValidEmail or an InvalidEmail.
type Email interface {
	Validatable
	isEmail()
}

// ValidEmail holds the parts around the first and last '@'.
type ValidEmail struct {
	User   string `json:"user"`
	Domain string `json:"domain"`
}

// InvalidEmail keeps the raw input together with why it was rejected.
type InvalidEmail struct {
	Value    string            `json:"value"`
	Failures []ValidationError `json:"errors"`
}

func (ValidEmail) isEmail()   {}
func (InvalidEmail) isEmail() {}

func (ValidEmail) Errors() []ValidationError     { return nil }
func (e InvalidEmail) Errors() []ValidationError { return e.Failures }

func (e ValidEmail) String() string {
	return e.User + "@" + e.Domain
}

// ParseEmail never fails; input without an '@' becomes an InvalidEmail.
// With several '@' the user is taken before the first and the domain after
// the last.
func ParseEmail(raw string) Email {
	if !strings.Contains(raw, "@") {
		return InvalidEmail{
			Value:    raw,
			Failures: []ValidationError{{Path: "", Message: MessageInvalidEmail, Value: raw}},
		}
	}
	parts := strings.Split(raw, "@")
	return ValidEmail{User: parts[0], Domain: parts[len(parts)-1]}
}
