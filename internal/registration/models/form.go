package models

import "strconv"

const (
	MessageInvalidCombination = "Invalid combination!"
	MessageAddressRequired    = "Address is required"
)

// RegistrationForm is one of Registration, AnonymousRegistration or
// InvalidRegistration.
type RegistrationForm interface {
	isRegistrationForm()
}

// ValidForm is implemented by the two accepted variants.
type ValidForm interface {
	RegistrationForm
	ValidEmail() ValidEmail
}

type Registration struct {
	Email   ValidEmail   `json:"email"`
	Name    string       `json:"name"`
	Address ValidAddress `json:"address"`
}

type AnonymousRegistration struct {
	Email ValidEmail `json:"email"`
}

// InvalidRegistration keeps every raw field so callers can echo them back.
type InvalidRegistration struct {
	Email     Email             `json:"email"`
	Anonymous bool              `json:"anonymous"`
	Name      *string           `json:"name"`
	Address   Address           `json:"address"`
	Failures  []ValidationError `json:"errors"`
}

func (Registration) isRegistrationForm()          {}
func (AnonymousRegistration) isRegistrationForm() {}
func (InvalidRegistration) isRegistrationForm()   {}

func (r Registration) ValidEmail() ValidEmail          { return r.Email }
func (r AnonymousRegistration) ValidEmail() ValidEmail { return r.Email }

func (r InvalidRegistration) Errors() []ValidationError { return r.Failures }

// ParseRegistrationForm combines already parsed fields into a single outcome.
//
// Field errors are merged first, in email then address order, with paths
// prefixed by the field key. Without field errors an anonymous registration
// wins regardless of name and address. A named registration requires an
// address; a registration that is neither anonymous nor named is an invalid
// combination.
func ParseRegistrationForm(email Email, anonymous bool, name *string, address Address) RegistrationForm {
	invalid := func(errs []ValidationError) RegistrationForm {
		return InvalidRegistration{Email: email, Anonymous: anonymous, Name: name, Address: address, Failures: errs}
	}

	if email == nil {
		return invalid([]ValidationError{{Path: "email", Message: MessageInvalidEmail, Value: "null"}})
	}

	if errs := collectErrors(namedField{"email", email}, namedField{"address", address}); len(errs) > 0 {
		return invalid(errs)
	}

	validEmail, ok := email.(ValidEmail)
	if !ok {
		return invalid([]ValidationError{{Path: "email", Message: MessageInvalidEmail, Value: ""}})
	}

	if anonymous {
		return AnonymousRegistration{Email: validEmail}
	}
	if name == nil {
		return invalid([]ValidationError{{
			Path:    "",
			Message: MessageInvalidCombination,
			Value:   "anonymous=" + strconv.FormatBool(anonymous) + ":name=null",
		}})
	}
	validAddress, ok := address.(ValidAddress)
	if !ok {
		return invalid([]ValidationError{{Path: "address", Message: MessageAddressRequired, Value: "null"}})
	}
	return Registration{Email: validEmail, Name: *name, Address: validAddress}
}
