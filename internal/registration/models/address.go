package models

import "strings"

const MessageMissingValues = "Missing values"

// Address is either a ValidAddress or an InvalidAddress.
type Address interface {
	Validatable
	isAddress()
}

type ValidAddress struct {
	StreetName string `json:"streetName"`
	City       string `json:"city"`
	PoCode     string `json:"poCode"`
	Country    string `json:"country"`
}

// InvalidAddress keeps whatever fields were supplied. Absent fields are nil.
type InvalidAddress struct {
	StreetName *string           `json:"streetName"`
	City       *string           `json:"city"`
	PoCode     *string           `json:"poCode"`
	Country    *string           `json:"country"`
	Failures   []ValidationError `json:"errors"`
}

func (ValidAddress) isAddress()   {}
func (InvalidAddress) isAddress() {}

func (ValidAddress) Errors() []ValidationError     { return nil }
func (a InvalidAddress) Errors() []ValidationError { return a.Failures }

// ParseAddress never fails. All four fields must be present and non-blank;
// otherwise a single "Missing values" error is returned whose value is the
// ':'-joined raw input with absent fields rendered as "null".
func ParseAddress(streetName, city, poCode, country *string) Address {
	if isBlank(streetName) || isBlank(city) || isBlank(poCode) || isBlank(country) {
		raw := strings.Join([]string{orNull(streetName), orNull(city), orNull(poCode), orNull(country)}, ":")
		return InvalidAddress{
			StreetName: streetName,
			City:       city,
			PoCode:     poCode,
			Country:    country,
			Failures:   []ValidationError{{Path: "", Message: MessageMissingValues, Value: raw}},
		}
	}
	return ValidAddress{StreetName: *streetName, City: *city, PoCode: *poCode, Country: *country}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
