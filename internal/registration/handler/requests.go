package handler

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"onboarding/internal/registration/models"
	dErrors "onboarding/pkg/domain-errors"
)

// registrationSchema pins the wire shape. Values that have the right shape
// but fail domain rules are left to the validation cascade.
const registrationSchema = `{
  "type": "object",
  "required": ["email", "anonymous"],
  "properties": {
    "email": {"type": "string"},
    "anonymous": {"type": "boolean"},
    "name": {"type": ["string", "null"]},
    "address": {
      "type": ["object", "null"],
      "properties": {
        "streetName": {"type": ["string", "null"]},
        "city": {"type": ["string", "null"]},
        "poCode": {"type": ["string", "null"]},
        "country": {"type": ["string", "null"]}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(registrationSchema)

// RegisterRequest is the HTTP request body for POST /registrations.
type RegisterRequest struct {
	Email     string          `json:"email"`
	Anonymous bool            `json:"anonymous"`
	Name      *string         `json:"name"`
	Address   *AddressRequest `json:"address"`
}

type AddressRequest struct {
	StreetName *string `json:"streetName"`
	City       *string `json:"city"`
	PoCode     *string `json:"poCode"`
	Country    *string `json:"country"`
}

// DecodeRegisterRequest checks syntax and shape, then decodes the body.
func DecodeRegisterRequest(body []byte) (*RegisterRequest, error) {
	if !json.Valid(body) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "malformed JSON")
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, strings.Join(msgs, "; "))
	}

	var req RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return &req, nil
}

// Form runs the validation cascade over the decoded fields.
func (r *RegisterRequest) Form() models.RegistrationForm {
	var address models.Address
	if r.Address != nil {
		address = models.ParseAddress(r.Address.StreetName, r.Address.City, r.Address.PoCode, r.Address.Country)
	}
	return models.ParseRegistrationForm(models.ParseEmail(r.Email), r.Anonymous, r.Name, address)
}
