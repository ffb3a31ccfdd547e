package models

import id "onboarding/pkg/domain"

// Notification is what a sender delivers to the applicant.
type Notification struct {
	ApplicationID id.ApplicationID `json:"application_id"`
	Name          string           `json:"name"`
	Message       string           `json:"message"`
}

func ApprovedMessage(applicationID id.ApplicationID) string {
	return "Your application " + applicationID.String() + " has been approved"
}

func DeniedMessage(applicationID id.ApplicationID) string {
	return "Your application " + applicationID.String() + " has been denied"
}

func ExpiredMessage(applicationID id.ApplicationID) string {
	return "Your application " + applicationID.String() + " has expired"
}
