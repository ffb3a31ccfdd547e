package service

import (
	"errors"
	"fmt"

	id "onboarding/pkg/domain"
)

// NotificationSendError reports that a transition was committed but the
// applicant could not be notified. The status change is not rolled back.
type NotificationSendError struct {
	ApplicationID id.ApplicationID
	Err           error
}

func (e *NotificationSendError) Error() string {
	return fmt.Sprintf("failed to send notification for application %s: %v", e.ApplicationID, e.Err)
}

func (e *NotificationSendError) Unwrap() error {
	return e.Err
}

// IsNotificationSendError reports whether err wraps a NotificationSendError.
func IsNotificationSendError(err error) bool {
	var nse *NotificationSendError
	return errors.As(err, &nse)
}

// ExpiryFailure records an application the sweep could not fully process.
type ExpiryFailure struct {
	ApplicationID id.ApplicationID `json:"application_id"`
	Stage         string           `json:"stage"`
	Reason        string           `json:"reason"`
	Err           error            `json:"-"`
}

func newExpiryFailure(applicationID id.ApplicationID, stage string, err error) ExpiryFailure {
	return ExpiryFailure{ApplicationID: applicationID, Stage: stage, Reason: err.Error(), Err: err}
}

const (
	StageUpdate = "update"
	StageNotify = "notify"
)
