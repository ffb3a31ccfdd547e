package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	id "onboarding/pkg/domain"
)

// SESAPI is the subset of the SES client the notifier uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SES emails each notification to a fixed recipient list, typically a case
// handler mailbox.
type SES struct {
	client SESAPI
	from   string
	to     []string
}

func NewSES(client SESAPI, from string, to []string) *SES {
	return &SES{client: client, from: from, to: to}
}

func (n *SES) Notify(ctx context.Context, applicationID id.ApplicationID, name, message string) error {
	body := fmt.Sprintf("Hi %s,\n\n%s\n", name, message)
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: n.to,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("Application " + applicationID.String())},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.from),
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
