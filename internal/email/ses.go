package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesAPI is the subset of the SES client used here, narrowed for testing.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESDispatcher sends email through Amazon SES.
type SESDispatcher struct {
	client sesAPI
}

// NewSESDispatcher wraps an SES client.
func NewSESDispatcher(client sesAPI) *SESDispatcher {
	return &SESDispatcher{client: client}
}

// Send dispatches one HTML email via SES.
func (d *SESDispatcher) Send(ctx context.Context, sender, recipient, subject, htmlBody string) (string, error) {
	out, err := d.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sending email to %s via SES: %w", recipient, err)
	}
	return aws.ToString(out.MessageId), nil
}
