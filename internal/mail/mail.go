// Package mail sends the transactional email of the service.
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"alcyxob/trainlog/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	log "github.com/sirupsen/logrus"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// sesAPI is the subset of the SES v2 client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
	from   string
}

// NewSESMailer creates a Mailer backed by Amazon SES.
func NewSESMailer(ctx context.Context, cfg config.EmailConfig) (Mailer, error) {
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.APIKey, ""),
		))
	}

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SES: %w", err)
	}

	log.Infof("SES mailer initialized for region %s, sender %s", cfg.Region, cfg.From)
	return &sesMailer{client: sesv2.NewFromConfig(awsSDKConfig), from: cfg.From}, nil
}

func (m *sesMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	msg := passwordResetMessage(resetURL)
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}

// logMailer stands in for a real sender during development.
type logMailer struct{}

// NewLogMailer returns a Mailer that only logs the reset link.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	log.WithField("to", to).Infof("email disabled, password reset link: %s", resetURL)
	return nil
}

type message struct {
	Subject string
	Text    string
	HTML    string
}

func passwordResetMessage(resetURL string) message {
	text := strings.Join([]string{
		"You requested a password reset.",
		"",
		"Open this link to choose a new password: " + resetURL,
		"",
		"The link expires in 1 hour. If you didn't request this, you can ignore this email.",
	}, "\n")

	escaped := html.EscapeString(resetURL)
	body := `<p>You requested a password reset.</p>` +
		`<p><a href="` + escaped + `">Reset your password</a></p>` +
		`<p>The link expires in 1 hour. If you didn't request this, you can ignore this email.</p>`

	return message{Subject: "Reset your password", Text: text, HTML: body}
}
