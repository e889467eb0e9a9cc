package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// CommentNotice describes a new comment the owner should hear about.
type CommentNotice struct {
	ProjectTitle string
	Author       string
	Content      string
	ProjectURL   string
}

// Notifier tells the owner about activity on the site.
type Notifier interface {
	NotifyComment(ctx context.Context, notice CommentNotice) error
}

// MultiNotifier fans a notice out to every configured channel and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyComment(ctx context.Context, notice CommentNotice) error {
	var errList []error
	for _, n := range m {
		if err := n.NotifyComment(ctx, notice); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// EmailNotifier sends notices through the Resend API.
type EmailNotifier struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	client     *http.Client
}

func NewEmailNotifier(apiKey, from string, recipients []string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:     apiKey,
		from:       from,
		recipients: recipients,
		endpoint:   "https://api.resend.com/emails",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *EmailNotifier) NotifyComment(ctx context.Context, notice CommentNotice) error {
	subject := fmt.Sprintf("New comment on %s", notice.ProjectTitle)
	body := fmt.Sprintf("<p><strong>%s</strong> commented on <em>%s</em>:</p><blockquote>%s</blockquote>",
		html.EscapeString(notice.Author), html.EscapeString(notice.ProjectTitle), html.EscapeString(notice.Content))
	if notice.ProjectURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">View project</a></p>`, html.EscapeString(notice.ProjectURL))
	}
	return n.SendEmail(ctx, subject, body)
}

// SendEmail sends an HTML email to the configured recipients.
func (n *EmailNotifier) SendEmail(ctx context.Context, subject, body string) error {
	if len(n.recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    n.from,
		To:      n.recipients,
		Subject: subject,
		Html:    body,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}
	return nil
}

// MessageCreator is the part of the Twilio client used to send SMS.
type MessageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// SMSNotifier texts notices to the owner through Twilio.
type SMSNotifier struct {
	api  MessageCreator
	from string
	to   string
}

func NewSMSNotifier(api MessageCreator, from, to string) *SMSNotifier {
	return &SMSNotifier{api: api, from: from, to: to}
}

func (n *SMSNotifier) NotifyComment(_ context.Context, notice CommentNotice) error {
	text := fmt.Sprintf("New comment by %s on %s: %s", notice.Author, notice.ProjectTitle, truncate(notice.Content, 120))

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(n.to)
	params.SetBody(text)

	msg, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	if msg != nil && msg.Sid != nil {
		log.Info().Str("sid", *msg.Sid).Msg("Sent comment notification by SMS")
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// NewNotifierFromConfig enables the email and SMS channels whose credentials are configured.
// It returns nil when no channel is configured.
func NewNotifierFromConfig(cfg map[string]string) Notifier {
	var notifiers MultiNotifier

	if apiKey := config.GetString(cfg, "RESEND_API_KEY", ""); apiKey != "" {
		recipients := config.GetList(cfg, "NOTIFY_EMAILS")
		if len(recipients) == 0 {
			if owner := config.GetString(cfg, "OWNER_EMAIL", ""); owner != "" {
				recipients = []string{owner}
			}
		}
		from := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
		if from != "" && len(recipients) > 0 {
			notifiers = append(notifiers, NewEmailNotifier(apiKey, from, recipients))
		} else {
			log.Warn().Msg("RESEND_API_KEY is set but RESEND_FROM_EMAIL or recipients are missing, email notifications disabled")
		}
	}

	sid := config.GetString(cfg, "TWILIO_ACCOUNT_SID", "")
	token := config.GetString(cfg, "TWILIO_AUTH_TOKEN", "")
	from := config.GetString(cfg, "TWILIO_FROM_NUMBER", "")
	to := config.GetString(cfg, "TWILIO_TO_NUMBER", "")
	if sid != "" && token != "" && from != "" && to != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: sid,
			Password: token,
		})
		notifiers = append(notifiers, NewSMSNotifier(client.Api, from, to))
	}

	if len(notifiers) == 0 {
		return nil
	}
	return notifiers
}
