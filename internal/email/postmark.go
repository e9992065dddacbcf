package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/dukerupert/portfolio/internal/apperror"
	"github.com/dukerupert/portfolio/internal/model"
)

const (
	providerName = "postmark"
	apiURL       = "https://api.postmarkapp.com/email"
)

var ErrNotConfigured = errors.New("email client not configured: missing server token or recipient")

type Client struct {
	serverToken string
	fromEmail   string
	recipient   string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient returns a Postmark client that delivers contact messages to
// recipient. When recipient is empty messages go to fromEmail.
func NewClient(serverToken, fromEmail, recipient string, opts ...Option) *Client {
	if recipient == "" {
		recipient = fromEmail
	}
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		recipient:   recipient,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token and a recipient are set.
func (c *Client) Configured() bool {
	return c.serverToken != "" && c.recipient != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	ReplyTo  string `json:"ReplyTo"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send delivers a contact-form message to the site owner. Replies go to
// the sender's address.
func (c *Client) Send(ctx context.Context, msg model.ContactMessage) error {
	if !c.Configured() {
		return apperror.Collaborator(providerName, "send email", ErrNotConfigured)
	}

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       c.recipient,
		ReplyTo:  msg.Email,
		Subject:  "Portfolio Contact: " + msg.Subject,
		TextBody: fmt.Sprintf("Message from %s (%s): %s", msg.Name, msg.Email, msg.Message),
		HtmlBody: htmlBody(msg),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Collaborator(providerName, "send email", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apperror.Collaborator(providerName, "send email", fmt.Errorf("API error: status %d", resp.StatusCode))
	}

	return nil
}

func htmlBody(msg model.ContactMessage) string {
	text := strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br/>")
	return fmt.Sprintf(
		`<h2>New Contact Message</h2><p><strong>From:</strong> %s (%s)</p><p><strong>Subject:</strong> %s</p><hr/><p>%s</p>`,
		html.EscapeString(msg.Name), html.EscapeString(msg.Email), html.EscapeString(msg.Subject), text,
	)
}
