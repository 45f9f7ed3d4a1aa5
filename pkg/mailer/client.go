package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

const (
	defaultBaseURL  = "https://api.mailgun.net/v3"
	defaultFromName = "Stores REST API"

	responseBodyReadLimit int64 = 1024
)

var (
	errDomainRequired = errors.New("mailgun domain is required")
	errAPIKeyRequired = errors.New("mailgun api key is required")
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Client posts messages to the Mailgun HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	domain     string
	apiKey     string
	fromName   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a Mailgun client from mail config.
func NewClient(cfg config.MailConfig, opts ...Option) (*Client, error) {
	domain := strings.TrimSpace(cfg.Domain)
	if domain == "" {
		return nil, errDomainRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		domain:     domain,
		apiKey:     apiKey,
		fromName:   strings.TrimSpace(cfg.FromName),
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.fromName == "" {
		client.fromName = defaultFromName
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// From returns the sender address used for every message.
func (c *Client) From() string {
	return fmt.Sprintf("%s <mailgun@%s>", c.fromName, c.domain)
}

// Send posts the message as a form to {baseURL}/{domain}/messages.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailgun client not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}

	form := url.Values{}
	form.Set("from", c.From())
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Text)
	if msg.HTML != "" {
		form.Set("html", msg.HTML)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.baseURL, "/"), url.PathEscape(c.domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build mailgun request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute mailgun request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), "mailgun request failed")
	}
	return nil
}
