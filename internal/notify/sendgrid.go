package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/watchlist/internal/metrics"
)

// DefaultSendGridEndpoint is the v3 mail send API.
const DefaultSendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

// SendGridMailer implements Mailer via the SendGrid v3 HTTP API.
type SendGridMailer struct {
	apiKey   string
	from     string
	to       string
	endpoint string
	client   *http.Client
}

// NewSendGridMailer creates a new SendGridMailer.
func NewSendGridMailer(apiKey, from, to string, opts ...SendGridOption) *SendGridMailer {
	m := &SendGridMailer{
		apiKey:   apiKey,
		from:     from,
		to:       to,
		endpoint: DefaultSendGridEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendGridOption configures a SendGridMailer.
type SendGridOption func(*SendGridMailer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) SendGridOption {
	return func(m *SendGridMailer) {
		m.client = c
	}
}

// WithEndpoint overrides the mail send URL.
func WithEndpoint(url string) SendGridOption {
	return func(m *SendGridMailer) {
		if url != "" {
			m.endpoint = url
		}
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridErrorBody struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"errors"`
}

func (m *SendGridMailer) payload(msg Message) sendGridPayload {
	p := sendGridPayload{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: m.to}}},
		},
		From:    sendGridAddress{Email: m.from},
		Subject: msg.Subject,
		// text/plain must precede text/html.
		Content: []sendGridContent{{Type: "text/plain", Value: msg.Text}},
	}
	if msg.HTML != "" {
		p.Content = append(p.Content, sendGridContent{Type: "text/html", Value: msg.HTML})
	}
	return p
}

// Send posts msg to SendGrid. The API answers 202 on success; any other
// non-2xx status is returned as a *DeliveryError.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	defer func() {
		metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(m.payload(msg))
	if err != nil {
		return fmt.Errorf("marshaling sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating sendgrid request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return deliveryError(resp)
}

func deliveryError(resp *http.Response) *DeliveryError {
	derr := &DeliveryError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return derr
	}

	var parsed sendGridErrorBody
	if json.Unmarshal(raw, &parsed) != nil {
		derr.Messages = []string{string(raw)}
		return derr
	}
	for _, e := range parsed.Errors {
		if e.Message != "" {
			derr.Messages = append(derr.Messages, e.Message)
		}
	}
	return derr
}
