// Package waitlistclient submits registrations to the waitlist service and
// keeps the client-side form state.
package waitlistclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akeren/launchwait/pkg/constants"
	"github.com/akeren/launchwait/pkg/emailaddr"
)

const (
	DefaultBaseURL = "http://localhost:8080"

	// Responses larger than this are not a waitlist reply.
	maxResponseBytes = 64 << 10
)

// Entry is one submission. Timestamp is sent as the client's clock in RFC 3339.
type Entry struct {
	Email     string
	Name      string
	Interest  string
	Timestamp time.Time
}

type submission struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Interest  string `json:"interest,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type replyBody struct {
	Error string `json:"error"`
}

type countBody struct {
	Data struct {
		Count int64 `json:"count"`
	} `json:"data"`
	Message string `json:"message"`
}

// ValidateFormat is the pre-submit check: a trimmed address of the shape
// local@domain.tld with no whitespace.
func ValidateFormat(email string) bool {
	return emailaddr.IsValid(email)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Submit sends exactly one POST. It never retries.
func (c *Client) Submit(ctx context.Context, entry Entry) Outcome {
	payload := submission{
		Email:    emailaddr.Normalize(entry.Email),
		Name:     strings.TrimSpace(entry.Name),
		Interest: strings.TrimSpace(entry.Interest),
	}
	if !entry.Timestamp.IsZero() {
		payload.Timestamp = entry.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Kind: TransportFailure, Err: fmt.Errorf("encode submission: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+constants.WaitlistRoute, bytes.NewReader(body))
	if err != nil {
		return Outcome{Kind: TransportFailure, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{Kind: TransportFailure, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Outcome{Kind: TransportFailure, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	// A body that is not a waitlist reply (proxy page, rate limit envelope)
	// leaves Reason empty.
	var reply replyBody
	_ = json.Unmarshal(raw, &reply)

	switch resp.StatusCode {
	case http.StatusOK:
		return Outcome{Kind: Accepted, Status: resp.StatusCode}
	case http.StatusConflict:
		return Outcome{Kind: AlreadyJoined, Status: resp.StatusCode, Reason: reply.Error}
	default:
		return Outcome{Kind: Rejected, Status: resp.StatusCode, Reason: reply.Error}
	}
}

// Count fetches the public waitlist size.
func (c *Client) Count(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+constants.WaitlistRoute+"/count", nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body countBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count failed: status %d: %s", resp.StatusCode, body.Message)
	}

	return body.Data.Count, nil
}
