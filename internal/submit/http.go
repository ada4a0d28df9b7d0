package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts batches to the quality-check endpoint.
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(baseURL, "/") + "/quality-check",
	}
}

// Submit posts one payload and decodes the verdict. Transport failures are
// returned as errors; every HTTP answer becomes a Verdict.
func (c *Client) Submit(ctx context.Context, p Payload) (Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(p.Body))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("submit %s: %w", p.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Verdict{}, fmt.Errorf("read response for %s: %w", p.Name, err)
	}

	v := Verdict{Name: p.Name, StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusOK:
		var ok passedBody
		if err := json.Unmarshal(body, &ok); err != nil {
			return Verdict{}, fmt.Errorf("decode verdict for %s: %w", p.Name, err)
		}
		v.Outcome = OutcomePassed
		v.Summary = &ok.QualityCheck
	case http.StatusUnprocessableEntity:
		var failed failureBody
		if err := json.Unmarshal(body, &failed); err != nil {
			return Verdict{}, fmt.Errorf("decode verdict for %s: %w", p.Name, err)
		}
		v.Outcome = OutcomeFailed
		v.Summary = &failed.Summary
		v.Failures = failed.Failures
	case http.StatusBadRequest:
		v.Outcome = OutcomeInvalid
		v.Message = errorMessage(body)
	default:
		v.Outcome = OutcomeError
		v.Message = errorMessage(body)
	}
	return v, nil
}

func errorMessage(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
