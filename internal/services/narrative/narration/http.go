package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/questline/internal/platform/timeouts"
)

const maxResponseBytes = 1 << 20

// HTTPNarrator posts requests as JSON to a narration endpoint.
type HTTPNarrator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPNarrator returns a narrator for endpoint. A non-positive timeout uses timeouts.Narrator.
func NewHTTPNarrator(endpoint string, timeout time.Duration) (*HTTPNarrator, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("narration endpoint is required")
	}
	if timeout <= 0 {
		timeout = timeouts.Narrator
	}
	return &HTTPNarrator{endpoint: endpoint, client: &http.Client{Timeout: timeout}}, nil
}

// Choose implements Narrator.
func (n *HTTPNarrator) Choose(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode narration request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build narration request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("call narrator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read narration response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("narrator returned status %d", resp.StatusCode)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, fmt.Errorf("decode narration response: %w", err)
	}
	return out, nil
}
