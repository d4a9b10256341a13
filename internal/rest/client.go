// Package rest is the minimal REST collaborator spec.md names as
// out-of-scope "HTTP REST client" glue: just enough to support the
// discontinuity-driven history refresh path (spec.md §7), not a full
// reimplementation of the project's REST API (wire framing, request
// signing, and pagination are explicit Non-goals, see SPEC_FULL.md §D).
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/ably/ably-chat-go/internal/protocol"
)

// Client is a small wrapper over net/http for fetching message history.
// No third-party HTTP client from the retrieval pack fit this: the
// pack's HTTP-capable dependencies (go-rod/rod, go-chi/chi) are a
// browser driver and a server-side router respectively, neither of
// which is a REST client library. net/http is used directly here and
// is the documented exception in DESIGN.md.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

// NewClient builds a REST client against baseURL, authenticating with
// apiKey.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// HistoryOptions narrows a history query.
type HistoryOptions struct {
	Limit     int
	StartUnix int64
	EndUnix   int64
}

// History fetches message history for a channel, used by the chat room
// to refill messages after a discontinuity leaves a gap.
func (c *Client) History(ctx context.Context, channel string, opts HistoryOptions) ([]protocol.Message, error) {
	u, err := url.Parse(fmt.Sprintf("%s/channels/%s/messages", c.baseURL, url.PathEscape(channel)))
	if err != nil {
		return nil, errors.Wrap(err, "rest: building history URL")
	}

	q := u.Query()
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.StartUnix > 0 {
		q.Set("start", fmt.Sprintf("%d", opts.StartUnix))
	}
	if opts.EndUnix > 0 {
		q.Set("end", fmt.Sprintf("%d", opts.EndUnix))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "rest: building history request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "rest: history request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("rest: history request returned status %d", resp.StatusCode)
	}

	var messages []protocol.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return nil, errors.Wrap(err, "rest: decoding history response")
	}
	return messages, nil
}
