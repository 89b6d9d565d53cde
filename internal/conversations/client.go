// Package conversations reads chat sessions from the conversation service
// over HTTP.
package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/types"
)

var errNotFound = errors.New("not found")

type Client struct {
	base         string
	apiKey       string
	http         *http.Client
	maxRetryTime time.Duration
	log          *logger.Logger
}

func New(baseURL, apiKey string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		base:         strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		http:         &http.Client{Timeout: 12 * time.Second},
		maxRetryTime: 12 * time.Second,
		log:          log.Component("conversations"),
	}
}

type sessionsResponse struct {
	SessionIDs []string `json:"session_ids"`
}

type messagesResponse struct {
	Messages []types.Message `json:"messages"`
}

// SessionIDs lists the client's sessions active since the given time.
func (c *Client) SessionIDs(ctx context.Context, clientID string, since time.Time) ([]string, error) {
	u := fmt.Sprintf("%s/clients/%s/sessions?since=%s",
		c.base, url.PathEscape(clientID), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	var resp sessionsResponse
	if err := c.doJSON(ctx, u, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions for %s: %w", clientID, err)
	}
	return resp.SessionIDs, nil
}

// SessionMessages returns the session's messages in arrival order. Messages
// with an unknown role are dropped.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]types.Message, error) {
	u := fmt.Sprintf("%s/sessions/%s/messages", c.base, url.PathEscape(sessionID))

	var resp messagesResponse
	if err := c.doJSON(ctx, u, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch session %s: %w", sessionID, err)
	}

	out := make([]types.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m.Role != types.RoleUser && m.Role != types.RoleAssistant {
			continue
		}
		if m.SessionID == "" {
			m.SessionID = sessionID
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, u string, target any) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxRetryTime

	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.log.WithError(err).Warn("conversation api request failed")
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			lastErr = errNotFound
			return backoff.Permanent(lastErr)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
			return lastErr
		case resp.StatusCode >= 400:
			lastErr = fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}
		if len(body) == 0 {
			lastErr = fmt.Errorf("empty body")
			return lastErr
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v", err)
			return backoff.Permanent(lastErr)
		}
		lastErr = nil
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}
