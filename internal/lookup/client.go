package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"twopane/internal/models"
)

// DefaultBaseURL is the public mock API serving /users/{id}.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// ErrBadStatus is returned when the API answers with a non-2xx status.
var ErrBadStatus = errors.New("unexpected status")

// Client fetches user records from the mock API. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("component", "lookup_client"),
	}
}

// FetchUser issues GET {baseURL}/users/{id}. A record without an id is
// returned as is; deciding what that means is up to the caller.
func (c *Client) FetchUser(ctx context.Context, id int) (*models.UserRecord, error) {
	reqURL := c.baseURL + "/users/" + strconv.Itoa(id)

	c.log.DebugContext(ctx, "lookup request", slog.Int("user_id", id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("lookup: %w %d", ErrBadStatus, resp.StatusCode)
	}

	var user models.UserRecord
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("lookup: decode json: %w", err)
	}

	c.log.DebugContext(ctx, "lookup response",
		slog.Int("user_id", id),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return &user, nil
}
