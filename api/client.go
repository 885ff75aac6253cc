package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the tetr.io channel API root.
const DefaultBaseURL = "https://ch.tetr.io/api"

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

// NewClient returns a client for the tetr.io channel API. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		UserAgent:  userAgent,
	}
}

// ErrorKind classifies client failures so callers can branch on kind
// instead of matching message text.
type ErrorKind int

const (
	// KindUnreachable means the request never produced a response.
	KindUnreachable ErrorKind = iota
	// KindAPIError means the remote answered with a failure: either a
	// non-2xx status or a success=false envelope.
	KindAPIError
	// KindMalformedResponse means the response body did not decode.
	KindMalformedResponse
	// KindNotFound means the envelope reported success but carried no
	// identity payload.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindAPIError:
		return "api error"
	case KindMalformedResponse:
		return "malformed response"
	case KindNotFound:
		return "not found"
	}
	return "unknown"
}

// Error is the only error type returned by Client methods.
type Error struct {
	Kind    ErrorKind
	Handle  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tetr.io %s for %q: %s", e.Kind, e.Handle, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("tetr.io %s for %q: %v", e.Kind, e.Handle, e.Err)
	}
	return fmt.Sprintf("tetr.io %s for %q", e.Kind, e.Handle)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the classification of a client error. The second return is
// false when err did not originate from this package.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// envelope is the response wrapper every channel API endpoint uses. A false
// Success is an application-level failure regardless of HTTP status.
type envelope[T any] struct {
	Success bool            `json:"success"`
	Error   *string         `json:"error"`
	Cache   json.RawMessage `json:"cache"`
	Data    *T              `json:"data"`
}

func get[T any](ctx context.Context, c *Client, path, handle string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Handle: handle, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Handle: handle, Err: err}
	}
	defer resp.Body.Close()

	var result envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &Error{
				Kind:    KindAPIError,
				Handle:  handle,
				Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
			}
		}
		return nil, &Error{Kind: KindMalformedResponse, Handle: handle, Err: err}
	}
	// tetr.io serves failure envelopes with non-2xx statuses too, so the
	// envelope's success flag decides, not the status code.
	if !result.Success {
		return nil, &Error{Kind: KindAPIError, Handle: handle, Message: errorMessage(result.Error)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindAPIError,
			Handle:  handle,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	if result.Data == nil {
		return nil, &Error{Kind: KindNotFound, Handle: handle, Message: "data field missing"}
	}
	return result.Data, nil
}

func errorMessage(msg *string) string {
	if msg == nil || *msg == "" {
		return "unknown"
	}
	return *msg
}

// AvatarURL derives the avatar location for a user id. Pure string
// construction, no request involved.
func AvatarURL(userID string) string {
	return fmt.Sprintf("https://tetr.io/user-content/avatars/%s.jpg", userID)
}
