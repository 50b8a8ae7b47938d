package streetapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SessionSource supplies the X-Session-ID header value.
type SessionSource interface {
	ID() string
}

// Client talks to the exploration HTTP API.
type Client struct {
	baseURL   *url.URL
	prefix    string
	http      *http.Client
	userAgent string
	sessions  SessionSource
}

const (
	defaultAPIURL    = "http://127.0.0.1:8080"
	defaultPrefix    = "/api/v1"
	defaultUserAgent = "streetlens/0.1"
	defaultLanguage  = "en"
	sessionHeader    = "X-Session-ID"

	// requestTimeout is a backstop only; callers bound each attempt with
	// their own context.
	requestTimeout = 60 * time.Second
	maxErrorBody   = 4 << 10
)

// APIError is an HTTP failure or an envelope with success=false.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// NewClient builds a Client for apiURL. prefix defaults to /api/v1 and
// sessions may be nil, in which case no session header is sent.
func NewClient(apiURL, prefix string, sessions SessionSource) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Client{
		baseURL: base,
		prefix:  "/" + strings.Trim(prefix, "/"),
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		sessions:  sessions,
	}, nil
}

// Describe fetches the description of subjectID in lang.
func (c *Client) Describe(ctx context.Context, kind DescriptionKind, subjectID, lang string) (Description, error) {
	if c == nil {
		return Description{}, fmt.Errorf("client is nil")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return Description{}, fmt.Errorf("missing location id")
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = defaultLanguage
	}

	rel := c.apiURL("locations", subjectID, kind.path())
	rel.RawQuery = url.Values{"lang": []string{lang}}.Encode()
	env, err := c.doURL(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return Description{}, err
	}
	var desc Description
	if err := decodeData(env, &desc); err != nil {
		return Description{}, err
	}
	if desc.Language == "" {
		desc.Language = lang
	}
	return desc, nil
}

// FetchDescription retrieves the standard description.
func (c *Client) FetchDescription(ctx context.Context, subjectID, lang string) (Description, error) {
	return c.Describe(ctx, StandardDescription, subjectID, lang)
}

// FetchDetailedDescription retrieves the extended description.
func (c *Client) FetchDetailedDescription(ctx context.Context, subjectID, lang string) (Description, error) {
	return c.Describe(ctx, DetailedDescription, subjectID, lang)
}

// FetchRandomLocation asks the API for a location, honouring any exploration
// preference stored for the session.
func (c *Client) FetchRandomLocation(ctx context.Context) (Location, error) {
	if c == nil {
		return Location{}, fmt.Errorf("client is nil")
	}
	env, err := c.doURL(ctx, http.MethodGet, c.apiURL("locations", "random"), nil)
	if err != nil {
		return Location{}, err
	}
	var payload locationPayload
	if err := decodeData(env, &payload); err != nil {
		return Location{}, err
	}
	wire := payload.wireLocation
	if payload.Location != nil {
		wire = *payload.Location
	}
	loc, err := wire.location()
	if err != nil {
		return Location{}, fmt.Errorf("decode location: %w", err)
	}
	if loc.PanoID == "" {
		return Location{}, fmt.Errorf("decode location: missing pano_id")
	}
	return loc, nil
}

// SetExplorationPreference stores an interest for the session.
func (c *Client) SetExplorationPreference(ctx context.Context, interest string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return fmt.Errorf("interest is empty")
	}
	rel := c.apiURL("preferences", "exploration")
	_, err := c.doURL(ctx, http.MethodPost, rel, explorationRequest{Interest: interest})
	return err
}

// DeleteExplorationPreference clears the session's interest.
func (c *Client) DeleteExplorationPreference(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel := c.apiURL("preferences", "exploration", "remove")
	_, err := c.doURL(ctx, http.MethodPost, rel, nil)
	return err
}

// Ping reports whether the API host answers at all. Any HTTP response,
// whatever its status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// apiURL joins segments under the prefix, escaping each one so identifiers
// containing slashes stay a single path element.
func (c *Client) apiURL(segments ...string) *url.URL {
	raw := []string{c.prefix}
	escaped := []string{c.prefix}
	for _, s := range segments {
		raw = append(raw, s)
		escaped = append(escaped, url.PathEscape(s))
	}
	return &url.URL{Path: strings.Join(raw, "/"), RawPath: strings.Join(escaped, "/")}
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body any) (Envelope, error) {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return Envelope{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.sessions != nil {
		if id := c.sessions.ID(); id != "" {
			req.Header.Set(sessionHeader, id)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return Envelope{}, &APIError{Path: rel.Path, Status: resp.StatusCode, Message: errorText(resp)}
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.failure()
		if msg == "" {
			msg = "request was not successful"
		}
		return Envelope{}, &APIError{Path: rel.Path, Status: resp.StatusCode, Message: msg}
	}
	return env, nil
}

// errorText extracts a message from an error response, preferring the
// envelope's error field over the raw body.
func errorText(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env Envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if msg := env.failure(); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func decodeData(env Envelope, dest any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("decode response: missing data")
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
