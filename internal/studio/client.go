package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/watchfire-io/studiobar/internal/buildinfo"
)

const (
	// DefaultBaseURL is the control-plane host.
	DefaultBaseURL = "https://lightning.ai"

	// apiPrefix is prepended to every request path.
	apiPrefix = "/v1"

	// HTTPTimeout bounds each API call.
	HTTPTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Operation names passed to Observer.
const (
	OpResolve = "resolve"
	OpStatus  = "status"
	OpMachine = "machine"
	OpSwitch  = "switch"
	OpStart   = "start"
	OpStop    = "stop"
)

// Observer is notified after every HTTP round trip. code is 0 when the
// request never produced a response.
type Observer interface {
	ObserveRequest(op string, code int, elapsed time.Duration)
}

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the control-plane root. Defaults to DefaultBaseURL.
	BaseURL string

	// Credentials authenticate every call. May be replaced later with
	// SetCredentials.
	Credentials Credentials

	// HTTPClient is used for all requests. Defaults to a client with
	// HTTPTimeout.
	HTTPClient *http.Client

	// Observer receives per-request timings. Optional.
	Observer Observer
}

// Client talks to the studio control-plane API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer

	mu    sync.RWMutex
	creds Credentials
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: HTTPTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		observer:   cfg.Observer,
		creds:      cfg.Credentials,
	}
}

// SetCredentials replaces the credentials used for subsequent calls.
func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()
}

// Credentials returns the credentials currently in use.
func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// ResolveTarget looks up a studio by name in the configured teamspace.
func (c *Client) ResolveTarget(ctx context.Context, name string) (Target, error) {
	creds, err := c.credentials()
	if err != nil {
		return Target{}, err
	}

	query := url.Values{"name": []string{name}}
	path := fmt.Sprintf("/projects/%s/cloudspaces?%s", url.PathEscape(creds.TeamspaceID), query.Encode())

	var list cloudspaceList
	if err := c.do(ctx, OpResolve, creds, http.MethodGet, path, nil, &list); err != nil {
		return Target{}, err
	}

	// The listing is already filtered by name. An exact match wins, otherwise
	// the first entry the server returned is used.
	var first *cloudspace
	for i, cs := range list.Cloudspaces {
		if cs.ID == "" {
			continue
		}
		if strings.EqualFold(cs.Name, name) || strings.EqualFold(cs.DisplayName, name) {
			return Target{ID: cs.ID, Name: displayName(cs, name)}, nil
		}
		if first == nil {
			first = &list.Cloudspaces[i]
		}
	}
	if first != nil {
		return Target{ID: first.ID, Name: displayName(*first, name)}, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func displayName(cs cloudspace, fallback string) string {
	if cs.DisplayName != "" {
		return cs.DisplayName
	}
	if cs.Name != "" {
		return cs.Name
	}
	return fallback
}

// GetStatus fetches the status document of target and normalizes it.
func (c *Client) GetStatus(ctx context.Context, target Target) (Status, error) {
	creds, err := c.credentials()
	if err != nil {
		return StatusUnknown, err
	}

	var doc CodeStatus
	if err := c.do(ctx, OpStatus, creds, http.MethodGet, c.cloudspacePath(creds, target, "codestatus"), nil, &doc); err != nil {
		return StatusUnknown, err
	}
	return NormalizeStatus(doc), nil
}

// GetMachine returns the compute type currently assigned to target.
func (c *Client) GetMachine(ctx context.Context, target Target) (Machine, error) {
	creds, err := c.credentials()
	if err != nil {
		return "", err
	}

	var cfg codeConfig
	if err := c.do(ctx, OpMachine, creds, http.MethodGet, c.cloudspacePath(creds, target, "codeconfig"), nil, &cfg); err != nil {
		return "", err
	}
	if cfg.ComputeConfig == nil || cfg.ComputeConfig.Name == "" {
		return "", &RemoteError{Message: "compute config missing from response"}
	}
	return Machine(cfg.ComputeConfig.Name), nil
}

// SwitchMachine assigns a new compute type to target. It never requests
// spot capacity.
func (c *Client) SwitchMachine(ctx context.Context, target Target, machine Machine) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}
	body := codeConfig{ComputeConfig: &computeConfig{Name: string(machine), Spot: false}}
	return c.do(ctx, OpSwitch, creds, http.MethodPut, c.cloudspacePath(creds, target, "codeconfig"), body, nil)
}

// Start requests target to start on the given compute type, non-spot.
func (c *Client) Start(ctx context.Context, target Target, machine Machine) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}
	body := codeConfig{ComputeConfig: &computeConfig{Name: string(machine), Spot: false}}
	return c.do(ctx, OpStart, creds, http.MethodPost, c.cloudspacePath(creds, target, "start"), body, nil)
}

// Stop requests target to stop.
func (c *Client) Stop(ctx context.Context, target Target) error {
	creds, err := c.credentials()
	if err != nil {
		return err
	}
	return c.do(ctx, OpStop, creds, http.MethodPost, c.cloudspacePath(creds, target, "stop"), struct{}{}, nil)
}

// credentials returns a validated copy of the current credentials.
func (c *Client) credentials() (Credentials, error) {
	creds := c.Credentials()
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c *Client) cloudspacePath(creds Credentials, target Target, action string) string {
	return fmt.Sprintf("/projects/%s/cloudspaces/%s/%s",
		url.PathEscape(creds.TeamspaceID), url.PathEscape(target.ID), action)
}

// do performs one authenticated request. A nil body sends no payload; a
// nil out discards the response body.
func (c *Client) do(ctx context.Context, op string, creds Credentials, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reqBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.SetBasicAuth(creds.UserID, creds.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, 0, started)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	c.observe(op, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Code: resp.StatusCode, Message: fmt.Sprintf("decode %s response: %v", op, err)}
	}
	return nil
}

func (c *Client) observe(op string, code int, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(op, code, time.Since(started))
	}
}

// decodeError builds a RemoteError, preferring the body's message field.
func decodeError(resp *http.Response) error {
	message := fmt.Sprintf("request failed with status %d", resp.StatusCode)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed errorBody
	if len(data) > 0 && json.Unmarshal(data, &parsed) == nil && parsed.Message != "" {
		message = parsed.Message
	}
	return &RemoteError{Code: resp.StatusCode, Message: message}
}
