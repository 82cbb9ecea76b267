// Package logware provides a client for the Logware data and hash API.
//
// The client logs in lazily: the first authenticated call posts the
// configured credentials to /users/authenticate, caches the returned bearer
// token, and reuses it until the token TTL elapses or InvalidateToken is
// called.
//
// Example usage:
//
//	client, err := logware.New(logware.Config{
//	    Username:    "ingest",
//	    Password:    os.Getenv("LOGWARE_PASSWORD"),
//	    Environment: "production",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := client.InsertHash(ctx, "9f86d081884c7d65...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Status, res.Location)
package logware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

const authenticatePath = "users/authenticate"

// Client talks to the Logware API.
// Safe for concurrent use, but concurrent calls with no cached token each
// perform their own login.
type Client struct {
	config     Config
	httpClient HTTPDoer
	clock      clock.Clock
	log        logr.Logger

	mu         sync.Mutex
	token      string
	expiry     time.Time // zero for a pre-supplied token
	clearTimer *clock.Timer
	generation uint64 // bumped on every token change
}

// New creates a new logware-client.
// Returns an error if config is invalid.
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:     config,
		httpClient: config.GetHTTPClient(),
		clock:      config.GetClock(),
		log:        config.GetLogger().WithName("logware"),
		token:      config.AuthToken,
	}, nil
}

// Authenticate returns the cached token or logs in to obtain one.
//
// ok is false when login succeeded at the transport level but the response
// carried no token. That is not an error; the caller decides what to do.
// err is only set for transport and encoding failures.
func (c *Client) Authenticate(ctx context.Context) (token string, ok bool, err error) {
	if cached, hit := c.cachedToken(); hit {
		return cached, true, nil
	}

	body, err := json.Marshal(AuthRequest{
		Login:    c.config.GetUsername(),
		Password: c.config.GetPassword(),
	})
	if err != nil {
		return "", false, fmt.Errorf("logware-client: failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(authenticatePath), bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("logware-client: failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.V(1).Info("logging in", "url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(err, "login request failed")
		return "", false, fmt.Errorf("logware-client: failed to authenticate: %w", err)
	}
	defer resp.Body.Close()

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil || authResp.Token == "" {
		c.log.V(1).Info("login returned no token", "status", resp.StatusCode)
		cached, hit := c.cachedToken()
		return cached, hit, nil
	}

	c.storeToken(authResp.Token)
	return authResp.Token, true, nil
}

// Request performs an authenticated call against the API.
//
// For GET, data is sent as query parameters (nil, url.Values,
// map[string]string or map[string]any). For other methods it is sent as a
// JSON body; nil sends no body.
//
// If login yields no token the request is still sent with an empty bearer
// token and the API's answer (usually 401) is returned as the Result.
func (c *Client) Request(ctx context.Context, method, path string, data any) (*Result, error) {
	log := c.log.WithValues("requestID", uuid.NewString(), "method", method, "path", path)

	token, ok, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.V(1).Info("no token available, sending request anyway")
	}

	req, err := c.newRequest(ctx, method, path, data)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error(err, "request failed")
		return nil, fmt.Errorf("logware-client: %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	result := &Result{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
	}

	body, err := io.ReadAll(resp.Body)
	result.Body = jsonBody(body)
	if err != nil {
		log.Error(err, "failed to read response body", "status", resp.StatusCode)
		return result, fmt.Errorf("logware-client: failed to read %s %s response: %w", method, path, err)
	}

	log.V(1).Info("request completed", "status", resp.StatusCode)
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, data any) (*http.Request, error) {
	target := c.endpoint(path)
	var body io.Reader

	if method == http.MethodGet {
		query, err := encodeQuery(data)
		if err != nil {
			return nil, err
		}
		if encoded := query.Encode(); encoded != "" {
			target += "?" + encoded
		}
	} else if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("logware-client: failed to marshal %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("logware-client: failed to build %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) endpoint(path string) string {
	return c.config.GetURL() + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

// storeToken caches token and schedules its clearing, replacing any pending timer.
func (c *Client) storeToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clearTimer != nil {
		c.clearTimer.Stop()
	}
	c.generation++
	generation := c.generation
	ttl := c.config.GetTokenTTL()

	c.token = token
	c.expiry = c.clock.Now().Add(ttl)
	c.clearTimer = c.clock.AfterFunc(ttl, func() { c.expireToken(generation) })
	c.log.V(1).Info("token cached", "ttl", ttl)
}

// expireToken clears the token unless it was replaced after the timer was armed.
func (c *Client) expireToken(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}
	c.generation++
	c.token = ""
	c.expiry = time.Time{}
	c.clearTimer = nil
	c.log.V(1).Info("token expired")
}

// InvalidateToken clears the cached token and cancels its pending expiry.
// The next authenticated call logs in again, so a caller holding a rejected
// token can recover without building a new Client.
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clearTimer != nil {
		c.clearTimer.Stop()
		c.clearTimer = nil
	}
	c.generation++
	c.token = ""
	c.expiry = time.Time{}
}

// TokenExpiry returns when the cached token will be cleared.
// Returns zero time if no token is cached or the token was pre-supplied.
func (c *Client) TokenExpiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiry
}

// HasValidToken returns true if a token is cached.
func (c *Client) HasValidToken() bool {
	_, ok := c.cachedToken()
	return ok
}
