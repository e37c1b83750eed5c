// Package api wraps outbound calls to the remote school-management service. It
// owns the base URL, the transport timeout and the bearer credential; screens
// never attach the token themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// TokenSource yields the persisted auth token; an empty token means no session.
// session.Storage satisfies it.
type TokenSource interface {
	Token() (string, error)
}

type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	logger core.Logger
}

func NewClient(conf *core.Config, tokens TokenSource, logger core.Logger) *Client {
	return &Client{
		base:   conf.API.BaseURL,
		http:   &http.Client{Timeout: conf.API.Timeout},
		tokens: tokens,
		logger: logger,
	}
}

// do issues a single attempt; there are no retries or backoff anywhere in the
// client, a failure surfaces immediately to the caller.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &reqBody)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token, err := c.tokens.Token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s: reading response", method, path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return unmarshal(data, out)
}

// getList decodes both paginated ({"results": [...]}) and bare list responses.
func (c *Client) getList(ctx context.Context, path string, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		return unmarshal(page.Results, out)
	}
	return unmarshal(data, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return unmarshal(data, out)
}

func unmarshal(data []byte, out interface{}) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decoding response")
}
