package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/xcontext"
)

type Client interface {
	Header(name, value string) Client
	Headers(headers map[string]string) Client
	Query(query Parameter) Client
	Body(body Body) Client
	Do(ctx context.Context, method string, opts ...Opt) (*Response, error)
	GET(ctx context.Context, opts ...Opt) (*Response, error)
	POST(ctx context.Context, opts ...Opt) (*Response, error)
	PUT(ctx context.Context, opts ...Opt) (*Response, error)
	PATCH(ctx context.Context, opts ...Opt) (*Response, error)
	DELETE(ctx context.Context, opts ...Opt) (*Response, error)
}

type Generator interface {
	New(path string, args ...any) Client
}

type defaultGenerator struct {
	baseURL string
}

// NewGenerator returns a Generator whose clients call baseURL + path.
func NewGenerator(baseURL string) *defaultGenerator {
	return &defaultGenerator{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (g *defaultGenerator) New(path string, args ...any) Client {
	if len(args) > 0 {
		path = fmt.Sprintf(path, args...)
	}

	return &defaultClient{
		baseURL: g.baseURL,
		path:    path,
		headers: make(http.Header),
	}
}

type Opt interface {
	Do(defaultClient, *http.Request)
}

type defaultClient struct {
	baseURL string
	method  string
	path    string
	headers http.Header
	query   Parameter
	body    Body
}

func (c *defaultClient) Header(name, value string) Client {
	if value == "" {
		return c
	}

	c.headers.Set(name, value)
	return c
}

// Headers merges extra headers. Entries with an empty value are skipped.
func (c *defaultClient) Headers(headers map[string]string) Client {
	for name, value := range headers {
		c.Header(name, value)
	}

	return c
}

func (c *defaultClient) Query(query Parameter) Client {
	c.query = query
	return c
}

func (c *defaultClient) Body(body Body) Client {
	c.body = body
	return c
}

func (c *defaultClient) GET(ctx context.Context, opts ...Opt) (*Response, error) {
	return c.Do(ctx, http.MethodGet, opts...)
}

func (c *defaultClient) POST(ctx context.Context, opts ...Opt) (*Response, error) {
	return c.Do(ctx, http.MethodPost, opts...)
}

func (c *defaultClient) PUT(ctx context.Context, opts ...Opt) (*Response, error) {
	return c.Do(ctx, http.MethodPut, opts...)
}

func (c *defaultClient) PATCH(ctx context.Context, opts ...Opt) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, opts...)
}

func (c *defaultClient) DELETE(ctx context.Context, opts ...Opt) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, opts...)
}

// Do sends the request once. A transport failure is returned as is, a non-2xx
// status as *StatusError carrying the decoded payload.
func (c *defaultClient) Do(ctx context.Context, method string, opts ...Opt) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	c.method = method

	var reader io.Reader
	contentType := ContentTypeJSON
	if c.body != nil {
		r, bodyType, err := c.body.ToReader()
		if err != nil {
			return nil, err
		}

		reader = r
		// A multipart body owns its Content-Type (boundary included) and may
		// leave it empty; never overwrite it here.
		if c.body.Multipart() || bodyType != "" {
			contentType = bodyType
		}
	}

	url := c.baseURL + c.path
	if len(c.query) > 0 {
		url = url + "?" + c.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, c.method, url, reader)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for h, values := range c.headers {
		req.Header.Del(h)
		for _, v := range values {
			req.Header.Add(h, v)
		}
	}

	for _, opt := range opts {
		opt.Do(*c, req)
	}

	result, err := xcontext.HTTPClient(ctx).Do(req)
	if err != nil {
		xcontext.Logger(ctx).Warnf("An error occurred when calling %s %s: %v", c.method, url, err)
		return nil, fmt.Errorf("call %s %s: %w", c.method, c.path, err)
	}
	defer result.Body.Close()

	raw, err := io.ReadAll(result.Body)
	if err != nil {
		xcontext.Logger(ctx).Warnf("An error occurred when reading body of %s: %v", url, err)
		return nil, fmt.Errorf("read body of %s: %w", c.path, err)
	}

	response := &Response{
		Code:    result.StatusCode,
		Header:  result.Header,
		RawBody: raw,
	}

	if strings.Contains(result.Header.Get("Content-Type"), ContentTypeJSON) {
		if len(raw) > 0 {
			var payload any
			if err := json.Unmarshal(raw, &payload); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot parse JSON body of %s: %v", url, err)
				return nil, errorx.New(errorx.BadResponse, "invalid JSON body from %s: %v", c.path, err)
			}
			response.Body = payload
		}
	} else {
		response.Body = string(raw)
	}

	if !response.OK() {
		return nil, &StatusError{Code: response.Code, Payload: response.Body}
	}

	return response, nil
}
