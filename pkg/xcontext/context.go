package xcontext

import (
	"context"
	"net/http"
	"net/http/cookiejar"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/logger"
	"golang.org/x/net/publicsuffix"
)

type (
	loggerKey     struct{}
	httpClientKey struct{}
	configsKey    struct{}
)

var (
	nopLogger         = logger.NewNopLogger()
	defaultHTTPClient = NewHTTPClient()
)

// NewHTTPClient returns a client with a cookie jar so that session cookies set
// by the backend accompany every following request. It sets no timeout; the
// caller bounds requests through the context.
func NewHTTPClient() *http.Client {
	// cookiejar.New only fails on a nil PublicSuffixList misuse, which cannot
	// happen here.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{Jar: jar}
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the logger carried by ctx, or a logger dropping everything.
func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return nopLogger
}

func WithHTTPClient(ctx context.Context, c *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, c)
}

func HTTPClient(ctx context.Context) *http.Client {
	if c, ok := ctx.Value(httpClientKey{}).(*http.Client); ok {
		return c
	}

	return defaultHTTPClient
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}

	return config.Default()
}
