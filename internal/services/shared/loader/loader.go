package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/dragon.arena/internal/platform/errors"
	"github.com/louisbranch/dragon.arena/internal/platform/requestctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	// EnvAPIURL names the environment variable holding the API base URL.
	EnvAPIURL = "DRAGON_ARENA_API_URL"
	// DefaultOrigin is used when no base URL is configured.
	DefaultOrigin = "http://localhost:3000"

	fallbackErrorMessage = "network response was not ok"
	jsonContentType      = "application/json"
	tracerName           = "github.com/louisbranch/dragon.arena/internal/services/shared/loader"
)

// EnvBaseURL reads EnvAPIURL from the process environment. It is evaluated
// on every request, so changes to the environment apply to the next call.
func EnvBaseURL() string {
	return os.Getenv(EnvAPIURL)
}

// Config configures a Loader.
type Config struct {
	// BaseURL returns the prefix joined with every endpoint. It is called
	// per request. Nil means EnvBaseURL.
	BaseURL func() string
	// Origin is the fallback prefix when BaseURL returns an empty string.
	Origin string
	// Client performs requests. Nil means a client with a fresh cookie jar.
	Client *http.Client
	// Cache receives successful GET results. Nil means a private cache.
	Cache *Cache
	// BearerToken is sent as an Authorization header unless the request
	// already sets one. The loader never inspects it.
	BearerToken string
	// Coalesce shares one in-flight network call between concurrent GETs
	// for the same endpoint.
	Coalesce bool
	// Timeout bounds each network call. Zero leaves the transport defaults.
	Timeout time.Duration
	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider
}

// Loader performs requests and caches successful GET results.
type Loader struct {
	baseURL     func() string
	origin      string
	client      *http.Client
	anonClient  *http.Client
	cache       *Cache
	bearerToken string
	coalesce    bool
	timeout     time.Duration
	tracer      trace.Tracer
	inflight    singleflight.Group
}

// New builds a Loader from cfg.
func New(cfg Config) *Loader {
	baseURL := cfg.BaseURL
	if baseURL == nil {
		baseURL = EnvBaseURL
	}
	origin := strings.TrimSpace(cfg.Origin)
	if origin == "" {
		origin = DefaultOrigin
	}
	client := cfg.Client
	if client == nil {
		jar, _ := cookiejar.New(nil)
		client = &http.Client{Jar: jar}
	}
	anonClient := *client
	anonClient.Jar = nil

	cache := cfg.Cache
	if cache == nil {
		cache = NewCache()
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Loader{
		baseURL:     baseURL,
		origin:      origin,
		client:      client,
		anonClient:  &anonClient,
		cache:       cache,
		bearerToken: strings.TrimSpace(cfg.BearerToken),
		coalesce:    cfg.Coalesce,
		timeout:     cfg.Timeout,
		tracer:      tp.Tracer(tracerName),
	}
}

// Cache returns the cache shared by this loader.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// URL returns the absolute URL endpoint resolves to right now.
func (l *Loader) URL(endpoint string) string {
	base := l.baseURL()
	if strings.TrimSpace(base) == "" {
		base = l.origin
	}
	return base + endpoint
}

// Get loads endpoint with default options.
func (l *Loader) Get(ctx context.Context, endpoint string) (any, error) {
	return l.Load(ctx, endpoint, Options{})
}

// Load performs the request described by opts against endpoint.
//
// A GET whose endpoint is already cached returns the cached value without
// any I/O. The returned value is a decoded JSON value (map[string]any,
// []any, string, float64, bool or nil) when the response declares
// application/json, and the body as a string otherwise. Cached values are
// shared between callers and must not be mutated.
func (l *Loader) Load(ctx context.Context, endpoint string, opts Options) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := opts.method()
	if method != http.MethodGet {
		return l.fetch(ctx, endpoint, method, opts)
	}

	if value, ok := l.cache.Get(endpoint); ok {
		return value, nil
	}
	if !l.coalesce {
		return l.fetchAndStore(ctx, endpoint, opts)
	}
	// The shared fetch outlives any single caller; each caller stops
	// waiting on its own ctx. l.timeout still bounds the fetch.
	shared := context.WithoutCancel(ctx)
	flight := l.inflight.DoChan(endpoint, func() (any, error) {
		if value, ok := l.cache.Get(endpoint); ok {
			return value, nil
		}
		return l.fetchAndStore(shared, endpoint, opts)
	})
	select {
	case result := <-flight:
		return result.Val, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) fetchAndStore(ctx context.Context, endpoint string, opts Options) (any, error) {
	value, err := l.fetch(ctx, endpoint, http.MethodGet, opts)
	if err != nil {
		return nil, err
	}
	l.cache.Put(endpoint, value)
	return value, nil
}

func (l *Loader) fetch(ctx context.Context, endpoint string, method string, opts Options) (any, error) {
	ctx, span := l.tracer.Start(ctx, "loader "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("loader.endpoint", endpoint),
		),
	)
	defer span.End()

	value, status, err := l.roundTrip(ctx, endpoint, method, opts)
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.GetCode(err)))
		return nil, err
	}
	return value, nil
}

func (l *Loader) roundTrip(ctx context.Context, endpoint string, method string, opts Options) (any, int, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	target := l.URL(endpoint)
	body, err := requestBody(opts)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeLoaderRequest, fmt.Sprintf("encode request body: %v", err), err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeLoaderRequest, fmt.Sprintf("build request: %v", err), err)
	}
	for key, values := range opts.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if opts.JSON != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", jsonContentType)
	}
	if l.bearerToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+l.bearerToken)
	}
	if requestID := requestctx.RequestIDFromContext(ctx); requestID != "" && req.Header.Get(requestctx.HeaderRequestID) == "" {
		req.Header.Set(requestctx.HeaderRequestID, requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := l.clientFor(req.URL, opts.credentials()).Do(req)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.CodeLoaderTransport, transportMessage(err), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, apperrors.Wrap(apperrors.CodeLoaderTransport, transportMessage(err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := string(data)
		if strings.TrimSpace(message) == "" {
			message = fallbackErrorMessage
		}
		return nil, resp.StatusCode, apperrors.WithMetadata(apperrors.CodeLoaderApplication, message, map[string]string{
			apperrors.MetadataStatus:   strconv.Itoa(resp.StatusCode),
			apperrors.MetadataEndpoint: endpoint,
		})
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), jsonContentType) {
		return string(data), resp.StatusCode, nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, resp.StatusCode, apperrors.WrapWithMetadata(
			apperrors.CodeLoaderDecode,
			fmt.Sprintf("decode %s: %v", endpoint, err),
			map[string]string{apperrors.MetadataEndpoint: endpoint},
			err,
		)
	}
	return value, resp.StatusCode, nil
}

func (l *Loader) clientFor(target *url.URL, credentials Credentials) *http.Client {
	switch credentials {
	case CredentialsOmit:
		return l.anonClient
	case CredentialsSameOrigin:
		origin, err := url.Parse(l.origin)
		if err != nil || target == nil || !strings.EqualFold(origin.Host, target.Host) {
			return l.anonClient
		}
		return l.client
	default:
		return l.client
	}
}

func requestBody(opts Options) (io.Reader, error) {
	if opts.JSON == nil {
		return opts.Body, nil
	}
	data, err := json.Marshal(opts.JSON)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// transportMessage strips the method and URL prefix net/http adds, leaving
// the transport's own message.
func transportMessage(err error) string {
	if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
