package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/browser-runtime/errors"
	"github.com/wippyai/browser-runtime/eventloop"
	"github.com/wippyai/browser-runtime/js"
)

// Format selects how the response body is exposed to the guest.
type Format string

const (
	FormatJSON        Format = "json"
	FormatText        Format = "text"
	FormatArrayBuffer Format = "array_buffer"
)

// DefaultTimeout bounds a request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes bounds a response body when Config.MaxBytes is zero.
const DefaultMaxBytes int64 = 10 << 20

// Config bounds outgoing requests.
type Config struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration
	// MaxBytes caps the response body size.
	MaxBytes int64
	// AllowHosts restricts request targets when non-empty. Entries match the
	// hostname exactly, or any subdomain when prefixed with a dot.
	AllowHosts []string
}

// Options describe one request, decoded from the guest's options object.
type Options struct {
	Method      string
	Headers     map[string]string
	Body        []byte
	ContentType string
	Format      Format
}

// Client issues requests and settles promises on the event loop.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a client with the given bounds.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	c := &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OptionsFromValue decodes the guest's fetch options object. Undefined and
// null mean defaults (GET, text).
func OptionsFromValue(v js.Value) (Options, error) {
	opts := Options{Method: http.MethodGet, Format: FormatText}
	if v == nil || v.Kind() == js.KindUndefined || v.Kind() == js.KindNull {
		return opts, nil
	}
	obj, ok := v.(*js.Object)
	if !ok {
		return opts, errors.TypeMismatch(errors.PhaseFetch, "options object", v.Kind().String())
	}

	if m, ok := obj.Prop("method"); ok {
		opts.Method = strings.ToUpper(js.ToString(m))
	}
	if ct, ok := obj.Prop("content_type"); ok {
		opts.ContentType = js.ToString(ct)
	}
	if b, ok := obj.Prop("body"); ok {
		opts.Body = []byte(js.ToString(b))
	}
	if f, ok := obj.Prop("response_format"); ok {
		switch Format(js.ToString(f)) {
		case FormatJSON:
			opts.Format = FormatJSON
		case FormatText:
			opts.Format = FormatText
		case FormatArrayBuffer:
			opts.Format = FormatArrayBuffer
		default:
			return opts, errors.InvalidInput(errors.PhaseFetch, "unknown response_format "+js.ToString(f))
		}
	}
	if h, ok := obj.Prop("headers"); ok {
		hdr, ok := h.(*js.Object)
		if !ok {
			return opts, errors.TypeMismatch(errors.PhaseFetch, "headers object", h.Kind().String())
		}
		opts.Headers = make(map[string]string, hdr.Len())
		for _, k := range hdr.Keys() {
			v, _ := hdr.Prop(k)
			opts.Headers[k] = js.ToString(v)
		}
	}
	return opts, nil
}

// Fetch starts the request and returns the promise it will settle. The
// returned promise is rejected with a string message on any failure, the
// way the guest-facing fetch reports errors.
func (c *Client) Fetch(ctx context.Context, loop *eventloop.Loop, rawURL string, opts Options) *js.Promise {
	p := js.NewPromise(loop.Schedule)

	if err := c.checkTarget(rawURL); err != nil {
		loop.Schedule(func() { p.Reject(js.String(err.Error())) })
		return p
	}

	loop.AsyncBegin()
	go func() {
		defer loop.AsyncDone()
		result, err := c.do(ctx, rawURL, opts)
		loop.Schedule(func() {
			if err != nil {
				c.logger.Debug("fetch failed", zap.String("url", rawURL), zap.Error(err))
				p.Reject(js.String(err.Error()))
				return
			}
			p.Resolve(result)
		})
	}()
	return p
}

func (c *Client) checkTarget(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.InvalidInput(errors.PhaseFetch, "bad url "+rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Unsupported(errors.PhaseFetch, "scheme "+u.Scheme)
	}
	if len(c.cfg.AllowHosts) == 0 {
		return nil
	}
	host := u.Hostname()
	for _, allowed := range c.cfg.AllowHosts {
		if strings.HasPrefix(allowed, ".") {
			if strings.HasSuffix(host, allowed) || host == strings.TrimPrefix(allowed, ".") {
				return nil
			}
		} else if host == allowed {
			return nil
		}
	}
	return errors.Denied(errors.PhaseFetch, "host "+host+" not in allow list")
}

func (c *Client) do(ctx context.Context, rawURL string, opts Options) (js.Value, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidInput, err, "build request")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err, "request "+rawURL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidData, err, "read body")
	}
	if int64(len(data)) > c.cfg.MaxBytes {
		return nil, errors.TooLarge(errors.PhaseFetch, "response body", int64(len(data)), c.cfg.MaxBytes)
	}

	c.logger.Debug("fetch complete",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))

	return decodeBody(opts.Format, data)
}

// decodeBody converts the body per response_format. Non-2xx statuses still
// resolve, matching browser fetch; a parse failure of a json body rejects.
func decodeBody(format Format, data []byte) (js.Value, error) {
	switch format {
	case FormatJSON:
		return js.FromJSON(data)
	case FormatArrayBuffer:
		buf := js.NewObject()
		_ = buf.SetProp("data", js.String(data))
		_ = buf.SetProp("byteLength", js.Number(len(data)))
		return buf, nil
	default:
		return js.String(data), nil
	}
}
