package core

import (
	"context"
	"crypto/tls"
	"fmt"
	"learnwatch/lib/restyutil"
	"learnwatch/lib/telemetry"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var tracer = otel.Tracer("learnwatch/learn/core")

const DefaultBaseUrl = "https://learn.tsinghua.edu.cn"

const (
	userAgent      = "Mozilla/4.0 (compatible; MSIE 6.0; Windows NT 5.1; )"
	acceptEncoding = "gzip, deflate"
	acceptCharset  = "GB2312,utf-8"
	maxRedirects   = 16
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	legacy  encoding.Encoding
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl, only tests point it elsewhere
	BaseUrl string
	// defaults to 10 seconds
	Timeout time.Duration
	// htmlindex name of the encoding used for every response that does not
	// declare utf-8, defaults to gbk
	LegacyEncoding string
	// if set, every http exchange is written to it
	Dump restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.LegacyEncoding == "" {
		opts.LegacyEncoding = "gbk"
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	legacy, err := htmlindex.Get(opts.LegacyEncoding)
	if err != nil {
		return nil, fmt.Errorf("unknown legacy encoding %q: %w", opts.LegacyEncoding, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept-Encoding", acceptEncoding)
	// redirects are followed by hand in follow() so every hop goes through
	// the same request path and cookie jar
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	// INTENTIONAL TRUST DOWNGRADE: the site has never served a complete
	// certificate chain, so certificate validation is off. This applies to
	// this client's own transport only, never to http.DefaultTransport.
	client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})

	telemetry.InstrumentResty(client, "learnwatch/learn/http")
	restyutil.InstrumentClient(client, opts.Dump)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		legacy:  legacy,
	}, nil
}

func (c *Client) resolve(endpoint string) (string, error) {
	target, err := c.BaseUrl.Parse(endpoint)
	if err != nil {
		return "", err
	}
	return target.String(), nil
}

// MainPageUrl is the landing page a browser shell shows after a check.
func (c *Client) MainPageUrl() string {
	target, _ := c.resolve("/MultiLanguage/lesson/student/MyCourse.jsp?language=cn")
	return target
}

// Cookies returns the session cookies the site has set so far.
func (c *Client) Cookies() []*http.Cookie {
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return nil
	}
	return jar.Cookies(c.BaseUrl)
}

func (c *Client) do(ctx context.Context, method, target, form string, text bool) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx)
	if text {
		req.SetHeader("Accept-Charset", acceptCharset)
	}
	if method == http.MethodPost {
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
		req.SetBody(form)
	}

	res, err := req.Execute(method, target)
	if err != nil {
		return nil, &TransportError{Method: method, Url: target, Err: err}
	}
	if res.StatusCode() >= 400 {
		return nil, &TransportError{Method: method, Url: target, StatusCode: res.StatusCode()}
	}
	return res, nil
}

func redirectTarget(res *resty.Response) (string, bool) {
	switch res.StatusCode() {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
	default:
		return "", false
	}
	if res.RawResponse == nil {
		return "", false
	}
	location, err := res.RawResponse.Location()
	if err != nil {
		return "", false
	}
	return location.String(), true
}

// follow issues a GET and re-issues it against the server assigned uri
// until the response uri matches the requested one.
func (c *Client) follow(ctx context.Context, target string, text bool) (*resty.Response, error) {
	span := trace.SpanFromContext(ctx)

	for hops := 0; hops <= maxRedirects; hops++ {
		res, err := c.do(ctx, http.MethodGet, target, "", text)
		if err != nil {
			return nil, err
		}
		next, ok := redirectTarget(res)
		if !ok || next == target {
			return res, nil
		}
		span.AddEvent("redirect", trace.WithAttributes(
			attribute.String("from", target),
			attribute.String("to", next),
		))
		target = next
	}
	return nil, &TransportError{Method: http.MethodGet, Url: target, Err: ErrTooManyRedirects}
}

func (c *Client) body(res *resty.Response) ([]byte, error) {
	body, err := decompress(res.Header().Get("Content-Encoding"), res.Body())
	if err != nil {
		return nil, &TransportError{
			Method: res.Request.Method,
			Url:    res.Request.URL,
			Err:    fmt.Errorf("failed to decompress body: %w", err),
		}
	}
	return body, nil
}

func (c *Client) text(res *resty.Response) (string, error) {
	body, err := c.body(res)
	if err != nil {
		return "", err
	}
	text, err := decodeText(res.Header().Get("Content-Type"), body, c.legacy)
	if err != nil {
		return "", &TransportError{
			Method: res.Request.Method,
			Url:    res.Request.URL,
			Err:    fmt.Errorf("failed to decode body: %w", err),
		}
	}
	return text, nil
}

// Get fetches the raw (decompressed) body of an endpoint.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:Get")
	defer span.End()

	target, err := c.resolve(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve endpoint")
		return nil, err
	}
	span.SetAttributes(attribute.String("url", target))

	res, err := c.follow(ctx, target, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	return c.body(res)
}

// GetText fetches an endpoint and decodes it to a string.
func (c *Client) GetText(ctx context.Context, endpoint string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:GetText")
	defer span.End()

	target, err := c.resolve(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve endpoint")
		return "", err
	}
	span.SetAttributes(attribute.String("url", target))

	res, err := c.follow(ctx, target, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return "", err
	}
	return c.text(res)
}

// PostText posts a urlencoded form and decodes the answer. A redirect in
// response to the post is followed with a GET, like a browser would.
func (c *Client) PostText(ctx context.Context, endpoint, form string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:PostText")
	defer span.End()

	target, err := c.resolve(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve endpoint")
		return "", err
	}
	span.SetAttributes(attribute.String("url", target))

	res, err := c.do(ctx, http.MethodPost, target, form, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post")
		return "", err
	}
	if next, ok := redirectTarget(res); ok {
		res, err = c.follow(ctx, next, true)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to follow post redirect")
			return "", err
		}
	}
	return c.text(res)
}
