package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ghaggin/part11/internal/config"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"
	contentTypeXML  = "text/xml;charset=UTF-8"
	requestIDHeader = "X-Request-ID"
)

// TokenSource yields the bearer token for outbound calls, or "" when there
// is no session.
type TokenSource interface {
	AccessToken() string
}

type Options struct {
	Method  string
	Body    any
	Headers map[string]string
}

type Gateway struct {
	log    *zap.Logger
	client *http.Client
	tokens TokenSource

	mu      sync.RWMutex
	baseURL string
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config *config.Config
	Tokens TokenSource
	Client *http.Client `optional:"true"`
}

func New(p Params) *Gateway {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: p.Config.API.RequestTimeout}
	}

	return &Gateway{
		log:     p.Log,
		client:  client,
		tokens:  p.Tokens,
		baseURL: trimBase(p.Config.API.URL),
	}
}

func trimBase(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func (g *Gateway) BaseURL() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.baseURL
}

func (g *Gateway) SetBaseURL(u string) {
	g.mu.Lock()
	g.baseURL = trimBase(u)
	g.mu.Unlock()
}

// Issue performs a JSON call against endpoint (relative to the base URL).
// It never fails: transport errors, non-2xx responses and unparseable bodies
// are all reported through the Result.
func (g *Gateway) Issue(ctx context.Context, endpoint string, opts Options) Result {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return Result{Err: err.Error()}
	}

	headers := map[string]string{"Content-Type": contentTypeJSON}
	if token := g.token(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	resp, err := g.do(ctx, method, endpoint, body, headers)
	if err != nil {
		return Result{Err: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	var data any
	if err != nil || json.Unmarshal(raw, &data) != nil || data == nil {
		data = map[string]any{}
	}

	return Result{
		OK:     isSuccess(resp.StatusCode),
		Status: resp.StatusCode,
		Data:   data,
	}
}

// PostXML posts a SOAP envelope. The bearer token is never attached.
func (g *Gateway) PostXML(ctx context.Context, path string, envelope string, headers map[string]string) TextResult {
	h := map[string]string{"Content-Type": contentTypeXML}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := g.do(ctx, http.MethodPost, path, strings.NewReader(envelope), h)
	if err != nil {
		return TextResult{Err: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TextResult{Status: resp.StatusCode, Err: err.Error()}
	}

	return TextResult{
		OK:     isSuccess(resp.StatusCode),
		Status: resp.StatusCode,
		Body:   string(raw),
	}
}

func (g *Gateway) do(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string) (*http.Response, error) {
	url := g.BaseURL() + endpoint

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug("request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, err
	}

	g.log.Debug("request complete",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (g *Gateway) token() string {
	if g.tokens == nil {
		return ""
	}
	return g.tokens.AccessToken()
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(raw), nil
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
