package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghaggin/part11/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestGateway(url string, tokens TokenSource) *Gateway {
	cfg := config.Default()
	cfg.API.URL = url
	cfg.API.RequestTimeout = 2 * time.Second
	return New(Params{Log: zap.NewNop(), Config: cfg, Tokens: tokens})
}

func TestIssue_success(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var got *http.Request
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success":true,"accessToken":"abc","users":[1,2,3]}`))
	}))
	defer srv.Close()

	g := newTestGateway(srv.URL+"/", nil)
	res := g.Issue(context.Background(), "/api/auth/login", Options{
		Method: http.MethodPost,
		Body:   map[string]string{"username": "root", "password": "pw"},
	})

	require.NotNil(got)
	assert.True(res.OK)
	assert.Equal(http.StatusOK, res.Status)
	assert.Empty(res.Err)
	assert.True(res.Bool("success"))
	assert.Equal("abc", res.String("accessToken"))
	assert.Equal(3, res.Count("users"))

	assert.Equal(http.MethodPost, got.Method)
	assert.Equal("/api/auth/login", got.URL.Path)
	assert.Equal("application/json", got.Header.Get("Content-Type"))
	assert.Empty(got.Header.Get("Authorization"))
	assert.NotEmpty(got.Header.Get("X-Request-ID"))
	assert.Equal("root", gotBody["username"])
}

func TestIssue_bearerOnlyWithToken(t *testing.T) {
	assert := assert.New(t)

	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	newTestGateway(srv.URL, staticToken("tok")).Issue(context.Background(), "/api/users", Options{})
	newTestGateway(srv.URL, staticToken("")).Issue(context.Background(), "/api/users", Options{})

	assert.Equal([]string{"Bearer tok", ""}, auth)
}

func TestIssue_callerHeadersOverrideDefaults(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	newTestGateway(srv.URL, nil).Issue(context.Background(), "/x", Options{
		Headers: map[string]string{"Content-Type": "text/plain"},
	})
	assert.Equal(t, "text/plain", contentType)
}

func TestIssue_non2xxIsNotTransportFailure(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"admin role required"}`))
	}))
	defer srv.Close()

	res := newTestGateway(srv.URL, nil).Issue(context.Background(), "/api/users/admin-only-test", Options{})
	assert.False(res.OK)
	assert.Equal(http.StatusForbidden, res.Status)
	assert.Empty(res.Err)
	assert.Equal("admin role required", res.Message())
	assert.Equal("admin role required", res.Describe())
}

func TestIssue_malformedBodyBecomesEmptyObject(t *testing.T) {
	assert := assert.New(t)

	for _, body := range []string{"<html>oops</html>", "", "null"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		res := newTestGateway(srv.URL, nil).Issue(context.Background(), "/health", Options{})
		assert.True(res.OK, body)
		assert.Equal(map[string]any{}, res.Data, body)
		srv.Close()
	}
}

func TestIssue_arrayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()

	res := newTestGateway(srv.URL, nil).Issue(context.Background(), "/api/audit?limit=20", Options{})
	assert.True(t, res.OK)
	assert.Equal(t, 2, res.Count("studies"))
	assert.Equal(t, "", res.Message())
}

func TestIssue_transportFailure(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newTestGateway(url, nil).Issue(context.Background(), "/health", Options{})
	assert.False(res.OK)
	assert.Equal(0, res.Status)
	assert.NotEmpty(res.Err)
	assert.Nil(res.Data)
	assert.Equal(res.Err, res.Describe())
}

func TestIssue_unencodableBody(t *testing.T) {
	res := newTestGateway("http://127.0.0.1:1", nil).Issue(context.Background(), "/x", Options{
		Method: http.MethodPost,
		Body:   map[string]any{"bad": make(chan int)},
	})
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Status)
	assert.NotEmpty(t, res.Err)
}

func TestPostXML(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	var got *http.Request
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<soap:Fault/>"))
	}))
	defer srv.Close()

	g := newTestGateway(srv.URL, staticToken("tok"))
	res := g.PostXML(context.Background(), "/LibreClinica/ws/study/v1", "<env/>", map[string]string{"SOAPAction": `""`})

	require.NotNil(got)
	assert.False(res.OK)
	assert.Equal(http.StatusInternalServerError, res.Status)
	assert.Equal("<soap:Fault/>", res.Body)
	assert.Equal("<env/>", body)
	assert.Equal("text/xml;charset=UTF-8", got.Header.Get("Content-Type"))
	assert.Equal(`""`, got.Header.Get("SOAPAction"))
	assert.Empty(got.Header.Get("Authorization"))
}

func TestSetBaseURL(t *testing.T) {
	g := newTestGateway("http://a:1", nil)
	g.SetBaseURL(" http://b:2/// ")
	assert.Equal(t, "http://b:2", g.BaseURL())
}

func TestResult_decodeAndPretty(t *testing.T) {
	require := require.New(t)

	res := Result{OK: true, Status: 200, Data: map[string]any{"status": "UP"}}
	var out struct {
		Status string `json:"status"`
	}
	require.NoError(res.Decode(&out))
	require.Equal("UP", out.Status)
	require.Equal("{\n  \"status\": \"UP\"\n}", res.Pretty())
}

func TestResult_stringFormatsNumbers(t *testing.T) {
	assert := assert.New(t)

	res := Result{Data: map[string]any{
		"id":    float64(1000000),
		"big":   float64(12345678),
		"ratio": 0.5,
		"ok":    true,
	}}

	assert.Equal("1000000", res.String("id"))
	assert.Equal("12345678", res.String("big"))
	assert.Equal("0.5", res.String("ratio"))
	assert.Equal("true", res.String("ok"))
	assert.Equal("", res.String("missing"))
}
