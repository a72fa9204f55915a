package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/csvpreview/internal/config"
)

// echoRemoteAddr writes the RemoteAddr seen by the handler.
var echoRemoteAddr = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.RemoteAddr))
})

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies ignores headers",
			remoteAddr: "203.0.113.5:1234",
			headers:    map[string]string{"X-Real-IP": "10.0.0.1"},
			want:       "203.0.113.5:1234",
		},
		{
			name:       "trusted proxy X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "trusted proxy first forwarded hop",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"},
			want:       "198.51.100.7",
		},
		{
			name:       "invalid header value kept out",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:5555",
		},
		{
			name:       "untrusted source with bad CIDR config",
			trusted:    []string{"bogus", " "},
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "10.1.2.3:5555",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			TrustedRealIP(tt.trusted)(echoRemoteAddr).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.10:4321"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.RemoteAddr = "192.0.2.10"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(req))
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		cfg        config.SecurityConfig
		key        string
		wantStatus int
		wantCode   string
	}{
		{name: "auth disabled", cfg: config.SecurityConfig{}, wantStatus: http.StatusNoContent},
		{name: "missing key", cfg: config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, wantStatus: http.StatusUnauthorized, wantCode: "AUTH001"},
		{name: "invalid key", cfg: config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, key: "k2", wantStatus: http.StatusForbidden, wantCode: "AUTH002"},
		{name: "second key accepted", cfg: config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, key: "k2", wantStatus: http.StatusNoContent},
		{name: "no keys configured", cfg: config.SecurityConfig{RequireAPIKey: true}, key: "k1", wantStatus: http.StatusForbidden, wantCode: "AUTH002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}

			rec := httptest.NewRecorder()
			APIKeyAuth(&tt.cfg)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), `"code":"`+tt.wantCode+`"`)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestLogger_CapturesStatusAndBytes(t *testing.T) {
	var captured *responseWriter
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK) // ignored
		_, _ = w.Write([]byte("short and stout"))
	})

	rec := httptest.NewRecorder()
	Logger(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, captured.status)
	assert.Equal(t, len("short and stout"), captured.bytes)
	assert.Equal(t, rec, captured.Unwrap())
}
