package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/testutil"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestLogging_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		next       roundTripFunc
		wantErr    bool
		wantStatus int
	}{
		{
			name: "success path",
			next: func(r *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "error status passes through",
			next: func(r *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: http.StatusBadRequest, Body: io.NopCloser(strings.NewReader("{}"))}, nil
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "transport error propagates",
			next: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lg := NewLogging(tt.next, testutil.MakeNoopLogger())
			req := httptest.NewRequest(http.MethodPost, "http://api.local/auth/wechat/quick-login", nil)

			resp, err := lg.RoundTrip(req)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestLogging_OmitsQueryString(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogging(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), logger.New(&buf, -4))

	req := httptest.NewRequest(http.MethodGet, "http://api.local/auth/me?token=secret", nil)
	_, err := lg.RoundTrip(req)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "path=/auth/me")
	assert.NotContains(t, buf.String(), "secret")
}
