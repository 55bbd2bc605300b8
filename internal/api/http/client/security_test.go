package client

import (
	"context"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerCA(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	caFile := filepath.Join(t.TempDir(), "ca.pem")
	out, err := os.Create(caFile)
	require.NoError(t, err)
	defer out.Close()

	err = pem.Encode(out, &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, err)
	return caFile
}

func TestTLSLayer_TrustsCABundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":0}`)
	}))
	defer srv.Close()

	transport, err := NewTLSLayer(writeServerCA(t, srv), "", "").Transport()
	require.NoError(t, err)

	c, err := New(srv.URL, WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)
	assert.NoError(t, c.Get(context.Background(), "/health", nil))
}

func TestTLSLayer_MissingCA(t *testing.T) {
	_, err := NewTLSLayer("nonexistent.pem", "", "").Transport()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CA bundle")
}

func TestTLSLayer_EmptyCA(t *testing.T) {
	caFile := filepath.Join(t.TempDir(), "empty.pem")
	require.NoError(t, os.WriteFile(caFile, []byte("not a certificate"), 0o600))

	_, err := NewTLSLayer(caFile, "", "").Transport()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no certificates found")
}

func TestTLSLayer_InvalidClientCertificate(t *testing.T) {
	_, err := NewTLSLayer("", "nonexistent.crt", "nonexistent.key").Transport()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load TLS certificate")
}

func TestPlainLayer_Transport(t *testing.T) {
	transport, err := NewPlainLayer().Transport()
	require.NoError(t, err)
	assert.NotNil(t, transport)
}
