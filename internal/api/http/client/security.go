package client

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// SecurityLayer builds the transport used to reach the backend.
type SecurityLayer interface {
	Transport() (http.RoundTripper, error)
}

// TLSLayer trusts an extra CA bundle and optionally presents a client
// certificate.
type TLSLayer struct {
	caFileName         string
	certFileName       string
	privateKeyFileName string
}

// NewTLSLayer creates a TLSLayer. Empty file names are skipped; the client
// certificate is used only when both its files are set.
func NewTLSLayer(caFileName, certFileName, privateKeyFileName string) *TLSLayer {
	return &TLSLayer{
		caFileName:         caFileName,
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// Transport returns an HTTP transport configured with the TLS material.
func (l *TLSLayer) Transport() (http.RoundTripper, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if l.caFileName != "" {
		pem, err := os.ReadFile(l.caFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", l.caFileName)
		}
		tlsConfig.RootCAs = pool
	}

	if l.certFileName != "" && l.privateKeyFileName != "" {
		cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return transport, nil
}

// PlainLayer uses the default transport.
type PlainLayer struct{}

// NewPlainLayer creates a PlainLayer.
func NewPlainLayer() *PlainLayer {
	return &PlainLayer{}
}

// Transport returns a clone of the default transport.
func (l *PlainLayer) Transport() (http.RoundTripper, error) {
	return http.DefaultTransport.(*http.Transport).Clone(), nil
}
