package adapters

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"dht-to-mqtt/application"
)

// NewTLSConfig turns the pass-through TLS options from the config file into a
// tls.Config for the MQTT transport. Certificate validity is left to the TLS
// handshake.
func NewTLSConfig(params application.TLSConfig) (*tls.Config, error) {
	cfg := &tls.Config{InsecureSkipVerify: params.InsecureSkipVerify}

	if params.CAFile != "" {
		pem, err := os.ReadFile(params.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", params.CAFile)
		}
		cfg.RootCAs = pool
	}

	if params.CertFile != "" || params.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(params.CertFile, params.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}
