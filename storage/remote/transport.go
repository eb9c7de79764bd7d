package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/limitio"
)

const defaultDialTimeout = 30 * time.Second

// Dial opens the byte stream to the server. The stream is encrypted with TLS when the
// configuration asks for implicit TLS; plain and STARTTLS connections start unencrypted.
func Dial(ctx context.Context, cfg Config) (net.Conn, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", lib.ErrConnection, cfg.ServerURL, err)
	}

	if cfg.Security() == SecurityTLS {
		tlsConn := tls.Client(conn, tlsConfig(cfg))
		handshakeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := tlsConn.HandshakeContext(handshakeCtx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%w with %s: %v", lib.ErrSecurityHandshake, cfg.ServerURL, err)
		}
		conn = tlsConn
	}

	if cfg.RateLimit > 0 {
		conn = limitio.NewConn(conn, cfg.RateLimit)
	}
	return conn, nil
}

func tlsConfig(cfg Config) *tls.Config {
	host, _, err := net.SplitHostPort(cfg.ServerURL)
	if err != nil {
		host = cfg.ServerURL
	}
	return &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: cfg.SkipTLSVerification, //nolint:gosec
		MinVersion:         tls.VersionTLS12,
	}
}
