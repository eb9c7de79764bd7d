package remote

import (
	"time"

	"github.com/creativeprojects/anthill/lib"
)

type Config struct {
	ServerURL           string
	Username            string
	Password            string
	Mailbox             string
	TLS                 bool
	StartTLS            bool
	SkipTLSVerification bool
	Compress            bool
	// RateLimit in bytes per second, zero means unlimited
	RateLimit   float64
	DialTimeout time.Duration
	DebugLogger lib.Logger
}

// Security is the transport security of the connection
type Security int

const (
	SecurityPlain Security = iota
	SecurityTLS
	SecurityStartTLS
)

func (s Security) String() string {
	switch s {
	case SecurityTLS:
		return "tls"
	case SecurityStartTLS:
		return "starttls"
	default:
		return "plain"
	}
}

// Security returns the transport security selected by the configuration.
// Implicit TLS takes precedence over STARTTLS.
func (c Config) Security() Security {
	if c.TLS {
		return SecurityTLS
	}
	if c.StartTLS {
		return SecurityStartTLS
	}
	return SecurityPlain
}
