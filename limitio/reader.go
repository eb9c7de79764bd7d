package limitio

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

type Reader struct {
	source  io.Reader
	limiter *rate.Limiter
}

// NewReader returns a reader that implements io.Reader with rate limiting.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		source: r,
	}
}

// SetRateLimit sets rate limit (bytes/sec) to the reader.
func (s *Reader) SetRateLimit(bytesPerSec float64, burst int) {
	s.limiter = newLimiter(bytesPerSec, burst)
}

// Read never reads more than one burst at a time, then waits for the bytes actually read.
func (s *Reader) Read(p []byte) (int, error) {
	if s.limiter == nil {
		return s.source.Read(p)
	}
	if len(p) > s.limiter.Burst() {
		p = p[:s.limiter.Burst()]
	}
	n, err := s.source.Read(p)
	if n > 0 {
		if waitErr := wait(context.Background(), s.limiter, n); waitErr != nil && err == nil {
			err = waitErr
		}
	}
	return n, err
}
