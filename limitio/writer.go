package limitio

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

type Writer struct {
	w       io.Writer
	limiter *rate.Limiter
}

// NewWriter returns a writer that implements io.Writer with rate limiting.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: w,
	}
}

// SetRateLimit sets rate limit (bytes/sec) to the writer.
func (s *Writer) SetRateLimit(bytesPerSec float64, burst int) {
	s.limiter = newLimiter(bytesPerSec, burst)
}

// Write waits for the tokens before writing each chunk of p
func (s *Writer) Write(p []byte) (int, error) {
	if s.limiter == nil {
		return s.w.Write(p)
	}
	written := 0
	for written < len(p) {
		chunk := len(p) - written
		if chunk > s.limiter.Burst() {
			chunk = s.limiter.Burst()
		}
		if err := wait(context.Background(), s.limiter, chunk); err != nil {
			return written, err
		}
		n, err := s.w.Write(p[written : written+chunk])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
