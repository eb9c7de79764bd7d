package limitio

import "net"

// DefaultBurst is the burst size used when none is specified
const DefaultBurst = 32 * 1024

// Conn is a net.Conn with a rate limit applied to each direction
type Conn struct {
	net.Conn
	reader *Reader
	writer *Writer
}

// NewConn limits the connection to bytesPerSec in each direction.
func NewConn(conn net.Conn, bytesPerSec float64) *Conn {
	reader := NewReader(conn)
	reader.SetRateLimit(bytesPerSec, DefaultBurst)
	writer := NewWriter(conn)
	writer.SetRateLimit(bytesPerSec, DefaultBurst)
	return &Conn{
		Conn:   conn,
		reader: reader,
		writer: writer,
	}
}

func (c *Conn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *Conn) Write(p []byte) (int, error) {
	return c.writer.Write(p)
}
