package lib

import (
	"math/rand"
	"time"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

// NewToken returns a random 16 bits value, used to make maildir file names unique
func NewToken() uint16 {
	return uint16(rand.Uint32())
}
