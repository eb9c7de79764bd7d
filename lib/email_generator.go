package lib

import (
	"fmt"
	"math/rand"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyz " +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 " +
	",./;'\\ \" []{}<>?:|!@$%^&*()_+-= " +
	"\r\n\r\n\r\n "

const headers = "From: %s\r\n" +
	"To: %s\r\n" +
	"Subject: A little message, just for you\r\n" +
	"Date: Wed, 11 May 2016 14:31:59 +0000\r\n"

var seededRand *rand.Rand = rand.New(
	rand.NewSource(time.Now().UnixMilli()))

func stringWithCharset(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateEmail returns a plain text message with a random body of up to maxSize bytes.
// The Message-ID header is omitted when messageID is empty.
func GenerateEmail(from, to, messageID string, maxSize int) []byte {
	msg := fmt.Sprintf(headers, from, to)
	if messageID != "" {
		msg += fmt.Sprintf("Message-ID: <%s>\r\n", messageID)
	}
	msg += "Content-Type: text/plain\r\n\r\n"
	length := 1
	if maxSize > 1 {
		length += seededRand.Intn(maxSize)
	}
	return []byte(msg + stringWithCharset(length, charset))
}
