// Package test runs an in-memory IMAP server for the tests of the other packages
package test

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap/backend/memory"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-imap/server"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

// Credentials accepted by the memory backend
const (
	Username = "username"
	Password = "password"
)

var SampleMessage = "From: contact@example.org\r\n" +
	"To: contact@example.org\r\n" +
	"Subject: A little message, just for you\r\n" +
	"Date: Wed, 11 May 2016 14:31:59 +0000\r\n" +
	"Message-ID: <0000000@localhost/>\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Hi there :)"

type Server struct {
	Addr     string
	server   *server.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// StartServer starts an IMAP server with the memory backend (INBOX holds one seen message).
// The server is stopped at the end of the test.
func StartServer(t *testing.T) *Server {
	t.Helper()

	// Create a new server
	imapServer := server.New(memory.New())
	// Since we will use this server for testing only, we can allow plain text
	// authentication over non-encrypted connections
	imapServer.AllowInsecureAuth = true
	imapServer.Enable(compress.NewExtension())

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)

	s := &Server{
		Addr:     listener.Addr().String(),
		server:   imapServer,
		listener: listener,
	}
	t.Logf("Starting IMAP server at %s", s.Addr)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = imapServer.Serve(listener)
	}()

	t.Cleanup(s.Close)
	return s
}

func (s *Server) Close() {
	_ = s.server.Close()
	s.wg.Wait()
}

// CreateMailbox adds a new mailbox on the server
func (s *Server) CreateMailbox(t *testing.T, name string) {
	t.Helper()
	c := s.login(t)
	defer c.Logout()

	require.NoError(t, c.Create(name))
}

// Append adds a message to an existing mailbox
func (s *Server) Append(t *testing.T, mailbox string, flags []string, body []byte) {
	t.Helper()
	c := s.login(t)
	defer c.Logout()

	require.NoError(t, c.Append(mailbox, flags, time.Now(), bytes.NewBuffer(body)))
}

// UIDs returns all the message uids of the mailbox
func (s *Server) UIDs(t *testing.T, mailbox string) []uint32 {
	t.Helper()
	c := s.login(t)
	defer c.Logout()

	_, err := c.Select(mailbox, true)
	require.NoError(t, err)
	uids, err := c.UidSearch(imap.NewSearchCriteria())
	require.NoError(t, err)
	return uids
}

func (s *Server) login(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.Dial(s.Addr)
	require.NoError(t, err)
	require.NoError(t, c.Login(Username, Password))
	return c
}
