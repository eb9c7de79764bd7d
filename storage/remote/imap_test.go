package remote

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage/test"
	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"
)

func newConfig(t *testing.T, server *test.Server, mailboxName string) Config {
	return Config{
		ServerURL:   server.Addr,
		Username:    test.Username,
		Password:    test.Password,
		Mailbox:     mailboxName,
		DialTimeout: 5 * time.Second,
		DebugLogger: lib.NewTestLogger(t, "client"),
	}
}

func TestImapSession(t *testing.T) {
	server := test.StartServer(t)
	server.CreateMailbox(t, "Work")
	server.Append(t, "Work", []string{imap.SeenFlag, imap.FlaggedFlag}, lib.GenerateEmail("a@example.com", "b@example.com", "first@localhost", 1000))
	server.Append(t, "Work", nil, lib.GenerateEmail("a@example.com", "b@example.com", "second@localhost", 1000))
	// no Message-ID: skipped from the listing
	server.Append(t, "Work", []string{imap.AnsweredFlag}, lib.GenerateEmail("a@example.com", "b@example.com", "", 1000))

	session, err := NewImap(context.Background(), newConfig(t, server, "Work"))
	require.NoError(t, err)

	status := session.Status()
	require.NotNil(t, status)
	assert.Equal(t, "Work", status.Name)
	assert.Equal(t, uint32(3), status.Messages)

	messages, err := session.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 2)

	byID := make(map[string]mailbox.Message, len(messages))
	for _, msg := range messages {
		assert.NotZero(t, msg.Uid)
		byID[msg.MessageID] = msg
	}
	require.Contains(t, byID, "<first@localhost>")
	require.Contains(t, byID, "<second@localhost>")
	assert.Equal(t, mailbox.FlagSeen|mailbox.FlagFlagged, byID["<first@localhost>"].Flags)
	assert.Equal(t, mailbox.Flags(0), byID["<second@localhost>"].Flags)

	body, err := session.FetchBody(byID["<second@localhost>"].Uid)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Message-ID: <second@localhost>")

	err = session.Close()
	assert.NoError(t, err)
}

func TestFetchBodyDoesNotSetSeenFlag(t *testing.T) {
	server := test.StartServer(t)
	server.Append(t, "INBOX", nil, []byte(test.SampleMessage))

	cfg := newConfig(t, server, "INBOX")
	session, err := NewImap(context.Background(), cfg)
	require.NoError(t, err)

	messages, err := session.ListMessages()
	require.NoError(t, err)
	var unseen *mailbox.Message
	for i := range messages {
		if !messages[i].Flags.Has(mailbox.FlagSeen) {
			unseen = &messages[i]
		}
	}
	require.NotNil(t, unseen)

	body, err := session.FetchBody(unseen.Uid)
	require.NoError(t, err)
	assert.Equal(t, test.SampleMessage, string(body))
	require.NoError(t, session.Close())

	// open a new session to check the flags
	session, err = NewImap(context.Background(), cfg)
	require.NoError(t, err)
	defer session.Close()

	messages, err = session.ListMessages()
	require.NoError(t, err)
	for _, msg := range messages {
		if msg.Uid == unseen.Uid {
			assert.False(t, msg.Flags.Has(mailbox.FlagSeen))
		}
	}
}

func TestFetchBodyUnknownUID(t *testing.T) {
	server := test.StartServer(t)

	session, err := NewImap(context.Background(), newConfig(t, server, "INBOX"))
	require.NoError(t, err)
	defer session.Close()

	body, err := session.FetchBody(999999)
	assert.ErrorIs(t, err, lib.ErrNoBody)
	assert.Nil(t, body)
}

func TestListEmptyMailbox(t *testing.T) {
	server := test.StartServer(t)
	server.CreateMailbox(t, "Empty")

	session, err := NewImap(context.Background(), newConfig(t, server, "Empty"))
	require.NoError(t, err)
	defer session.Close()

	messages, err := session.ListMessages()
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCompression(t *testing.T) {
	server := test.StartServer(t)

	cfg := newConfig(t, server, "INBOX")
	cfg.Compress = true
	session, err := NewImap(context.Background(), cfg)
	require.NoError(t, err)

	messages, err := session.ListMessages()
	require.NoError(t, err)
	require.NotEmpty(t, messages)

	body, err := session.FetchBody(messages[0].Uid)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.NoError(t, session.Close())
}

func TestRateLimitedSession(t *testing.T) {
	server := test.StartServer(t)

	cfg := newConfig(t, server, "INBOX")
	cfg.RateLimit = 1024 * 1024
	session, err := NewImap(context.Background(), cfg)
	require.NoError(t, err)
	defer session.Close()

	messages, err := session.ListMessages()
	require.NoError(t, err)
	assert.NotEmpty(t, messages)
}

func TestAuthenticationFailure(t *testing.T) {
	server := test.StartServer(t)

	cfg := newConfig(t, server, "INBOX")
	cfg.Password = "wrong"
	session, err := NewImap(context.Background(), cfg)
	assert.ErrorIs(t, err, lib.ErrAuthentication)
	assert.Nil(t, session)
}

func TestSelectUnknownMailbox(t *testing.T) {
	server := test.StartServer(t)

	session, err := NewImap(context.Background(), newConfig(t, server, "No mailbox at that name"))
	assert.ErrorIs(t, err, lib.ErrSelectMailbox)
	assert.Nil(t, session)
}

func TestMissingConfiguration(t *testing.T) {
	_, err := NewImap(context.Background(), Config{ServerURL: "localhost:143"})
	assert.Error(t, err)
}

func TestConnectionRefused(t *testing.T) {
	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = Dial(context.Background(), Config{ServerURL: addr, DialTimeout: time.Second})
	assert.ErrorIs(t, err, lib.ErrConnection)
}

func TestTLSHandshakeWithPlainServer(t *testing.T) {
	server := test.StartServer(t)

	_, err := Dial(context.Background(), Config{ServerURL: server.Addr, TLS: true, DialTimeout: 5 * time.Second})
	assert.ErrorIs(t, err, lib.ErrSecurityHandshake)
}

func TestStartTLSNotSupported(t *testing.T) {
	server := test.StartServer(t)

	cfg := newConfig(t, server, "INBOX")
	cfg.StartTLS = true
	_, err := NewImap(context.Background(), cfg)
	assert.ErrorIs(t, err, lib.ErrSecurityHandshake)
}

func TestPlainDial(t *testing.T) {
	server := test.StartServer(t)

	conn, err := Dial(context.Background(), Config{ServerURL: server.Addr})
	require.NoError(t, err)
	defer conn.Close()

	// IMAP server speaks first
	buffer := make([]byte, 4)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = io.ReadFull(conn, buffer)
	require.NoError(t, err)
	assert.Equal(t, "* OK", string(buffer))
}

func TestSecuritySelection(t *testing.T) {
	assert.Equal(t, SecurityPlain, Config{}.Security())
	assert.Equal(t, SecurityTLS, Config{TLS: true}.Security())
	assert.Equal(t, SecurityTLS, Config{TLS: true, StartTLS: true}.Security())
	assert.Equal(t, SecurityStartTLS, Config{StartTLS: true}.Security())
	assert.Equal(t, "starttls", SecurityStartTLS.String())
}

func TestTLSConfigServerName(t *testing.T) {
	cfg := tlsConfig(Config{ServerURL: net.JoinHostPort("imap.example.com", "993")})
	assert.Equal(t, "imap.example.com", cfg.ServerName)
	assert.False(t, cfg.InsecureSkipVerify)
}

func TestToMessage(t *testing.T) {
	testData := []struct {
		name    string
		source  *imap.Message
		valid   bool
		message mailbox.Message
	}{
		{
			name:   "complete",
			source: &imap.Message{SeqNum: 4, Uid: 12, Envelope: &imap.Envelope{MessageId: "<id@localhost>"}, Flags: []string{imap.SeenFlag, imap.RecentFlag}},
			valid:  true,
			message: mailbox.Message{
				SeqNum:    4,
				Uid:       12,
				MessageID: "<id@localhost>",
				Flags:     mailbox.FlagSeen,
			},
		},
		{
			name:   "no uid",
			source: &imap.Message{SeqNum: 1, Envelope: &imap.Envelope{MessageId: "<id@localhost>"}},
		},
		{
			name:   "no envelope",
			source: &imap.Message{SeqNum: 1, Uid: 3},
		},
		{
			name:   "no message id",
			source: &imap.Message{SeqNum: 1, Uid: 3, Envelope: &imap.Envelope{Subject: "hello"}},
		},
		{
			name:   "message id not UTF-8",
			source: &imap.Message{SeqNum: 1, Uid: 3, Envelope: &imap.Envelope{MessageId: "<\xff\xfe@localhost>"}},
		},
	}

	for _, testItem := range testData {
		testItem := testItem
		t.Run(testItem.name, func(t *testing.T) {
			message, err := toMessage(testItem.source)
			if !testItem.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testItem.message, message)
		})
	}
}
