// Package mem is an IMAP server held in memory, with failures on demand.
package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage/remote"
)

// Credentials accepted by the backend
const (
	Username = "username"
	Password = "password"
)

// Backend keeps track of every session opened and every message fetched
type Backend struct {
	mutex         sync.Mutex
	data          map[string]*memMailbox
	log           lib.Logger
	failDialAfter int
	dials         int
	closed        int
	fetched       map[string][]uint32
}

func New() *Backend {
	return NewWithLogger(nil)
}

func NewWithLogger(logger lib.Logger) *Backend {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	return &Backend{
		data:    make(map[string]*memMailbox),
		log:     logger,
		fetched: make(map[string][]uint32),
	}
}

// CreateMailbox doesn't do anything if the mailbox already exists
func (m *Backend) CreateMailbox(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.data[name]; ok {
		return
	}
	m.data[name] = newMailbox()
}

// PutMessage adds a message and returns its uid. A nil body is never returned by the server.
func (m *Backend) PutMessage(name, messageID string, flags mailbox.Flags, body []byte) (uint32, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	mbox, ok := m.data[name]
	if !ok {
		return 0, fmt.Errorf("%w %q", lib.ErrSelectMailbox, name)
	}
	uid := mbox.newMessage(messageID, body, flags)
	m.log.Debugf("message saved: mailbox=%q uid=%d size=%d flags=%s", name, uid, len(body), flags)
	return uid, nil
}

// GenerateFakeEmails adds count messages; one in two is seen
func (m *Backend) GenerateFakeEmails(name string, count int, size int) []mailbox.Message {
	m.CreateMailbox(name)
	messages := make([]mailbox.Message, 0, count)
	for i := 1; i <= count; i++ {
		messageID := fmt.Sprintf("%s-%d@localhost", name, i)
		var flags mailbox.Flags
		if i%2 == 0 {
			flags = mailbox.FlagSeen
		}
		body := lib.GenerateEmail("user1@example.com", "user2@example.com", messageID, size)
		uid, _ := m.PutMessage(name, "<"+messageID+">", flags, body)
		messages = append(messages, mailbox.Message{
			SeqNum:    uint32(i),
			Uid:       uid,
			MessageID: "<" + messageID + ">",
			Flags:     flags,
		})
	}
	return messages
}

// FailDial makes every connection to the mailbox fail
func (m *Backend) FailDial(name string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[name].dialError = err
}

// FailList makes the listing of the mailbox fail
func (m *Backend) FailList(name string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[name].listError = err
}

// FailFetch makes the download of one message fail
func (m *Backend) FailFetch(name string, uid uint32, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[name].fetchErrors[uid] = err
}

// NoEnvelope makes the listing skip the message, as the IMAP session does
// with a message sent without envelope
func (m *Backend) NoEnvelope(name string, uid uint32) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[name].unlisted[uid] = true
}

// FailDialAfter refuses new connections once count sessions were opened (zero means never)
func (m *Backend) FailDialAfter(count int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failDialAfter = count
}

// Dial opens a session on the mailbox of the configuration
func (m *Backend) Dial(ctx context.Context, cfg remote.Config) (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", lib.ErrConnection, err)
	}
	if m.failDialAfter > 0 && m.dials >= m.failDialAfter {
		return nil, fmt.Errorf("%w: too many connections", lib.ErrConnection)
	}
	if cfg.Username != Username || cfg.Password != Password {
		return nil, fmt.Errorf("%w as %s", lib.ErrAuthentication, cfg.Username)
	}
	mbox, ok := m.data[cfg.Mailbox]
	if !ok {
		return nil, fmt.Errorf("%w %q", lib.ErrSelectMailbox, cfg.Mailbox)
	}
	if mbox.dialError != nil {
		return nil, mbox.dialError
	}
	m.dials++
	return &Session{
		backend: m,
		name:    cfg.Mailbox,
		mailbox: mbox,
	}, nil
}

// Dials is the number of sessions opened
func (m *Backend) Dials() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.dials
}

// Closed is the number of sessions closed
func (m *Backend) Closed() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.closed
}

// Fetched returns the uids downloaded from the mailbox, in order of arrival
func (m *Backend) Fetched(name string) []uint32 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]uint32{}, m.fetched[name]...)
}
