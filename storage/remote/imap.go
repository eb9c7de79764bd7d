package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	"github.com/emersion/go-imap/client"
)

// Imap is a session on one remote folder. It must not be shared between goroutines.
type Imap struct {
	client   *client.Client
	log      lib.Logger
	selected *mailbox.Status
}

// NewImap connects to the server, authenticates and selects the mailbox (read-only).
// No session is returned unless every step succeeded.
func NewImap(ctx context.Context, cfg Config) (*Imap, error) {
	log := cfg.DebugLogger
	if log == nil {
		log = &lib.NoLog{}
	}
	if cfg.ServerURL == "" || cfg.Username == "" || cfg.Mailbox == "" {
		return nil, errors.New("missing information from Config object")
	}

	log.Debugf("Connecting to server %s (%s)...", cfg.ServerURL, cfg.Security())
	conn, err := Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	imapClient, err := client.New(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s: %v", lib.ErrConnection, cfg.ServerURL, err)
	}
	log.Debugf("Connected")

	session := &Imap{
		client: imapClient,
		log:    log,
	}
	err = session.open(cfg)
	if err != nil {
		_ = imapClient.Logout()
		return nil, err
	}
	return session, nil
}

func (i *Imap) open(cfg Config) error {
	if cfg.Security() == SecurityStartTLS {
		if err := i.client.StartTLS(tlsConfig(cfg)); err != nil {
			return fmt.Errorf("%w with %s: %v", lib.ErrSecurityHandshake, cfg.ServerURL, err)
		}
		i.log.Debugf("STARTTLS negotiated")
	}

	if err := i.client.Login(cfg.Username, cfg.Password); err != nil {
		return fmt.Errorf("%w as %s: %v", lib.ErrAuthentication, cfg.Username, err)
	}
	i.log.Debugf("Logged in as %s", cfg.Username)

	if cfg.Compress {
		i.enableCompression()
	}

	status, err := i.client.Select(cfg.Mailbox, true)
	if err != nil {
		return fmt.Errorf("%w %q: %v", lib.ErrSelectMailbox, cfg.Mailbox, err)
	}
	i.selected = &mailbox.Status{
		Name:        status.Name,
		Messages:    status.Messages,
		Unseen:      status.Unseen,
		UidValidity: status.UidValidity,
	}
	i.log.Debugf("Selected mailbox %q: %d messages (uid validity %d)", status.Name, status.Messages, status.UidValidity)
	return nil
}

// enableCompression is best effort: the session works the same without it
func (i *Imap) enableCompression() {
	compressClient := compress.NewClient(i.client)
	supported, err := compressClient.SupportCompress(compress.Deflate)
	if err != nil || !supported {
		i.log.Debugf("IMAP server does NOT support COMPRESS=DEFLATE extension")
		return
	}
	if err := compressClient.Compress(compress.Deflate); err != nil {
		i.log.Warnf("cannot enable compression: %s", err)
		return
	}
	i.log.Debugf("Compression enabled")
}

// Status of the selected mailbox
func (i *Imap) Status() *mailbox.Status {
	return i.selected
}

// ListMessages returns uid, message-id and flags of every message in the mailbox.
// Messages with incomplete metadata are skipped with a warning.
func (i *Imap) ListMessages() ([]mailbox.Message, error) {
	if i.selected == nil || i.selected.Messages == 0 {
		return []mailbox.Message{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, 0) // 1:*
	items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, imap.FetchFlags}

	receiver := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- i.client.Fetch(seqset, items, receiver)
	}()

	messages := make([]mailbox.Message, 0, i.selected.Messages)
	for msg := range receiver {
		message, err := toMessage(msg)
		if err != nil {
			i.log.Warnf("skipping message seq=%d: %s", msg.SeqNum, err)
			continue
		}
		messages = append(messages, message)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("%w in %q: %v", lib.ErrListMessages, i.selected.Name, err)
	}
	i.log.Debugf("Listed %d messages", len(messages))
	return messages, nil
}

func toMessage(msg *imap.Message) (mailbox.Message, error) {
	if msg.Uid == 0 {
		return mailbox.Message{}, errors.New("no uid")
	}
	if msg.Envelope == nil {
		return mailbox.Message{}, fmt.Errorf("uid %d has no envelope", msg.Uid)
	}
	if msg.Envelope.MessageId == "" {
		return mailbox.Message{}, fmt.Errorf("uid %d has no message id", msg.Uid)
	}
	if !utf8.ValidString(msg.Envelope.MessageId) {
		return mailbox.Message{}, fmt.Errorf("uid %d: message id is not valid UTF-8", msg.Uid)
	}
	return mailbox.Message{
		SeqNum:    msg.SeqNum,
		Uid:       msg.Uid,
		MessageID: msg.Envelope.MessageId,
		Flags:     mailbox.ParseFlags(msg.Flags),
	}, nil
}

// FetchBody downloads the full message. It returns lib.ErrNoBody when the server
// sends no content for that uid. The \Seen flag is never changed on the server.
func (i *Imap) FetchBody(uid uint32) ([]byte, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	receiver := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- i.client.UidFetch(seqset, items, receiver)
	}()

	var body []byte
	var readErr error
	found := false
	for msg := range receiver {
		if found {
			// keep draining the channel
			continue
		}
		literal := msg.GetBody(section)
		if literal == nil {
			continue
		}
		found = true
		body, readErr = io.ReadAll(literal)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("cannot fetch message uid %d: %w", uid, err)
	}
	if readErr != nil {
		return nil, fmt.Errorf("cannot read message uid %d: %w", uid, readErr)
	}
	if !found {
		return nil, fmt.Errorf("%w (uid %d)", lib.ErrNoBody, uid)
	}
	i.log.Debugf("Received message uid=%d size=%d", uid, len(body))
	return body, nil
}

// Close logs out from the server
func (i *Imap) Close() error {
	i.log.Debugf("Closing connection")
	return i.client.Logout()
}
