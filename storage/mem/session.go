package mem

import (
	"fmt"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
)

// Session is a connection on one mailbox of the Backend
type Session struct {
	backend *Backend
	name    string
	mailbox *memMailbox
}

func (s *Session) ListMessages() ([]mailbox.Message, error) {
	s.backend.mutex.Lock()
	defer s.backend.mutex.Unlock()

	if s.mailbox.listError != nil {
		return nil, s.mailbox.listError
	}
	messages := make([]mailbox.Message, 0, len(s.mailbox.messages))
	for seq, uid := range s.mailbox.uids() {
		if s.mailbox.unlisted[uid] {
			s.backend.log.Warnf("skipping message seq=%d: uid %d has no envelope", seq+1, uid)
			continue
		}
		msg := s.mailbox.messages[uid]
		messages = append(messages, mailbox.Message{
			SeqNum:    uint32(seq + 1),
			Uid:       uid,
			MessageID: msg.messageID,
			Flags:     msg.flags,
		})
	}
	return messages, nil
}

func (s *Session) FetchBody(uid uint32) ([]byte, error) {
	s.backend.mutex.Lock()
	defer s.backend.mutex.Unlock()

	s.backend.fetched[s.name] = append(s.backend.fetched[s.name], uid)
	if err, found := s.mailbox.fetchErrors[uid]; found {
		return nil, err
	}
	msg, found := s.mailbox.messages[uid]
	if !found || msg.content == nil {
		return nil, fmt.Errorf("%w (uid %d)", lib.ErrNoBody, uid)
	}
	return append([]byte{}, msg.content...), nil
}

func (s *Session) Close() error {
	s.backend.mutex.Lock()
	defer s.backend.mutex.Unlock()
	s.backend.closed++
	return nil
}
