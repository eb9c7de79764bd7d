package mem

import (
	"sort"

	"github.com/creativeprojects/anthill/mailbox"
)

type memMessage struct {
	messageID string
	// nil content: the server returns no body
	content []byte
	flags   mailbox.Flags
}

type memMailbox struct {
	currentUid  uint32
	messages    map[uint32]*memMessage
	dialError   error
	listError   error
	fetchErrors map[uint32]error
	// unlisted messages come without envelope: the listing leaves them out
	unlisted map[uint32]bool
}

func newMailbox() *memMailbox {
	return &memMailbox{
		messages:    make(map[uint32]*memMessage),
		fetchErrors: make(map[uint32]error),
		unlisted:    make(map[uint32]bool),
	}
}

func (m *memMailbox) newMessage(messageID string, content []byte, flags mailbox.Flags) uint32 {
	m.currentUid++
	m.messages[m.currentUid] = &memMessage{
		messageID: messageID,
		content:   content,
		flags:     flags,
	}
	return m.currentUid
}

func (m *memMailbox) uids() []uint32 {
	uids := make([]uint32, 0, len(m.messages))
	for uid := range m.messages {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids
}
