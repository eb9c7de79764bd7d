package mailbox

// Message is the metadata of a remote message, as listed from the server
type Message struct {
	// The message sequence number.
	SeqNum uint32
	// The message unique identifier, only unique inside its mailbox.
	Uid uint32
	// The Message-ID header from the envelope.
	MessageID string
	// The message flags.
	Flags Flags
}

// UIDSet is the set of message uids already in the local store
type UIDSet map[uint32]struct{}

func NewUIDSet(uids ...uint32) UIDSet {
	set := make(UIDSet, len(uids))
	for _, uid := range uids {
		set.Add(uid)
	}
	return set
}

func (s UIDSet) Add(uid uint32) {
	s[uid] = struct{}{}
}

func (s UIDSet) Contains(uid uint32) bool {
	_, found := s[uid]
	return found
}
