package mailbox

import (
	"strings"

	"github.com/emersion/go-imap"
)

// Flags is the set of message flags kept in the local store.
// Any other IMAP flag is ignored.
type Flags uint8

const (
	FlagSeen Flags = 1 << iota
	FlagFlagged
	FlagAnswered
	FlagDeleted
)

// flagOrder is the order of the letters in a maildir file name
var flagOrder = []struct {
	flag   Flags
	letter byte
	imap   string
}{
	{FlagSeen, 'S', imap.SeenFlag},
	{FlagFlagged, 'F', imap.FlaggedFlag},
	{FlagAnswered, 'R', imap.AnsweredFlag},
	{FlagDeleted, 'D', imap.DeletedFlag},
}

// ParseFlags converts IMAP flags. Flags are matched case-insensitively (RFC 3501)
func ParseFlags(source []string) Flags {
	var flags Flags
	for _, sourceFlag := range source {
		for _, known := range flagOrder {
			if strings.EqualFold(sourceFlag, known.imap) {
				flags |= known.flag
				break
			}
		}
	}
	return flags
}

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Letters returns the maildir info letters, always in the order S, F, R, D
func (f Flags) Letters() string {
	letters := make([]byte, 0, len(flagOrder))
	for _, known := range flagOrder {
		if f.Has(known.flag) {
			letters = append(letters, known.letter)
		}
	}
	return string(letters)
}

func (f Flags) String() string {
	names := make([]string, 0, len(flagOrder))
	for _, known := range flagOrder {
		if f.Has(known.flag) {
			names = append(names, known.imap)
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}
