package mdir

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/creativeprojects/anthill/mailbox"
)

// uidPattern finds the uid marker in a file name: U=<digits>:
var uidPattern = regexp.MustCompile(`U=([0-9]+):`)

var hostnameReplacer = strings.NewReplacer("/", `\057`, ":", `\072`)

// ParseUID returns the uid embedded in a maildir file name
func ParseUID(filename string) (uint32, bool) {
	match := uidPattern.FindStringSubmatch(filename)
	if match == nil {
		return 0, false
	}
	uid, err := strconv.ParseUint(match[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(uid), true
}

// namer builds the file names of new messages:
// {unix-seconds}.{random-16-bit}.{hostname},U={uid}:2,{flags}
type namer struct {
	hostname string
	now      func() time.Time
	token    func() uint16
}

func newNamer(hostname string, now func() time.Time, token func() uint16) namer {
	return namer{
		hostname: hostnameReplacer.Replace(hostname),
		now:      now,
		token:    token,
	}
}

func (n namer) filename(uid uint32, flags mailbox.Flags) string {
	return strconv.FormatInt(n.now().Unix(), 10) +
		"." + strconv.FormatUint(uint64(n.token()), 10) +
		"." + n.hostname +
		",U=" + strconv.FormatUint(uint64(uid), 10) +
		":2," + flags.Letters()
}

// Subfolder returns "cur" for a seen message, "new" otherwise
func Subfolder(flags mailbox.Flags) string {
	if flags.Has(mailbox.FlagSeen) {
		return SubfolderCur
	}
	return SubfolderNew
}
