package mailbox

import (
	"net"
	"path/filepath"
	"strconv"
	"time"
)

// Account is one remote server login with the mailboxes to mirror from it.
// It is built once from the configuration and never modified afterwards.
type Account struct {
	Name       string
	Root       string
	Server     Server
	Credential CredentialSource
	Mailboxes  []Mailbox
}

// Server holds the connection settings shared by all the mailboxes of an account
type Server struct {
	Host                string
	Port                uint16
	Username            string
	TLS                 bool
	StartTLS            bool
	SkipTLSVerification bool
	Compress            bool
	// RateLimit in bytes per second, zero means unlimited
	RateLimit float64
	Timeout   time.Duration
}

func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port)))
}

// CredentialSource describes where the password of an account comes from
type CredentialSource struct {
	// Command is run by the shell, the first line of its output is the password
	Command string
	// Keyring is the key of the password in the system keyring
	Keyring string
}

type Mailbox struct {
	// Name is the key of the mailbox in the configuration
	Name string
	// Local folder name, under the account directory
	Local string
	// Remote folder name on the server
	Remote string
}

// MailboxPath returns the maildir path of the mailbox: <root>/<account>/<local>
func (a Account) MailboxPath(mbox Mailbox) string {
	return filepath.Join(a.Root, a.Name, mbox.Local)
}
