package storage

import (
	"context"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage/remote"
)

// Session is an open connection on one remote folder
type Session interface {
	ListMessages() ([]mailbox.Message, error)
	FetchBody(uid uint32) ([]byte, error)
	Close() error
}

// Dialer opens a session with the folder selected
type Dialer func(ctx context.Context, cfg remote.Config) (Session, error)

// Store receives the new messages of a mailbox
type Store interface {
	Deliver(msg mailbox.Message, body []byte) (string, error)
}

// verify interface
var _ Session = &remote.Imap{}

// DialImap is the default Dialer
func DialImap(ctx context.Context, cfg remote.Config) (Session, error) {
	session, err := remote.NewImap(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func remoteConfig(account mailbox.Account, mbox mailbox.Mailbox, password string, logger lib.Logger) remote.Config {
	return remote.Config{
		ServerURL:           account.Server.Address(),
		Username:            account.Server.Username,
		Password:            password,
		Mailbox:             mbox.Remote,
		TLS:                 account.Server.TLS,
		StartTLS:            account.Server.StartTLS,
		SkipTLSVerification: account.Server.SkipTLSVerification,
		Compress:            account.Server.Compress,
		RateLimit:           account.Server.RateLimit,
		DialTimeout:         account.Server.Timeout,
		DebugLogger:         logger,
	}
}
