package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage/mem"
	"github.com/creativeprojects/anthill/storage/remote"
)

func memDialer(backend *mem.Backend) Dialer {
	return func(ctx context.Context, cfg remote.Config) (Session, error) {
		session, err := backend.Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
}

// staticPasswords resolves the password by account name
type staticPasswords map[string]string

func (p staticPasswords) Resolve(ctx context.Context, account mailbox.Account) (string, error) {
	password, found := p[account.Name]
	if !found {
		return "", fmt.Errorf("%w for account %q", lib.ErrCredential, account.Name)
	}
	return password, nil
}

type failingStore struct {
	err error
}

func (s failingStore) Deliver(msg mailbox.Message, body []byte) (string, error) {
	return "", s.err
}

var errFetch = errors.New("connection reset by peer")
