package credential

import (
	"context"
	"fmt"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
)

// Provider returns the password of an account
type Provider interface {
	Resolve(ctx context.Context, account mailbox.Account) (string, error)
}

// verify interface
var (
	_ Provider = &Command{}
	_ Provider = &Keyring{}
	_ Provider = &Resolver{}
)

// Resolver picks the provider from the account configuration.
// A command takes precedence over the keyring.
type Resolver struct {
	command *Command
	keyring *Keyring
}

func NewResolver() *Resolver {
	return &Resolver{
		command: &Command{},
		keyring: NewKeyring(),
	}
}

// NewResolverWith uses a specific keyring
func NewResolverWith(keyring *Keyring) *Resolver {
	return &Resolver{
		command: &Command{},
		keyring: keyring,
	}
}

func (r *Resolver) Resolve(ctx context.Context, account mailbox.Account) (string, error) {
	switch {
	case account.Credential.Command != "":
		return r.command.Resolve(ctx, account)
	case account.Credential.Keyring != "":
		return r.keyring.Resolve(ctx, account)
	default:
		return "", fmt.Errorf("%w for account %q: no password command nor keyring entry", lib.ErrCredential, account.Name)
	}
}
