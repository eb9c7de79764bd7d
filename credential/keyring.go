package credential

import (
	"context"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
)

const serviceName = "anthill"

// Keyring reads the passwords from the system keyring
type Keyring struct {
	open func() (keyring.Keyring, error)
	once sync.Once
	ring keyring.Keyring
	err  error
}

// NewKeyring opens the system keyring on first use
func NewKeyring() *Keyring {
	return &Keyring{
		open: openKeyring,
	}
}

// NewKeyringFrom uses an already opened keyring
func NewKeyringFrom(ring keyring.Keyring) *Keyring {
	return &Keyring{
		open: func() (keyring.Keyring, error) {
			return ring, nil
		},
	}
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func (k *Keyring) get() (keyring.Keyring, error) {
	k.once.Do(func() {
		k.ring, k.err = k.open()
	})
	return k.ring, k.err
}

func (k *Keyring) Resolve(ctx context.Context, account mailbox.Account) (string, error) {
	ring, err := k.get()
	if err != nil {
		return "", fmt.Errorf("%w for account %q: %v", lib.ErrCredential, account.Name, err)
	}
	item, err := ring.Get(account.Credential.Keyring)
	if err != nil {
		return "", fmt.Errorf("%w for account %q: keyring entry %q: %v", lib.ErrCredential, account.Name, account.Credential.Keyring, err)
	}
	if len(item.Data) == 0 {
		return "", fmt.Errorf("%w for account %q: keyring entry %q is empty", lib.ErrCredential, account.Name, account.Credential.Keyring)
	}
	return string(item.Data), nil
}

// Set stores a password in the keyring
func (k *Keyring) Set(key, password string) error {
	ring, err := k.get()
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(password),
		Label: serviceName + ": " + key,
	})
	if err != nil {
		return fmt.Errorf("setting keyring entry %q: %w", key, err)
	}
	return nil
}
