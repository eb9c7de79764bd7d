package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountWithCommand(command string) mailbox.Account {
	return mailbox.Account{
		Name:       "test",
		Credential: mailbox.CredentialSource{Command: command},
	}
}

func accountWithKeyring(key string) mailbox.Account {
	return mailbox.Account{
		Name:       "test",
		Credential: mailbox.CredentialSource{Keyring: key},
	}
}

func TestCommand(t *testing.T) {
	testData := []struct {
		command  string
		password string
	}{
		{"echo secret", "secret"},
		{"printf 'secret'", "secret"},
		{`printf 'secret\r\n'`, "secret"},
		{`printf 'first line\nsecond line\n'`, "first line"},
		{"echo '  spaces kept  '", "  spaces kept  "},
	}

	provider := &Command{}
	for _, testItem := range testData {
		testItem := testItem
		t.Run(testItem.command, func(t *testing.T) {
			password, err := provider.Resolve(context.Background(), accountWithCommand(testItem.command))
			require.NoError(t, err)
			assert.Equal(t, testItem.password, password)
		})
	}
}

func TestCommandFailure(t *testing.T) {
	testData := []string{
		"exit 1",
		"echo secret; exit 2",
		"true",
		"echo",
		"this-command-does-not-exist-anywhere",
	}

	provider := &Command{}
	for _, command := range testData {
		command := command
		t.Run(command, func(t *testing.T) {
			password, err := provider.Resolve(context.Background(), accountWithCommand(command))
			assert.ErrorIs(t, err, lib.ErrCredential)
			assert.Empty(t, password)
		})
	}
}

func TestCommandErrorMessage(t *testing.T) {
	provider := &Command{}
	_, err := provider.Resolve(context.Background(), accountWithCommand("echo 'vault is locked' >&2; exit 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault is locked")
	assert.Contains(t, err.Error(), `"test"`)
}

func TestCommandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &Command{}
	_, err := provider.Resolve(ctx, accountWithCommand("echo secret"))
	assert.ErrorIs(t, err, lib.ErrCredential)
}

func TestKeyring(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "me@example.com", Data: []byte("secret")},
		{Key: "empty", Data: []byte{}},
	})
	provider := NewKeyringFrom(ring)

	password, err := provider.Resolve(context.Background(), accountWithKeyring("me@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "secret", password)

	_, err = provider.Resolve(context.Background(), accountWithKeyring("someone@example.com"))
	assert.ErrorIs(t, err, lib.ErrCredential)

	_, err = provider.Resolve(context.Background(), accountWithKeyring("empty"))
	assert.ErrorIs(t, err, lib.ErrCredential)
}

func TestKeyringSet(t *testing.T) {
	provider := NewKeyringFrom(keyring.NewArrayKeyring(nil))

	err := provider.Set("me@example.com", "new secret")
	require.NoError(t, err)

	password, err := provider.Resolve(context.Background(), accountWithKeyring("me@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "new secret", password)
}

func TestKeyringCannotOpen(t *testing.T) {
	calls := 0
	provider := &Keyring{
		open: func() (keyring.Keyring, error) {
			calls++
			return nil, errors.New("no keyring available")
		},
	}

	_, err := provider.Resolve(context.Background(), accountWithKeyring("me@example.com"))
	assert.ErrorIs(t, err, lib.ErrCredential)
	_, err = provider.Resolve(context.Background(), accountWithKeyring("me@example.com"))
	assert.ErrorIs(t, err, lib.ErrCredential)
	// opened only once
	assert.Equal(t, 1, calls)
}

func TestResolver(t *testing.T) {
	resolver := NewResolverWith(NewKeyringFrom(keyring.NewArrayKeyring([]keyring.Item{
		{Key: "me@example.com", Data: []byte("from keyring")},
	})))

	password, err := resolver.Resolve(context.Background(), accountWithCommand("echo from command"))
	require.NoError(t, err)
	assert.Equal(t, "from command", password)

	password, err = resolver.Resolve(context.Background(), accountWithKeyring("me@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "from keyring", password)

	// the command wins
	account := accountWithKeyring("me@example.com")
	account.Credential.Command = "echo from command"
	password, err = resolver.Resolve(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "from command", password)

	_, err = resolver.Resolve(context.Background(), mailbox.Account{Name: "nothing"})
	assert.ErrorIs(t, err, lib.ErrCredential)
}
