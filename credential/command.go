package credential

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
)

// Command runs the password command of the account with the shell
type Command struct{}

// Resolve returns the first line written by the command, without its line ending
func (c *Command) Resolve(ctx context.Context, account mailbox.Account) (string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, "sh", "-c", account.Credential.Command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		message := strings.TrimSpace(stderr.String())
		if message != "" {
			return "", fmt.Errorf("%w for account %q: password command: %v: %s", lib.ErrCredential, account.Name, err, message)
		}
		return "", fmt.Errorf("%w for account %q: password command: %v", lib.ErrCredential, account.Name, err)
	}
	password := firstLine(stdout.String())
	if password == "" {
		return "", fmt.Errorf("%w for account %q: password command returned nothing", lib.ErrCredential, account.Name)
	}
	return password, nil
}

func firstLine(output string) string {
	if index := strings.IndexByte(output, '\n'); index >= 0 {
		output = output[:index]
	}
	return strings.TrimRight(output, "\r\n")
}
