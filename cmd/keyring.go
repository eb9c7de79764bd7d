package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creativeprojects/anthill/credential"
	"github.com/spf13/cobra"
)

var keyringCmd = &cobra.Command{
	Use:   "keyring <entry>",
	Short: "Save a password in the system keyring, reading it from the standard input",
	Long:  "\nSave a password in the system keyring, reading it from the standard input.\nThe entry is the value of the \"keyring\" field of the account.",
	RunE:  runKeyring,
}

func init() {
	rootCmd.AddCommand(keyringCmd)
}

func runKeyring(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("missing keyring entry")
	}
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}
	err = credential.NewKeyring().Set(args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "password saved in entry %q\n", args[0])
	return nil
}

// readPassword returns the first line of the input
func readPassword(input io.Reader) (string, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("cannot read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
