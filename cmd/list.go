package cmd

import (
	"fmt"
	"strconv"

	"github.com/creativeprojects/anthill/storage/mdir"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [account...]",
	Short: "Display the mailboxes of all the accounts, or of the accounts given",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	accounts, err := selectAccounts(config, args)
	if err != nil {
		return err
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Account", "Mailbox", "Remote", "Local folder", "Messages"},
	})
	for _, account := range accounts {
		for _, mbox := range account.Mailboxes {
			path := account.MailboxPath(mbox)
			messages := "-"
			index, err := mdir.New(path, mdir.Config{StrictIndex: true}).Index()
			if err == nil {
				messages = strconv.Itoa(index.Count())
			}
			table.Data = append(table.Data, []string{account.Name, mbox.Name, mbox.Remote, path, messages})
		}
	}
	output, err := table.Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
