package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/creativeprojects/anthill/storage/mdir"
	"github.com/creativeprojects/anthill/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates [account...]",
	Short: "Find local messages saved more than once in the same mailbox",
	RunE:  runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	accounts, err := selectAccounts(config, args)
	if err != nil {
		return err
	}

	duplicates := 0
	table := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Account", "Mailbox", "UID", "Files"},
	})
	for _, account := range accounts {
		for _, mbox := range account.Mailboxes {
			index, err := mdir.New(account.MailboxPath(mbox), mdir.Config{Logger: term.NewLogger()}).Index()
			if err != nil {
				term.Error(err)
				continue
			}
			for _, uid := range index.Duplicates() {
				duplicates++
				table.Data = append(table.Data, []string{
					account.Name,
					mbox.Name,
					strconv.FormatUint(uint64(uid), 10),
					strings.Join(index[uid], ", "),
				})
			}
		}
	}

	out := cmd.OutOrStdout()
	if duplicates == 0 {
		fmt.Fprint(out, "no duplicate message\n")
		return nil
	}
	output, err := table.Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, output)
	if duplicates == 1 {
		fmt.Fprint(out, "found 1 duplicate message\n")
	} else {
		fmt.Fprintf(out, "found %d duplicate messages\n", duplicates)
	}
	return nil
}
