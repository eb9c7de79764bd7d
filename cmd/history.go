package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage/local"
	"github.com/creativeprojects/anthill/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const dateFormat = "2006-01-02 15:04:05 MST"

var historyCmd = &cobra.Command{
	Use:   "history <account>",
	Short: "Display the previous synchronizations of an account",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&syncFlags.journal, "journal", local.DefaultJournalPath(), "file keeping the history of the runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("missing account name")
	}
	accountName := args[0]

	journal, err := local.OpenJournal(syncFlags.journal, term.NewLogger())
	if err != nil {
		return err
	}
	defer journal.Close()

	history, err := journal.History(accountName)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		term.Warnf("No history found for account %q", accountName)
		return nil
	}

	output, err := historyTable(history)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	last := mailbox.LastSuccess(history)
	if !last.IsZero() {
		term.Infof("last successful synchronization: %s", last.Format(dateFormat))
	}
	return nil
}

func historyTable(history []mailbox.Report) (string, error) {
	table := pterm.DefaultTable.WithBoxed(true).WithHasHeader().WithData(pterm.TableData{
		{"Date", "Mailbox", "Duration", "Remote", "Local", "Saved", "Skipped", "Failed", "Error"},
	})
	for _, report := range history {
		table.Data = append(table.Data, []string{
			report.Started.Format(dateFormat),
			report.Mailbox,
			report.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(report.Remote),
			strconv.Itoa(report.Local),
			strconv.Itoa(report.Written),
			strconv.Itoa(report.Skipped),
			strconv.Itoa(report.Failed),
			report.Error,
		})
	}
	return table.Srender()
}
