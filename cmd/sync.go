package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/creativeprojects/anthill/credential"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage"
	"github.com/creativeprojects/anthill/storage/local"
	"github.com/creativeprojects/anthill/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [account...]",
	Short: "Download the new messages of all the accounts, or of the accounts given",
	RunE:  runSync,
}

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func addSyncFlags(command *cobra.Command) {
	flag := command.Flags()
	flag.IntVar(&syncFlags.mailboxWorkers, "mailbox-workers", storage.DefaultMailboxWorkers, "number of mailboxes synchronized at the same time for each account")
	flag.IntVar(&syncFlags.messageWorkers, "message-workers", storage.DefaultMessageWorkers, "number of messages downloaded at the same time for each mailbox")
	flag.BoolVar(&syncFlags.strictIndex, "strict-index", false, "fail a mailbox when one of its local folders is missing")
	flag.BoolVar(&syncFlags.dryRun, "dry-run", false, "only count the messages to download")
	flag.StringVar(&syncFlags.journal, "journal", local.DefaultJournalPath(), "file keeping the history of the runs")
	flag.BoolVar(&syncFlags.noJournal, "no-journal", false, "do not keep the history of the runs")
}

func runSync(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	accounts, err := selectAccounts(config, args)
	if err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		term.Warnf("cannot get hostname: %s", err)
		hostname = "localhost"
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress *progresser
	if !global.quiet && !global.verbose {
		progress = newProgresser(countMailboxes(accounts))
		defer progress.Stop()
	}

	syncer := storage.NewSyncer(storage.Config{
		Hostname:       hostname,
		MailboxWorkers: syncFlags.mailboxWorkers,
		MessageWorkers: syncFlags.messageWorkers,
		StrictIndex:    syncFlags.strictIndex,
		DryRun:         syncFlags.dryRun,
		Credentials:    credential.NewResolver(),
		Logger:         term.NewLogger(),
		OnReport: func(report mailbox.Report) {
			progress.Increment(report.Account + "/" + report.Mailbox)
		},
	})
	reports, err := syncer.Run(ctx, accounts)
	progress.Stop()

	if !syncFlags.dryRun && !syncFlags.noJournal {
		recordJournal(syncFlags.journal, reports)
	}
	if !global.quiet {
		table, renderErr := reportsTable(reports, syncFlags.dryRun)
		if renderErr == nil {
			fmt.Fprintln(cmd.OutOrStdout(), table)
		}
	}
	return err
}

func countMailboxes(accounts []mailbox.Account) int {
	count := 0
	for _, account := range accounts {
		count += len(account.Mailboxes)
	}
	return count
}

// recordJournal never fails the run
func recordJournal(filename string, reports []mailbox.Report) {
	journal, err := local.OpenJournal(filename, term.NewLogger())
	if err != nil {
		term.Warnf("cannot open journal: %s", err)
		return
	}
	defer journal.Close()

	err = journal.Record(reports...)
	if err != nil {
		term.Warnf("cannot save to journal: %s", err)
	}
}

func reportsTable(reports []mailbox.Report, dryRun bool) (string, error) {
	header := []string{"Account", "Mailbox", "Remote", "Local", "New", "Saved", "Skipped", "Failed", "Duration", "Error"}
	if dryRun {
		header[4] = "To download"
	}
	table := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{header})
	for _, report := range reports {
		table.Data = append(table.Data, []string{
			report.Account,
			report.Mailbox,
			strconv.Itoa(report.Remote),
			strconv.Itoa(report.Local),
			strconv.Itoa(report.Delta),
			strconv.Itoa(report.Written),
			strconv.Itoa(report.Skipped),
			strconv.Itoa(report.Failed),
			report.Duration.Round(time.Millisecond).String(),
			report.Error,
		})
	}
	return table.Srender()
}
