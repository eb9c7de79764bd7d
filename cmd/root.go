package cmd

import (
	"os"

	"github.com/creativeprojects/anthill/cfg"
	"github.com/creativeprojects/anthill/term"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "anthill [account...]",
	Short:         "Mirror IMAP mailboxes into local maildir folders",
	Long:          "\nMirror IMAP mailboxes into local maildir folders.\nWithout a command, all the accounts (or the ones given) are synchronized.",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

func init() {
	cobra.OnInitialize(initLog)
	flag := rootCmd.PersistentFlags()
	flag.StringVarP(&global.configFile, "config", "c", cfg.DefaultPath(), "configuration file")
	flag.BoolVarP(&global.quiet, "quiet", "q", false, "only display warnings and errors")
	flag.BoolVarP(&global.verbose, "verbose", "v", false, "display debugging information")

	addSyncFlags(rootCmd)
}

func initLog() {
	switch {
	case global.verbose:
		term.SetLevel(term.LevelDebug)
	case global.quiet:
		term.SetLevel(term.LevelWarn)
	default:
		term.SetLevel(term.LevelInfo)
	}
}

func Execute(version, commit, date, builtBy string) {
	setApp(version, commit, date, builtBy)
	if err := rootCmd.Execute(); err != nil {
		term.Error(err)
		os.Exit(1)
	}
}
