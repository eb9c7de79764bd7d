package cmd

import (
	"fmt"
	"sort"

	"github.com/creativeprojects/anthill/cfg"
	"github.com/creativeprojects/anthill/mailbox"
)

type GlobalFlags struct {
	configFile string
	quiet      bool
	verbose    bool
}

type SyncFlags struct {
	mailboxWorkers int
	messageWorkers int
	strictIndex    bool
	dryRun         bool
	journal        string
	noJournal      bool
}

var (
	global    GlobalFlags
	syncFlags SyncFlags
)

func loadConfig() (cfg.Config, error) {
	config, err := cfg.LoadFromFile(global.configFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open or read configuration file: %w", err)
	}
	return config, nil
}

// selectAccounts returns the accounts by name, or all of them when no name is given
func selectAccounts(config cfg.Config, names []string) ([]mailbox.Account, error) {
	if len(names) == 0 {
		return config.Accounts(), nil
	}
	sort.Strings(names)
	accounts := make([]mailbox.Account, 0, len(names))
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}
		account, found := config.Account(name)
		if !found {
			return nil, fmt.Errorf("account not found: %s", name)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
