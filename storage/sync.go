package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/creativeprojects/anthill/credential"
	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/creativeprojects/anthill/storage/mdir"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultMailboxWorkers = 4
	DefaultMessageWorkers = 4
)

type Config struct {
	// Hostname is written in the name of every new file
	Hostname string
	// MailboxWorkers is the number of mailboxes synchronized at the same time for each account
	MailboxWorkers int
	// MessageWorkers is the number of messages downloaded at the same time for each mailbox
	MessageWorkers int
	StrictIndex    bool
	// DryRun only counts the missing messages
	DryRun      bool
	Credentials credential.Provider
	Dial        Dialer
	Logger      lib.Logger
	// OnReport is called (one call at a time) each time a mailbox is done
	OnReport func(report mailbox.Report)
}

// Syncer mirrors the remote mailboxes of the accounts into their local maildir.
// Messages already present locally (by uid) are never downloaded again.
type Syncer struct {
	config Config
	log    lib.Logger
}

func NewSyncer(config Config) *Syncer {
	if config.MailboxWorkers < 1 {
		config.MailboxWorkers = DefaultMailboxWorkers
	}
	if config.MessageWorkers < 1 {
		config.MessageWorkers = DefaultMessageWorkers
	}
	if config.Dial == nil {
		config.Dial = DialImap
	}
	if config.Credentials == nil {
		config.Credentials = credential.NewResolver()
	}
	if config.Logger == nil {
		config.Logger = &lib.NoLog{}
	}
	return &Syncer{
		config: config,
		log:    config.Logger,
	}
}

type unit struct {
	account mailbox.Account
	mailbox mailbox.Mailbox
	store   *mdir.Maildir
}

func (u unit) report() mailbox.Report {
	return mailbox.Report{
		Account: u.account.Name,
		Mailbox: u.mailbox.Name,
		Started: time.Now(),
	}
}

// Run synchronizes all the mailboxes of the accounts and returns one report per mailbox,
// sorted by account and mailbox. The error is not nil when anything failed.
func (s *Syncer) Run(ctx context.Context, accounts []mailbox.Account) ([]mailbox.Report, error) {
	reports := make([]mailbox.Report, 0)
	mutex := sync.Mutex{}
	addReports := func(r ...mailbox.Report) {
		mutex.Lock()
		defer mutex.Unlock()
		reports = append(reports, r...)
		if s.config.OnReport != nil {
			for _, report := range r {
				s.config.OnReport(report)
			}
		}
	}

	// every local folder is created before anything is downloaded
	units := make([][]unit, len(accounts))
	for i, account := range accounts {
		units[i] = make([]unit, 0, len(account.Mailboxes))
		for _, mbox := range account.Mailboxes {
			u := unit{
				account: account,
				mailbox: mbox,
				store: mdir.New(account.MailboxPath(mbox), mdir.Config{
					Hostname:    s.config.Hostname,
					StrictIndex: s.config.StrictIndex,
					Logger:      lib.WithPrefix(s.log, account.Name+"/"+mbox.Name),
				}),
			}
			if err := u.store.Init(); err != nil {
				s.log.Errorf("%s/%s: %s", account.Name, mbox.Name, err)
				report := u.report()
				report.Error = err.Error()
				addReports(report)
				continue
			}
			units[i] = append(units[i], u)
		}
	}

	// all the credentials are resolved before the first connection
	passwords := make([]string, len(accounts))
	for i, account := range accounts {
		if len(units[i]) == 0 {
			continue
		}
		password, err := s.config.Credentials.Resolve(ctx, account)
		if err != nil {
			s.log.Errorf("%s: %s", account.Name, err)
			for _, u := range units[i] {
				report := u.report()
				report.Error = err.Error()
				addReports(report)
			}
			units[i] = nil
			continue
		}
		passwords[i] = password
	}

	wg := conc.NewWaitGroup()
	for i := range accounts {
		if len(units[i]) == 0 {
			continue
		}
		accountUnits, password := units[i], passwords[i]
		wg.Go(func() {
			s.syncAccount(ctx, accountUnits, password, addReports)
		})
	}
	wg.Wait()

	mailbox.SortReports(reports)
	return reports, summarize(reports)
}

// syncAccount hands over each report as soon as its mailbox is done
func (s *Syncer) syncAccount(ctx context.Context, units []unit, password string, done func(...mailbox.Report)) {
	p := pool.New().WithMaxGoroutines(s.config.MailboxWorkers)
	for _, u := range units {
		u := u
		p.Go(func() {
			done(s.syncMailbox(ctx, u, password))
		})
	}
	p.Wait()
}

func (s *Syncer) syncMailbox(ctx context.Context, u unit, password string) (report mailbox.Report) {
	report = u.report()
	log := lib.WithPrefix(s.log, u.account.Name+"/"+u.mailbox.Name)
	defer func() {
		report.Duration = time.Since(report.Started)
	}()

	if ctx.Err() != nil {
		report.Error = ctx.Err().Error()
		return report
	}

	cfg := remoteConfig(u.account, u.mailbox, password, log)
	session, err := s.config.Dial(ctx, cfg)
	if err != nil {
		log.Errorf("%s", err)
		report.Error = err.Error()
		return report
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warnf("error closing session: %s", err)
		}
	}()

	messages, err := session.ListMessages()
	if err != nil {
		log.Errorf("%s", err)
		report.Error = err.Error()
		return report
	}
	report.Remote = len(messages)

	index, err := u.store.Index()
	if err != nil {
		log.Errorf("%s", err)
		report.Error = err.Error()
		return report
	}
	local := index.UIDs()
	report.Local = len(local)

	delta := ComputeDelta(messages, local)
	report.Delta = len(delta)
	log.Debugf("%d messages on server, %d in local store, %d to download", report.Remote, report.Local, report.Delta)
	if len(delta) == 0 {
		return report
	}
	if s.config.DryRun {
		log.Infof("%d messages to download (dry run)", len(delta))
		return report
	}

	p := &persister{
		open: func(ctx context.Context) (Session, error) {
			return s.config.Dial(ctx, cfg)
		},
		store:   u.store,
		workers: s.config.MessageWorkers,
		log:     log,
	}
	result := p.run(ctx, session, delta)
	report.Written = result.Written
	report.Skipped = result.Skipped
	report.Failed = result.Failed
	log.Infof("%d messages saved", result.Written)
	return report
}

// summarize returns an error when at least one mailbox or one message failed
func summarize(reports []mailbox.Report) error {
	failedMailboxes, failedMessages := 0, 0
	for _, report := range reports {
		if !report.Success() {
			failedMailboxes++
		}
		failedMessages += report.Failed
	}
	if failedMailboxes == 0 && failedMessages == 0 {
		return nil
	}
	if failedMailboxes == 0 {
		return fmt.Errorf("%d messages could not be saved", failedMessages)
	}
	return fmt.Errorf("%d mailboxes failed to synchronize", failedMailboxes)
}
