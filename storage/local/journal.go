package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	bolt "go.etcd.io/bbolt"
)

const (
	metadataBucket     = "metadata"
	journalBucket      = "journal"
	versionKey         = "version"
	journalFileVersion = 1
	// MaxEntries is the number of reports kept for each mailbox
	MaxEntries = 100
)

// Journal keeps the reports of the previous runs: one bucket per account
// and inside one bucket per mailbox, with the reports in sequence.
type Journal struct {
	dbFile string
	db     *bolt.DB
	log    lib.Logger
}

// DefaultJournalPath is in the user cache directory
func DefaultJournalPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "anthill", "journal.db")
}

func OpenJournal(filename string, logger lib.Logger) (*Journal, error) {
	if logger == nil {
		logger = &lib.NoLog{}
	}
	options := *bolt.DefaultOptions
	options.Timeout = 10 * time.Second

	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	db, err := bolt.Open(filename, 0600, &options)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q: %w", filename, err)
	}

	journal := &Journal{
		dbFile: filename,
		db:     db,
		log:    logger,
	}
	err = journal.init()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (j *Journal) init() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(journalBucket)); err != nil {
			return err
		}
		if current := bucket.Get([]byte(versionKey)); current != nil {
			version, err := DeserializeInt(current)
			if err != nil {
				return fmt.Errorf("invalid journal version: %w", err)
			}
			if version > journalFileVersion {
				return fmt.Errorf("journal version %d is not supported", version)
			}
			return nil
		}
		version, err := SerializeInt(journalFileVersion)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(versionKey), version)
	})
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record adds the reports in one transaction
func (j *Journal) Record(reports ...mailbox.Report) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		for _, report := range reports {
			report := report
			if err := j.record(tx, &report); err != nil {
				return err
			}
		}
		return nil
	})
}

func (j *Journal) record(tx *bolt.Tx, report *mailbox.Report) error {
	if report.Account == "" || report.Mailbox == "" {
		return errors.New("cannot record a report without account and mailbox")
	}
	accountBucket, err := tx.Bucket([]byte(journalBucket)).CreateBucketIfNotExists([]byte(report.Account))
	if err != nil {
		return err
	}
	bucket, err := accountBucket.CreateBucketIfNotExists([]byte(report.Mailbox))
	if err != nil {
		return err
	}
	sequence, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	data, err := SerializeObject(report)
	if err != nil {
		return err
	}
	err = bucket.Put(SerializeSequence(sequence), data)
	if err != nil {
		return err
	}
	j.log.Debugf("journal: recorded %s/%s #%d", report.Account, report.Mailbox, sequence)
	return trim(bucket, MaxEntries)
}

// trim removes the oldest entries above max
func trim(bucket *bolt.Bucket, max int) error {
	count := 0
	cursor := bucket.Cursor()
	for key, _ := cursor.First(); key != nil; key, _ = cursor.Next() {
		count++
	}
	for key, _ := cursor.First(); key != nil && count > max; key, _ = cursor.First() {
		if err := cursor.Delete(); err != nil {
			return err
		}
		count--
	}
	return nil
}

// History returns all the reports of the account, sorted by mailbox then date
func (j *Journal) History(account string) ([]mailbox.Report, error) {
	reports := make([]mailbox.Report, 0)
	err := j.db.View(func(tx *bolt.Tx) error {
		accountBucket := tx.Bucket([]byte(journalBucket)).Bucket([]byte(account))
		if accountBucket == nil {
			return nil
		}
		return accountBucket.ForEach(func(name, value []byte) error {
			// if there's a value it's not a bucket
			if value != nil {
				return nil
			}
			bucket := accountBucket.Bucket(name)
			if bucket == nil {
				return nil
			}
			return bucket.ForEach(func(key, value []byte) error {
				report, err := DeserializeObject[mailbox.Report](value)
				if err != nil {
					j.log.Warnf("journal: cannot read entry %s/%s #%d: %s", account, name, DeserializeSequence(key), err)
					return nil
				}
				reports = append(reports, *report)
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	mailbox.SortReports(reports)
	return reports, nil
}

// Accounts returns the names of the accounts found in the journal
func (j *Journal) Accounts() ([]string, error) {
	accounts := make([]string, 0)
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(journalBucket)).ForEach(func(name, value []byte) error {
			if value == nil {
				accounts = append(accounts, string(name))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
