package mdir

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/emersion/go-maildir"
)

const (
	SubfolderCur = "cur"
	SubfolderNew = "new"
	SubfolderTmp = "tmp"
)

// maxCreateAttempts bounds the retries on a file name collision
const maxCreateAttempts = 10

var subfolders = []string{SubfolderCur, SubfolderNew, SubfolderTmp}

type Config struct {
	// Hostname is the host component of new file names
	Hostname string
	// StrictIndex fails the index on a missing subfolder instead of treating it as empty
	StrictIndex bool
	Logger      lib.Logger
}

// Maildir is one local mailbox: a directory with cur, new and tmp subfolders.
// It only ever creates new files.
type Maildir struct {
	path   string
	strict bool
	log    lib.Logger
	namer  namer
	create func(filename string) (io.WriteCloser, error)
}

// createExclusive fails with fs.ErrExist when the file is already there
func createExclusive(filename string) (io.WriteCloser, error) {
	return os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
}

func New(path string, cfg Config) *Maildir {
	logger := cfg.Logger
	if logger == nil {
		logger = &lib.NoLog{}
	}
	return &Maildir{
		path:   path,
		strict: cfg.StrictIndex,
		log:    logger,
		namer:  newNamer(cfg.Hostname, time.Now, lib.NewToken),
		create: createExclusive,
	}
}

func (m *Maildir) Path() string {
	return m.path
}

// Init creates the mailbox directory and its subfolders. It does nothing if they already exist.
func (m *Maildir) Init() error {
	err := os.MkdirAll(filepath.Dir(m.path), 0700)
	if err != nil {
		return fmt.Errorf("%w %q: %v", lib.ErrBootstrap, m.path, err)
	}
	err = maildir.Dir(m.path).Init()
	if err != nil {
		return fmt.Errorf("%w %q: %v", lib.ErrBootstrap, m.path, err)
	}
	return nil
}

// Index scans cur, new and tmp and returns the file names found for each uid.
func (m *Maildir) Index() (Index, error) {
	index := make(Index)
	for _, subfolder := range subfolders {
		dir := filepath.Join(m.path, subfolder)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !m.strict {
				m.log.Warnf("missing folder %q: considered empty", dir)
				continue
			}
			return nil, fmt.Errorf("%w %q: %v", lib.ErrLocalIndex, dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			uid, ok := ParseUID(name)
			if !ok {
				if uidPattern.MatchString(name) {
					m.log.Warnf("ignoring %q: invalid uid", name)
				}
				continue
			}
			index[uid] = append(index[uid], filepath.Join(subfolder, name))
		}
	}
	return index, nil
}

// Deliver writes a new message file and returns its full path.
// The file is never overwritten: on a name collision another random token is tried.
func (m *Maildir) Deliver(msg mailbox.Message, body []byte) (string, error) {
	dir := filepath.Join(m.path, Subfolder(msg.Flags))
	var file io.WriteCloser
	var filename string
	var err error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		filename = filepath.Join(dir, m.namer.filename(msg.Uid, msg.Flags))
		file, err = m.create(filename)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("cannot create message file: %w", err)
		}
		m.log.Debugf("file %q already exists", filename)
	}
	if err != nil {
		return "", fmt.Errorf("cannot create message file after %d attempts: %w", maxCreateAttempts, err)
	}

	_, err = file.Write(body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := os.Remove(filename); removeErr != nil {
			m.log.Errorf("cannot remove partial file %q: %s", filename, removeErr)
		}
		return "", fmt.Errorf("cannot write message uid %d: %w", msg.Uid, err)
	}
	return filename, nil
}

// Index maps a uid to the file names (relative to the mailbox) holding it.
// More than one file name for a uid is a duplicate.
type Index map[uint32][]string

// UIDs returns the set of uids present locally
func (i Index) UIDs() mailbox.UIDSet {
	set := make(mailbox.UIDSet, len(i))
	for uid := range i {
		set.Add(uid)
	}
	return set
}

// Duplicates returns the uids stored in more than one file, sorted
func (i Index) Duplicates() []uint32 {
	duplicates := make([]uint32, 0)
	for uid, files := range i {
		if len(files) > 1 {
			duplicates = append(duplicates, uid)
		}
	}
	sort.Slice(duplicates, func(a, b int) bool { return duplicates[a] < duplicates[b] })
	return duplicates
}

// Count returns the number of message files
func (i Index) Count() int {
	count := 0
	for _, files := range i {
		count += len(files)
	}
	return count
}
