package cfg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creativeprojects/anthill/mailbox"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTLSPort   = 993
	DefaultPlainPort = 143
	DefaultTimeout   = 30 * time.Second
)

// Config is a table of accounts, by name
type Config map[string]Account

type Account struct {
	URL           string             `toml:"url" yaml:"url"`
	Port          int                `toml:"port" yaml:"port"`
	User          string             `toml:"user" yaml:"user"`
	PassCmd       string             `toml:"pass_cmd" yaml:"pass_cmd"`
	Keyring       string             `toml:"keyring" yaml:"keyring"`
	WithTLS       *bool              `toml:"with_tls" yaml:"with_tls"`
	StartTLS      bool               `toml:"starttls" yaml:"starttls"`
	SkipTLSVerify bool               `toml:"skip_tls_verify" yaml:"skip_tls_verify"`
	Compress      bool               `toml:"compress" yaml:"compress"`
	RateLimit     float64            `toml:"rate_limit" yaml:"rate_limit"`
	Timeout       int                `toml:"timeout" yaml:"timeout"`
	Folder        string             `toml:"folder" yaml:"folder"`
	Mailboxes     map[string]Mailbox `toml:"mailboxes" yaml:"mailboxes"`
}

type Mailbox struct {
	Local  string `toml:"local" yaml:"local"`
	Remote string `toml:"remote" yaml:"remote"`
}

// DefaultPath returns $XDG_CONFIG_HOME/anthill/config.toml, or ~/.config/anthill/config.toml
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "anthill", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "anthill", "config.toml")
	}
	return filepath.Join(home, ".config", "anthill", "config.toml")
}

// LoadFromFile loads the configuration from the file: the format is YAML when the
// extension is .yaml or .yml, TOML otherwise
func LoadFromFile(fileName string) (Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".yaml" || ext == ".yml" {
		return loadYAML(file)
	}
	return loadTOML(file)
}

func loadTOML(reader io.ReadCloser) (Config, error) {
	defer reader.Close()
	config := make(Config)
	_, err := toml.NewDecoder(reader).Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("cannot parse configuration: %w", err)
	}
	return config, validateConfiguration(config)
}

func loadYAML(reader io.ReadCloser) (Config, error) {
	defer reader.Close()
	config := make(Config)
	err := yaml.NewDecoder(reader).Decode(&config)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("cannot parse configuration: %w", err)
	}
	return config, validateConfiguration(config)
}

func validateConfiguration(config Config) error {
	if len(config) == 0 {
		return fmt.Errorf("no account defined")
	}
	for name, account := range config {
		if !isFolderName(name) {
			return fmt.Errorf("account %q: name must be a simple folder name", name)
		}
		if err := account.validate(); err != nil {
			return fmt.Errorf("account %q: %w", name, err)
		}
	}
	return nil
}

func (a Account) validate() error {
	if a.URL == "" {
		return fmt.Errorf("missing url")
	}
	if a.Port < 0 || a.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", a.Port)
	}
	if a.User == "" {
		return fmt.Errorf("missing user")
	}
	if a.PassCmd == "" && a.Keyring == "" {
		return fmt.Errorf("missing pass_cmd or keyring")
	}
	if a.RateLimit < 0 {
		return fmt.Errorf("invalid rate_limit: %v", a.RateLimit)
	}
	if a.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %d", a.Timeout)
	}
	if a.Folder == "" {
		return fmt.Errorf("missing folder")
	}
	if len(a.Mailboxes) == 0 {
		return fmt.Errorf("no mailbox defined")
	}
	for key, mbox := range a.Mailboxes {
		if mbox.Local == "" {
			return fmt.Errorf("mailbox %q: missing local", key)
		}
		if mbox.Remote == "" {
			return fmt.Errorf("mailbox %q: missing remote", key)
		}
		if !isFolderName(mbox.Local) {
			return fmt.Errorf("mailbox %q: local %q must be a simple folder name", key, mbox.Local)
		}
	}
	return nil
}

// isFolderName is true for a single path element which stays inside its parent
func isFolderName(name string) bool {
	return name != "" && name == filepath.Base(name) && name != "." && name != ".."
}

// TLS is on unless explicitly disabled
func (a Account) TLS() bool {
	return a.WithTLS == nil || *a.WithTLS
}

// Accounts returns all the accounts sorted by name, with their mailboxes sorted by key
func (c Config) Accounts() []mailbox.Account {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	accounts := make([]mailbox.Account, len(names))
	for i, name := range names {
		accounts[i] = c[name].resolve(name)
	}
	return accounts
}

// Account returns the resolved account by name
func (c Config) Account(name string) (mailbox.Account, bool) {
	account, found := c[name]
	if !found {
		return mailbox.Account{}, false
	}
	return account.resolve(name), true
}

func (a Account) resolve(name string) mailbox.Account {
	port := a.Port
	if port == 0 {
		port = DefaultPlainPort
		if a.TLS() {
			port = DefaultTLSPort
		}
	}
	timeout := DefaultTimeout
	if a.Timeout > 0 {
		timeout = time.Duration(a.Timeout) * time.Second
	}

	keys := make([]string, 0, len(a.Mailboxes))
	for key := range a.Mailboxes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	mailboxes := make([]mailbox.Mailbox, len(keys))
	for i, key := range keys {
		mailboxes[i] = mailbox.Mailbox{
			Name:   key,
			Local:  a.Mailboxes[key].Local,
			Remote: a.Mailboxes[key].Remote,
		}
	}

	return mailbox.Account{
		Name: name,
		Root: ExpandPath(a.Folder),
		Server: mailbox.Server{
			Host:                a.URL,
			Port:                uint16(port),
			Username:            a.User,
			TLS:                 a.TLS(),
			StartTLS:            a.StartTLS,
			SkipTLSVerification: a.SkipTLSVerify,
			Compress:            a.Compress,
			RateLimit:           a.RateLimit * 1024,
			Timeout:             timeout,
		},
		Credential: mailbox.CredentialSource{
			Command: a.PassCmd,
			Keyring: a.Keyring,
		},
		Mailboxes: mailboxes,
	}
}

// ExpandPath replaces a leading ~ with the home directory, and expands the environment variables
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
