// Package vault locates and persists user configuration files. The
// driver convention is one file per user under ~/.mpw.d, named after
// the user's full name with the format's extension. The vault works
// through an abstract filesystem so behavior is testable without
// touching the host.
package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pion/logging"
	"github.com/spf13/afero"

	"github.com/mpw-go/mpw/pkg/marshal"
)

// DirName is the configuration directory under the user's home.
const DirName = ".mpw.d"

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// Config configures a Vault.
type Config struct {
	// Fs is the filesystem to operate on. Defaults to the host
	// filesystem.
	Fs afero.Fs

	// Home overrides the base directory containing DirName. Defaults
	// to the current user's home directory.
	Home string

	// LoggerFactory is the factory for creating loggers.
	LoggerFactory logging.LoggerFactory
}

// Vault reads and writes user files in one configuration directory.
type Vault struct {
	fs  afero.Fs
	dir string
	log logging.LeveledLogger
}

// New creates a Vault from the config, resolving defaults.
func New(config Config) (*Vault, error) {
	v := &Vault{fs: config.Fs}
	if v.fs == nil {
		v.fs = afero.NewOsFs()
	}
	if config.LoggerFactory != nil {
		v.log = config.LoggerFactory.NewLogger("vault")
	}

	home := config.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return nil, fmt.Errorf("vault: cannot locate home directory: %w", err)
		}
	}
	v.dir = filepath.Join(home, DirName)
	return v, nil
}

// Path returns the file path for a user in the given format.
func (v *Vault) Path(fullName string, f marshal.Format) string {
	return filepath.Join(v.dir, fullName+"."+f.Extension())
}

// Load reads and unmarshals the user's file.
//
// The preferred format is tried first; when fixed is false and the
// preferred file is absent, the other on-disk format is tried before
// giving up. A user with no file at all is created fresh and
// authenticated against the secret. The format the user was actually
// loaded in (or should be saved in) is returned alongside.
func (v *Vault) Load(fullName, masterSecret string, preferred marshal.Format, fixed bool) (*marshal.User, marshal.Format, error) {
	return v.load(fullName, masterSecret, preferred, fixed, marshal.ReadUser)
}

// Reset is Load with a master-secret update: the persisted key ID is
// replaced by the one the new secret derives, and stateful content
// that can no longer be decrypted is dropped.
func (v *Vault) Reset(fullName, newMasterSecret string, preferred marshal.Format, fixed bool) (*marshal.User, marshal.Format, error) {
	return v.load(fullName, newMasterSecret, preferred, fixed, marshal.ResetUser)
}

func (v *Vault) load(fullName, masterSecret string, preferred marshal.Format, fixed bool,
	read func([]byte, marshal.Format, string) (*marshal.User, error)) (*marshal.User, marshal.Format, error) {
	formats := []marshal.Format{preferred}
	if !fixed {
		switch preferred {
		case marshal.FormatJSON:
			formats = append(formats, marshal.FormatFlat)
		case marshal.FormatFlat:
			formats = append(formats, marshal.FormatJSON)
		}
	}

	for _, f := range formats {
		path := v.Path(fullName, f)
		data, err := afero.ReadFile(v.fs, path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("vault: read %s: %w", path, err)
		}

		u, err := read(data, f, masterSecret)
		if err != nil {
			return nil, 0, err
		}
		if v.log != nil {
			v.log.Debugf("loaded %q from %s (%d sites)", fullName, path, len(u.Sites))
		}
		// Loading a fallback format migrates the user to the
		// preferred one on the next save.
		return u, preferred, nil
	}

	if v.log != nil {
		v.log.Infof("no sites file for %q, starting fresh", fullName)
	}
	u := marshal.NewUser(fullName)
	if err := u.Authenticate(masterSecret); err != nil {
		return nil, 0, err
	}
	return u, preferred, nil
}

// Save marshals the user and writes it back. FormatNone is a no-op.
func (v *Vault) Save(u *marshal.User, f marshal.Format) error {
	if f == marshal.FormatNone {
		return nil
	}

	data, err := marshal.WriteUser(u, f)
	if err != nil {
		return err
	}
	if err := v.fs.MkdirAll(v.dir, dirMode); err != nil {
		return fmt.Errorf("vault: create %s: %w", v.dir, err)
	}

	path := v.Path(u.FullName, f)
	if err := afero.WriteFile(v.fs, path, data, fileMode); err != nil {
		return fmt.Errorf("vault: write %s: %w", path, err)
	}
	if v.log != nil {
		v.log.Debugf("saved %q to %s (%d sites)", u.FullName, path, len(u.Sites))
	}
	return nil
}
