package sessionfile

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/session"
)

// file names of the two independent session keys; the entire durable state
// owned by the client.
const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store persists the session keys as two files under a state directory.
type Store struct {
	dir string
}

var _ session.Storage = (*Store)(nil)

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "creating state dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Token() (string, error) {
	data, err := s.read(tokenFile)
	return string(data), err
}

func (s *Store) User() ([]byte, error) {
	return s.read(userFile)
}

func (s *Store) Write(token string, user []byte) error {
	if err := ioutil.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0600); err != nil {
		return errors.Wrap(err, "writing token")
	}
	if err := ioutil.WriteFile(filepath.Join(s.dir, userFile), user, 0600); err != nil {
		return errors.Wrap(err, "writing user")
	}
	return nil
}

func (s *Store) Clear() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", name)
		}
	}
	return nil
}

// read returns empty content (not an error) for a missing key.
func (s *Store) read(name string) ([]byte, error) {
	data, err := ioutil.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return data, nil
}
