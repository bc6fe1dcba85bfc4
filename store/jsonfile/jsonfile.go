package jsonfile

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/VTGare/kazoeru/store"
	"go.uber.org/zap"
)

// Store keeps the whole state in a single pretty-printed JSON document
// at a fixed path, editable and inspectable by hand.
type Store struct {
	path string
	log  *zap.SugaredLogger
}

var _ store.Store = (*Store)(nil)

func New(path string, log *zap.SugaredLogger) *Store {
	return &Store{
		path: path,
		log:  log,
	}
}

// Load reads the persisted document. A missing or unreadable document
// degrades to an empty state: a bot with no memory is recoverable, a bot
// that refuses to boot is not.
func (s *Store) Load() *store.State {
	state := store.NewState()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warnf("failed to read %v: %v", s.path, err)
		}

		return state
	}

	if err := json.Unmarshal(data, state); err != nil {
		s.log.Warnf("failed to parse %v: %v", s.path, err)
		return store.NewState()
	}

	return state
}

func (s *Store) Save(state *store.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) Reset() error {
	data, err := json.MarshalIndent(store.NewState(), "", "  ")
	if err != nil {
		return err
	}

	return s.write(data)
}

// write goes through a temporary file so a crash mid-write can't leave a
// truncated document behind.
func (s *Store) write(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
