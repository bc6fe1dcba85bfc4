package store

import (
	"encoding/json"
	"sync"
)

// State is the in-memory authority over every guild record. Event handlers
// run on their own goroutines, so access is guarded even though writes are
// effectively serialized per guild further up.
type State struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewState() *State {
	return &State{
		records: make(map[string]*Record),
	}
}

// Record returns the guild's record or nil if the guild was never seen.
func (s *State) Record(guildID string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.records[guildID]
}

func (s *State) SetChannels(guildID string, channels *Channels) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(guildID).Channels = channels
}

func (s *State) SetSnapshot(guildID string, snapshot *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(guildID).Snapshot = snapshot
}

func (s *State) Delete(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, guildID)
}

func (s *State) GuildIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}

	return ids
}

func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *State) record(guildID string) *Record {
	rec, ok := s.records[guildID]
	if !ok {
		rec = &Record{}
		s.records[guildID] = rec
	}

	return rec
}

// document is the wire form of State. The two parallel maps predate the
// single-record layout and remain the authoritative schema of the file.
type document struct {
	StatsChannels map[string]*Channels `json:"statsChannels"`
	ServerStats   map[string]*Snapshot `json:"serverStats"`
}

func (s *State) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := document{
		StatsChannels: make(map[string]*Channels, len(s.records)),
		ServerStats:   make(map[string]*Snapshot, len(s.records)),
	}

	for id, rec := range s.records {
		if rec.Channels != nil {
			doc.StatsChannels[id] = rec.Channels
		}

		if rec.Snapshot != nil {
			doc.ServerStats[id] = rec.Snapshot
		}
	}

	return json.Marshal(doc)
}

func (s *State) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		s.records = make(map[string]*Record)
	}

	for id, channels := range doc.StatsChannels {
		s.record(id).Channels = channels
	}

	for id, snapshot := range doc.ServerStats {
		s.record(id).Snapshot = snapshot
	}

	return nil
}
