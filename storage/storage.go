package storage

import (
	"sync"

	"github.com/masoi-online/server/consts"
)

// Store keeps match snapshots keyed by guild and channel so an interrupted
// match can be picked up again.
type Store interface {
	Put(guildID, channelID string, data []byte) error
	Get(guildID, channelID string) ([]byte, error)
	Del(guildID, channelID string) error
	Close() error
}

// Memory is the in-process store, enough for a single node and for tests.
type Memory struct {
	mu    sync.Mutex
	snaps map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{snaps: map[string][]byte{}}
}

func memKey(guildID, channelID string) string {
	return guildID + "/" + channelID
}

func (m *Memory) Put(guildID, channelID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.snaps[memKey(guildID, channelID)] = cp
	return nil
}

func (m *Memory) Get(guildID, channelID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.snaps[memKey(guildID, channelID)]
	if !ok {
		return nil, consts.ErrorsSnapshotNotFound
	}
	return data, nil
}

func (m *Memory) Del(guildID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, memKey(guildID, channelID))
	return nil
}

func (m *Memory) Close() error { return nil }
