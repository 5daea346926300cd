package manager

import (
	"context"
	"sync"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/storage"
	"github.com/masoi-online/server/werewolf"
)

// Key identifies one match slot, one per guild channel.
type Key struct {
	Guild   string
	Channel string
}

type entry struct {
	game   *werewolf.Game
	cancel context.CancelFunc
}

// Manager owns the live matches. It is injected wherever matches are
// created or looked up; nothing reaches it through package state.
type Manager struct {
	mu      sync.Mutex
	matches map[Key]*entry
	store   storage.Store
}

func New(store storage.Store) *Manager {
	return &Manager{matches: map[Key]*entry{}, store: store}
}

// Create registers a fresh lobby for the key. A key with a live match
// refuses a second one.
func (m *Manager) Create(key Key, game *werewolf.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.matches[key]; ok && e.game.Phase() != werewolf.PhaseEnded {
		return consts.ErrorsMatchExist
	}
	m.matches[key] = &entry{game: game}
	return nil
}

// Get returns the live match for the key. Finished matches are evicted
// lazily on lookup.
func (m *Manager) Get(key Key) *werewolf.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.matches[key]
	if !ok {
		return nil
	}
	if e.game.Phase() == werewolf.PhaseEnded {
		delete(m.matches, key)
		return nil
	}
	return e.game
}

// Start launches the match loop in the background. The ending is saved
// nowhere; a finished match simply ages out of the table.
func (m *Manager) Start(key Key, onEnd func(*werewolf.Ending)) error {
	m.mu.Lock()
	e, ok := m.matches[key]
	if !ok {
		m.mu.Unlock()
		return consts.ErrorsMatchNotFound
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	m.mu.Unlock()

	if err := e.game.Begin(ctx); err != nil {
		cancel()
		return err
	}
	async.Async(func() {
		defer cancel()
		ending := e.game.Run(ctx)
		if ending != nil && onEnd != nil {
			onEnd(ending)
		}
		_ = m.store.Del(key.Guild, key.Channel)
	})
	return nil
}

// Remove tears the match down: stops its loop, closes its channels and
// drops its snapshot.
func (m *Manager) Remove(key Key) {
	m.mu.Lock()
	e, ok := m.matches[key]
	delete(m.matches, key)
	m.mu.Unlock()
	if !ok {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.game.Shutdown()
	if err := m.store.Del(key.Guild, key.Channel); err != nil {
		log.Error(err)
	}
}

// Save snapshots the match so it can be restored after a restart.
func (m *Manager) Save(key Key) error {
	game := m.Get(key)
	if game == nil {
		return consts.ErrorsSnapshotNotFound
	}
	data, err := game.Snapshot()
	if err != nil {
		return err
	}
	return m.store.Put(key.Guild, key.Channel, data)
}

// Restore rebuilds a saved match and registers it under the key. The
// caller supplies fresh transport wiring; role state outside the snapshot
// starts over.
func (m *Manager) Restore(key Key, courier werewolf.Courier, dir werewolf.Directory, registry *werewolf.Registry, config werewolf.Config) (*werewolf.Game, error) {
	data, err := m.store.Get(key.Guild, key.Channel)
	if err != nil {
		return nil, err
	}
	game, err := werewolf.Restore(data, courier, dir, registry, config)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.matches[key] = &entry{game: game}
	m.mu.Unlock()
	return game, nil
}

// Resume continues a restored match from where the snapshot left off.
func (m *Manager) Resume(key Key, onEnd func(*werewolf.Ending)) {
	m.mu.Lock()
	e, ok := m.matches[key]
	if !ok {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	m.mu.Unlock()

	async.Async(func() {
		defer cancel()
		ending := e.game.Run(ctx)
		if ending != nil && onEnd != nil {
			onEnd(ending)
		}
		_ = m.store.Del(key.Guild, key.Channel)
	})
}

// Each walks the live matches, for shutdown sweeps.
func (m *Manager) Each(fn func(Key, *werewolf.Game)) {
	m.mu.Lock()
	snapshot := make(map[Key]*entry, len(m.matches))
	for k, e := range m.matches {
		snapshot[k] = e
	}
	m.mu.Unlock()
	for k, e := range snapshot {
		fn(k, e.game)
	}
}
