package prefs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jellytok/jellytok/auth"
	"github.com/jellytok/jellytok/filesystem"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/where"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
)

// Store is the single owner of the preferences. Readers get copies; every
// change goes through Update, is persisted and then announced to subscribers.
type Store struct {
	mu    sync.Mutex
	cache *gache.Cache[*Envelope]
	prefs Preferences

	useKeyring bool

	subscribers map[int]func(Preferences)
	nextID      int
}

// Open loads the store at path, migrating older blobs and creating a fresh
// one when none exists. With useKeyring the access token is kept in the
// system keyring.
func Open(path string, useKeyring bool) (*Store, error) {
	s := &Store{
		cache: gache.New[*Envelope](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
		useKeyring:  useKeyring,
		subscribers: make(map[int]func(Preferences)),
	}

	env, _, err := s.cache.Get()
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	if env == nil {
		s.prefs = Default()
		return s, s.save()
	}

	s.prefs, err = decode(env)
	if err != nil {
		return nil, err
	}

	if s.prefs.TokenInKeyring && s.prefs.User != nil {
		token, err := auth.GetToken(s.prefs.User.ID)
		if err != nil {
			log.Warnf("read token from keyring: %v", err)
		} else {
			s.prefs.User.AccessToken = token
		}
	}

	if env.Version != Version {
		log.Infof("migrated preferences from version %d to %d", env.Version, Version)
		return s, s.save()
	}

	return s, nil
}

var (
	shared     *Store
	sharedErr  error
	sharedOnce sync.Once
)

// Shared returns the process-wide store in the config directory.
func Shared() (*Store, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Open(where.Preferences(), viper.GetBool(key.AuthUseKeyring))
	})
	return shared, sharedErr
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.clone()
}

// Update applies fn to a copy of the preferences, persists the result and
// notifies subscribers. The in-memory state changes even if saving fails.
func (s *Store) Update(fn func(p *Preferences)) error {
	s.mu.Lock()
	next := s.prefs.clone()
	fn(&next)
	next.normalize()
	s.prefs = next
	err := s.save()
	subscribers := s.snapshot()
	s.mu.Unlock()

	s.notify(next, subscribers)
	return err
}

// Reset signs out and restores the defaults. The device id is kept.
func (s *Store) Reset() error {
	s.mu.Lock()
	if s.prefs.User != nil {
		if err := auth.DeleteToken(s.prefs.User.ID); err != nil {
			log.Warnf("delete token: %v", err)
		}
	}

	next := Default()
	next.DeviceID = s.prefs.DeviceID
	s.prefs = next
	err := s.save()
	subscribers := s.snapshot()
	s.mu.Unlock()

	s.notify(next, subscribers)
	return err
}

// Subscribe calls fn with the new preferences after every change until the
// returned function is called.
func (s *Store) Subscribe(fn func(Preferences)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) snapshot() []func(Preferences) {
	subscribers := make([]func(Preferences), 0, len(s.subscribers))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subscribers[i]; ok {
			subscribers = append(subscribers, fn)
		}
	}
	return subscribers
}

func (s *Store) notify(p Preferences, subscribers []func(Preferences)) {
	for _, fn := range subscribers {
		fn(p.clone())
	}
}

// save writes the current preferences. The caller holds the lock.
func (s *Store) save() error {
	persisted := s.prefs.clone()
	persisted.TokenInKeyring = false

	if s.useKeyring && persisted.User != nil && persisted.User.AccessToken != "" {
		if err := auth.SetToken(persisted.User.ID, persisted.User.AccessToken); err != nil {
			log.Warnf("keyring unavailable, keeping token in preferences: %v", err)
		} else {
			persisted.User.AccessToken = ""
			persisted.TokenInKeyring = true
		}
	}
	s.prefs.TokenInKeyring = persisted.TokenInKeyring

	state, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := s.cache.Set(&Envelope{Version: Version, State: state}); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
