package repofake

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
)

var _ token.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory token.Storage for tests. Set FailWrites to
// simulate a quota/availability failure on Set and Remove.
type FakeStorage struct {
	values     map[string]string
	lock       sync.RWMutex
	FailWrites bool
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		values: make(map[string]string),
	}
}

func (fs *FakeStorage) Get(key string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	value, ok := fs.values[key]
	return value, ok
}

func (fs *FakeStorage) Set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.FailWrites {
		return errors.New("storage unavailable")
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStorage) Remove(key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.FailWrites {
		return errors.New("storage unavailable")
	}
	delete(fs.values, key)
	return nil
}

// Len reports the number of stored keys.
func (fs *FakeStorage) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.values)
}
