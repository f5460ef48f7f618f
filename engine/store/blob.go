package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// BlobURLPrefix marks model URLs that point at a locally opened file.
const BlobURLPrefix = "blob:"

var ErrBlobReleased = errors.New("blob handle released")

// blobTable holds the bytes behind blob URLs. Each handle is released exactly once.
type blobTable struct {
	mu      *sync.RWMutex
	data    map[string][]byte
	created int
	freed   int
}

func newBlobTable() *blobTable {
	return &blobTable{
		mu:   &sync.RWMutex{},
		data: make(map[string][]byte),
	}
}

func (b *blobTable) create(data []byte) string {
	id := uuid.Must(uuid.NewV7()).String()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[id] = data
	b.created++
	return id
}

func (b *blobTable) open(id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.data[id]
	if !ok {
		return nil, ErrBlobReleased
	}
	return data, nil
}

// release reports whether the handle was live.
func (b *blobTable) release(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[id]; !ok {
		return false
	}
	delete(b.data, id)
	b.freed++
	return true
}

// live returns the number of handles not yet released.
func (b *blobTable) live() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.created - b.freed
}
