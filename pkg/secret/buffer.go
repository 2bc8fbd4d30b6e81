package secret

import (
	"errors"
	"sync"
)

var ErrDestroyed = errors.New("secret material has been destroyed")

// Buffer owns a private copy of secret bytes. Reads hand out copies; once
// Destroy is called the backing array is zeroed and every read returns an
// empty slice.
type Buffer struct {
	mu        sync.RWMutex
	b         []byte
	destroyed bool
}

func New(b []byte) *Buffer {
	return &Buffer{b: append([]byte(nil), b...)}
}

// Adopt takes ownership of b without copying. The caller must not keep
// other references to b.
func Adopt(b []byte) *Buffer {
	return &Buffer{b: b}
}

func (s *Buffer) Bytes() []byte {
	if s == nil {
		return []byte{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return []byte{}
	}
	return append([]byte(nil), s.b...)
}

// Use runs fn with a view of the secret bytes while holding the read lock.
// fn must not retain the slice.
func (s *Buffer) Use(fn func(b []byte) error) error {
	if s == nil {
		return ErrDestroyed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return ErrDestroyed
	}
	return fn(s.b)
}

func (s *Buffer) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return 0
	}
	return len(s.b)
}

func (s *Buffer) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	Zero(s.b)
	s.destroyed = true
}

func (s *Buffer) Destroyed() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// Clone copies the secret into a new Buffer. Cloning a destroyed buffer
// yields a destroyed buffer.
func (s *Buffer) Clone() *Buffer {
	if s == nil {
		return &Buffer{destroyed: true}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.destroyed {
		return &Buffer{destroyed: true}
	}
	return New(s.b)
}

func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
