package store

import (
	"strconv"
	"time"
)

// Set unconditionally writes a string value, setting or clearing the
// expiration per expiresAt (nil = no expiration) — SET k v [EX s] (§4.B).
func (s *Store) Set(key string, value []byte, expiresAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value, expiresAt)
	s.bumpMutations()
}

func (s *Store) setLocked(key string, value []byte, expiresAt *time.Time) {
	s.data[key] = &entry{typ: TypeString, data: value}
	if expiresAt != nil {
		s.expires[key] = *expiresAt
	} else {
		delete(s.expires, key)
	}
}

// SetNX sets key only if it does not already exist. Returns whether the
// write happened.
func (s *Store) SetNX(key string, value []byte, expiresAt *time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	if _, ok := s.data[key]; ok {
		return false
	}
	s.setLocked(key, value, expiresAt)
	s.bumpMutations()
	return true
}

// GetSet atomically sets key to value and returns its previous value (and
// whether it existed). Errors with ErrWrongType if the existing value is
// not a string.
func (s *Store) GetSet(key string, value []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	var prev []byte
	existed := false
	if e, ok := s.data[key]; ok {
		if e.typ != TypeString {
			return nil, false, ErrWrongType
		}
		prev = e.data.([]byte)
		existed = true
	}
	s.setLocked(key, value, nil)
	s.bumpMutations()
	return prev, existed, nil
}

// Get returns the string value for key, or (nil, false, nil) if absent.
// Errors with ErrWrongType if key holds a different value type.
func (s *Store) Get(key string) ([]byte, bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return nil, false, nil
	}
	if e.typ != TypeString {
		return nil, false, ErrWrongType
	}
	return e.data.([]byte), true, nil
}

// Strlen returns the byte length of the string at key, 0 if absent.
func (s *Store) Strlen(key string) (int, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return len(v), nil
}

// MSet writes every key/value pair under a single lock acquisition so the
// batch is atomic with respect to other writers (§4.B, §5).
func (s *Store) MSet(pairs map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range pairs {
		s.setLocked(k, v, nil)
	}
	s.bumpMutations()
}

// MSetNX writes every pair only if none of the keys already exist; it is
// all-or-nothing. Returns whether the write happened.
func (s *Store) MSetNX(pairs map[string][]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range pairs {
		s.expireLocked(k)
		if _, ok := s.data[k]; ok {
			return false
		}
	}
	for k, v := range pairs {
		s.setLocked(k, v, nil)
	}
	s.bumpMutations()
	return true
}

// MGet reads every key under a single lock acquisition (§4.B, §5). A
// missing key or a wrong-typed key both yield a nil element, matching
// Redis's MGET contract of never failing the whole batch.
func (s *Store) MGet(keys []string) [][]byte {
	s.mu.Lock() // exclusive: passive expiration may delete within the batch
	defer s.mu.Unlock()

	result := make([][]byte, len(keys))
	for i, k := range keys {
		s.expireLocked(k)
		e, ok := s.data[k]
		if !ok || e.typ != TypeString {
			continue
		}
		result[i] = e.data.([]byte)
	}
	return result
}

// Append appends value to the string at key, creating it if absent. Returns
// the resulting length.
func (s *Store) Append(key string, value []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	e, ok := s.data[key]
	if !ok {
		s.setLocked(key, append([]byte{}, value...), nil)
		s.bumpMutations()
		return len(value), nil
	}
	if e.typ != TypeString {
		return 0, ErrWrongType
	}
	cur := e.data.([]byte)
	next := append(append([]byte{}, cur...), value...)
	e.data = next
	s.bumpMutations()
	return len(next), nil
}

// IncrBy adds delta to the integer stored at key (creating it at 0 if
// absent) and returns the new value.
func (s *Store) IncrBy(key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)

	var current int64
	if e, ok := s.data[key]; ok {
		if e.typ != TypeString {
			return 0, ErrWrongType
		}
		parsed, err := strconv.ParseInt(string(e.data.([]byte)), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = parsed
	}

	next := current + delta
	s.data[key] = &entry{typ: TypeString, data: []byte(strconv.FormatInt(next, 10))}
	s.bumpMutations()
	return next, nil
}
