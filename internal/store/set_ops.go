package store

// setLockedFor returns the Set at key, creating one if absent and
// createIfAbsent is set, or ErrWrongType on a type mismatch. Caller must
// hold s.mu for writing and have already run expireLocked(key).
func (s *Store) setLockedFor(key string, createIfAbsent bool) (*Set, error) {
	e, ok := s.data[key]
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		return newSet(), nil
	}
	if e.typ != TypeSet {
		return nil, ErrWrongType
	}
	return e.data.(*Set), nil
}

func (s *Store) saveSet(key string, set *Set) {
	if set.Len() == 0 {
		s.deleteLocked(key)
		return
	}
	s.data[key] = &entry{typ: TypeSet, data: set}
}

// SAdd adds members to the set at key (creating it if absent), returning
// the count actually added (§4.B).
func (s *Store) SAdd(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	set, err := s.setLockedFor(key, true)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, m := range members {
		if set.Add(m) {
			added++
		}
	}
	s.saveSet(key, set)
	if added > 0 {
		s.bumpMutations()
	}
	return added, nil
}

// SRem removes members from the set at key, returning the count removed.
func (s *Store) SRem(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	set, err := s.setLockedFor(key, false)
	if err != nil {
		return 0, err
	}
	if set == nil {
		return 0, nil
	}
	removed := 0
	for _, m := range members {
		if set.Remove(m) {
			removed++
		}
	}
	s.saveSet(key, set)
	if removed > 0 {
		s.bumpMutations()
	}
	return removed, nil
}

func (s *Store) SIsMember(key, member string) (bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return false, nil
	}
	if e.typ != TypeSet {
		return false, ErrWrongType
	}
	return e.data.(*Set).IsMember(member), nil
}

func (s *Store) SMembers(key string) ([]string, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return []string{}, nil
	}
	if e.typ != TypeSet {
		return nil, ErrWrongType
	}
	return e.data.(*Set).Members(), nil
}

func (s *Store) SCard(key string) (int, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, nil
	}
	if e.typ != TypeSet {
		return 0, ErrWrongType
	}
	return e.data.(*Set).Len(), nil
}

func (s *Store) SRandMember(key string, count int) ([]string, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return []string{}, nil
	}
	if e.typ != TypeSet {
		return nil, ErrWrongType
	}
	set := e.data.(*Set)
	members := set.Members()
	if count >= 0 {
		if count > len(members) {
			count = len(members)
		}
		return members[:count], nil
	}
	// Negative count: |count| draws with replacement.
	n := -count
	out := make([]string, n)
	for i := range out {
		if len(members) == 0 {
			break
		}
		out[i] = members[i%len(members)]
	}
	return out, nil
}

// SPop removes and returns up to count random members.
func (s *Store) SPop(key string, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	set, err := s.setLockedFor(key, false)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return []string{}, nil
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		m, ok := set.Pop()
		if !ok {
			break
		}
		out = append(out, m)
	}
	s.saveSet(key, set)
	if len(out) > 0 {
		s.bumpMutations()
	}
	return out, nil
}

// readSetOrEmpty reads the set at key for a multi-key operation already
// holding the lock; nonexistent key = empty set (§4.B).
func (s *Store) readSetOrEmpty(key string) (*Set, error) {
	s.expireLocked(key)
	e, ok := s.data[key]
	if !ok {
		return newSet(), nil
	}
	if e.typ != TypeSet {
		return nil, ErrWrongType
	}
	return e.data.(*Set), nil
}

// SInter/SUnion/SDiff run under a single lock acquisition so the result is
// atomic with respect to other writers (§4.B, §5). DIFF treats keys[0] as
// the base set.
func (s *Store) SInter(keys ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		return []string{}, nil
	}
	result, err := s.readSetOrEmpty(keys[0])
	if err != nil {
		return nil, err
	}
	for _, k := range keys[1:] {
		next, err := s.readSetOrEmpty(k)
		if err != nil {
			return nil, err
		}
		result = result.Intersect(next)
		if result.Len() == 0 {
			return []string{}, nil
		}
	}
	return result.Members(), nil
}

func (s *Store) SUnion(keys ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := newSet()
	for _, k := range keys {
		next, err := s.readSetOrEmpty(k)
		if err != nil {
			return nil, err
		}
		result = result.Union(next)
	}
	return result.Members(), nil
}

func (s *Store) SDiff(keys ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		return []string{}, nil
	}
	result, err := s.readSetOrEmpty(keys[0])
	if err != nil {
		return nil, err
	}
	for _, k := range keys[1:] {
		next, err := s.readSetOrEmpty(k)
		if err != nil {
			return nil, err
		}
		result = result.Diff(next)
	}
	return result.Members(), nil
}

func (s *Store) storeMembers(destKey string, members []string) int {
	if len(members) == 0 {
		s.deleteLocked(destKey)
		return 0
	}
	set := newSet()
	for _, m := range members {
		set.Add(m)
	}
	s.data[destKey] = &entry{typ: TypeSet, data: set}
	return set.Len()
}

func (s *Store) SInterStore(destKey string, keys ...string) (int, error) {
	members, err := s.SInter(keys...)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.storeMembers(destKey, members)
	s.bumpMutations()
	return n, nil
}

func (s *Store) SUnionStore(destKey string, keys ...string) (int, error) {
	members, err := s.SUnion(keys...)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.storeMembers(destKey, members)
	s.bumpMutations()
	return n, nil
}

func (s *Store) SDiffStore(destKey string, keys ...string) (int, error) {
	members, err := s.SDiff(keys...)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.storeMembers(destKey, members)
	s.bumpMutations()
	return n, nil
}

// SMove atomically moves member from src to dst. Returns false if member
// was not in src.
func (s *Store) SMove(src, dst, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(src)
	s.expireLocked(dst)

	srcSet, err := s.setLockedFor(src, false)
	if err != nil {
		return false, err
	}
	if srcSet == nil || !srcSet.IsMember(member) {
		return false, nil
	}
	dstSet, err := s.setLockedFor(dst, true)
	if err != nil {
		return false, err
	}
	srcSet.Remove(member)
	dstSet.Add(member)
	s.saveSet(src, srcSet)
	s.saveSet(dst, dstSet)
	s.bumpMutations()
	return true, nil
}
