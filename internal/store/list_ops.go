package store

// listLocked returns the List at key, creating one if absent, or an error
// if key holds a different type. Caller must hold s.mu for writing and has
// already run expireLocked(key).
func (s *Store) listLocked(key string, createIfAbsent bool) (*List, error) {
	e, ok := s.data[key]
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		return newList(), nil
	}
	if e.typ != TypeList {
		return nil, ErrWrongType
	}
	return e.data.(*List), nil
}

func (s *Store) saveList(key string, l *List) {
	if l.Len() == 0 {
		s.deleteLocked(key)
		return
	}
	s.data[key] = &entry{typ: TypeList, data: l}
}

// LPush creates the list if absent, pushes each value onto the head in
// argument order (so `LPUSH k a b c` leaves the head as c,b,a,...) and
// returns the new length (§4.B).
func (s *Store) LPush(key string, values ...[]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, true)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		l.PushFront(v)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return l.Len(), nil
}

func (s *Store) RPush(key string, values ...[]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, true)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		l.PushBack(v)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return l.Len(), nil
}

// LPushX/RPushX push only if the key already holds a list.
func (s *Store) LPushX(key string, values ...[]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if l == nil {
		return 0, nil
	}
	for _, v := range values {
		l.PushFront(v)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return l.Len(), nil
}

func (s *Store) RPushX(key string, values ...[]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if l == nil {
		return 0, nil
	}
	for _, v := range values {
		l.PushBack(v)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return l.Len(), nil
}

// LPop/RPop removes and returns up to count elements; removes the key
// entirely once the list becomes empty (§4.B). A nil, non-error result
// means the key did not exist.
func (s *Store) LPop(key string, count int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return nil, err
	}
	if l == nil || l.Len() == 0 {
		return nil, nil
	}
	if count <= 0 {
		count = 1
	}
	if count > l.Len() {
		count = l.Len()
	}
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		v, _ := l.PopFront()
		out = append(out, v)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return out, nil
}

func (s *Store) RPop(key string, count int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return nil, err
	}
	if l == nil || l.Len() == 0 {
		return nil, nil
	}
	if count <= 0 {
		count = 1
	}
	if count > l.Len() {
		count = l.Len()
	}
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		v, _ := l.PopBack()
		out = append(out, v)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return out, nil
}

// LLen returns the list length, 0 if absent.
func (s *Store) LLen(key string) (int, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, nil
	}
	if e.typ != TypeList {
		return 0, ErrWrongType
	}
	return e.data.(*List).Len(), nil
}

// LRange returns elements [start, stop], negative indices from the end,
// clamped and empty on reversed ranges (§4.B).
func (s *Store) LRange(key string, start, stop int) ([][]byte, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return [][]byte{}, nil
	}
	if e.typ != TypeList {
		return nil, ErrWrongType
	}
	return e.data.(*List).Range(start, stop), nil
}

// LIndex returns the element at index, or false if out of range / absent.
func (s *Store) LIndex(key string, index int) ([]byte, bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return nil, false, nil
	}
	if e.typ != TypeList {
		return nil, false, ErrWrongType
	}
	v, ok := e.data.(*List).GetAt(index)
	return v, ok, nil
}

// LSet overwrites the element at index. Returns ok=false if index is out
// of range on an existing list.
func (s *Store) LSet(key string, index int, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return false, err
	}
	if l == nil {
		return false, nil
	}
	ok := l.SetAt(index, value)
	s.saveList(key, l)
	if ok {
		s.bumpMutations()
	}
	return ok, nil
}

// LRem removes up to |count| occurrences of value: count>0 scans head to
// tail, count<0 scans tail to head, count==0 removes every occurrence.
// Returns the number removed.
func (s *Store) LRem(key string, count int, value []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if l == nil || l.Len() == 0 {
		return 0, nil
	}

	toRemove := count
	if count == 0 {
		toRemove = l.Len()
	} else if count < 0 {
		toRemove = -count
	}

	removed := 0
	if count >= 0 {
		n := l.head
		for n != nil && removed < toRemove {
			next := n.next
			if string(n.value) == string(value) {
				l.removeNode(n)
				removed++
			}
			n = next
		}
	} else {
		n := l.tail
		for n != nil && removed < toRemove {
			prev := n.prev
			if string(n.value) == string(value) {
				l.removeNode(n)
				removed++
			}
			n = prev
		}
	}

	s.saveList(key, l)
	if removed > 0 {
		s.bumpMutations()
	}
	return removed, nil
}

// LTrim keeps only the [start, stop] window (same clamping as LRANGE).
func (s *Store) LTrim(key string, start, stop int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return err
	}
	if l == nil {
		return nil
	}
	l.Trim(start, stop)
	s.saveList(key, l)
	s.bumpMutations()
	return nil
}

// LInsert inserts value before or after the first occurrence of pivot.
// Returns the new length, -1 if pivot was not found, 0 if key is absent.
func (s *Store) LInsert(key string, before bool, pivot, value []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	l, err := s.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if l == nil || l.Len() == 0 {
		return 0, nil
	}
	n := l.findFromHead(pivot)
	if n == nil {
		return -1, nil
	}
	if before {
		l.insertBefore(n, value)
	} else {
		l.insertAfter(n, value)
	}
	s.saveList(key, l)
	s.bumpMutations()
	return l.Len(), nil
}

// LPos returns the index of the first occurrence of value scanning from
// the head, or false if not found.
func (s *Store) LPos(key string, value []byte) (int, bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, false, nil
	}
	if e.typ != TypeList {
		return 0, false, ErrWrongType
	}
	l := e.data.(*List)
	idx := 0
	for n := l.head; n != nil; n = n.next {
		if string(n.value) == string(value) {
			return idx, true, nil
		}
		idx++
	}
	return 0, false, nil
}
