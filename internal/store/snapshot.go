package store

import "time"

// SnapshotEntry is a point-in-time, fully-decoupled copy of one keyspace
// slot, safe to read from a background goroutine while the live Store keeps
// mutating (§4.D, §9).
type SnapshotEntry struct {
	Key       string
	Type      ValueType
	Str       []byte
	List      [][]byte
	Set       []string
	ZSet      []ZMember
	ExpiresAt *time.Time
}

// Snapshot takes a consistent point-in-time copy of the whole keyspace under
// a single shared lock, deep-cloning every container so the background
// writer (BGSAVE / BGREWRITEAOF) never races the live store (§4.D, §9:
// "simplest correct design" permits a full clone rather than copy-on-write
// bookkeeping).
func (s *Store) Snapshot() []SnapshotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SnapshotEntry, 0, len(s.data))
	for key, e := range s.data {
		se := SnapshotEntry{Key: key, Type: e.typ}
		if exp, ok := s.expires[key]; ok {
			t := exp
			se.ExpiresAt = &t
		}
		switch e.typ {
		case TypeString:
			se.Str = append([]byte{}, e.data.([]byte)...)
		case TypeList:
			se.List = e.data.(*List).Clone().ToSlice()
		case TypeSet:
			se.Set = e.data.(*Set).Clone().Members()
		case TypeZSet:
			se.ZSet = e.data.(*ZSet).Clone().All()
		}
		out = append(out, se)
	}
	return out
}

// Load replaces the entire keyspace with the given entries, used when
// restoring from a snapshot file at startup (§4.D, §6); AOF replay runs
// through the dispatcher instead. It does not bump Mutations — restored
// state is not a new write.
func (s *Store) Load(entries []SnapshotEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*entry, len(entries))
	s.expires = make(map[string]time.Time)
	for _, se := range entries {
		switch se.Type {
		case TypeString:
			s.data[se.Key] = &entry{typ: TypeString, data: se.Str}
		case TypeList:
			l := newList()
			for _, v := range se.List {
				l.PushBack(v)
			}
			s.data[se.Key] = &entry{typ: TypeList, data: l}
		case TypeSet:
			set := newSet()
			for _, m := range se.Set {
				set.Add(m)
			}
			s.data[se.Key] = &entry{typ: TypeSet, data: set}
		case TypeZSet:
			z := newZSet()
			for _, m := range se.ZSet {
				z.Add(m.Member, m.Score)
			}
			s.data[se.Key] = &entry{typ: TypeZSet, data: z}
		}
		if se.ExpiresAt != nil {
			s.expires[se.Key] = *se.ExpiresAt
		}
	}
}
