package store

import "math"

func (s *Store) zsetLockedFor(key string, createIfAbsent bool) (*ZSet, error) {
	e, ok := s.data[key]
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		return newZSet(), nil
	}
	if e.typ != TypeZSet {
		return nil, ErrWrongType
	}
	return e.data.(*ZSet), nil
}

func (s *Store) saveZSet(key string, z *ZSet) {
	if z.Len() == 0 {
		s.deleteLocked(key)
		return
	}
	s.data[key] = &entry{typ: TypeZSet, data: z}
}

// ZAdd adds or updates member scores, rejecting NaN on insertion (§1, §4.B).
// Returns the count of newly added members.
func (s *Store) ZAdd(key string, members map[string]float64) (int, error) {
	for _, score := range members {
		if math.IsNaN(score) {
			return 0, ErrNaNScore
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	z, err := s.zsetLockedFor(key, true)
	if err != nil {
		return 0, err
	}
	added := 0
	for member, score := range members {
		if z.Add(member, score) {
			added++
		}
	}
	s.saveZSet(key, z)
	s.bumpMutations()
	return added, nil
}

func (s *Store) ZRem(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	z, err := s.zsetLockedFor(key, false)
	if err != nil {
		return 0, err
	}
	if z == nil {
		return 0, nil
	}
	removed := 0
	for _, m := range members {
		if z.Remove(m) {
			removed++
		}
	}
	s.saveZSet(key, z)
	if removed > 0 {
		s.bumpMutations()
	}
	return removed, nil
}

func (s *Store) ZScore(key, member string) (float64, bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, false, nil
	}
	if e.typ != TypeZSet {
		return 0, false, ErrWrongType
	}
	score, ok := e.data.(*ZSet).Score(member)
	return score, ok, nil
}

func (s *Store) ZCard(key string) (int, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, nil
	}
	if e.typ != TypeZSet {
		return 0, ErrWrongType
	}
	return e.data.(*ZSet).Len(), nil
}

func (s *Store) ZRank(key, member string) (int, bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, false, nil
	}
	if e.typ != TypeZSet {
		return 0, false, ErrWrongType
	}
	rank, ok := e.data.(*ZSet).Rank(member)
	return rank, ok, nil
}

func (s *Store) ZRevRank(key, member string) (int, bool, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, false, nil
	}
	if e.typ != TypeZSet {
		return 0, false, ErrWrongType
	}
	rank, ok := e.data.(*ZSet).RevRank(member)
	return rank, ok, nil
}

func (s *Store) ZRange(key string, start, stop int) ([]ZMember, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return []ZMember{}, nil
	}
	if e.typ != TypeZSet {
		return nil, ErrWrongType
	}
	return e.data.(*ZSet).RangeByRank(start, stop), nil
}

func (s *Store) ZRevRange(key string, start, stop int) ([]ZMember, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return []ZMember{}, nil
	}
	if e.typ != TypeZSet {
		return nil, ErrWrongType
	}
	return e.data.(*ZSet).RevRangeByRank(start, stop), nil
}

func (s *Store) ZRangeByScore(key string, min, max float64) ([]ZMember, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return []ZMember{}, nil
	}
	if e.typ != TypeZSet {
		return nil, ErrWrongType
	}
	return e.data.(*ZSet).RangeByScore(min, max), nil
}

func (s *Store) ZRevRangeByScore(key string, min, max float64) ([]ZMember, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return []ZMember{}, nil
	}
	if e.typ != TypeZSet {
		return nil, ErrWrongType
	}
	return e.data.(*ZSet).RevRangeByScore(min, max), nil
}

func (s *Store) ZCount(key string, min, max float64) (int, error) {
	e, ok := s.getForRead(key)
	if !ok {
		return 0, nil
	}
	if e.typ != TypeZSet {
		return 0, ErrWrongType
	}
	return e.data.(*ZSet).CountByScore(min, max), nil
}

// ZIncrBy adds delta to member's score (creating the set/member at 0 if
// absent) and returns the new score. Rejects a result that is NaN.
func (s *Store) ZIncrBy(key, member string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	z, err := s.zsetLockedFor(key, true)
	if err != nil {
		return 0, err
	}
	current, _ := z.Score(member)
	next := current + delta
	if math.IsNaN(next) {
		return 0, ErrNaNScore
	}
	z.Add(member, next)
	s.saveZSet(key, z)
	s.bumpMutations()
	return next, nil
}

// ZPopMin/ZPopMax remove and return up to count members with the lowest or
// highest scores.
func (s *Store) ZPopMin(key string, count int) ([]ZMember, error) {
	return s.zPop(key, count, false)
}

func (s *Store) ZPopMax(key string, count int) ([]ZMember, error) {
	return s.zPop(key, count, true)
}

func (s *Store) zPop(key string, count int, max bool) ([]ZMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	z, err := s.zsetLockedFor(key, false)
	if err != nil {
		return nil, err
	}
	if z == nil || z.Len() == 0 {
		return []ZMember{}, nil
	}
	if count <= 0 {
		count = 1
	}
	if count > z.Len() {
		count = z.Len()
	}
	var popped []ZMember
	for i := 0; i < count; i++ {
		var m ZMember
		if max {
			all := z.RangeByRank(-1, -1)
			if len(all) == 0 {
				break
			}
			m = all[0]
		} else {
			all := z.RangeByRank(0, 0)
			if len(all) == 0 {
				break
			}
			m = all[0]
		}
		z.Remove(m.Member)
		popped = append(popped, m)
	}
	s.saveZSet(key, z)
	if len(popped) > 0 {
		s.bumpMutations()
	}
	if popped == nil {
		popped = []ZMember{}
	}
	return popped, nil
}

// ZRemRangeByScore removes all members with minScore <= score <= maxScore.
func (s *Store) ZRemRangeByScore(key string, min, max float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	z, err := s.zsetLockedFor(key, false)
	if err != nil {
		return 0, err
	}
	if z == nil {
		return 0, nil
	}
	victims := z.RangeByScore(min, max)
	for _, v := range victims {
		z.Remove(v.Member)
	}
	s.saveZSet(key, z)
	if len(victims) > 0 {
		s.bumpMutations()
	}
	return len(victims), nil
}

// ZRemRangeByRank removes all members whose rank falls within [start, stop].
func (s *Store) ZRemRangeByRank(key string, start, stop int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	z, err := s.zsetLockedFor(key, false)
	if err != nil {
		return 0, err
	}
	if z == nil {
		return 0, nil
	}
	victims := z.RangeByRank(start, stop)
	for _, v := range victims {
		z.Remove(v.Member)
	}
	s.saveZSet(key, z)
	if len(victims) > 0 {
		s.bumpMutations()
	}
	return len(victims), nil
}
