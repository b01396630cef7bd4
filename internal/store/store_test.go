package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), nil)
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestGetOnWrongTypeReturnsWrongType(t *testing.T) {
	s := New()
	_, _ = s.LPush("k", []byte("a"))
	_, _, err := s.Get("k")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestExpirePassiveOnAccess(t *testing.T) {
	s := New()
	past := time.Now().Add(-time.Second)
	s.Set("k", []byte("v"), &past)
	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Size())
}

func TestTTLSecondsContract(t *testing.T) {
	s := New()
	assert.EqualValues(t, -2, s.TTLSeconds("missing"))

	s.Set("k", []byte("v"), nil)
	assert.EqualValues(t, -1, s.TTLSeconds("k"))

	future := time.Now().Add(10 * time.Second)
	s.Expire("k", future)
	ttl := s.TTLSeconds("k")
	assert.True(t, ttl > 0 && ttl <= 10)
}

func TestDelExistsRename(t *testing.T) {
	s := New()
	s.Set("a", []byte("1"), nil)
	s.Set("b", []byte("2"), nil)

	assert.Equal(t, 2, s.Exists("a", "b", "missing"))
	assert.True(t, s.Rename("a", "c"))
	assert.False(t, s.Rename("missing", "z"))

	_, ok, _ := s.Get("c")
	assert.True(t, ok)
	_, ok, _ = s.Get("a")
	assert.False(t, ok)

	assert.Equal(t, 2, s.Del("b", "c"))
}

func TestMSetMGetAtomicBatch(t *testing.T) {
	s := New()
	s.MSet(map[string][]byte{"a": []byte("1"), "b": []byte("2")})
	result := s.MGet([]string{"a", "b", "missing"})
	require.Len(t, result, 3)
	assert.Equal(t, []byte("1"), result[0])
	assert.Equal(t, []byte("2"), result[1])
	assert.Nil(t, result[2])
}

func TestMSetNXAllOrNothing(t *testing.T) {
	s := New()
	s.Set("a", []byte("exists"), nil)
	ok := s.MSetNX(map[string][]byte{"a": []byte("x"), "b": []byte("y")})
	assert.False(t, ok)
	_, exists, _ := s.Get("b")
	assert.False(t, exists)
}

func TestIncrBy(t *testing.T) {
	s := New()
	n, err := s.IncrBy("counter", 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	n, err = s.IncrBy("counter", -2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestIncrByNonIntegerErrors(t *testing.T) {
	s := New()
	s.Set("k", []byte("notanumber"), nil)
	_, err := s.IncrBy("k", 1)
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestActiveExpireCycleRemovesDueKeys(t *testing.T) {
	s := New()
	past := time.Now().Add(-time.Minute)
	for i := 0; i < 30; i++ {
		s.Set(string(rune('a'+i)), []byte("v"), &past)
	}
	removed := s.ActiveExpireCycle(DefaultSweepConfig())
	assert.True(t, removed > 0)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.Set("str", []byte("hello"), nil)
	_, _ = s.RPush("list", []byte("a"), []byte("b"))
	_, _ = s.SAdd("set", "x", "y")
	_, _ = s.ZAdd("zset", map[string]float64{"m1": 1.5})

	entries := s.Snapshot()

	restored := New()
	restored.Load(entries)

	v, _, _ := restored.Get("str")
	assert.Equal(t, []byte("hello"), v)

	l, _ := restored.LRange("list", 0, -1)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, l)

	members, _ := restored.SMembers("set")
	assert.ElementsMatch(t, []string{"x", "y"}, members)

	score, ok, _ := restored.ZScore("zset", "m1")
	assert.True(t, ok)
	assert.Equal(t, 1.5, score)
}
