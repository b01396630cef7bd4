package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSAddSRemSIsMember(t *testing.T) {
	s := New()
	added, err := s.SAdd("k", "a", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	ok, _ := s.SIsMember("k", "a")
	assert.True(t, ok)

	removed, err := s.SRem("k", "a", "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestSInterUnionDiff(t *testing.T) {
	s := New()
	_, _ = s.SAdd("a", "1", "2", "3")
	_, _ = s.SAdd("b", "2", "3", "4")

	inter, err := s.SInter("a", "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3"}, inter)

	union, err := s.SUnion("a", "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3", "4"}, union)

	diff, err := s.SDiff("a", "b")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1"}, diff)
}

func TestSInterWithMissingKeyIsEmpty(t *testing.T) {
	s := New()
	_, _ = s.SAdd("a", "1", "2")
	inter, err := s.SInter("a", "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{}, inter)
}

func TestSMove(t *testing.T) {
	s := New()
	_, _ = s.SAdd("src", "x")
	moved, err := s.SMove("src", "dst", "x")
	require.NoError(t, err)
	assert.True(t, moved)

	inSrc, _ := s.SIsMember("src", "x")
	inDst, _ := s.SIsMember("dst", "x")
	assert.False(t, inSrc)
	assert.True(t, inDst)
}

func TestSUnionStore(t *testing.T) {
	s := New()
	_, _ = s.SAdd("a", "1")
	_, _ = s.SAdd("b", "2")
	n, err := s.SUnionStore("dest", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	members, _ := s.SMembers("dest")
	assert.ElementsMatch(t, []string{"1", "2"}, members)
}

func TestSPopRemovesMembers(t *testing.T) {
	s := New()
	_, _ = s.SAdd("k", "a", "b", "c")
	popped, err := s.SPop("k", 2)
	require.NoError(t, err)
	assert.Len(t, popped, 2)
	remaining, _ := s.SCard("k")
	assert.Equal(t, 1, remaining)
}

func TestSAddOnWrongTypeErrors(t *testing.T) {
	s := New()
	s.Set("k", []byte("v"), nil)
	_, err := s.SAdd("k", "x")
	assert.ErrorIs(t, err, ErrWrongType)
}
