package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLPushRPushOrder(t *testing.T) {
	s := New()
	_, err := s.LPush("k", []byte("a"), []byte("b"), []byte("c"))
	require.NoError(t, err)
	vals, _ := s.LRange("k", 0, -1)
	assert.Equal(t, [][]byte{[]byte("c"), []byte("b"), []byte("a")}, vals)
}

func TestLRangeNegativeAndReversed(t *testing.T) {
	s := New()
	_, _ = s.RPush("k", []byte("a"), []byte("b"), []byte("c"))
	vals, _ := s.LRange("k", -2, -1)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("c")}, vals)

	vals, _ = s.LRange("k", 2, 1)
	assert.Equal(t, [][]byte{}, vals)
}

func TestLPopRPopRemovesKeyWhenEmpty(t *testing.T) {
	s := New()
	_, _ = s.RPush("k", []byte("only"))
	vals, err := s.LPop("k", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("only")}, vals)
	assert.Equal(t, 0, s.Exists("k"))
}

func TestLPushXOnMissingKeyIsNoop(t *testing.T) {
	s := New()
	n, err := s.LPushX("missing", []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, s.Exists("missing"))
}

func TestLRemCountDirections(t *testing.T) {
	s := New()
	_, _ = s.RPush("k", []byte("a"), []byte("b"), []byte("a"), []byte("a"))

	removed, err := s.LRem("k", 2, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	vals, _ := s.LRange("k", 0, -1)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("a")}, vals)
}

func TestLInsertBeforeAfter(t *testing.T) {
	s := New()
	_, _ = s.RPush("k", []byte("a"), []byte("c"))
	n, err := s.LInsert("k", true, []byte("c"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	vals, _ := s.LRange("k", 0, -1)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, vals)

	n, err = s.LInsert("k", false, []byte("missing"), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, -1, n)
}

func TestLTrim(t *testing.T) {
	s := New()
	_, _ = s.RPush("k", []byte("a"), []byte("b"), []byte("c"), []byte("d"))
	err := s.LTrim("k", 1, 2)
	require.NoError(t, err)
	vals, _ := s.LRange("k", 0, -1)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("c")}, vals)
}

func TestLPosFindsFirstOccurrence(t *testing.T) {
	s := New()
	_, _ = s.RPush("k", []byte("a"), []byte("b"), []byte("a"))
	idx, ok, err := s.LPos("k", []byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
