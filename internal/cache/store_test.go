package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := payload{Code: "600519", Score: 72.5}
	require.NoError(t, s.Put("prices_600519", in))

	var out payload
	require.True(t, s.Get("prices_600519", &out))
	assert.Equal(t, in, out)
}

func TestMissOnAbsent(t *testing.T) {
	s := newTestStore(t)
	var out payload
	assert.False(t, s.Get("nothing_here", &out))
}

func TestCorruptEntryIsMissAndRemoved(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var out payload
	assert.False(t, s.Get("bad", &out))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt entry should be removed")
}

func TestIsValidRespectsTTL(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("k", payload{}))

	assert.True(t, s.IsValid("k", time.Hour))

	// age the file past the ttl
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(s.Dir(), "k.json"), old, old))
	assert.False(t, s.IsValid("k", time.Hour))

	var out payload
	assert.False(t, s.GetValid("k", time.Hour, &out))
}

func TestNegativeTTLPanics(t *testing.T) {
	s := newTestStore(t)
	assert.Panics(t, func() { s.IsValid("k", -time.Second) })
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("k", payload{Score: 1}))
	require.NoError(t, s.Put("k", payload{Score: 2}))

	var out payload
	require.True(t, s.Get("k", &out))
	assert.Equal(t, 2.0, out.Score)
}

func TestKeySanitization(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("prices/sh.600519 2025", payload{Score: 3}))

	var out payload
	assert.True(t, s.Get("prices/sh.600519 2025", &out))
	assert.Equal(t, 3.0, out.Score)
}

func TestDeleteAndPrefix(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("fin_600519_roe", payload{}))
	require.NoError(t, s.Put("fin_600519_eps", payload{}))
	require.NoError(t, s.Put("prices_600519", payload{}))

	n, err := s.DeletePrefix("fin_600519")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var out payload
	assert.False(t, s.Get("fin_600519_roe", &out))
	assert.True(t, s.Get("prices_600519", &out))

	require.NoError(t, s.Delete("prices_600519"))
	require.NoError(t, s.Delete("prices_600519")) // absent is fine
}

func TestPurge(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("a", payload{}))
	require.NoError(t, s.Put("b", payload{}))

	n, err := s.Purge()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var out payload
	assert.False(t, s.Get("a", &out))
}
