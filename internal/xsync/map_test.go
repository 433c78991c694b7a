package xsync

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type entry struct {
	session string
}

func TestMapLifecycle(t *testing.T) {
	var conns Map[string, *entry]
	_, ok := conns.Get("c1")
	require.False(t, ok)
	require.Panics(t, func() {
		conns.Must("c1")
	})

	conns.Set("c1", &entry{session: "s1"})
	conns.Set("c1", &entry{session: "s2"})
	require.Equal(t, 1, conns.Len())
	require.Equal(t, "s2", conns.Must("c1").session)

	conns.Set("c2", &entry{session: "s3"})
	require.True(t, conns.Has("c2"))
	e, ok := conns.Extract("c2")
	require.True(t, ok)
	require.Equal(t, "s3", e.session)
	require.False(t, conns.Delete("c2"))
	require.Equal(t, 1, conns.Len())

	conns.Set("c3", &entry{})
	seen := map[string]bool{}
	conns.Range(func(id string, _ *entry) bool {
		seen[id] = true

		return true
	})
	require.Equal(t, map[string]bool{"c1": true, "c3": true}, seen)

	conns.Clear()
	require.Zero(t, conns.Len())
	conns.Range(func(string, *entry) bool {
		t.Fatal("range over an empty map")

		return false
	})
}

func TestMapRangeMayDelete(t *testing.T) {
	var m Map[int, string]
	for i := range 8 {
		m.Set(i, strconv.Itoa(i))
	}
	m.Range(func(k int, _ string) bool {
		return m.Delete(k)
	})
	require.Zero(t, m.Len())
}

func TestMapConcurrentSize(t *testing.T) {
	var (
		m  Map[string, int]
		wg sync.WaitGroup
	)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := strconv.Itoa(i % 16)
			m.Set(key, i)
			m.Delete(key)
			m.Set(key, i)
		}()
	}
	wg.Wait()
	require.Equal(t, 16, m.Len())
}
