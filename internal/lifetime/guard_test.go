package lifetime

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlkit/sqlcore/sqlerr"
)

func TestGuardFree(t *testing.T) {
	g := New("blob")
	require.NoError(t, g.Err())
	require.True(t, g.Free())
	require.False(t, g.Free())
	require.Equal(t, Freed, g.State())
	err := g.Err()
	require.ErrorIs(t, err, sqlerr.ErrResourceFreed)
	require.Contains(t, err.Error(), "blob was freed")
}

func TestGuardZeroValue(t *testing.T) {
	var g Guard
	require.Equal(t, Live, g.State())
	require.True(t, g.Free())
	require.ErrorIs(t, g.Err(), sqlerr.ErrResourceFreed)
}

func TestGuardTree(t *testing.T) {
	conn := New("conn")
	stmt := conn.Attach("stmt")
	cursor := stmt.Attach("cursor")
	lob := cursor.Attach("lob")
	require.Equal(t, 1, conn.Children())

	t.Run("FreeChildDetaches", func(t *testing.T) {
		other := conn.Attach("other")
		require.Equal(t, 2, conn.Children())
		require.True(t, other.Free())
		require.Equal(t, 1, conn.Children())
	})

	require.True(t, stmt.Free())
	require.ErrorIs(t, stmt.Err(), sqlerr.ErrResourceFreed)
	require.ErrorIs(t, cursor.Err(), sqlerr.ErrResourceClosed)
	require.ErrorIs(t, lob.Err(), sqlerr.ErrResourceClosed)
	require.NoError(t, conn.Err())

	// a closed resource still accepts free without failing
	require.False(t, cursor.Free())
	require.Equal(t, Closed, cursor.State())
}

func TestGuardAttachToReleased(t *testing.T) {
	g := New("conn")
	g.Close()
	child := g.Attach("stmt")
	require.Equal(t, Closed, child.State())
	require.ErrorIs(t, child.Err(), sqlerr.ErrResourceClosed)
}

func TestGuardOnReleaseRunsOnce(t *testing.T) {
	var (
		g     = New("cursor")
		calls atomic.Int32
		wg    sync.WaitGroup
	)
	g.OnRelease(func() { calls.Add(1) })
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				g.Free()
			} else {
				g.Close()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), calls.Load())
	require.NotEqual(t, Live, g.State())
}
