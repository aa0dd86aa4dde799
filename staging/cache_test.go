package staging_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movevm/txexec/staging"
	"github.com/movevm/txexec/types"
)

type fakeView struct {
	data map[string][]byte
	err  error
}

func (f fakeView) Get(path types.AccessPath) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	v, ok := f.data[string(path)]
	return v, ok, nil
}

func TestCacheReadFallsThroughToBacking(t *testing.T) {
	backing := fakeView{data: map[string][]byte{"a": []byte("1")}}
	c := staging.New(backing)

	v, found, err := c.Read(types.AccessPath("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)

	_, found, err = c.Read(types.AccessPath("missing"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheApplyOverlaysAndTombstones(t *testing.T) {
	backing := fakeView{data: map[string][]byte{"a": []byte("1")}}
	c := staging.New(backing)

	ws := types.NewWriteSet()
	ws.Set(types.AccessPath("a"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("2")})
	ws.Set(types.AccessPath("b"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("3")})
	c.Apply(ws)

	v, found, err := c.Read(types.AccessPath("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), v)

	v, found, err = c.Read(types.AccessPath("b"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("3"), v)

	del := types.NewWriteSet()
	del.Set(types.AccessPath("a"), types.WriteOp{Kind: types.WriteOpDelete})
	c.Apply(del)

	_, found, err = c.Read(types.AccessPath("a"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheApplyLastWriterWins(t *testing.T) {
	backing := fakeView{data: map[string][]byte{}}
	c := staging.New(backing)

	first := types.NewWriteSet()
	first.Set(types.AccessPath("k"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("first")})
	c.Apply(first)

	second := types.NewWriteSet()
	second.Set(types.AccessPath("k"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("second")})
	c.Apply(second)

	v, _, err := c.Read(types.AccessPath("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("second"), v)
}

func TestCacheReadWrapsBackingError(t *testing.T) {
	backing := fakeView{err: errors.New("disk on fire")}
	c := staging.New(backing)

	_, _, err := c.Read(types.AccessPath("x"))
	require.Error(t, err)
}

func TestSnapshotObservesPriorApplies(t *testing.T) {
	backing := fakeView{data: map[string][]byte{}}
	c := staging.New(backing)

	ws := types.NewWriteSet()
	ws.Set(types.AccessPath("k"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("v")})
	c.Apply(ws)

	snap := c.Snapshot()
	v, found, err := snap.Get(types.AccessPath("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v"), v)
}
