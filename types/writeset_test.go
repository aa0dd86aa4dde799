package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movevm/txexec/types"
)

func TestWriteSetPreservesFirstInsertionOrder(t *testing.T) {
	ws := types.NewWriteSet()
	ws.Set(types.AccessPath("a"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("1")})
	ws.Set(types.AccessPath("b"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("2")})
	ws.Set(types.AccessPath("a"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("3")}) // overwrite, same slot

	var order []string
	var values []string
	ws.Iter(func(p types.AccessPath, op types.WriteOp) {
		order = append(order, string(p))
		values = append(values, string(op.Value))
	})

	require.Equal(t, []string{"a", "b"}, order)
	require.Equal(t, []string{"3", "2"}, values)
	require.Equal(t, 2, ws.Len())
}

func TestConcatPreservesOrderAcrossSets(t *testing.T) {
	a := types.NewWriteSet()
	a.Set(types.AccessPath("x"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("a1")})
	b := types.NewWriteSet()
	b.Set(types.AccessPath("y"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("b1")})

	combined := types.Concat(a, b)
	var paths []string
	combined.Iter(func(p types.AccessPath, _ types.WriteOp) { paths = append(paths, string(p)) })
	require.Equal(t, []string{"x", "y"}, paths)
}

func TestConcatLaterWinsOnOverlap(t *testing.T) {
	a := types.NewWriteSet()
	a.Set(types.AccessPath("k"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("from-a")})
	b := types.NewWriteSet()
	b.Set(types.AccessPath("k"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("from-b")})

	combined := types.Concat(a, b)
	require.Equal(t, 1, combined.Len())
	combined.Iter(func(_ types.AccessPath, op types.WriteOp) {
		require.Equal(t, []byte("from-b"), op.Value)
	})
}

func TestPathsMatchesDistinctKeys(t *testing.T) {
	ws := types.NewWriteSet()
	ws.Set(types.AccessPath("a"), types.WriteOp{Kind: types.WriteOpValue})
	ws.Set(types.AccessPath("b"), types.WriteOp{Kind: types.WriteOpValue})
	paths := ws.Paths()
	require.Len(t, paths, 2)
	_, ok := paths["a"]
	require.True(t, ok)
}

func TestConcatEventsPreservesOrder(t *testing.T) {
	a := []types.Event{{Key: []byte("k1")}}
	b := []types.Event{{Key: []byte("k2")}}
	got := types.ConcatEvents(a, b)
	require.Equal(t, []byte("k1"), got[0].Key)
	require.Equal(t, []byte("k2"), got[1].Key)
}

func TestNilWriteSetIterIsNoOp(t *testing.T) {
	var ws *types.WriteSet
	require.Equal(t, 0, ws.Len())
	called := false
	ws.Iter(func(types.AccessPath, types.WriteOp) { called = true })
	require.False(t, called)
}
