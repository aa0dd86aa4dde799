package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/movevm/txexec/dispatch"
	"github.com/movevm/txexec/executor"
	"github.com/movevm/txexec/interpreter"
	"github.com/movevm/txexec/metrics"
	"github.com/movevm/txexec/onchainconfig"
	"github.com/movevm/txexec/sigverify"
	"github.com/movevm/txexec/staging"
	"github.com/movevm/txexec/types"
)

type memView struct {
	data map[string][]byte
}

func (m memView) Get(path types.AccessPath) ([]byte, bool, error) {
	v, ok := m.data[string(path)]
	return v, ok, nil
}

func encodeU64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func seedAccount(data map[string][]byte, addr common.Address, seq, balance uint64) {
	data[string(interpreter.SequencePath(addr))] = encodeU64(seq)
	data[string(interpreter.BalancePath(addr))] = encodeU64(balance)
}

func newRunner() (executor.Runner, map[string][]byte) {
	data := map[string][]byte{}
	cfg := onchainconfig.NewOpenConfig("GAS", common.Address{})
	d := dispatch.Dispatcher{
		Factory: interpreter.StubFactory{},
		Config: onchainconfig.Static{
			Config:    cfg,
			CostTable: onchainconfig.DefaultCostTable{Base: 1},
		},
	}
	return executor.Runner{
		Dispatcher: d,
		Verifier:   sigverify.Stub{},
		Metrics:    metrics.NewSet("txexec_test"),
	}, data
}

func signedScript(sender common.Address, seq uint64) *types.SignedTransaction {
	txn := &types.SignedTransaction{
		Sender:          sender,
		SequenceNumber:  seq,
		Payload:         types.Payload{Kind: types.PayloadScript, Script: &types.ScriptPayload{Code: interpreter.ScriptNoop}},
		MaxGasAmount:    100,
		GasUnitPrice:    1,
		GasCurrencyCode: "GAS",
	}
	txn.Signature = sigverify.Sign(txn)
	return txn
}

func TestExecuteBlockAppliesUserRunInOrder(t *testing.T) {
	runner, data := newRunner()
	a := common.HexToAddress("0xA1")
	b := common.HexToAddress("0xB1")
	seedAccount(data, a, 0, 1000)
	seedAccount(data, b, 0, 1000)
	cache := staging.New(memView{data: data})

	txns := []types.Transaction{
		{Kind: types.TxnUser, User: signedScript(a, 0)},
		{Kind: types.TxnUser, User: signedScript(b, 0)},
	}

	out, err := runner.ExecuteBlock(context.Background(), txns, cache)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, types.StatusKeep, out[0].Status.Kind)
	require.Equal(t, types.StatusKeep, out[1].Status.Kind)

	seqA, _, _ := cache.Read(interpreter.SequencePath(a))
	require.Equal(t, encodeU64(1), seqA)
}

func TestExecuteBlockDiscardsBadSignatureWithoutRunningBody(t *testing.T) {
	runner, data := newRunner()
	a := common.HexToAddress("0xA2")
	seedAccount(data, a, 0, 1000)
	cache := staging.New(memView{data: data})

	bad := signedScript(a, 0)
	bad.Signature = []byte("forged")

	out, err := runner.ExecuteBlock(context.Background(), []types.Transaction{{Kind: types.TxnUser, User: bad}}, cache)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].Status.IsDiscarded())

	seqA, _, _ := cache.Read(interpreter.SequencePath(a))
	require.Equal(t, encodeU64(0), seqA) // sequence untouched, body never ran
}

func TestExecuteBlockRunsBlockPrologueWaypointAndWriteSetDistinctly(t *testing.T) {
	runner, data := newRunner()
	sender := common.HexToAddress("0xA3")
	seedAccount(data, sender, 0, 1000)
	cache := staging.New(memView{data: data})

	ws := types.NewWriteSet()
	ws.Set(types.AccessPath("genesis/flag"), types.WriteOp{Kind: types.WriteOpValue, Value: []byte("on")})

	txns := []types.Transaction{
		{Kind: types.TxnBlockMetadata, BlockMetadata: &types.BlockMetadata{Round: 1, Proposer: sender}},
		{Kind: types.TxnWaypointWriteSet, Waypoint: &types.ChangeSet{WriteSet: ws}},
		{
			Kind: types.TxnUser,
			User: &types.SignedTransaction{
				Sender:  sender,
				Payload: types.Payload{Kind: types.PayloadWriteSet, WriteSet: &types.ChangeSet{}},
			},
		},
	}

	out, err := runner.ExecuteBlock(context.Background(), txns, cache)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, o := range out {
		require.Equal(t, types.StatusKeep, o.Status.Kind)
	}

	v, found, err := cache.Read(types.AccessPath("genesis/flag"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("on"), v)

	seq, _, _ := cache.Read(interpreter.SequencePath(sender))
	require.Equal(t, encodeU64(1), seq) // write-set flow bumped sequence under zero-cost schedule
}

func TestExecuteBlockDiscardsForgedWriteSetSignatureWithoutRunningBody(t *testing.T) {
	runner, data := newRunner()
	sender := common.HexToAddress("0xC3")
	seedAccount(data, sender, 0, 1000)
	cache := staging.New(memView{data: data})

	txns := []types.Transaction{
		{
			Kind: types.TxnUser,
			User: &types.SignedTransaction{
				Sender:    sender,
				Payload:   types.Payload{Kind: types.PayloadWriteSet, WriteSet: &types.ChangeSet{}},
				Signature: []byte("forged"),
			},
		},
	}

	out, err := runner.ExecuteBlock(context.Background(), txns, cache)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].Status.IsDiscarded())

	seq, _, _ := cache.Read(interpreter.SequencePath(sender))
	require.Equal(t, encodeU64(0), seq) // sequence untouched, writeset body never ran
}

func TestExecuteBlockEmptyInput(t *testing.T) {
	runner, data := newRunner()
	cache := staging.New(memView{data: data})
	out, err := runner.ExecuteBlock(context.Background(), nil, cache)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestExecuteBlockCallsVerifierExactlyOncePerUserRunTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockVerifier := sigverify.NewMockVerifier(ctrl)

	runner, data := newRunner()
	runner.Verifier = mockVerifier
	a := common.HexToAddress("0xC1")
	b := common.HexToAddress("0xC2")
	seedAccount(data, a, 0, 1000)
	seedAccount(data, b, 0, 1000)
	cache := staging.New(memView{data: data})

	mockVerifier.EXPECT().Verify(gomock.Any()).Return(nil).Times(2)

	txns := []types.Transaction{
		{Kind: types.TxnUser, User: signedScript(a, 0)},
		{Kind: types.TxnUser, User: signedScript(b, 0)},
	}
	_, err := runner.ExecuteBlock(context.Background(), txns, cache)
	require.NoError(t, err)
}

func TestServeMetricsShutsDownOnContextCancel(t *testing.T) {
	runner, _ := newRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := runner.ServeMetrics(ctx, "127.0.0.1:0")
	require.NoError(t, err)
}
