package interpreter_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/interpreter"
	"github.com/movevm/txexec/types"
)

type memView struct {
	data map[string][]byte
}

func (m memView) Get(path types.AccessPath) ([]byte, bool, error) {
	v, ok := m.data[string(path)]
	return v, ok, nil
}

func TestStubExecuteScriptNoop(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	meter := gasmeter.NewTransaction(gasmeter.ZeroCostTable{}, 100)
	meter.EnableMetering()
	require.NoError(t, vm.ExecuteScript(interpreter.ScriptNoop, nil, nil, common.Address{}, meter))
	require.Equal(t, uint64(100), meter.Remaining())
}

func TestStubExecuteScriptLoopExhaustsMeter(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	meter := gasmeter.NewTransaction(gasmeter.ZeroCostTable{}, 5)
	meter.EnableMetering()
	err := vm.ExecuteScript(interpreter.ScriptLoop, nil, nil, common.Address{}, meter)
	require.Error(t, err)
	require.Equal(t, uint64(0), meter.Remaining())
}

func TestStubExecuteScriptUnknownIsLinkingError(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	meter := gasmeter.NewTransaction(gasmeter.ZeroCostTable{}, 5)
	err := vm.ExecuteScript([]byte("nonsense"), nil, nil, common.Address{}, meter)
	require.Error(t, err)
}

func TestStubPublishModuleRejectsEmptyBytecode(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	meter := gasmeter.NewTransaction(gasmeter.ZeroCostTable{}, 100)
	meter.EnableMetering()
	err := vm.PublishModule(nil, common.Address{}, meter)
	require.Error(t, err)
}

func TestStubPublishModuleWritesUnderTargetAddress(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	meter := gasmeter.NewTransaction(gasmeter.ZeroCostTable{}, 100)
	meter.EnableMetering()
	target := common.HexToAddress("0xDEAD")
	require.NoError(t, vm.PublishModule([]byte("bytecode"), target, meter))

	cs, err := vm.Finish()
	require.NoError(t, err)
	require.Equal(t, 1, cs.WriteSet.Len())
}

func TestStubFinishAfterDropFails(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	vm.Drop()
	_, err := vm.Finish()
	require.Error(t, err)
}

func TestStubDropDiscardsPendingWrites(t *testing.T) {
	vm := interpreter.StubFactory{}.NewSession(memView{data: map[string][]byte{}})
	meter := gasmeter.NewTransaction(gasmeter.ZeroCostTable{}, 100)
	meter.EnableMetering()
	require.NoError(t, vm.PublishModule([]byte("bytecode"), common.Address{}, meter))
	vm.Drop()
	// a second Finish after Drop must fail rather than return the dropped
	// writes, since Drop is the rollback primitive the failure-epilogue
	// path relies on.
	_, err := vm.Finish()
	require.Error(t, err)
}
