package vmstatus_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

func TestToTransactionStatusNilIsExecuted(t *testing.T) {
	st := vmstatus.ToTransactionStatus(nil)
	require.Equal(t, types.StatusKeep, st.Kind)
}

func TestToTransactionStatusBodyFailureKeeps(t *testing.T) {
	st := vmstatus.ToTransactionStatus(vmstatus.ErrOutOfGas)
	require.Equal(t, types.StatusKeep, st.Kind)
}

func TestToTransactionStatusNonBodyFailureDiscards(t *testing.T) {
	st := vmstatus.ToTransactionStatus(vmstatus.ErrSequenceNumberMismatch)
	require.Equal(t, types.StatusDiscard, st.Kind)
}

func TestDiscardForcesDiscardKindEvenForBodyFailure(t *testing.T) {
	st := vmstatus.Discard(vmstatus.ErrOutOfGas)
	require.Equal(t, types.StatusDiscard, st.Kind)
}

func TestIsBodyFailureClassifiesKnownCodes(t *testing.T) {
	require.True(t, vmstatus.IsBodyFailure(vmstatus.ErrOutOfGas))
	require.True(t, vmstatus.IsBodyFailure(vmstatus.ErrArithmeticAbort))
	require.True(t, vmstatus.IsBodyFailure(vmstatus.ErrTypeError))
	require.True(t, vmstatus.IsBodyFailure(vmstatus.ErrLinkingError))
	require.True(t, vmstatus.IsBodyFailure(vmstatus.ErrUserAbort))
	require.False(t, vmstatus.IsBodyFailure(vmstatus.ErrInvalidSignature))
	require.False(t, vmstatus.IsBodyFailure(nil))
}

func TestIsBodyFailureSurvivesWrap(t *testing.T) {
	wrapped := vmstatus.ErrOutOfGas.Wrap("loop exhausted budget")
	require.True(t, vmstatus.IsBodyFailure(wrapped))
}
