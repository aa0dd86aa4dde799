// Code generated by mockgen-style hand authoring for sigverify.Verifier. The
// shape matches go.uber.org/mock's generated recorder pattern so tests can
// set per-call expectations the way the rest of the pack's go.uber.org/mock
// users do.
package sigverify

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/movevm/txexec/types"
)

// MockVerifier is a gomock-style mock of the Verifier interface.
type MockVerifier struct {
	ctrl     *gomock.Controller
	recorder *MockVerifierMockRecorder
}

// MockVerifierMockRecorder is the recorder for MockVerifier.
type MockVerifierMockRecorder struct {
	mock *MockVerifier
}

// NewMockVerifier returns a new mock bound to ctrl.
func NewMockVerifier(ctrl *gomock.Controller) *MockVerifier {
	m := &MockVerifier{ctrl: ctrl}
	m.recorder = &MockVerifierMockRecorder{m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockVerifier) EXPECT() *MockVerifierMockRecorder {
	return m.recorder
}

// Verify mocks base method.
func (m *MockVerifier) Verify(txn *types.SignedTransaction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Verify", txn)
	ret0, _ := ret[0].(error)
	return ret0
}

// Verify indicates an expected call of Verify.
func (mr *MockVerifierMockRecorder) Verify(txn any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Verify", reflect.TypeOf((*MockVerifier)(nil).Verify), txn)
}
