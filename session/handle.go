// Package session implements the short-lived transactional scope over the
// interpreter described in spec.md §4.2: a Handle is bound to a
// staging.Cache snapshot at creation, forwards script/module/function
// calls into the interpreter, and produces an effects bundle on Finish or
// nothing at all if dropped.
package session

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/gasmeter"
	"github.com/movevm/txexec/interpreter"
	"github.com/movevm/txexec/staging"
	"github.com/movevm/txexec/types"
)

// Handle wraps one interpreter.VM bound to a staging snapshot.
type Handle struct {
	vm       interpreter.VM
	finished bool
}

// New opens a session over cache's current snapshot via factory. Each
// transaction gets a freshly created Handle (spec.md §4.2 "Lifetimes").
func New(factory interpreter.Factory, cache *staging.Cache) *Handle {
	return &Handle{vm: factory.NewSession(cache.Snapshot())}
}

func (h *Handle) ExecuteScript(code []byte, tyArgs []string, args [][]byte, sender common.Address, meter *gasmeter.Meter) error {
	return h.vm.ExecuteScript(code, tyArgs, args, sender, meter)
}

func (h *Handle) PublishModule(code []byte, target common.Address, meter *gasmeter.Meter) error {
	return h.vm.PublishModule(code, target, meter)
}

func (h *Handle) ExecuteFunction(module types.ModuleID, function string, tyArgs []string, args [][]byte, sender common.Address, meter *gasmeter.Meter) error {
	return h.vm.ExecuteFunction(module, function, tyArgs, args, sender, meter)
}

// Finish drains pending writes into a normalized effects bundle. Calling
// Finish twice, or calling it after Drop, is a programmer error.
func (h *Handle) Finish() (types.ChangeSet, error) {
	cs, err := h.vm.Finish()
	if err == nil {
		h.finished = true
	}
	return cs, err
}

// Drop discards the session without applying any effect — the rollback
// primitive used when BODY fails and a fresh session must be constructed
// for the failure epilogue (spec.md §9).
func (h *Handle) Drop() {
	if h.finished {
		return
	}
	h.vm.Drop()
}
