// Package gasmeter tracks a per-transaction gas budget with explicit
// metering enable/disable windows (spec.md §4.3), grounded on the shape of
// cosmossdk.io/store/types.GasMeter (ConsumeGas/GasConsumed/Limit) and the
// teacher's ante/evm/10_gas_wanted.go bound-checking style, extended with
// the lexical enable/disable windows the cosmos-sdk meter does not have —
// see DESIGN.md for why that divergence from the teacher was necessary.
package gasmeter

import (
	"github.com/movevm/txexec/vmstatus"
)

// Kind distinguishes a privileged system meter (prologue/cleanup) from a
// user-metered transaction meter (spec.md §4.3). Both share the same
// arithmetic; Kind only gates which interpreter checks run.
type Kind uint8

const (
	System Kind = iota
	Transaction
)

// CostTable supplies the per-byte intrinsic gas rate. A real cost table is
// an external collaborator (spec.md Non-goals: "gas-schedule computation");
// this is the minimal contract the meter consumes from it.
type CostTable interface {
	IntrinsicGasPerByte() uint64
	BaseIntrinsicGas() uint64
}

// ZeroCostTable charges nothing per byte, matching the Rust original's
// zero_cost_schedule used for block-prologue and write-set bookkeeping
// calls (spec.md §4.8, §4.9 step 4).
type ZeroCostTable struct{}

func (ZeroCostTable) IntrinsicGasPerByte() uint64 { return 0 }
func (ZeroCostTable) BaseIntrinsicGas() uint64     { return 0 }

// Meter tracks remaining gas units for one transaction.
type Meter struct {
	kind         Kind
	remaining    uint64
	enabled      bool
	intrinsicRun bool
	costTable    CostTable
}

// NewSystem returns a privileged meter with gasLeft remaining units, used
// for prologue/cleanup execution (spec.md §4.3 "system" construction mode).
func NewSystem(costTable CostTable, gasLeft uint64) *Meter {
	return &Meter{kind: System, remaining: gasLeft, costTable: costTable}
}

// NewTransaction returns a user-metered meter with maxGas remaining units
// (spec.md §4.3 "transaction" construction mode).
func NewTransaction(costTable CostTable, maxGas uint64) *Meter {
	return &Meter{kind: Transaction, remaining: maxGas, costTable: costTable}
}

// Kind reports which construction mode built this meter.
func (m *Meter) Kind() Kind { return m.kind }

// Remaining returns the gas units left.
func (m *Meter) Remaining() uint64 { return m.remaining }

// EnableMetering opens a metering window; charges inside the window are
// applied. Prologue/epilogue/validation run with metering disabled; the
// transaction body runs with metering enabled (spec.md §4.3, §4.6).
func (m *Meter) EnableMetering() { m.enabled = true }

// DisableMetering closes the metering window; charges inside a disabled
// window are silently skipped.
func (m *Meter) DisableMetering() { m.enabled = false }

// Enabled reports whether the meter is currently inside a metering window.
func (m *Meter) Enabled() bool { return m.enabled }

// Charge deducts amount from the remaining budget. Charges while disabled
// are no-ops. Fails with ErrOutOfGas if amount exceeds the remaining
// budget while metering is enabled.
func (m *Meter) Charge(amount uint64) error {
	if !m.enabled {
		return nil
	}
	if amount > m.remaining {
		m.remaining = 0
		return vmstatus.ErrOutOfGas
	}
	m.remaining -= amount
	return nil
}

// ChargeIntrinsicGas charges the one-time cost proportional to rawSize,
// per the active cost table (spec.md §4.3). It must be called exactly once,
// immediately after EnableMetering, at the start of the metered window
// (spec.md §4.6 "Ordering rules"); a second call is a no-op so callers that
// share a helper across flows cannot double-charge by accident.
func (m *Meter) ChargeIntrinsicGas(rawSize uint64) error {
	if m.intrinsicRun {
		return nil
	}
	m.intrinsicRun = true
	cost := m.costTable.BaseIntrinsicGas() + rawSize*m.costTable.IntrinsicGasPerByte()
	return m.Charge(cost)
}

// GasUsed computes how much of start has been consumed relative to the
// meter's current remaining balance.
func GasUsed(start uint64, m *Meter) uint64 {
	if m.remaining >= start {
		return 0
	}
	return start - m.remaining
}
