// Package policy implements the gas-bound, script-allowlist, module-
// publisher and publish-target-address rules of spec.md §4.4, grounded on
// the teacher's ante/evm/10_gas_wanted.go (bound checking) and
// ante/evm/mono_decorator.go (ordered composition of named checks).
package policy

import (
	"bytes"

	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/movevm/txexec/types"
	"github.com/movevm/txexec/vmstatus"
)

// Config is the subset of on-chain configuration PolicyChecks consumes
// (spec.md §6 "On-chain config"). A real implementation loads it from the
// StagingCache; see the onchainconfig package for the interface and a
// static test double.
type Config struct {
	SystemGasLimit     uint64
	MinGasUnitPrice    uint64
	MaxGasUnitPrice    uint64
	MaxTransactionSize uint64 // 0 means unbounded; see CheckTransactionSize
	KnownCurrencies    map[string]bool
	PublishingOpen     bool
	AllowedScriptHash  map[string]bool // consulted only when !PublishingOpen
	CoreCodeAddress    common.Address
}

// CheckGas enforces max_gas * price <= system_limit, gas_unit_price within
// published bounds, and a recognized currency code (spec.md §4.4).
func CheckGas(cfg Config, meta types.TransactionMetadata) error {
	if !cfg.KnownCurrencies[meta.GasCurrencyCode] {
		return vmstatus.ErrInvalidGasSpecifier.Wrapf("unrecognized gas currency %q", meta.GasCurrencyCode)
	}
	if meta.GasUnitPrice < cfg.MinGasUnitPrice {
		return vmstatus.ErrGasUnitPriceBelowMin.Wrapf("price %d below minimum %d", meta.GasUnitPrice, cfg.MinGasUnitPrice)
	}
	if cfg.MaxGasUnitPrice > 0 && meta.GasUnitPrice > cfg.MaxGasUnitPrice {
		return vmstatus.ErrGasUnitPriceBelowMin.Wrapf("price %d above maximum %d", meta.GasUnitPrice, cfg.MaxGasUnitPrice)
	}

	maxCost := math.LegacyNewDecFromInt(math.NewIntFromUint64(meta.MaxGasAmount)).
		Mul(math.LegacyNewDecFromInt(math.NewIntFromUint64(meta.GasUnitPrice)))
	limit := math.LegacyNewDecFromInt(math.NewIntFromUint64(cfg.SystemGasLimit))
	if cfg.SystemGasLimit > 0 && maxCost.GT(limit) {
		return vmstatus.ErrMaxGasExceedsMax.Wrapf("max cost %s exceeds system limit %d", maxCost.String(), cfg.SystemGasLimit)
	}
	return nil
}

// CheckTransactionSize enforces the declared raw size does not exceed max.
func CheckTransactionSize(meta types.TransactionMetadata, max uint64) error {
	if max > 0 && meta.RawSizeBytes > max {
		return vmstatus.ErrExceededMaxTransactionSize.Wrapf("size %d exceeds max %d", meta.RawSizeBytes, max)
	}
	return nil
}

// IsAllowedScript consults the publishing policy: in closed mode only a
// whitelisted script hash may execute (spec.md §4.4).
func IsAllowedScript(cfg Config, codeHash []byte) error {
	if cfg.PublishingOpen {
		return nil
	}
	if cfg.AllowedScriptHash[string(codeHash)] {
		return nil
	}
	return vmstatus.ErrUnknownScript
}

// IsAllowedModule reports whether sender may publish modules: in closed
// mode only the reserved core code address may (spec.md §4.4).
func IsAllowedModule(cfg Config, sender common.Address) error {
	if cfg.PublishingOpen {
		return nil
	}
	if bytes.Equal(sender.Bytes(), cfg.CoreCodeAddress.Bytes()) {
		return nil
	}
	return vmstatus.ErrInvalidModulePublisher
}

// PublishTargetAddress returns the address new module bytecode installs
// under: sender when publishing is open, else the reserved core code
// address (spec.md §4.4 "Publishing target address"). This is a pure
// policy rule, not a privilege escalation — a non-core sender under closed
// mode will already have failed IsAllowedModule before this is consulted.
func PublishTargetAddress(cfg Config, sender common.Address) common.Address {
	if cfg.PublishingOpen {
		return sender
	}
	return cfg.CoreCodeAddress
}
