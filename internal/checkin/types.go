// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package checkin builds the owner's periodic self-spend that proves
// liveness and resets every cascade tier's relative timelock, and
// classifies a confirmed spend of a vault outpoint as an owner
// check-in or an heir claim.
package checkin

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

var (
	// ErrNoEligibleInputs is returned when no UTXO meets the minimum
	// confirmation depth or matches the vault's output script.
	ErrNoEligibleInputs = errors.New("checkin: no eligible inputs")

	// ErrMixedScript reports a caller-supplied UTXO that does not carry
	// the vault's own output script. Build does not return it: it skips
	// such UTXOs, so a check-in only ever consolidates outputs of one
	// descriptor, and returns ErrNoEligibleInputs if none remain.
	ErrMixedScript = errors.New("checkin: utxo does not match vault output script")

	// ErrFeeBelowRelay is returned when the computed fee would not
	// clear the caller's minimum relay fee rate.
	ErrFeeBelowRelay = errors.New("checkin: fee below minimum relay rate")

	// ErrFeeAboveCeiling is returned when the computed fee exceeds the
	// caller-supplied ceiling, most likely signaling a construction bug
	// rather than a deliberately generous fee.
	ErrFeeAboveCeiling = errors.New("checkin: fee exceeds caller ceiling")

	// ErrWrongPolicyState is returned when the policy passed to Build
	// has not reached the Compiled state.
	ErrWrongPolicyState = errors.New("checkin: policy must be compiled before building a check-in")
)

// UTXO is one confirmed output controlled by the vault's descriptor.
type UTXO struct {
	OutPoint      wire.OutPoint
	Value         btcutil.Amount
	PkScript      []byte
	Confirmations int64
}

// Params pins the four inputs requires a check-in to be a
// deterministic function of: the UTXO set snapshot, the descriptor
// (via Policy), the current block height, and a fee-rate estimate.
type Params struct {
	UTXOs              []UTXO
	MinConfirmations   int64
	FeeRateSatPerVByte int64
	MinRelayFeeRatePer int64
	FeeCeiling         btcutil.Amount
	DustLimit          btcutil.Amount
}
