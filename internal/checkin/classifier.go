// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkin

// Tag names the kind of spend a Classify call believes it is looking
// at.
type Tag string

const (
	TagOwnerCheckIn Tag = "owner_checkin"
	TagHeirClaim    Tag = "heir_claim"
	TagUnknown      Tag = "unknown"
)

// Basis records which signal a Result's tag was decided by, so a
// caller auditing a classification can see why it was made.
type Basis string

const (
	BasisMalformed       Basis = "malformed"
	BasisWitnessAnalysis Basis = "witness_analysis"
	BasisTimelockTiming  Basis = "timelock_timing"
	BasisDisagreement    Basis = "disagreement"
)

// Result is one input's classification: a tag, a confidence in
// [0,1], and the basis the tag was decided on.
type Result struct {
	Tag        Tag
	Confidence float64
	Basis      Basis
}

// witnessVerdict is the classifier's read of the witness stack alone,
// independent of block height.
type witnessVerdict struct {
	tag        Tag
	confidence float64
}

// schnorrSigLengths are the witness item lengths consistent with a
// Schnorr signature, with or without an explicit sighash-type byte.
var schnorrSigLengths = map[int]bool{64: true, 65: true}

// classifyWitness reads the witness stack shape alone.
func classifyWitness(witness [][]byte) witnessVerdict {
	switch {
	case len(witness) == 0:
		return witnessVerdict{TagUnknown, 0.00}

	case len(witness) == 1:
		if schnorrSigLengths[len(witness[0])] {
			return witnessVerdict{TagOwnerCheckIn, 0.95}
		}
		// A single item of an unusual length is still most
		// consistent with a bare signature, just an unexpected one.
		return witnessVerdict{TagOwnerCheckIn, 0.70}

	default:
		// CHECKMULTISIG's historical off-by-one bug requires a
		// leading dummy element; a multi-item stack whose first
		// element is empty is the heir-branch shape produced by
		// this package's thresh() primaries.
		if len(witness[0]) == 0 {
			return witnessVerdict{TagHeirClaim, 0.90}
		}
		return witnessVerdict{TagUnknown, 0.30}
	}
}

// Classify inspects one spend of a vault outpoint's witness alongside
// the block height it confirmed at, and returns a tag and confidence.
// spendHeight and vaultConfirmHeight are absolute chain heights;
// firstTierTimelock is the first cascade tier's relative locktime in
// blocks.
//
// Before the first tier's timelock has elapsed, only the owner branch
// is satisfiable, so timing alone decides the result regardless of
// witness shape. Afterwards the witness shape decides. Classify does
// not decode which specific tier a multi-item witness satisfies, so
// it cannot independently corroborate a heir witness against that
// tier's own timelock; it reports the witness-only verdict in that
// case rather than overstating confidence.
//
// Classify is side-effect-free and reproducible: the same witness,
// heights, and timelock always produce the same Result.
func Classify(witness [][]byte, spendHeight, vaultConfirmHeight int64, firstTierTimelock uint16) Result {
	elapsed := spendHeight - vaultConfirmHeight
	if elapsed < int64(firstTierTimelock) {
		return Result{TagOwnerCheckIn, 0.99, BasisTimelockTiming}
	}

	wv := classifyWitness(witness)
	if wv.tag == TagUnknown {
		if len(witness) == 0 {
			return Result{TagUnknown, 0.00, BasisMalformed}
		}
		return Result{TagUnknown, 0.30, BasisDisagreement}
	}
	return Result{wv.tag, wv.confidence, BasisWitnessAnalysis}
}
