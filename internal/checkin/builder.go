// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"

	"github.com/nostring/core/internal/policy"
)

// rbfSequence signals replace-by-fee (BIP-125) on every input without
// requiring a locktime.
const rbfSequence = wire.MaxTxInSequenceNum - 2

// Non-witness fixed costs, all counted at the 4 WU/byte base rate.
const (
	txVersionBytes  = 4
	txLocktimeBytes = 4
	countVarintByte = 1 // input/output counts fit in one varint byte below 253
	segwitMarkerWU  = 2 // marker + flag byte, 1 WU each, not base-discounted
	outpointBytes   = 36
	emptyScriptSig  = 1 // a single 0x00 length byte, no scriptSig content
	sequenceBytes   = 4
	outValueBytes   = 8
	p2wshPkScript   = 34 // OP_0 <32-byte hash>
)

// Build constructs the owner's check-in PSBT: it consolidates every
// eligible vault UTXO into a single input set and sends the proceeds,
// minus a worst-case fee, back to the vault's own output script. The
// policy must already be Compiled or Deployed.
//
// Build is a pure function of pol.Config/pol.Script and p: the same
// arguments always produce a byte-identical PSBT.
func Build(pol *policy.Policy, p Params) (*psbt.Packet, error) {
	if pol.State() != policy.Compiled && pol.State() != policy.Deployed {
		return nil, ErrWrongPolicyState
	}

	eligible := selectEligible(p.UTXOs, pol.OutputScript(), p.MinConfirmations)
	if len(eligible) == 0 {
		return nil, ErrNoEligibleInputs
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	var total btcutil.Amount
	for _, u := range eligible {
		tx.AddTxIn(&wire.TxIn{
			PreviousOutPoint: u.OutPoint,
			Sequence:         rbfSequence,
		})
		total += u.Value
	}

	weight := estimateWeight(pol, len(eligible))
	vbytes := (weight + 3) / 4
	fee := btcutil.Amount(p.FeeRateSatPerVByte * int64(vbytes))

	minFee := btcutil.Amount(p.MinRelayFeeRatePer * int64(vbytes))
	if fee < minFee {
		return nil, fmt.Errorf("%w: fee %d below %d", ErrFeeBelowRelay, fee, minFee)
	}
	if p.FeeCeiling > 0 && fee > p.FeeCeiling {
		return nil, fmt.Errorf("%w: fee %d exceeds ceiling %d", ErrFeeAboveCeiling, fee, p.FeeCeiling)
	}

	change := total - fee
	hasOutput := change >= p.DustLimit
	if !hasOutput {
		// The leftover is too small to be its own output; it is
		// swept entirely into the fee rather than created as dust.
		fee = total
		change = 0
	}
	if hasOutput {
		tx.AddTxOut(&wire.TxOut{
			Value:    int64(change),
			PkScript: pol.OutputScript(),
		})
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, fmt.Errorf("checkin: new psbt: %w", err)
	}

	derivations := bip32Derivations(pol)
	for i, u := range eligible {
		packet.Inputs[i].WitnessUtxo = &wire.TxOut{
			Value:    int64(u.Value),
			PkScript: u.PkScript,
		}
		packet.Inputs[i].WitnessScript = pol.Script()
		packet.Inputs[i].Bip32Derivation = derivations
		packet.Inputs[i].SighashType = 0
	}
	if hasOutput {
		packet.Outputs[0].WitnessScript = pol.Script()
		packet.Outputs[0].Bip32Derivation = derivations
	}

	return packet, nil
}

// selectEligible keeps only UTXOs that carry the vault's own output
// script and have reached the minimum confirmation depth, and returns
// them in a fixed deterministic order so Build is reproducible.
func selectEligible(utxos []UTXO, vaultScript []byte, minConf int64) []UTXO {
	var out []UTXO
	for _, u := range utxos {
		if u.Confirmations < minConf {
			continue
		}
		if !bytes.Equal(u.PkScript, vaultScript) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].OutPoint.Hash[:], out[j].OutPoint.Hash[:]
		if c := bytes.Compare(hi, hj); c != 0 {
			return c < 0
		}
		return out[i].OutPoint.Index < out[j].OutPoint.Index
	})
	return out
}

// estimateWeight computes the worst-case transaction weight, assuming
// every threshold slot in the witness script is filled. It assumes one
// output is present; the fee this produces is deliberately charged in
// full even when that output later turns out to be dust and gets
// folded away, which only overestimates the fee.
func estimateWeight(pol *policy.Policy, nInputs int) int {
	base := (txVersionBytes+txLocktimeBytes)*4 + segwitMarkerWU + countVarintByte*4*2
	perInputBase := (outpointBytes + emptyScriptSig + sequenceBytes) * 4
	outputWeight := (outValueBytes + countVarintByte + p2wshPkScript) * 4
	return base + nInputs*(perInputBase+pol.Weight()) + outputWeight
}

// bip32Derivations builds one Bip32Derivation hint per key referenced
// anywhere in the cascade, so a hardware wallet can recognize any path
// it might be asked to sign for an owner check-in.
func bip32Derivations(pol *policy.Policy) []*psbt.Bip32Derivation {
	var out []*psbt.Bip32Derivation
	add := func(k policy.KeySpec) {
		if k.PubKey == nil {
			return
		}
		out = append(out, &psbt.Bip32Derivation{
			PubKey:               k.PubKey.SerializeCompressed(),
			MasterKeyFingerprint: binary.LittleEndian.Uint32(k.MasterFP[:]),
			Bip32Path:            k.DerivePath,
		})
	}
	for _, k := range pol.Config.Owner.Keys() {
		add(k)
	}
	for _, t := range pol.Config.Tiers {
		for _, k := range t.Primary.Keys() {
			add(k)
		}
	}
	return out
}
