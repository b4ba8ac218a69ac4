// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// buildWitnessScript renders a CascadeConfig as a right-associated
// IF/ELSE tree:
//
//	IF
//	  <owner branch>
//	ELSE
//	  <t1> CSV DROP
//	  IF
//	    <tier1 branch>
//	  ELSE
//	    <t2> CSV DROP
//	    IF ... ELSE ... ENDIF
//	  ENDIF
//	ENDIF
//
// Each branch is pk(K) (a single CHECKSIG) or thresh(M,...) (an
// M-of-N CHECKMULTISIG), matching primary(K) for that tier.
func buildWitnessScript(cfg CascadeConfig) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	if err := appendCascade(b, cfg.Owner, cfg.Tiers); err != nil {
		return nil, err
	}
	return b.Script()
}

// appendCascade emits the owner branch, then recurses into the tier
// list for the ELSE branch.
func appendCascade(b *txscript.ScriptBuilder, owner PrimarySpec, tiers []Tier) error {
	b.AddOp(txscript.OP_IF)
	if err := appendPrimary(b, owner); err != nil {
		return err
	}
	b.AddOp(txscript.OP_ELSE)
	if err := appendTiers(b, tiers); err != nil {
		return err
	}
	b.AddOp(txscript.OP_ENDIF)
	return nil
}

func appendTiers(b *txscript.ScriptBuilder, tiers []Tier) error {
	if len(tiers) == 0 {
		// Reached only if validation was skipped; emit a script that
		// can never be satisfied rather than miscompiling silently.
		b.AddOp(txscript.OP_RETURN)
		return nil
	}

	tier := tiers[0]
	b.AddInt64(int64(tier.Timelock))
	b.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	b.AddOp(txscript.OP_DROP)

	if len(tiers) == 1 {
		return appendPrimary(b, tier.Primary)
	}

	b.AddOp(txscript.OP_IF)
	if err := appendPrimary(b, tier.Primary); err != nil {
		return err
	}
	b.AddOp(txscript.OP_ELSE)
	if err := appendTiers(b, tiers[1:]); err != nil {
		return err
	}
	b.AddOp(txscript.OP_ENDIF)
	return nil
}

// appendPrimary emits pk(K) or thresh(M, K...) for a single key or a
// threshold group.
func appendPrimary(b *txscript.ScriptBuilder, p PrimarySpec) error {
	switch {
	case p.Single != nil:
		b.AddData(p.Single.PubKey.SerializeCompressed())
		b.AddOp(txscript.OP_CHECKSIG)
		return nil
	case p.Group != nil:
		b.AddInt64(int64(p.Group.Threshold))
		for _, m := range p.Group.Members {
			b.AddData(m.PubKey.SerializeCompressed())
		}
		b.AddInt64(int64(len(p.Group.Members)))
		b.AddOp(txscript.OP_CHECKMULTISIG)
		return nil
	default:
		return fmt.Errorf("policy: primary spec has neither single key nor group")
	}
}

// witnessWeight estimates the worst-case weight of spending this
// script: the script itself plus a witness stack sized for the
// largest branch (every threshold slot filled with a 64-byte Schnorr
// or ~72-byte DER signature; DER is used here since the witness
// script uses CHECKSIG/CHECKMULTISIG, not a Taproot leaf).
func witnessWeight(cfg CascadeConfig, script []byte) int {
	maxSigs := primarySigCount(cfg.Owner)
	for _, t := range cfg.Tiers {
		if n := primarySigCount(t.Primary); n > maxSigs {
			maxSigs = n
		}
	}
	const derSigBytes = 72
	const selectorBytes = 1 // one IF/ELSE selector push per cascade level
	levels := len(cfg.Tiers) + 1
	witnessBytes := maxSigs*derSigBytes + levels*selectorBytes
	// Witness bytes count at 1 weight unit each; the script (part of
	// the scriptPubKey's spend, counted at 4 WU/byte for P2WSH) is
	// counted here as the conservative non-witness-discounted weight.
	return len(script)*4 + witnessBytes
}

func primarySigCount(p PrimarySpec) int {
	if p.Single != nil {
		return 1
	}
	if p.Group != nil {
		return p.Group.Threshold
	}
	return 0
}
