// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/nostring/core/internal/network"
)

// State is one stage of a policy's lifecycle. Transitions are
// irreversible within a single Policy value; editing a Compiled policy
// means building a new Policy, which gets a new address.
type State int

const (
	Draft State = iota
	Validated
	Compiled
	Deployed
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case Validated:
		return "validated"
	case Compiled:
		return "compiled"
	case Deployed:
		return "deployed"
	default:
		return "unknown"
	}
}

// Policy is one inheritance cascade moving through its lifecycle.
type Policy struct {
	Config CascadeConfig
	state  State

	script     []byte
	pkScript   []byte
	descriptor Descriptor
	address    string
	weight     int
}

// NewPolicy starts a new policy in the Draft state.
func NewPolicy(cfg CascadeConfig) *Policy {
	return &Policy{Config: cfg, state: Draft}
}

// State returns the policy's current lifecycle stage.
func (p *Policy) State() State { return p.state }

// Validate runs every structural cascade check and, on success,
// advances Draft→Validated. On failure the policy stays in Draft and
// the caller may amend the config and retry.
func (p *Policy) Validate() error {
	if p.state != Draft {
		return fmt.Errorf("%w: validate requires draft, got %s", ErrWrongState, p.state)
	}
	if err := Validate(p.Config); err != nil {
		return err
	}
	p.state = Validated
	return nil
}

// Compile builds the witness script, its miniscript descriptor, and
// the resulting address, advancing Validated→Compiled. It checks the
// compiled script against the size and weight ceilings and fails with
// ErrPolicyUnsafe if either is exceeded.
func (p *Policy) Compile() error {
	if p.state != Validated {
		return fmt.Errorf("%w: compile requires validated, got %s", ErrWrongState, p.state)
	}

	script, err := buildWitnessScript(p.Config)
	if err != nil {
		return fmt.Errorf("policy: build script: %w", err)
	}
	if len(script) > MaxScriptBytes {
		return fmt.Errorf("%w: script is %d bytes, max %d", ErrPolicyUnsafe, len(script), MaxScriptBytes)
	}
	weight := witnessWeight(p.Config, script)
	if weight > MaxWeightUnits {
		return fmt.Errorf("%w: worst-case weight %d, max %d", ErrPolicyUnsafe, weight, MaxWeightUnits)
	}

	netParams, err := network.ChainParams(p.Config.Network)
	if err != nil {
		return err
	}
	scriptHash := sha256.Sum256(script)
	addr, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], netParams)
	if err != nil {
		return fmt.Errorf("policy: derive address: %w", err)
	}
	pkScript, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(scriptHash[:]).
		Script()
	if err != nil {
		return fmt.Errorf("policy: build output script: %w", err)
	}

	p.script = script
	p.pkScript = pkScript
	p.descriptor = renderDescriptor(p.Config)
	p.address = addr.EncodeAddress()
	p.weight = weight
	p.state = Compiled
	return nil
}

// Deploy marks a compiled policy as the vault's live policy,
// advancing Compiled→Deployed. NoString's core does not persist
// anything itself; this only records the transition so callers can't
// accidentally treat an undeployed policy as live.
func (p *Policy) Deploy() error {
	if p.state != Compiled {
		return fmt.Errorf("%w: deploy requires compiled, got %s", ErrWrongState, p.state)
	}
	p.state = Deployed
	return nil
}

// Script returns the compiled witness script. Valid only once State()
// is Compiled or Deployed.
func (p *Policy) Script() []byte { return p.script }

// Descriptor returns the canonical descriptor text and its syntax
// tree. Valid only once State() is Compiled or Deployed.
func (p *Policy) Descriptor() Descriptor { return p.descriptor }

// Address returns the P2WSH address for this policy's script. Valid
// only once State() is Compiled or Deployed.
func (p *Policy) Address() string { return p.address }

// OutputScript returns the raw P2WSH scriptPubKey (OP_0 <32-byte
// script hash>) backing Address. Valid only once State() is Compiled
// or Deployed.
func (p *Policy) OutputScript() []byte { return p.pkScript }

// Weight returns the worst-case single-input spend weight computed at
// Compile time: the witness script's non-discounted weight plus a
// witness stack sized for the largest branch (every threshold slot
// filled). Valid only once State() is Compiled or Deployed.
func (p *Policy) Weight() int { return p.weight }
