// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package policy compiles a human-level inheritance cascade (owner now;
// heir after a delay; a group of heirs after a longer delay; and so on)
// into a single Bitcoin output script with exactly the intended spend
// paths, and into its canonical descriptor text.
package policy

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/nostring/core/internal/network"
)

const (
	// MinTimelock and MaxTimelock bound a tier's relative locktime, in
	// blocks
	MinTimelock = 1
	MaxTimelock = 65535

	// MaxScriptBytes and MaxWeightUnits bound the compiled witness
	// script
	MaxScriptBytes = 3600
	MaxWeightUnits = 10000
)

var (
	// ErrPolicyInvalid wraps a non-empty list of validation failures;
	// use Reasons(err) to recover them.
	ErrPolicyInvalid = errors.New("policy: invalid")

	// ErrPolicyUnsafe is returned when a policy validates structurally
	// but compiles to a script exceeding the size or weight ceiling.
	ErrPolicyUnsafe = errors.New("policy: unsafe or oversize")

	// ErrWrongState is returned when a state-machine transition is
	// attempted out of order.
	ErrWrongState = errors.New("policy: wrong state for this operation")

	// ErrNetworkMismatch re-exports network.ErrNetworkMismatch for
	// callers that only import this package.
	ErrNetworkMismatch = network.ErrNetworkMismatch
)

// Reason identifies one specific validation failure, so the structured
// failure list can be machine-inspected.
type Reason struct {
	Code    string
	Message string
}

func (r Reason) String() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Reason codes.
const (
	CodeDuplicateKey      = "DuplicateKey"
	CodeTimelockRange     = "TimelockRange"
	CodeTimelockOrder     = "TimelockOrder"
	CodeGroupThreshold    = "GroupThreshold"
	CodeGroupTooSmall     = "GroupTooSmall"
	CodeNoTiers           = "NoTiers"
	CodeMissingOwner      = "MissingOwner"
)

// invalidError carries the structured reason list behind ErrPolicyInvalid.
type invalidError struct {
	reasons []Reason
}

func (e *invalidError) Error() string {
	return fmt.Sprintf("policy: invalid (%d reasons)", len(e.reasons))
}

func (e *invalidError) Unwrap() error {
	return ErrPolicyInvalid
}

// Reasons recovers the structured reason list from an error returned by
// Validate, or nil if err does not carry one.
func Reasons(err error) []Reason {
	var ie *invalidError
	if errors.As(err, &ie) {
		return ie.reasons
	}
	return nil
}

// KeySpec identifies one participant's public key and its descriptor
// origin metadata: the master fingerprint and the hardened derivation
// path leading to it.
type KeySpec struct {
	Name       string // human label only; not part of the compiled script
	PubKey     *btcec.PublicKey
	MasterFP   [4]byte
	DerivePath []uint32 // hardened indices, e.g. {84 + hardened, coinType + hardened, 0 + hardened}
}

func (k KeySpec) validate() error {
	if k.PubKey == nil {
		return fmt.Errorf("policy: key %q has no public key", k.Name)
	}
	return nil
}

// GroupSpec is an M-of-N threshold among named members.
type GroupSpec struct {
	Threshold int
	Members   []KeySpec
}

func (g GroupSpec) validate() error {
	if len(g.Members) < 2 {
		return fmt.Errorf("%w: group has %d members", errGroupTooSmall, len(g.Members))
	}
	if g.Threshold < 1 || g.Threshold > len(g.Members) {
		return fmt.Errorf("%w: threshold %d over %d members", errGroupThreshold, g.Threshold, len(g.Members))
	}
	return nil
}

var (
	errGroupTooSmall  = errors.New("group too small")
	errGroupThreshold = errors.New("group threshold out of range")
)

// PrimarySpec is either a single key or a threshold group, used both
// for the owner's primary key(s) and for each cascade tier.
type PrimarySpec struct {
	Single *KeySpec
	Group  *GroupSpec
}

func (p PrimarySpec) validate() error {
	switch {
	case p.Single != nil && p.Group != nil:
		return errors.New("policy: primary spec has both a single key and a group")
	case p.Single != nil:
		return p.Single.validate()
	case p.Group != nil:
		return p.Group.validate()
	default:
		return errors.New("policy: primary spec has neither a single key nor a group")
	}
}

// Keys returns every KeySpec this primary spec references: one key for
// a Single spec, or every member for a Group spec.
func (p PrimarySpec) Keys() []KeySpec {
	if p.Single != nil {
		return []KeySpec{*p.Single}
	}
	if p.Group != nil {
		return p.Group.Members
	}
	return nil
}

// Tier is one cascade step: a primary spec unlockable after Timelock
// relative blocks have elapsed since the vault UTXO was created.
type Tier struct {
	Timelock uint16
	Primary  PrimarySpec
}

// CascadeConfig is the complete, unvalidated description of an
// inheritance policy: the owner's primary key(s) plus strictly
// ascending tiers.
type CascadeConfig struct {
	Owner   PrimarySpec
	Tiers   []Tier
	Network network.Kind
}
