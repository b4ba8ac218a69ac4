// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"fmt"
)

// Validate checks a CascadeConfig against every cascade invariant,
// returning all violations at once (not just the first) wrapped in
// ErrPolicyInvalid.
func Validate(cfg CascadeConfig) error {
	var reasons []Reason

	if err := cfg.Owner.validate(); err != nil {
		reasons = append(reasons, Reason{CodeMissingOwner, err.Error()})
	}

	if len(cfg.Tiers) == 0 {
		reasons = append(reasons, Reason{CodeNoTiers, "cascade has no tiers"})
	}

	var prevTimelock uint16
	for i, tier := range cfg.Tiers {
		if tier.Timelock < MinTimelock || tier.Timelock > MaxTimelock {
			reasons = append(reasons, Reason{
				CodeTimelockRange,
				fmt.Sprintf("tier %d timelock %d out of range [%d,%d]", i, tier.Timelock, MinTimelock, MaxTimelock),
			})
		}
		if i > 0 && tier.Timelock <= prevTimelock {
			reasons = append(reasons, Reason{
				CodeTimelockOrder,
				fmt.Sprintf("tier %d timelock %d does not strictly exceed tier %d timelock %d", i, tier.Timelock, i-1, prevTimelock),
			})
		}
		prevTimelock = tier.Timelock

		if err := tier.Primary.validate(); err != nil {
			code := CodeGroupThreshold
			if errors.Is(err, errGroupTooSmall) {
				code = CodeGroupTooSmall
			}
			reasons = append(reasons, Reason{code, fmt.Sprintf("tier %d: %s", i, err.Error())})
		}
	}

	reasons = append(reasons, findDuplicateKeys(cfg)...)

	if len(reasons) > 0 {
		return &invalidError{reasons: reasons}
	}
	return nil
}

// findDuplicateKeys reports every key that appears in more than one
// tier, or in both the owner's primary spec and any tier. Keys are
// compared by their full serialized compressed public key, so no two
// distinct keys are ever mistaken for the same one.
func findDuplicateKeys(cfg CascadeConfig) []Reason {
	seenIn := make(map[string]string)
	var reasons []Reason

	note := func(k KeySpec, location string) {
		if k.PubKey == nil {
			return
		}
		id := string(k.PubKey.SerializeCompressed())
		if prior, ok := seenIn[id]; ok {
			reasons = append(reasons, Reason{
				CodeDuplicateKey,
				fmt.Sprintf("key %q appears in both %s and %s", k.Name, prior, location),
			})
			return
		}
		seenIn[id] = location
	}

	for _, k := range cfg.Owner.Keys() {
		note(k, "owner")
	}
	for i, tier := range cfg.Tiers {
		loc := fmt.Sprintf("tier %d", i)
		for _, k := range tier.Primary.Keys() {
			note(k, loc)
		}
	}
	return reasons
}
