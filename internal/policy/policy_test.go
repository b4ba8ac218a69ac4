// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nostring/core/internal/network"
)

func genKey(t *testing.T, name string) KeySpec {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return KeySpec{Name: name, PubKey: priv.PubKey(), MasterFP: [4]byte{1, 2, 3, 4}}
}

// exampleCascade builds an owner-plus-three-tier cascade: owner
// single key; tier-1 single heir at 26280 blocks; tier-2 group 2-of-3
// at 38880 blocks; tier-3 single at 52560 blocks.
func exampleCascade(t *testing.T) CascadeConfig {
	t.Helper()
	owner := genKey(t, "owner")
	heir1 := genKey(t, "heir1")
	a, b, c := genKey(t, "a"), genKey(t, "b"), genKey(t, "c")
	heir3 := genKey(t, "heir3")

	return CascadeConfig{
		Owner: PrimarySpec{Single: &owner},
		Tiers: []Tier{
			{Timelock: 26280, Primary: PrimarySpec{Single: &heir1}},
			{Timelock: 38880, Primary: PrimarySpec{Group: &GroupSpec{Threshold: 2, Members: []KeySpec{a, b, c}}}},
			{Timelock: 52560, Primary: PrimarySpec{Single: &heir3}},
		},
		Network: network.Mainnet,
	}
}

func TestPolicyLifecycleHappyPath(t *testing.T) {
	cfg := exampleCascade(t)
	p := NewPolicy(cfg)
	assert.Equal(t, Draft, p.State())

	require.NoError(t, p.Validate())
	assert.Equal(t, Validated, p.State())

	require.NoError(t, p.Compile())
	assert.Equal(t, Compiled, p.State())
	assert.NotEmpty(t, p.Script())
	assert.NotEmpty(t, p.Address())
	assert.Contains(t, p.Descriptor().Text, "wsh(")

	require.NoError(t, p.Deploy())
	assert.Equal(t, Deployed, p.State())
}

func TestPolicyRejectsOutOfOrderTransitions(t *testing.T) {
	p := NewPolicy(exampleCascade(t))
	err := p.Compile()
	assert.ErrorIs(t, err, ErrWrongState)

	err = p.Deploy()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestCompileIsDeterministic(t *testing.T) {
	cfg := exampleCascade(t)

	p1 := NewPolicy(cfg)
	require.NoError(t, p1.Validate())
	require.NoError(t, p1.Compile())

	p2 := NewPolicy(cfg)
	require.NoError(t, p2.Validate())
	require.NoError(t, p2.Compile())

	assert.Equal(t, p1.Address(), p2.Address())
	assert.Equal(t, p1.Descriptor().Text, p2.Descriptor().Text)
	assert.Equal(t, p1.Script(), p2.Script())
}

func TestValidateRejectsDuplicateKeyAcrossTiers(t *testing.T) {
	cfg := exampleCascade(t)
	// Replace tier-3's key with the owner's key.
	cfg.Tiers[2].Primary = cfg.Owner

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolicyInvalid)

	reasons := Reasons(err)
	require.NotEmpty(t, reasons)
	found := false
	for _, r := range reasons {
		if r.Code == CodeDuplicateKey {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateRejectsNonAscendingTimelocks(t *testing.T) {
	cfg := exampleCascade(t)
	cfg.Tiers[1].Timelock = cfg.Tiers[0].Timelock

	err := Validate(cfg)
	require.Error(t, err)
	reasons := Reasons(err)
	found := false
	for _, r := range reasons {
		if r.Code == CodeTimelockOrder {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateRejectsTimelockOutOfRange(t *testing.T) {
	cfg := exampleCascade(t)
	cfg.Tiers[0].Timelock = 0

	err := Validate(cfg)
	reasons := Reasons(err)
	found := false
	for _, r := range reasons {
		if r.Code == CodeTimelockRange {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateRejectsUndersizedGroup(t *testing.T) {
	cfg := exampleCascade(t)
	single := genKey(t, "lonely")
	cfg.Tiers[1].Primary = PrimarySpec{Group: &GroupSpec{Threshold: 1, Members: []KeySpec{single}}}

	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateReturnsAllReasonsAtOnce(t *testing.T) {
	cfg := exampleCascade(t)
	cfg.Tiers[0].Timelock = 0
	cfg.Tiers[2].Primary = cfg.Owner

	err := Validate(cfg)
	reasons := Reasons(err)
	assert.GreaterOrEqual(t, len(reasons), 2)
}

func TestDescriptorRoundTrips(t *testing.T) {
	cfg := exampleCascade(t)
	p := NewPolicy(cfg)
	require.NoError(t, p.Validate())
	require.NoError(t, p.Compile())

	tree, err := ParseDescriptor(p.Descriptor().Text)
	require.NoError(t, err)
	assert.Equal(t, p.Descriptor().Tree, tree)
}

func TestDescriptorContainsWildcardSuffix(t *testing.T) {
	cfg := exampleCascade(t)
	p := NewPolicy(cfg)
	require.NoError(t, p.Validate())
	require.NoError(t, p.Compile())

	assert.Contains(t, p.Descriptor().Text, wildcardSuffix)
}

func TestAllTimelockOrderingsSatisfyValidate(t *testing.T) {
	for _, timelocks := range [][3]uint16{
		{1, 2, 3},
		{100, 26280, 65535},
	} {
		owner := genKey(t, "owner")
		h1, h2, h3 := genKey(t, "h1"), genKey(t, "h2"), genKey(t, "h3")
		cfg := CascadeConfig{
			Owner: PrimarySpec{Single: &owner},
			Tiers: []Tier{
				{Timelock: timelocks[0], Primary: PrimarySpec{Single: &h1}},
				{Timelock: timelocks[1], Primary: PrimarySpec{Single: &h2}},
				{Timelock: timelocks[2], Primary: PrimarySpec{Single: &h3}},
			},
			Network: network.Testnet,
		}
		assert.NoError(t, Validate(cfg), "timelocks %v", timelocks)
	}
}
