// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slip39

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret() []byte {
	return []byte{0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
		0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef}
}

func TestEncodeDecodeRoundTripsAllHeaderFields(t *testing.T) {
	for _, extendable := range []bool{false, true} {
		h := Header{
			Identifier:        12345,
			Extendable:        extendable,
			IterationExponent: 7,
			GroupIndex:        3,
			GroupThreshold:    2,
			GroupCount:        5,
			MemberIndex:       9,
			MemberThreshold:   4,
		}
		payload := testSecret()

		words, err := Encode(h, payload)
		require.NoError(t, err)

		got, err := Decode(words, len(payload))
		require.NoError(t, err)
		assert.Equal(t, h, got.Header)
		assert.Equal(t, payload, got.Payload)
	}
}

func TestDecodeRejectsBadChecksum(t *testing.T) {
	h := Header{Identifier: 1, IterationExponent: 1, GroupThreshold: 1, GroupCount: 1, MemberThreshold: 2}
	words, err := Encode(h, testSecret())
	require.NoError(t, err)

	// Swap a payload word for a different (still valid) word; the
	// RS1024 code guarantees a single-symbol substitution is detected.
	corruptIdx, err := wordIndex(words[4])
	require.NoError(t, err)
	words[4] = wordAt(corruptIdx ^ 1)

	_, err = Decode(words, len(testSecret()))
	assert.ErrorIs(t, err, ErrBadChecksum)
}

func TestDecodeRejectsUnknownWord(t *testing.T) {
	h := Header{Identifier: 1, IterationExponent: 1, GroupThreshold: 1, GroupCount: 1, MemberThreshold: 2}
	words, err := Encode(h, testSecret())
	require.NoError(t, err)

	words[0] = "notaword-notaword"
	_, err = Decode(words, len(testSecret()))
	assert.ErrorIs(t, err, ErrBadWord)
}

func TestSplitCombineSingleGroup(t *testing.T) {
	secret := testSecret()
	shares, err := SplitSingleGroup(secret, 2, 3, false, 0)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	got, err := CombineSingleGroup(shares[:2])
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestCombineSingleGroupRejectsInsufficientShares(t *testing.T) {
	secret := testSecret()
	shares, err := SplitSingleGroup(secret, 3, 5, false, 0)
	require.NoError(t, err)

	_, err = CombineSingleGroup(shares[:1])
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestCombineSingleGroupRejectsHeaderMismatch(t *testing.T) {
	secretA := testSecret()
	secretB := append([]byte(nil), testSecret()...)
	secretB[0] ^= 1

	sharesA, err := SplitSingleGroup(secretA, 2, 3, false, 0)
	require.NoError(t, err)
	sharesB, err := SplitSingleGroup(secretB, 2, 3, false, 0)
	require.NoError(t, err)

	_, err = CombineSingleGroup([]Share{sharesA[0], sharesB[1]})
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestSplitCombineGroups(t *testing.T) {
	secret := testSecret()
	groups := []GroupSpec{
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 2, MemberCount: 3},
		{MemberThreshold: 2, MemberCount: 2},
	}
	split, err := SplitGroups(secret, 2, groups, true, 2)
	require.NoError(t, err)
	require.Len(t, split, 3)

	byGroup := map[uint8][]Share{
		0: split[0],
		1: split[1][:2],
	}
	got, err := CombineGroups(byGroup)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestCombineGroupsRejectsBelowGroupThreshold(t *testing.T) {
	secret := testSecret()
	groups := []GroupSpec{
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 1, MemberCount: 1},
		{MemberThreshold: 1, MemberCount: 1},
	}
	split, err := SplitGroups(secret, 2, groups, false, 0)
	require.NoError(t, err)

	_, err = CombineGroups(map[uint8][]Share{0: split[0]})
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestWordlistIsBijective(t *testing.T) {
	seen := make(map[string]bool, wordCount)
	for i := 0; i < wordCount; i++ {
		w := wordAt(uint16(i))
		assert.False(t, seen[w], "duplicate word %q", w)
		seen[w] = true

		idx, err := wordIndex(w)
		require.NoError(t, err)
		assert.Equal(t, uint16(i), idx)
	}
}
