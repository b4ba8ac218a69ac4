// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shamir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex() []byte {
	return []byte{0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
		0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef}
}

func TestSplitReconstruct2of3(t *testing.T) {
	secret := mustHex()
	shares, err := Split(secret, 2, 3)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	for i := 0; i < len(shares); i++ {
		for j := i + 1; j < len(shares); j++ {
			got, err := Reconstruct([]Share{shares[i], shares[j]})
			require.NoError(t, err)
			assert.Equal(t, secret, got)
		}
	}
}

func TestReconstructWithAllShares(t *testing.T) {
	secret := mustHex()
	shares, err := Split(secret, 3, 5)
	require.NoError(t, err)

	got, err := Reconstruct(shares)
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestSingleShareDoesNotRevealSecret(t *testing.T) {
	secret := mustHex()
	shares, err := Split(secret, 2, 3)
	require.NoError(t, err)

	// A single share alone does not Lagrange-interpolate to the secret;
	// feeding it through Reconstruct (degenerate, below the real
	// threshold) should not silently equal the secret.
	got, err := Reconstruct([]Share{shares[0]})
	require.NoError(t, err)
	assert.NotEqual(t, secret, got)
}

func TestAllThresholdPairsMatchAcrossTNCombinations(t *testing.T) {
	secret := mustHex()
	for n := 1; n <= 8; n++ {
		for tt := 1; tt <= n; tt++ {
			shares, err := Split(secret, tt, n)
			require.NoError(t, err)
			require.Len(t, shares, n)

			got, err := Reconstruct(shares[:tt])
			require.NoError(t, err)
			assert.Equal(t, secret, got, "t=%d n=%d", tt, n)
		}
	}
}

func TestSplitRejectsInvalidThresholds(t *testing.T) {
	secret := mustHex()

	_, err := Split(secret, 0, 3)
	assert.ErrorIs(t, err, ErrThreshold)

	_, err = Split(secret, 4, 3)
	assert.ErrorIs(t, err, ErrThreshold)

	_, err = Split(secret, 1, 256)
	assert.ErrorIs(t, err, ErrThreshold)
}

func TestSplitRejectsEmptySecret(t *testing.T) {
	_, err := Split(nil, 1, 1)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestReconstructRejectsDuplicateIndex(t *testing.T) {
	secret := mustHex()
	shares, err := Split(secret, 2, 3)
	require.NoError(t, err)

	_, err = Reconstruct([]Share{shares[0], shares[0]})
	assert.ErrorIs(t, err, ErrDuplicateIndex)
}

func TestReconstructRejectsZeroIndex(t *testing.T) {
	_, err := Reconstruct([]Share{{Index: 0, Payload: []byte{1, 2, 3}}})
	assert.ErrorIs(t, err, ErrZeroIndex)
}

func TestReconstructRejectsMismatchedLength(t *testing.T) {
	shares := []Share{
		{Index: 1, Payload: []byte{1, 2, 3}},
		{Index: 2, Payload: []byte{1, 2}},
	}
	_, err := Reconstruct(shares)
	assert.ErrorIs(t, err, ErrShareLengthMismatch)
}

func TestReconstructRejectsEmptyInput(t *testing.T) {
	_, err := Reconstruct(nil)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestCorruptedShareYieldsWrongSecret(t *testing.T) {
	secret := mustHex()
	shares, err := Split(secret, 2, 3)
	require.NoError(t, err)

	corrupt := shares[0]
	corrupt.Payload = append([]byte(nil), corrupt.Payload...)
	corrupt.Payload[0] ^= 0xFF

	got, err := Reconstruct([]Share{corrupt, shares[1]})
	require.NoError(t, err)
	assert.NotEqual(t, secret, got)
}

func TestSplitIsNonDeterministicAcrossCalls(t *testing.T) {
	secret := mustHex()
	a, err := Split(secret, 2, 3)
	require.NoError(t, err)
	b, err := Split(secret, 2, 3)
	require.NoError(t, err)

	assert.NotEqual(t, a[0].Payload, b[0].Payload)
}
