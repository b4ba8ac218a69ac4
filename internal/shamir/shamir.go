// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shamir implements Shamir's secret sharing over GF(256), the
// raw numeric layer SLIP-39 and Codex32 encode into words. It carries
// no checksum of its own: a corrupted share and a
// valid share of the same secret reconstruct silently to a wrong
// value. Integrity is SLIP-39/Codex32's job, one layer up.
package shamir

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/nostring/core/internal/gf256"
)

var (
	// ErrThreshold is returned for threshold/share-count combinations
	// outside 1 <= T <= N <= 255.
	ErrThreshold = errors.New("shamir: threshold must satisfy 1 <= T <= N <= 255")

	// ErrEmptySecret is returned when Split is given a zero-length secret.
	ErrEmptySecret = errors.New("shamir: secret must not be empty")

	// ErrInsufficientShares is returned when Reconstruct is given no
	// shares at all. Reconstruct does not know the threshold, so a
	// non-empty set below it is not detected here (the caller's own
	// bookkeeping is responsible for knowing the real threshold).
	ErrInsufficientShares = errors.New("shamir: insufficient shares to reconstruct")

	// ErrDuplicateIndex is returned when two shares share an x-value.
	ErrDuplicateIndex = errors.New("shamir: duplicate share index")

	// ErrZeroIndex is returned for a share whose index is 0: the
	// polynomial's value at x=0 is the secret itself, so Split never
	// issues a share there and index 0 is never a legal share position.
	ErrZeroIndex = errors.New("shamir: share index must not be zero")

	// ErrShareLengthMismatch is returned when shares being reconstructed
	// together do not all carry the same number of payload bytes.
	ErrShareLengthMismatch = errors.New("shamir: shares have mismatched payload length")
)

// Share is one point of a split secret: an index in [1,255] and the
// polynomial's evaluation at that index, one byte per secret byte.
type Share struct {
	Index   byte
	Payload []byte
}

// Split divides secret into n shares such that any t of them
// reconstruct it exactly, and any t-1 reveal no information about it.
// Requires 1 <= t <= n <= 255.
func Split(secret []byte, t, n int) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if t < 1 || n < t || n > 255 {
		return nil, fmt.Errorf("%w: got t=%d n=%d", ErrThreshold, t, n)
	}

	// coeffs[byteIdx] holds that byte position's polynomial:
	// coeffs[byteIdx][0] is the constant term, the secret byte itself,
	// and coeffs[byteIdx][1:] are the t-1 random higher-order
	// coefficients.
	coeffs := make([][]byte, len(secret))
	for i := range secret {
		coeffs[i] = make([]byte, t)
		coeffs[i][0] = secret[i]
		if t > 1 {
			if _, err := rand.Read(coeffs[i][1:]); err != nil {
				return nil, fmt.Errorf("shamir: read random coefficients: %w", err)
			}
		}
	}

	shares := make([]Share, n)
	for si := 0; si < n; si++ {
		x := byte(si + 1)
		payload := make([]byte, len(secret))
		for bi := range secret {
			payload[bi] = evalPoly(coeffs[bi], x)
		}
		shares[si] = Share{Index: x, Payload: payload}
	}
	return shares, nil
}

// evalPoly evaluates a polynomial (low-degree-first coefficients) at x
// using Horner's method over GF(256).
func evalPoly(coeffs []byte, x byte) byte {
	// Horner's method from the highest-degree coefficient down.
	result := byte(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = gf256.Add(gf256.Mul(result, x), coeffs[i])
	}
	return result
}

// Reconstruct recovers the secret from a set of distinct shares via
// Lagrange interpolation at x=0. Any subset of at least the original
// threshold reconstructs the same secret; fewer shares produce a
// deterministic but unrelated byte string rather than an error, since
// the threshold is not recorded in the raw share (that bookkeeping
// belongs to SLIP-39/Codex32).
func Reconstruct(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrInsufficientShares
	}

	shareLen := len(shares[0].Payload)
	seen := make(map[byte]bool, len(shares))
	for _, s := range shares {
		if s.Index == 0 {
			return nil, ErrZeroIndex
		}
		if seen[s.Index] {
			return nil, fmt.Errorf("%w: index %d", ErrDuplicateIndex, s.Index)
		}
		seen[s.Index] = true
		if len(s.Payload) != shareLen {
			return nil, ErrShareLengthMismatch
		}
	}

	secret := make([]byte, shareLen)
	for bi := 0; bi < shareLen; bi++ {
		var acc byte
		for i, si := range shares {
			term, err := lagrangeTermAtZero(shares, i, si.Payload[bi])
			if err != nil {
				return nil, err
			}
			acc = gf256.Add(acc, term)
		}
		secret[bi] = acc
	}
	return secret, nil
}

// lagrangeTermAtZero computes the i-th Lagrange basis term, scaled by
// the i-th share's y-value, evaluated at x=0:
//
//	y_i * product_{j != i} (0 - x_j) / (x_i - x_j)
//
// which in GF(256) (where subtraction is XOR, so 0-x = x) simplifies to
//
//	y_i * product_{j != i} x_j / (x_i XOR x_j)
func lagrangeTermAtZero(shares []Share, i int, yi byte) (byte, error) {
	num := byte(1)
	den := byte(1)
	xi := shares[i].Index
	for j, sj := range shares {
		if j == i {
			continue
		}
		num = gf256.Mul(num, sj.Index)
		den = gf256.Mul(den, gf256.Add(xi, sj.Index))
	}
	basis, err := gf256.Div(num, den)
	if err != nil {
		return 0, fmt.Errorf("shamir: lagrange basis: %w", err)
	}
	return gf256.Mul(yi, basis), nil
}
