// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMulByZeroIsZero(t *testing.T) {
	for a := 0; a < 256; a++ {
		assert.Equal(t, byte(0), Mul(byte(a), 0))
		assert.Equal(t, byte(0), Mul(0, byte(a)))
	}
}

func TestMulByOneIsIdentity(t *testing.T) {
	for a := 0; a < 256; a++ {
		assert.Equal(t, byte(a), Mul(byte(a), 1))
	}
}

func TestInvertZeroErrors(t *testing.T) {
	_, err := Invert(0)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestDivByZeroErrors(t *testing.T) {
	_, err := Div(1, 0)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestInvertRoundTrip(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv, err := Invert(byte(a))
		require.NoError(t, err)
		assert.Equal(t, byte(1), Mul(byte(a), inv))
	}
}

func TestDivByOneIsIdentity(t *testing.T) {
	for a := 0; a < 256; a++ {
		q, err := Div(byte(a), 1)
		require.NoError(t, err)
		assert.Equal(t, byte(a), q)
	}
}

func TestDivThenMulRoundTrips(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := byte(rapid.IntRange(0, 255).Draw(rt, "a"))
		b := byte(rapid.IntRange(1, 255).Draw(rt, "b"))
		q, err := Div(a, b)
		require.NoError(rt, err)
		assert.Equal(rt, a, Mul(q, b))
	})
}

func TestAddIsXorAndSelfInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := byte(rapid.IntRange(0, 255).Draw(rt, "a"))
		b := byte(rapid.IntRange(0, 255).Draw(rt, "b"))
		sum := Add(a, b)
		assert.Equal(rt, a, Add(sum, b))
	})
}

func TestMulIsCommutative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := byte(rapid.IntRange(0, 255).Draw(rt, "a"))
		b := byte(rapid.IntRange(0, 255).Draw(rt, "b"))
		assert.Equal(rt, Mul(a, b), Mul(b, a))
	})
}
