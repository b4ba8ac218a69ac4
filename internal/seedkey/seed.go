// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seedkey

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// SeedLen is the fixed size of a derived BIP-39 seed.
const SeedLen = 64

// SeedFromMnemonic derives the 64-byte seed from a mnemonic and
// passphrase: PBKDF2-HMAC-SHA512(mnemonic NFKD, "mnemonic"||passphrase
// NFKD, 2048, 64). The mnemonic's checksum is validated before deriving.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("seedkey: derive seed: %w", err)
	}
	if len(seed) != SeedLen {
		return nil, fmt.Errorf("seedkey: unexpected seed length %d", len(seed))
	}
	return seed, nil
}

// Zero overwrites a seed (or any other secret byte slice) in place,
// per the zero-on-drop memory policy for secret material.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
