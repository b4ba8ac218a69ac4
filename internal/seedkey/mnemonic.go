// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package seedkey implements BIP-39 mnemonic generation/validation,
// BIP-32 extended-key derivation, the NIP-06 Nostr identity path, and
// the BIP-84/86 Bitcoin account path. It is the unified
// key hierarchy: one seed produces both a Nostr identity and a Bitcoin
// account key tree.
package seedkey

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidWordCount is returned when a mnemonic does not have one of
// the five legal lengths (12/15/18/21/24 words).
var ErrInvalidWordCount = errors.New("seedkey: mnemonic must have 12, 15, 18, 21, or 24 words")

// ErrBadChecksum is returned when a mnemonic's checksum bits do not
// match its entropy, or a word is not on the BIP-39 English wordlist.
var ErrBadChecksum = errors.New("seedkey: invalid mnemonic checksum or word")

// entropyBitsForWordCount maps a legal mnemonic length to the entropy
// size (in bits) BIP-39 specifies for it.
var entropyBitsForWordCount = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// GenerateMnemonic draws entropyBits from the OS CSPRNG and renders a
// BIP-39 mnemonic. entropyBits must be one of 128/160/192/224/256.
func GenerateMnemonic(entropyBits int) (string, error) {
	valid := false
	for _, bits := range entropyBitsForWordCount {
		if bits == entropyBits {
			valid = true
			break
		}
	}
	if !valid {
		return "", fmt.Errorf("%w: got %d entropy bits", ErrInvalidWordCount, entropyBits)
	}

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("seedkey: generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("seedkey: render mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic rejects any mnemonic whose word count is not one of
// the five legal lengths, whose words are not all on the wordlist, or
// whose checksum bits do not match its entropy.
func ValidateMnemonic(mnemonic string) error {
	words := splitWords(mnemonic)
	if _, ok := entropyBitsForWordCount[len(words)]; !ok {
		return fmt.Errorf("%w: got %d words", ErrInvalidWordCount, len(words))
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return ErrBadChecksum
	}
	return nil
}

func splitWords(mnemonic string) []string {
	var words []string
	start := -1
	for i, r := range mnemonic {
		if r == ' ' || r == '　' {
			if start >= 0 {
				words = append(words, mnemonic[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, mnemonic[start:])
	}
	return words
}
