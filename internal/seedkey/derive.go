// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package seedkey

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/nostring/core/internal/network"
)

// HardenedStart is the first hardened child index, per BIP-32.
const HardenedStart = hdkeychain.HardenedKeyStart

// NostrPurpose, NostrCoinType, NostrAccount, NostrChange, NostrIndex are
// the fixed path components of the NIP-06 identity path m/44'/1237'/0'/0/0.
const (
	NostrPurpose  = 44
	NostrCoinType = 1237
	NostrAccount  = 0
	NostrChange   = 0
	NostrIndex    = 0
)

// Purpose identifies which BIP account-level derivation scheme a
// Bitcoin account key uses.
type Purpose uint32

const (
	// PurposeBIP84 derives native segwit (P2WSH in NoString's case)
	// keys under m/84'/c'/account'.
	PurposeBIP84 Purpose = 84

	// PurposeBIP86 derives Taproot (P2TR) keys under m/86'/c'/account'.
	PurposeBIP86 Purpose = 86
)

// MasterKey derives the BIP-32 master extended private key from a seed.
func MasterKey(seed []byte, net network.Kind) (*hdkeychain.ExtendedKey, error) {
	params, err := network.ChainParams(net)
	if err != nil {
		return nil, err
	}
	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("seedkey: derive master key: %w", err)
	}
	return master, nil
}

// deriveHardened walks a list of non-hardened-indexed path components,
// adding HardenedStart to each, starting from key.
func deriveHardened(key *hdkeychain.ExtendedKey, indices ...uint32) (*hdkeychain.ExtendedKey, error) {
	current := key
	for _, idx := range indices {
		next, err := current.Child(HardenedStart + idx)
		if err != nil {
			return nil, fmt.Errorf("seedkey: derive hardened child %d: %w", idx, err)
		}
		current = next
	}
	return current, nil
}

func deriveChildren(key *hdkeychain.ExtendedKey, indices ...uint32) (*hdkeychain.ExtendedKey, error) {
	current := key
	for _, idx := range indices {
		next, err := current.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("seedkey: derive child %d: %w", idx, err)
		}
		current = next
	}
	return current, nil
}

// DeriveNostrIdentity derives the NIP-06 Nostr key pair at
// m/44'/1237'/0'/0/0, fully hardened through the account level and
// non-hardened for chain/index.
func DeriveNostrIdentity(seed []byte, net network.Kind) (*btcec.PrivateKey, error) {
	master, err := MasterKey(seed, net)
	if err != nil {
		return nil, err
	}

	account, err := deriveHardened(master, NostrPurpose, NostrCoinType, NostrAccount)
	if err != nil {
		return nil, err
	}
	leaf, err := deriveChildren(account, NostrChange, NostrIndex)
	if err != nil {
		return nil, err
	}

	priv, err := leaf.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("seedkey: nostr ec priv key: %w", err)
	}
	return priv, nil
}

// DeriveAccountKey derives the hardened account-level extended key
// m/purpose'/coinType'/account' for a BIP-84 or BIP-86 Bitcoin account.
// The account key's private material is returned; callers distribute
// only its neutered (public) form in descriptors.
func DeriveAccountKey(seed []byte, net network.Kind, purpose Purpose, account uint32) (*hdkeychain.ExtendedKey, error) {
	master, err := MasterKey(seed, net)
	if err != nil {
		return nil, err
	}

	params, err := network.ByName(net)
	if err != nil {
		return nil, err
	}

	return deriveHardened(master, uint32(purpose), params.HDCoinType, account)
}

// DeriveReceiveKey derives the non-hardened chain/index leaf key below
// an account-level extended key: m/.../chain/index, where chain is 0
// for receive and 1 for change, matching the descriptor's <0;1>/*
// wildcard.
func DeriveReceiveKey(account *hdkeychain.ExtendedKey, chain, index uint32) (*hdkeychain.ExtendedKey, error) {
	return deriveChildren(account, chain, index)
}

// Fingerprint computes the 4-byte descriptor-origin fingerprint of a
// public key: the first four bytes of RIPEMD160(SHA256(compressed
// pubkey)).
func Fingerprint(pubKey *btcec.PublicKey) [4]byte {
	hash := btcutil.Hash160(pubKey.SerializeCompressed())
	var fp [4]byte
	copy(fp[:], hash[:4])
	return fp
}

// MasterFingerprint computes the fingerprint of a master key's own
// public key, for use as a descriptor origin's master_fp.
func MasterFingerprint(master *hdkeychain.ExtendedKey) ([4]byte, error) {
	pub, err := master.ECPubKey()
	if err != nil {
		return [4]byte{}, fmt.Errorf("seedkey: master ec pub key: %w", err)
	}
	return Fingerprint(pub), nil
}
