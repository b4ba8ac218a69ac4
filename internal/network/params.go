// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package network carries the per-network parameters the core needs:
// BIP-32 coin type (for NIP-06 and BIP-84/86 derivation), address
// version bytes, and the bech32 HRP for P2WSH/P2TR output addresses.
// It is the single source of truth shared by seed derivation, the
// policy compiler, and descriptor address rendering, the same role
// chaincfg.Params plays elsewhere in the btcsuite ecosystem.
package network

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Kind identifies a NoString-supported Bitcoin network.
type Kind uint8

const (
	Mainnet Kind = iota
	Testnet
	Signet
	Regtest
)

func (k Kind) String() string {
	switch k {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case Signet:
		return "signet"
	case Regtest:
		return "regtest"
	default:
		return "unknown"
	}
}

// Params holds the fields BIP-32/84/86 derivation and descriptor/address
// rendering need for one network. HDCoinType is the `c` constant in an
// m/purpose'/c'/... derivation path: 0 for mainnet, 1 for every test
// network.
type Params struct {
	Name       Kind
	HDCoinType uint32

	Bech32HRP        string
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	WIFID            byte
}

var (
	MainnetParams = Params{
		Name:             Mainnet,
		HDCoinType:       0,
		Bech32HRP:        "bc",
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		WIFID:            0x80,
	}

	TestnetParams = Params{
		Name:             Testnet,
		HDCoinType:       1,
		Bech32HRP:        "tb",
		PubKeyHashAddrID: 0x6F,
		ScriptHashAddrID: 0xC4,
		WIFID:            0xEF,
	}

	SignetParams = Params{
		Name:             Signet,
		HDCoinType:       1,
		Bech32HRP:        "tb",
		PubKeyHashAddrID: 0x6F,
		ScriptHashAddrID: 0xC4,
		WIFID:            0xEF,
	}

	RegtestParams = Params{
		Name:             Regtest,
		HDCoinType:       1,
		Bech32HRP:        "bcrt",
		PubKeyHashAddrID: 0x6F,
		ScriptHashAddrID: 0xC4,
		WIFID:            0xEF,
	}
)

// ByName returns the Params for a network kind.
func ByName(k Kind) (Params, error) {
	switch k {
	case Mainnet:
		return MainnetParams, nil
	case Testnet:
		return TestnetParams, nil
	case Signet:
		return SignetParams, nil
	case Regtest:
		return RegtestParams, nil
	default:
		return Params{}, fmt.Errorf("network: unknown network kind %d", k)
	}
}

// ChainParams returns the real btcsuite chaincfg.Params for k, needed
// purely for xpub/xprv and address version-byte serialization via
// btcutil/hdkeychain and btcutil. Not used for consensus.
func ChainParams(k Kind) (*chaincfg.Params, error) {
	switch k {
	case Mainnet:
		return &chaincfg.MainNetParams, nil
	case Testnet:
		return &chaincfg.TestNet3Params, nil
	case Signet:
		return &chaincfg.SigNetParams, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("network: unknown network kind %d", k)
	}
}

// ErrNetworkMismatch is returned when persisted state names a network
// that disagrees with the currently configured one. Fatal at load time.
var ErrNetworkMismatch = fmt.Errorf("network: descriptor network does not match vault network")

// CheckMatch returns ErrNetworkMismatch if got != want.
func CheckMatch(want, got Kind) error {
	if want != got {
		return fmt.Errorf("%w: vault is %s, got %s", ErrNetworkMismatch, want, got)
	}
	return nil
}
