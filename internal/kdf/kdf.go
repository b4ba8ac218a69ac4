// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kdf implements at-rest protection of a wallet seed: an
// Argon2id-derived key encrypts the seed under AES-256-GCM. Every
// function here is pure and side-effect-free except for reading from
// the OS CSPRNG.
package kdf

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen  = 16
	nonceLen = 12
	keyLen   = 32

	// minMemoryKiB, minIterations, minParallelism are the hard floor
	// below which derived keys are rejected as TooWeakParameters, even
	// if a caller's kdf_profile override asks for less.
	minMemoryKiB   = 8 * 1024
	minIterations  = 1
	minParallelism = 1

	// DefaultMemoryKiB, DefaultIterations, DefaultParallelism are the
	// recommended Argon2id parameters: m=64 MiB, t=3, p=4.
	DefaultMemoryKiB   = 64 * 1024
	DefaultIterations  = 3
	DefaultParallelism = 4
)

// Params are the Argon2id parameters used to derive the AES key. They
// are stored alongside the ciphertext so that decryption remains
// possible even after the recommended defaults are strengthened.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the recommended Argon2id parameters.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   DefaultMemoryKiB,
		Iterations:  DefaultIterations,
		Parallelism: DefaultParallelism,
	}
}

// Validate rejects parameters below the hard floor.
func (p Params) Validate() error {
	if p.MemoryKiB < minMemoryKiB || p.Iterations < minIterations || p.Parallelism < minParallelism {
		return fmt.Errorf("%w: m=%d t=%d p=%d below floor m=%d t=%d p=%d",
			ErrTooWeakParameters, p.MemoryKiB, p.Iterations, p.Parallelism,
			minMemoryKiB, minIterations, minParallelism)
	}
	return nil
}

// EncryptedSeed is the persisted, at-rest representation of a seed.
// Salt and nonce are always fresh per encryption.
type EncryptedSeed struct {
	Salt       [saltLen]byte
	Nonce      [nonceLen]byte
	Ciphertext []byte // includes the GCM authentication tag
	Params     Params
}

var (
	// ErrWrongPassword is returned when the GCM tag fails to
	// authenticate: either the password is wrong or the ciphertext
	// was tampered with.
	ErrWrongPassword = errors.New("kdf: wrong password or corrupt ciphertext")

	// ErrCorrupt is returned for structurally malformed input (bad
	// lengths, truncated ciphertext).
	ErrCorrupt = errors.New("kdf: corrupt encrypted seed")

	// ErrTooWeakParameters is returned when Argon2id parameters fall
	// below the hard floor.
	ErrTooWeakParameters = errors.New("kdf: argon2id parameters too weak")

	// ErrSeedLength is returned for seeds outside the 16-64 byte range
	// this package accepts.
	ErrSeedLength = errors.New("kdf: seed must be between 16 and 64 bytes")
)

// deriveKey runs Argon2id over the password with the given salt and
// parameters, producing a 32-byte AES-256 key.
func deriveKey(password string, salt [saltLen]byte, params Params) []byte {
	return argon2.IDKey([]byte(password), salt[:], params.Iterations, params.MemoryKiB, params.Parallelism, keyLen)
}

// Encrypt draws a fresh salt and nonce from the OS CSPRNG, derives a key
// via Argon2id, and seals the seed with AES-256-GCM.
//
// An empty password is accepted; callers are expected to surface a
// warning before calling Encrypt with one.
func Encrypt(password string, seed []byte, params Params) (*EncryptedSeed, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, ErrSeedLength
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	es := &EncryptedSeed{Params: params}
	if _, err := rand.Read(es.Salt[:]); err != nil {
		return nil, fmt.Errorf("kdf: read salt: %w", err)
	}
	if _, err := rand.Read(es.Nonce[:]); err != nil {
		return nil, fmt.Errorf("kdf: read nonce: %w", err)
	}

	key := deriveKey(password, es.Salt, params)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("kdf: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, fmt.Errorf("kdf: new gcm: %w", err)
	}

	es.Ciphertext = gcm.Seal(nil, es.Nonce[:], seed, nil)
	return es, nil
}

// Decrypt re-derives the AES key from the stored parameters and
// authenticates, then decrypts the ciphertext. The returned seed slice
// is owned by the caller, who is responsible for zeroing it when done.
func Decrypt(password string, es *EncryptedSeed) ([]byte, error) {
	if es == nil {
		return nil, ErrCorrupt
	}
	if len(es.Ciphertext) < 16 {
		return nil, ErrCorrupt
	}
	if err := es.Params.Validate(); err != nil {
		return nil, err
	}

	key := deriveKey(password, es.Salt, es.Params)
	defer zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("kdf: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLen)
	if err != nil {
		return nil, fmt.Errorf("kdf: new gcm: %w", err)
	}

	seed, err := gcm.Open(nil, es.Nonce[:], es.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return seed, nil
}

// zero overwrites a byte slice in place. Used to scrub derived keys from
// memory as soon as they are no longer needed; the plaintext seed that
// Decrypt returns is left for the caller to scrub.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zero is the exported form of zero, for callers (the seed/key-holder
// layer) that must scrub secrets they copied out of this package.
func Zero(b []byte) {
	zero(b)
}

// magic/version/layout constants for the on-disk encrypted-seed file
// format.
const (
	Magic          = "NSTR"
	FormatVersion  = byte(1)
	KDFIDArgon2id  = byte(1)
)

// Marshal serializes an EncryptedSeed to a fixed-field-order layout:
//
//	magic(4) | version(1) | kdf_id(1) | kdf_m(u32) | kdf_t(u32) | kdf_p(u32) |
//	salt(16) | nonce(12) | ct_len(u16) | ciphertext_and_tag(ct_len)
//
// ct_len counts the ciphertext together with its 16-byte GCM tag.
func Marshal(es *EncryptedSeed) ([]byte, error) {
	if len(es.Ciphertext) > 0xFFFF {
		return nil, fmt.Errorf("%w: ciphertext too long to encode", ErrCorrupt)
	}

	buf := make([]byte, 0, 4+1+1+4+4+4+saltLen+nonceLen+2+len(es.Ciphertext))
	buf = append(buf, Magic...)
	buf = append(buf, FormatVersion, KDFIDArgon2id)

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], es.Params.MemoryKiB)
	buf = append(buf, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], es.Params.Iterations)
	buf = append(buf, u32[:]...)
	binary.LittleEndian.PutUint32(u32[:], uint32(es.Params.Parallelism))
	buf = append(buf, u32[:]...)

	buf = append(buf, es.Salt[:]...)
	buf = append(buf, es.Nonce[:]...)

	var u16 [2]byte
	binary.LittleEndian.PutUint16(u16[:], uint16(len(es.Ciphertext)))
	buf = append(buf, u16[:]...)
	buf = append(buf, es.Ciphertext...)

	return buf, nil
}

// Unmarshal parses the on-disk layout back into an EncryptedSeed,
// rejecting anything structurally malformed as ErrCorrupt, and any
// unrecognized KDF identifier the same way.
func Unmarshal(data []byte) (*EncryptedSeed, error) {
	const headerLen = 4 + 1 + 1 + 4 + 4 + 4 + saltLen + nonceLen + 2
	if len(data) < headerLen {
		return nil, ErrCorrupt
	}
	if string(data[0:4]) != Magic {
		return nil, ErrCorrupt
	}
	if data[4] != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorrupt, data[4])
	}
	if data[5] != KDFIDArgon2id {
		return nil, fmt.Errorf("%w: unsupported kdf id %d", ErrCorrupt, data[5])
	}

	off := 6
	memKiB := binary.LittleEndian.Uint32(data[off:])
	off += 4
	iterations := binary.LittleEndian.Uint32(data[off:])
	off += 4
	parallelism := binary.LittleEndian.Uint32(data[off:])
	off += 4

	es := &EncryptedSeed{
		Params: Params{
			MemoryKiB:   memKiB,
			Iterations:  iterations,
			Parallelism: uint8(parallelism),
		},
	}
	copy(es.Salt[:], data[off:off+saltLen])
	off += saltLen
	copy(es.Nonce[:], data[off:off+nonceLen])
	off += nonceLen

	ctLen := int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	if len(data[off:]) != ctLen {
		return nil, ErrCorrupt
	}
	es.Ciphertext = append([]byte(nil), data[off:]...)

	return es, nil
}
