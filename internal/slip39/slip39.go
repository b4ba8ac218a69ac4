// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package slip39 encodes and decodes Shamir secret-share backup
// phrases in the SLIP-39 format: a bit-packed header (identifier,
// extendable flag, iteration exponent, group/member indices and
// thresholds), the share payload, and an RS1024 checksum, rendered as
// a sequence of words from a 1024-entry list.
package slip39

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/nostring/core/internal/shamir"
)

var (
	// ErrBadChecksum is returned when a share's RS1024 checksum does
	// not validate.
	ErrBadChecksum = errors.New("slip39: bad checksum")

	// ErrBadWord is returned when a word is not on the wordlist.
	ErrBadWord = errors.New("slip39: word not in list")

	// ErrHeaderMismatch is returned when shares being combined disagree
	// on identifier, extendable flag, iteration exponent, or thresholds.
	ErrHeaderMismatch = errors.New("slip39: shares disagree on header fields")

	// ErrInsufficientShares is returned when fewer shares than the
	// declared threshold are supplied for reconstruction.
	ErrInsufficientShares = errors.New("slip39: insufficient shares")

	// ErrShortBitstream is returned when a decoded word sequence is too
	// short to contain a valid header and checksum.
	ErrShortBitstream = errors.New("slip39: word sequence too short")

	// ErrInvalidHeader is returned when a header field value is outside
	// its representable range.
	ErrInvalidHeader = errors.New("slip39: invalid header field")
)

const headerBitWidth = 15 + 1 + 4 + 4 + 4 + 4 + 4 + 4 // 40 bits, 4 words

// Header carries the non-secret metadata every SLIP-39 share encodes.
type Header struct {
	Identifier        uint16 // 15 bits
	Extendable        bool
	IterationExponent uint8 // 4 bits
	GroupIndex        uint8 // 4 bits
	GroupThreshold    uint8 // 1-16
	GroupCount        uint8 // 1-16
	MemberIndex       uint8 // 4 bits
	MemberThreshold   uint8 // 1-16
}

func (h Header) validate() error {
	if h.Identifier > 0x7FFF {
		return fmt.Errorf("%w: identifier out of range", ErrInvalidHeader)
	}
	if h.IterationExponent > 0xF {
		return fmt.Errorf("%w: iteration exponent out of range", ErrInvalidHeader)
	}
	if h.GroupIndex > 0xF {
		return fmt.Errorf("%w: group index out of range", ErrInvalidHeader)
	}
	if h.GroupThreshold < 1 || h.GroupThreshold > 16 {
		return fmt.Errorf("%w: group threshold out of range", ErrInvalidHeader)
	}
	if h.GroupCount < 1 || h.GroupCount > 16 || h.GroupThreshold > h.GroupCount {
		return fmt.Errorf("%w: group count/threshold mismatch", ErrInvalidHeader)
	}
	if h.MemberIndex > 0xF {
		return fmt.Errorf("%w: member index out of range", ErrInvalidHeader)
	}
	if h.MemberThreshold < 1 || h.MemberThreshold > 16 {
		return fmt.Errorf("%w: member threshold out of range", ErrInvalidHeader)
	}
	return nil
}

// Share is one decoded SLIP-39 word sequence: a header plus the raw
// Shamir share payload (ciphertext-free; SLIP-39 shares are the plain
// share bytes, optionally further encrypted by the caller before
// splitting).
type Share struct {
	Header
	Payload []byte
}

// randomIdentifier draws a fresh 15-bit identifier from the OS CSPRNG,
// shared by every share of one split so that decoders can tell unrelated
// shares apart (ErrHeaderMismatch).
func randomIdentifier() (uint16, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("slip39: read identifier: %w", err)
	}
	return binary.BigEndian.Uint16(b[:]) & 0x7FFF, nil
}

// Encode renders one share (header + payload) as a sequence of words.
func Encode(h Header, payload []byte) ([]string, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, errors.New("slip39: empty payload")
	}

	w := &bitWriter{}
	w.writeUint(uint32(h.Identifier), 15)
	if h.Extendable {
		w.writeUint(1, 1)
	} else {
		w.writeUint(0, 1)
	}
	w.writeUint(uint32(h.IterationExponent), 4)
	w.writeUint(uint32(h.GroupIndex), 4)
	w.writeUint(uint32(h.GroupThreshold-1), 4)
	w.writeUint(uint32(h.GroupCount-1), 4)
	w.writeUint(uint32(h.MemberIndex), 4)
	w.writeUint(uint32(h.MemberThreshold-1), 4)
	w.writeBytes(payload)
	w.padToMultiple(10)

	dataWords := w.words10()
	checksum := rs1024CreateChecksum(dataWords)
	allWords := append(append([]uint16{}, dataWords...), checksum[:]...)

	out := make([]string, len(allWords))
	for i, wi := range allWords {
		out[i] = wordAt(wi)
	}
	return out, nil
}

// Decode parses a word sequence back into a share, verifying its RS1024
// checksum. The header occupies headerBitWidth bits and the buffer is
// zero-padded out to a multiple of 10 before the checksum, so the
// payload length cannot be recovered from the bit length alone:
// padding is ambiguous with trailing zero payload bits. Callers pass
// the expected payload length in bytes as payloadLen.
func Decode(words []string, payloadLen int) (*Share, error) {
	if len(words) < 4+checksumLen {
		return nil, ErrShortBitstream
	}

	indices := make([]uint16, len(words))
	for i, word := range words {
		idx, err := wordIndex(strings.ToLower(strings.TrimSpace(word)))
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}

	dataWords := indices[:len(indices)-checksumLen]
	if !rs1024VerifyChecksum(indices) {
		return nil, ErrBadChecksum
	}

	r := newBitReaderFromWords(dataWords)

	id, err := r.readUint(15)
	if err != nil {
		return nil, err
	}
	ext, err := r.readUint(1)
	if err != nil {
		return nil, err
	}
	iterExp, err := r.readUint(4)
	if err != nil {
		return nil, err
	}
	groupIdx, err := r.readUint(4)
	if err != nil {
		return nil, err
	}
	groupThresh, err := r.readUint(4)
	if err != nil {
		return nil, err
	}
	groupCount, err := r.readUint(4)
	if err != nil {
		return nil, err
	}
	memberIdx, err := r.readUint(4)
	if err != nil {
		return nil, err
	}
	memberThresh, err := r.readUint(4)
	if err != nil {
		return nil, err
	}

	if r.remaining() < payloadLen*8 {
		return nil, ErrShortBitstream
	}
	payload, err := r.readBytes(payloadLen)
	if err != nil {
		return nil, err
	}

	h := Header{
		Identifier:        uint16(id),
		Extendable:        ext == 1,
		IterationExponent: uint8(iterExp),
		GroupIndex:        uint8(groupIdx),
		GroupThreshold:    uint8(groupThresh) + 1,
		GroupCount:        uint8(groupCount) + 1,
		MemberIndex:       uint8(memberIdx),
		MemberThreshold:   uint8(memberThresh) + 1,
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	return &Share{Header: h, Payload: payload}, nil
}

// SplitSingleGroup is the single-group case of the SLIP-39 scheme: a
// secret is split into MemberCount shares requiring MemberThreshold to
// reconstruct, all within one group (GroupCount=GroupThreshold=1).
func SplitSingleGroup(secret []byte, memberThreshold, memberCount int, extendable bool, iterationExponent uint8) ([]Share, error) {
	id, err := randomIdentifier()
	if err != nil {
		return nil, err
	}

	rawShares, err := shamir.Split(secret, memberThreshold, memberCount)
	if err != nil {
		return nil, fmt.Errorf("slip39: split: %w", err)
	}

	shares := make([]Share, len(rawShares))
	for i, rs := range rawShares {
		shares[i] = Share{
			Header: Header{
				Identifier:        id,
				Extendable:        extendable,
				IterationExponent: iterationExponent,
				GroupIndex:        0,
				GroupThreshold:    1,
				GroupCount:        1,
				MemberIndex:       rs.Index - 1,
				MemberThreshold:   uint8(memberThreshold),
			},
			Payload: rs.Payload,
		}
	}
	return shares, nil
}

// CombineSingleGroup reverses SplitSingleGroup: given at least
// MemberThreshold shares from the same group and identifier, it
// reconstructs the secret.
func CombineSingleGroup(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrInsufficientShares
	}
	first := shares[0].Header
	for _, s := range shares[1:] {
		if s.Identifier != first.Identifier || s.Extendable != first.Extendable ||
			s.IterationExponent != first.IterationExponent || s.GroupIndex != first.GroupIndex ||
			s.MemberThreshold != first.MemberThreshold {
			return nil, ErrHeaderMismatch
		}
	}
	if len(shares) < int(first.MemberThreshold) {
		return nil, fmt.Errorf("%w: have %d need %d", ErrInsufficientShares, len(shares), first.MemberThreshold)
	}

	rawShares := make([]shamir.Share, len(shares))
	for i, s := range shares {
		rawShares[i] = shamir.Share{Index: s.MemberIndex + 1, Payload: s.Payload}
	}
	return shamir.Reconstruct(rawShares)
}
