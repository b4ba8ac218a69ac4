// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slip39

import (
	"fmt"

	"github.com/nostring/core/internal/shamir"
)

// GroupSpec describes one group in a two-layer SLIP-39 split: a
// (threshold, count) Shamir scheme over that group's share of the
// layer-1 secret.
type GroupSpec struct {
	MemberThreshold int
	MemberCount     int
}

// SplitGroups implements SLIP-39's group-threshold scheme: the secret
// is first split across len(groups) groups requiring
// groupThreshold of them, then each group's resulting share is itself
// split into that group's members.
func SplitGroups(secret []byte, groupThreshold int, groups []GroupSpec, extendable bool, iterationExponent uint8) ([][]Share, error) {
	if groupThreshold < 1 || groupThreshold > len(groups) || len(groups) > 16 {
		return nil, fmt.Errorf("%w: group threshold %d over %d groups", ErrInvalidHeader, groupThreshold, len(groups))
	}

	id, err := randomIdentifier()
	if err != nil {
		return nil, err
	}

	layer1, err := shamir.Split(secret, groupThreshold, len(groups))
	if err != nil {
		return nil, fmt.Errorf("slip39: layer-1 split: %w", err)
	}

	out := make([][]Share, len(groups))
	for gi, group := range groups {
		memberShares, err := shamir.Split(layer1[gi].Payload, group.MemberThreshold, group.MemberCount)
		if err != nil {
			return nil, fmt.Errorf("slip39: group %d split: %w", gi, err)
		}

		shares := make([]Share, len(memberShares))
		for mi, ms := range memberShares {
			shares[mi] = Share{
				Header: Header{
					Identifier:        id,
					Extendable:        extendable,
					IterationExponent: iterationExponent,
					GroupIndex:        uint8(gi),
					GroupThreshold:    uint8(groupThreshold),
					GroupCount:        uint8(len(groups)),
					MemberIndex:       ms.Index - 1,
					MemberThreshold:   uint8(group.MemberThreshold),
				},
				Payload: ms.Payload,
			}
		}
		out[gi] = shares
	}
	return out, nil
}

// CombineGroups reverses SplitGroups. sharesByGroup need only contain
// entries for groups that have reached their own member threshold; any
// group present with fewer than its threshold is an error, since a
// partial group carries no information about the layer-1 share.
func CombineGroups(sharesByGroup map[uint8][]Share) ([]byte, error) {
	if len(sharesByGroup) == 0 {
		return nil, ErrInsufficientShares
	}

	var id uint16
	var extendable bool
	var iterExp, groupThreshold, groupCount uint8
	first := true

	layer1Shares := make([]shamir.Share, 0, len(sharesByGroup))
	for gi, shares := range sharesByGroup {
		if len(shares) == 0 {
			continue
		}
		h := shares[0].Header
		if first {
			id, extendable, iterExp, groupThreshold, groupCount = h.Identifier, h.Extendable, h.IterationExponent, h.GroupThreshold, h.GroupCount
			first = false
		} else if h.Identifier != id || h.Extendable != extendable || h.IterationExponent != iterExp ||
			h.GroupThreshold != groupThreshold || h.GroupCount != groupCount {
			return nil, ErrHeaderMismatch
		}

		if len(shares) < int(h.MemberThreshold) {
			return nil, fmt.Errorf("%w: group %d has %d shares, needs %d", ErrInsufficientShares, gi, len(shares), h.MemberThreshold)
		}

		groupSecret, err := CombineSingleGroup(shares)
		if err != nil {
			return nil, fmt.Errorf("slip39: combine group %d: %w", gi, err)
		}
		layer1Shares = append(layer1Shares, shamir.Share{Index: h.GroupIndex + 1, Payload: groupSecret})
	}

	if len(layer1Shares) < int(groupThreshold) {
		return nil, fmt.Errorf("%w: have %d groups, need %d", ErrInsufficientShares, len(layer1Shares), groupThreshold)
	}

	return shamir.Reconstruct(layer1Shares)
}
