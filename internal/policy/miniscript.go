// Copyright (c) 2025 NoString developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import "fmt"

// renderKey renders a DescriptorKey in descriptor origin form:
// [fingerprint/path]pubkey-hex. Since this package
// works with plain public keys rather than full extended keys, the
// rendered key slot is the hex-encoded compressed public key; the
// multipath wildcard suffix is appended by the descriptor layer.
func renderKey(k KeySpec) string {
	origin := "[" + hexBytes(k.MasterFP[:])
	for _, idx := range k.DerivePath {
		origin += "/" + hardenedComponent(idx)
	}
	origin += "]"
	return origin + hexBytes(k.PubKey.SerializeCompressed())
}

func hardenedComponent(idx uint32) string {
	const hardenedStart = 0x80000000
	if idx >= hardenedStart {
		return fmt.Sprintf("%d'", idx-hardenedStart)
	}
	return fmt.Sprintf("%d", idx)
}

func hexBytes(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0xF]
	}
	return string(out)
}
