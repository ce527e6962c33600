// Package hasher produces short, stable identifiers and content digests
// with xxHash64.
package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// IDLen is the length of manifest entry ids in hex characters.
const IDLen = 8

// idSeparator cannot appear in filenames, format names or role names taken
// from text input, so distinct tuples never hash the same joined string.
const idSeparator = "\x00"

// StableID hashes the ordered parts and returns the first IDLen hex chars.
// It identifies an entry for display and client-side dedup; it is not a
// security token and short-prefix collisions are tolerated.
func StableID(parts ...string) string {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.WriteString(idSeparator)
		}
		_, _ = d.WriteString(p)
	}
	return truncate(toHex(d.Sum64()), IDLen)
}

// ContentHash computes the xxHash64 of data as hex, truncated to hexLen
// characters when 0 < hexLen < 16.
func ContentHash(data []byte, hexLen int) string {
	return truncate(toHex(xxhash.Sum64(data)), hexLen)
}

func toHex(v uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return hex.EncodeToString(b[:])
}

func truncate(full string, hexLen int) string {
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
