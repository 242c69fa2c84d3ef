package history

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"
)

// Crockford's base32, as used by TypeID.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// HandIDLength is the length of every hand id.
const HandIDLength = 26

// NewHandID returns a UUIDv7 stamped with now and filled from rng, encoded
// as 26 base32 characters. Ids sort by time.
func NewHandID(rng *rand.Rand, now time.Time) string {
	var id [16]byte

	ms := now.UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	hi, lo := rng.Uint64(), rng.Uint64()
	for i := 0; i < 2; i++ {
		id[6+i] = byte(hi >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		id[8+i] = byte(lo >> (8 * i))
	}
	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encodeBase32(id)
}

// encodeBase32 reads the 128 bits as a 130-bit big-endian number with two
// leading zero bits.
func encodeBase32(id [16]byte) string {
	out := make([]byte, HandIDLength)
	for i := range out {
		// bit offset within the 130-bit value, minus the two padding bits
		offset := i*5 - 2
		var v byte
		for b := 0; b < 5; b++ {
			bit := offset + b
			if bit < 0 {
				continue
			}
			if id[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 0x10 >> b
			}
		}
		out[i] = alphabet[v]
	}
	return string(out)
}

// ValidateHandID checks the length and alphabet of id.
func ValidateHandID(id string) error {
	if len(id) != HandIDLength {
		return fmt.Errorf("hand id must be %d characters, got %d", HandIDLength, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("hand id must start with 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
