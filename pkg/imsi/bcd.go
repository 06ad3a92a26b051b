// SPDX-License-Identifier: Apache-2.0

// Package imsi implements the Telephony-BCD wire format shared by the
// Mini-PGW server and its clients (§6.1, §6.2).
package imsi

import (
	"errors"
)

// header is the fixed 4-byte prefix of every request packet.
var header = [4]byte{0x01, 0x00, 0x00, 0x00}

// Response strings (§6.2). The reply datagram is exactly one of these,
// with no length prefix.
const (
	ResponseCreated  = "created"
	ResponseRejected = "rejected"
)

// Length is the number of decimal digits an IMSI always has.
const Length = 15

// ErrInvalidIMSI is returned for any string that isn't exactly Length
// decimal digits.
var ErrInvalidIMSI = errors.New("imsi must be exactly 15 decimal digits")

// ErrShortPacket is returned by Decode for packets shorter than the
// minimum 12-byte wire size.
var ErrShortPacket = errors.New("packet too short")

// ErrBadBCD is returned by Decode when a nibble is not a valid digit
// (0-9) in a position where the filler 0xF is not permitted.
var ErrBadBCD = errors.New("invalid BCD digit")

// Valid reports whether s is exactly 15 decimal digits.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// Encode builds the wire-format request packet for imsi: a 4-byte fixed
// header followed by 8 bytes of swapped-nibble Telephony BCD. For digit
// pair (d[2i], d[2i+1]) the byte is (d[2i+1]<<4)|d[2i]; the final byte's
// high nibble is the filler 0xF since 15 is odd.
func Encode(imsiStr string) ([]byte, error) {
	if !Valid(imsiStr) {
		return nil, ErrInvalidIMSI
	}

	buf := make([]byte, 0, 4+8)
	buf = append(buf, header[:]...)

	for i := 0; i < Length; i += 2 {
		lo := imsiStr[i] - '0'

		var hi byte = 0xF
		if i+1 < Length {
			hi = imsiStr[i+1] - '0'
		}

		buf = append(buf, (hi<<4)|lo)
	}

	return buf, nil
}

// Decode extracts the 15-digit IMSI from a wire-format request packet.
// Packets shorter than 12 bytes, or containing an invalid BCD digit in
// a non-filler position, yield ErrShortPacket/ErrBadBCD.
func Decode(packet []byte) (string, error) {
	const minLen = 12
	const headerLen = 4

	if len(packet) < minLen {
		return "", ErrShortPacket
	}

	digits := make([]byte, 0, Length)

	for i := headerLen; i < len(packet) && len(digits) < Length; i++ {
		b := packet[i]

		lo := b & 0x0F
		if lo > 9 {
			return "", ErrBadBCD
		}

		digits = append(digits, '0'+lo)

		hi := (b >> 4) & 0x0F

		if len(digits) == Length {
			// The low nibble just supplied the final digit, so the high
			// nibble of this byte must be the 0xF filler, not a digit.
			if hi != 0x0F {
				return "", ErrBadBCD
			}

			break
		}

		if hi > 9 {
			return "", ErrBadBCD
		}

		digits = append(digits, '0'+hi)
	}

	if len(digits) != Length {
		return "", ErrShortPacket
	}

	return string(digits), nil
}
