// Package bitcodec provides the pure bit-string codecs used by the tag
// data translation engine: directional bit-padding, 5/6/7/8-bit character
// compaction, arbitrary-precision decimal conversion, and text padding.
//
// Bit strings are Go strings of '0'/'1' characters, which is the
// representation the translation markup's regular expressions match
// against. Tag fields routinely exceed 64 bits, so decimal conversion
// goes through math/big throughout.
package bitcodec

import (
	"math/big"
	"strings"

	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// PadDir names the side of a value that padding is attached to.
type PadDir int

const (
	// PadNone means no padding direction is specified.
	PadNone PadDir = iota
	// PadLeft pads or strips on the left (most significant side).
	PadLeft
	// PadRight pads or strips on the right.
	PadRight
)

func (d PadDir) String() string {
	switch d {
	case PadLeft:
		return "LEFT"
	case PadRight:
		return "RIGHT"
	}
	return "NONE"
}

// StripBitPadding removes the zero padding attached to one side of a bit
// string. For compaction widths >= 4 the kept length is rounded up to a
// whole number of compaction chunks so that character boundaries survive;
// narrower widths (and 0, meaning a numeric field) keep exactly the
// significant bits.
//
// PadRight keeps the prefix ending at the last '1'; PadLeft keeps the
// suffix starting at the first '1'. A bit string with no '1' strips to
// the empty string.
func StripBitPadding(bits string, dir PadDir, compaction int) string {
	var keep int
	switch dir {
	case PadRight:
		keep = roundChunk(strings.LastIndexByte(bits, '1')+1, compaction)
		if keep > len(bits) {
			keep = len(bits)
		}
		return bits[:keep]
	case PadLeft:
		first := strings.IndexByte(bits, '1')
		if first < 0 {
			keep = 0
		} else {
			keep = len(bits) - first
		}
		keep = roundChunk(keep, compaction)
		if keep > len(bits) {
			keep = len(bits)
		}
		return bits[len(bits)-keep:]
	}
	return bits
}

func roundChunk(n, compaction int) int {
	if compaction < 4 {
		return n
	}
	if r := n % compaction; r != 0 {
		n += compaction - r
	}
	return n
}

// BinaryToString expands a bit string into characters of bitsPerChar bits
// each, per the ISO 15962 compactions: 5-bit values shift up by 64
// (uppercase letters and digits), 6-bit values below 32 shift up by 64,
// and 7/8-bit values are emitted as-is.
func BinaryToString(bits string, bitsPerChar int) (string, error) {
	if bitsPerChar < 5 || bitsPerChar > 8 {
		return "", tdterrors.Errorf(tdterrors.UnsupportedCompaction,
			"unsupported compaction: %d bits per character", bitsPerChar)
	}
	if len(bits)%bitsPerChar != 0 {
		return "", tdterrors.Errorf(tdterrors.InvalidBinary,
			"bit string of length %d cannot be split into %d-bit characters",
			len(bits), bitsPerChar)
	}

	var b strings.Builder
	b.Grow(len(bits) / bitsPerChar)
	for i := 0; i < len(bits); i += bitsPerChar {
		v := 0
		for _, c := range []byte(bits[i : i+bitsPerChar]) {
			switch c {
			case '0':
				v <<= 1
			case '1':
				v = v<<1 | 1
			default:
				return "", tdterrors.Errorf(tdterrors.InvalidBinary,
					"bit string contains %q", c)
			}
		}
		switch bitsPerChar {
		case 5:
			v += 64
		case 6:
			if v < 32 {
				v += 64
			}
		}
		b.WriteByte(byte(v))
	}
	return b.String(), nil
}

// StringToBinary is the inverse of BinaryToString: each character's code,
// modulo 2^bitsPerChar, rendered as bitsPerChar bits.
func StringToBinary(text string, bitsPerChar int) (string, error) {
	if bitsPerChar < 5 || bitsPerChar > 8 {
		return "", tdterrors.Errorf(tdterrors.UnsupportedCompaction,
			"unsupported compaction: %d bits per character", bitsPerChar)
	}

	var b strings.Builder
	b.Grow(len(text) * bitsPerChar)
	for _, c := range []byte(text) {
		v := int(c) & ((1 << uint(bitsPerChar)) - 1)
		for j := bitsPerChar - 1; j >= 0; j-- {
			b.WriteByte('0' + byte((v>>uint(j))&1))
		}
	}
	return b.String(), nil
}

// BinToDec interprets a bit string as a non-negative integer and returns
// its decimal representation. The empty string maps to "0". Tag fields
// are wider than 64 bits, so the conversion is arbitrary precision.
func BinToDec(bits string) (string, error) {
	if bits == "" {
		return "0", nil
	}
	v, ok := new(big.Int).SetString(bits, 2)
	if !ok {
		return "", tdterrors.Errorf(tdterrors.InvalidBinary,
			"%q is not a binary string", bits)
	}
	return v.String(), nil
}

// DecToBin returns the minimum-width binary representation of a
// non-negative decimal string. The empty string maps to "0".
func DecToBin(dec string) (string, error) {
	if dec == "" {
		return "0", nil
	}
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok || v.Sign() < 0 {
		return "", tdterrors.Errorf(tdterrors.InvalidBinary,
			"%q is not a non-negative decimal string", dec)
	}
	return v.Text(2), nil
}

// ApplyPadChar pads s with ch on the given side to exactly reqLen
// characters. Strings already at or beyond reqLen are returned unchanged.
func ApplyPadChar(s string, dir PadDir, ch byte, reqLen int) string {
	if len(s) >= reqLen || dir == PadNone {
		return s
	}
	pad := strings.Repeat(string(ch), reqLen-len(s))
	if dir == PadLeft {
		return pad + s
	}
	return s + pad
}

// StripPadChar removes the consecutive run of ch from the given side of s.
func StripPadChar(s string, dir PadDir, ch byte) string {
	switch dir {
	case PadLeft:
		return strings.TrimLeft(s, string(ch))
	case PadRight:
		return strings.TrimRight(s, string(ch))
	}
	return s
}
