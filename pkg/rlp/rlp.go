// Package rlp implements Recursive Length Prefix encoding: every value is
// either a byte string or a list of values, each carrying a length prefix.
//
// Decoding is strict. Non-canonical length prefixes, trailing bytes and
// lengths running past the input are rejected, so bytes from the network
// can be decoded safely.
package rlp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/Klingon-tech/walletkit-core/pkg/uint256"
)

// Decoding errors.
var (
	ErrMalformed      = errors.New("rlp: malformed input")
	ErrNonCanonical   = errors.New("rlp: non-canonical encoding")
	ErrTrailingBytes  = errors.New("rlp: trailing bytes after item")
	ErrExpectedString = errors.New("rlp: expected string, found list")
	ErrExpectedList   = errors.New("rlp: expected list, found string")
	ErrUintOverflow   = errors.New("rlp: integer overflows target width")
	ErrTooDeep        = errors.New("rlp: nesting too deep")
)

// MaxDepth bounds list nesting accepted by Decode.
const MaxDepth = 32

const (
	offsetShortString = 0x80
	offsetLongString  = 0xb7
	offsetShortList   = 0xc0
	offsetLongList    = 0xf7
	maxShortPayload   = 55
)

// Item is a decoded or to-be-encoded RLP value.
type Item struct {
	list  bool
	bytes []byte
	items []Item
}

// Bytes creates a string item.
func Bytes(b []byte) Item {
	return Item{bytes: b}
}

// String creates a string item from a Go string.
func String(s string) Item {
	return Item{bytes: []byte(s)}
}

// Empty is the empty string item (encoded as 0x80).
func Empty() Item {
	return Item{bytes: nil}
}

// Uint64 creates a string item holding the minimal big-endian encoding of
// v. Zero encodes as the empty string.
func Uint64(v uint64) Item {
	if v == 0 {
		return Item{}
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return Item{bytes: buf[8-(bits.Len64(v)+7)/8:]}
}

// UInt256 creates a string item holding the minimal big-endian encoding
// of v.
func UInt256(v uint256.UInt256) Item {
	return Item{bytes: v.Bytes()}
}

// List creates a list item.
func List(items ...Item) Item {
	return Item{list: true, items: items}
}

// IsList reports whether the item is a list.
func (it Item) IsList() bool {
	return it.list
}

// Len returns the number of list elements, or the string length.
func (it Item) Len() int {
	if it.list {
		return len(it.items)
	}
	return len(it.bytes)
}

// Items returns the elements of a list item.
func (it Item) Items() ([]Item, error) {
	if !it.list {
		return nil, ErrExpectedList
	}
	return it.items, nil
}

// Bytes returns the content of a string item.
func (it Item) Bytes() ([]byte, error) {
	if it.list {
		return nil, ErrExpectedString
	}
	return it.bytes, nil
}

// AsUint64 decodes a canonical big-endian unsigned integer.
func (it Item) AsUint64() (uint64, error) {
	b, err := it.Bytes()
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, ErrUintOverflow
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, ErrNonCanonical
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// AsUInt256 decodes a canonical big-endian unsigned 256-bit integer.
func (it Item) AsUInt256() (uint256.UInt256, error) {
	b, err := it.Bytes()
	if err != nil {
		return uint256.Zero, err
	}
	if len(b) > 32 {
		return uint256.Zero, ErrUintOverflow
	}
	if len(b) > 0 && b[0] == 0 {
		return uint256.Zero, ErrNonCanonical
	}
	v, _ := uint256.FromBytes(b)
	return v, nil
}

// Encode returns the RLP encoding of the item.
func (it Item) Encode() []byte {
	return it.appendTo(nil)
}

func (it Item) appendTo(out []byte) []byte {
	if !it.list {
		if len(it.bytes) == 1 && it.bytes[0] < offsetShortString {
			return append(out, it.bytes[0])
		}
		out = appendHeader(out, offsetShortString, offsetLongString, len(it.bytes))
		return append(out, it.bytes...)
	}

	var payload []byte
	for _, child := range it.items {
		payload = child.appendTo(payload)
	}
	out = appendHeader(out, offsetShortList, offsetLongList, len(payload))
	return append(out, payload...)
}

func appendHeader(out []byte, short, long byte, size int) []byte {
	if size <= maxShortPayload {
		return append(out, short+byte(size))
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(size))
	n := (bits.Len64(uint64(size)) + 7) / 8
	out = append(out, long+byte(n))
	return append(out, buf[8-n:]...)
}

// Decode parses exactly one item from data.
func Decode(data []byte) (Item, error) {
	it, rest, err := decode(data, 0)
	if err != nil {
		return Item{}, err
	}
	if len(rest) != 0 {
		return Item{}, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(rest))
	}
	return it, nil
}

// DecodeList parses data as a list and returns its elements.
func DecodeList(data []byte) ([]Item, error) {
	it, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return it.Items()
}

func decode(data []byte, depth int) (Item, []byte, error) {
	if depth > MaxDepth {
		return Item{}, nil, ErrTooDeep
	}
	if len(data) == 0 {
		return Item{}, nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	prefix := data[0]
	switch {
	case prefix < offsetShortString:
		return Item{bytes: data[:1]}, data[1:], nil

	case prefix <= offsetLongString:
		size := int(prefix - offsetShortString)
		if len(data) < 1+size {
			return Item{}, nil, fmt.Errorf("%w: string of %d bytes exceeds input", ErrMalformed, size)
		}
		content := data[1 : 1+size]
		if size == 1 && content[0] < offsetShortString {
			return Item{}, nil, fmt.Errorf("%w: single byte below 0x80 must not be prefixed", ErrNonCanonical)
		}
		return Item{bytes: content}, data[1+size:], nil

	case prefix < offsetShortList:
		content, rest, err := longPayload(data, prefix-offsetLongString)
		if err != nil {
			return Item{}, nil, err
		}
		return Item{bytes: content}, rest, nil

	default:
		var content, rest []byte
		if prefix <= offsetLongList {
			size := int(prefix - offsetShortList)
			if len(data) < 1+size {
				return Item{}, nil, fmt.Errorf("%w: list of %d bytes exceeds input", ErrMalformed, size)
			}
			content, rest = data[1:1+size], data[1+size:]
		} else {
			var err error
			content, rest, err = longPayload(data, prefix-offsetLongList)
			if err != nil {
				return Item{}, nil, err
			}
		}

		items := []Item{}
		for len(content) > 0 {
			child, remaining, err := decode(content, depth+1)
			if err != nil {
				return Item{}, nil, err
			}
			items = append(items, child)
			content = remaining
		}
		return Item{list: true, items: items}, rest, nil
	}
}

// longPayload reads a long-form length of lenOfLen bytes and returns the
// payload and the remainder.
func longPayload(data []byte, lenOfLen byte) ([]byte, []byte, error) {
	n := int(lenOfLen)
	if n > 8 || len(data) < 1+n {
		return nil, nil, fmt.Errorf("%w: truncated length", ErrMalformed)
	}
	if data[1] == 0 {
		return nil, nil, fmt.Errorf("%w: length has leading zero", ErrNonCanonical)
	}
	var size uint64
	for _, c := range data[1 : 1+n] {
		size = size<<8 | uint64(c)
	}
	if size <= maxShortPayload {
		return nil, nil, fmt.Errorf("%w: long form used for %d bytes", ErrNonCanonical, size)
	}
	if size > uint64(len(data)-1-n) {
		return nil, nil, fmt.Errorf("%w: payload of %d bytes exceeds input", ErrMalformed, size)
	}
	end := 1 + n + int(size)
	return data[1+n : end], data[end:], nil
}
