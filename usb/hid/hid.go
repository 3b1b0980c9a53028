// Package hid encodes HID report descriptors.
//
// A report descriptor is a byte-coded list of short items. Each Go item type
// in this package maps to exactly one short item (Collection emits its own
// End Collection), so a descriptor reads top to bottom like the item
// listing it produces.
package hid

import (
	"errors"
	"fmt"
)

// ErrItemSize is returned when a short item payload is not 0, 1, 2 or 4 bytes.
var ErrItemSize = errors.New("hid: invalid short item size")

// ItemType is the HID short item "type" field.
type ItemType uint8

const (
	ItemTypeMain   ItemType = 0
	ItemTypeGlobal ItemType = 1
	ItemTypeLocal  ItemType = 2
)

// Item is one node in a HID report descriptor.
type Item interface {
	appendTo(b []byte) ([]byte, error)
}

// Report is a complete HID report descriptor (type 0x22).
type Report struct {
	Items []Item
}

// Bytes encodes the report descriptor.
func (r Report) Bytes() ([]byte, error) {
	return appendItems(nil, r.Items)
}

func appendItems(b []byte, items []Item) ([]byte, error) {
	var err error
	for i, it := range items {
		if it == nil {
			return nil, fmt.Errorf("hid: nil item at %d", i)
		}
		if b, err = it.appendTo(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func appendShort(b []byte, tag uint8, typ ItemType, data []byte) ([]byte, error) {
	var sizeCode uint8
	switch len(data) {
	case 0, 1, 2:
		sizeCode = uint8(len(data))
	case 4:
		sizeCode = 3
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrItemSize, len(data))
	}
	b = append(b, tag<<4|uint8(typ)<<2|sizeCode)
	return append(b, data...), nil
}

// unsignedData returns the shortest little-endian encoding of v.
func unsignedData(v uint32) []byte {
	switch {
	case v <= 0xFF:
		return []byte{uint8(v)}
	case v <= 0xFFFF:
		return []byte{uint8(v), uint8(v >> 8)}
	}
	return []byte{uint8(v), uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)}
}

// signedData returns the shortest two's complement encoding of v.
// Logical bounds are signed in HID, so 0x8000 needs four bytes.
func signedData(v int32) []byte {
	switch {
	case v >= -128 && v <= 127:
		return []byte{uint8(v)}
	case v >= -32768 && v <= 32767:
		u := uint16(int16(v))
		return []byte{uint8(u), uint8(u >> 8)}
	}
	u := uint32(v)
	return []byte{uint8(u), uint8(u >> 8), uint8(u >> 16), uint8(u >> 24)}
}
