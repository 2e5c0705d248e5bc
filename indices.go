package gekkomesh

import (
	"encoding/binary"
	"fmt"
)

// IndexFormat is the width of one index.
type IndexFormat uint8

const (
	IndexFormatNone IndexFormat = iota
	IndexFormatUint8
	IndexFormatUint16
	IndexFormatUint32
)

// Size returns the byte width of one index.
func (f IndexFormat) Size() int {
	switch f {
	case IndexFormatUint8:
		return 1
	case IndexFormatUint16:
		return 2
	case IndexFormatUint32:
		return 4
	}
	return 0
}

func (f IndexFormat) String() string {
	switch f {
	case IndexFormatNone:
		return "none"
	case IndexFormatUint8:
		return "uint8"
	case IndexFormatUint16:
		return "uint16"
	case IndexFormatUint32:
		return "uint32"
	}
	return fmt.Sprintf("indexformat(%d)", uint8(f))
}

// IndexData holds one flat index array. Exactly one of the backing slices
// is used, selected by the format chosen at construction.
type IndexData struct {
	format IndexFormat
	u8     []uint8
	u16    []uint16
	u32    []uint32
}

func Indices8(indices []uint8) *IndexData {
	return &IndexData{format: IndexFormatUint8, u8: indices}
}

func Indices16(indices []uint16) *IndexData {
	return &IndexData{format: IndexFormatUint16, u16: indices}
}

func Indices32(indices []uint32) *IndexData {
	return &IndexData{format: IndexFormatUint32, u32: indices}
}

func (d *IndexData) Format() IndexFormat { return d.format }

// Len returns the number of indices.
func (d *IndexData) Len() int {
	switch d.format {
	case IndexFormatUint8:
		return len(d.u8)
	case IndexFormatUint16:
		return len(d.u16)
	case IndexFormatUint32:
		return len(d.u32)
	}
	return 0
}

// ByteLength returns the size of the index array in bytes.
func (d *IndexData) ByteLength() int { return d.Len() * d.format.Size() }

// Uint8 returns the backing array when the format is IndexFormatUint8.
func (d *IndexData) Uint8() ([]uint8, bool) { return d.u8, d.format == IndexFormatUint8 }

// Uint16 returns the backing array when the format is IndexFormatUint16.
func (d *IndexData) Uint16() ([]uint16, bool) { return d.u16, d.format == IndexFormatUint16 }

// Uint32 returns the backing array when the format is IndexFormatUint32.
func (d *IndexData) Uint32() ([]uint32, bool) { return d.u32, d.format == IndexFormatUint32 }

// At returns index i widened to uint32.
func (d *IndexData) At(i int) uint32 {
	switch d.format {
	case IndexFormatUint8:
		return uint32(d.u8[i])
	case IndexFormatUint16:
		return uint32(d.u16[i])
	default:
		return d.u32[i]
	}
}

// appendBytes appends the little-endian encoding of the indices to dst.
func (d *IndexData) appendBytes(dst []byte) []byte {
	switch d.format {
	case IndexFormatUint8:
		dst = append(dst, d.u8...)
	case IndexFormatUint16:
		for _, v := range d.u16 {
			dst = binary.LittleEndian.AppendUint16(dst, v)
		}
	case IndexFormatUint32:
		for _, v := range d.u32 {
			dst = binary.LittleEndian.AppendUint32(dst, v)
		}
	}
	return dst
}
