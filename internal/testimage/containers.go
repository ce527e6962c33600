package testimage

import (
	"encoding/binary"
	"image/color"
)

// WithEXIFCopyright returns a copy of the JPEG data with an EXIF APP1
// segment carrying notice as the IFD0 Copyright tag.
func WithEXIFCopyright(jpegData []byte, notice string) []byte {
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		panic("testimage: not a JPEG")
	}
	le := binary.LittleEndian
	value := append([]byte(notice), 0)

	// TIFF header, one IFD0 entry, next-IFD pointer, then the ASCII value.
	const valueOffset = 8 + 2 + 12 + 4
	tiff := make([]byte, valueOffset, valueOffset+len(value))
	copy(tiff, "II*\x00")
	le.PutUint32(tiff[4:], 8)
	le.PutUint16(tiff[8:], 1)
	le.PutUint16(tiff[10:], 0x8298) // Copyright
	le.PutUint16(tiff[12:], 2)      // ASCII
	le.PutUint32(tiff[14:], uint32(len(value)))
	le.PutUint32(tiff[18:], valueOffset)
	le.PutUint32(tiff[22:], 0)
	tiff = append(tiff, value...)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpegData)+len(seg))
	out = append(out, jpegData[:2]...)
	out = append(out, seg...)
	return append(out, jpegData[2:]...)
}

// SolidWebP encodes a w×h single-color lossless WebP. Every prefix code
// holds one symbol, so pixels cost no bits and any size stays tiny.
// Dimensions are limited to 16384 per side.
func SolidWebP(w, h int, c color.NRGBA) []byte {
	if w < 1 || h < 1 || w > 1<<14 || h > 1<<14 {
		panic("testimage: webp dimensions out of range")
	}
	var bw bitWriter
	bw.write(0x2f, 8)
	bw.write(uint32(w-1), 14)
	bw.write(uint32(h-1), 14)
	bw.write(0, 1) // alpha hint
	bw.write(0, 3) // version
	bw.write(0, 1) // no transforms
	bw.write(0, 1) // no color cache
	bw.write(0, 1) // no meta prefix codes
	// Green, red, blue, alpha and distance codes.
	for _, sym := range []uint8{c.G, c.R, c.B, c.A, 0} {
		bw.write(1, 1) // simple code
		bw.write(0, 1) // one symbol
		bw.write(1, 1) // eight-bit symbol
		bw.write(uint32(sym), 8)
	}
	vp8l := bw.bytes()

	chunk := make([]byte, 8, 8+len(vp8l)+1)
	copy(chunk, "VP8L")
	binary.LittleEndian.PutUint32(chunk[4:], uint32(len(vp8l)))
	chunk = append(chunk, vp8l...)
	if len(vp8l)%2 == 1 {
		chunk = append(chunk, 0)
	}

	out := make([]byte, 12, 12+len(chunk))
	copy(out, "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(4+len(chunk)))
	copy(out[8:], "WEBP")
	return append(out, chunk...)
}

// bitWriter packs values least significant bit first.
type bitWriter struct {
	buf  []byte
	acc  uint64
	nacc uint
}

func (b *bitWriter) write(v uint32, n uint) {
	b.acc |= uint64(v) << b.nacc
	b.nacc += n
	for b.nacc >= 8 {
		b.buf = append(b.buf, byte(b.acc))
		b.acc >>= 8
		b.nacc -= 8
	}
}

func (b *bitWriter) bytes() []byte {
	if b.nacc > 0 {
		b.buf = append(b.buf, byte(b.acc))
		b.acc, b.nacc = 0, 0
	}
	return b.buf
}
