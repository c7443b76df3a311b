package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/RoaringBitmap/roaring"
)

// Artifact layout, little-endian:
//
//	[magic "FDX\x01"] [u16 version] [u8 codec]
//	[u8 ncols] ncols x ([u8 len] name [u8 type] [u8 nullable])
//	[u64 rows] [u64 payload len] [u32 crc32 of payload]
//	payload = codec(columns)
//
// The decoded payload holds one section per column in schema order:
//
//	[u64 value count] [u64 section len] section
//
// String sections are uvarint-length-prefixed values. Uint64 sections are
// fixed 8-byte values. Optional string sections start with a length-prefixed
// roaring bitmap of the rows that carry a value, followed by those values.
var magic = [4]byte{'F', 'D', 'X', 0x01}

const formatVersion uint16 = 1

// Header is the uncompressed prefix of an artifact.
type Header struct {
	Version     uint16
	Codec       Codec
	Schema      Schema
	Rows        uint64
	PayloadSize uint64
	Checksum    uint32
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptIndex, fmt.Sprintf(format, args...))
}

func appendHeader(dst []byte, h Header) []byte {
	dst = append(dst, magic[:]...)
	dst = binary.LittleEndian.AppendUint16(dst, h.Version)
	dst = append(dst, byte(h.Codec))
	dst = append(dst, byte(len(h.Schema)))
	for _, f := range h.Schema {
		dst = append(dst, byte(len(f.Name)))
		dst = append(dst, f.Name...)
		dst = append(dst, byte(f.Type))
		if f.Nullable {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	}
	dst = binary.LittleEndian.AppendUint64(dst, h.Rows)
	dst = binary.LittleEndian.AppendUint64(dst, h.PayloadSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.Checksum)
	return dst
}

// parseHeader decodes the header and returns it with the remaining bytes.
func parseHeader(data []byte) (Header, []byte, error) {
	var h Header
	d := &cursor{buf: data}

	if m := d.take(len(magic)); d.err != nil || !bytes.Equal(m, magic[:]) {
		return h, nil, corrupt("bad magic")
	}
	h.Version = d.u16()
	h.Codec = Codec(d.u8())
	ncols := d.u8()
	for i := 0; i < int(ncols) && d.err == nil; i++ {
		n := d.u8()
		name := d.take(int(n))
		h.Schema = append(h.Schema, Field{
			Name:     string(name),
			Type:     LogicalType(d.u8()),
			Nullable: d.u8() == 1,
		})
	}
	h.Rows = d.u64()
	h.PayloadSize = d.u64()
	h.Checksum = d.u32()
	if d.err != nil {
		return h, nil, corrupt("truncated header")
	}
	if h.Version != formatVersion {
		return h, nil, corrupt("unsupported format version %d", h.Version)
	}
	if !h.Codec.valid() {
		return h, nil, corrupt("unknown codec id %d", uint8(h.Codec))
	}
	if !h.Schema.Equal(FileSchema) {
		return h, nil, corrupt("schema %s does not match %s", h.Schema, FileSchema)
	}
	return h, d.rest(), nil
}

// encodeColumns writes the three columns as separate sections. The slices are
// taken as given so that a mismatched set can be produced in tests.
func encodeColumns(names []string, sizes []uint64, types []*string) ([]byte, error) {
	var out []byte

	var sec []byte
	for _, n := range names {
		sec = appendString(sec, n)
	}
	out = appendSection(out, uint64(len(names)), sec)

	sec = make([]byte, 0, 8*len(sizes))
	for _, s := range sizes {
		sec = binary.LittleEndian.AppendUint64(sec, s)
	}
	out = appendSection(out, uint64(len(sizes)), sec)

	present := roaring.New()
	var values []byte
	for i, t := range types {
		if t != nil {
			present.Add(uint32(i))
			values = appendString(values, *t)
		}
	}
	present.RunOptimize()
	bm, err := present.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode content type mask: %w", err)
	}
	sec = binary.LittleEndian.AppendUint64(nil, uint64(len(bm)))
	sec = append(sec, bm...)
	sec = append(sec, values...)
	out = appendSection(out, uint64(len(types)), sec)

	return out, nil
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

func appendSection(dst []byte, count uint64, sec []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, count)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(sec)))
	return append(dst, sec...)
}

// decodeColumns rebuilds the records from a decompressed payload. Every
// column must hold exactly rows values.
func decodeColumns(payload []byte, rows uint64) ([]FileRecord, error) {
	d := &cursor{buf: payload}

	nameCount, nameSec := d.section()
	sizeCount, sizeSec := d.section()
	typeCount, typeSec := d.section()
	if d.err != nil {
		return nil, corrupt("truncated column section")
	}
	if len(d.rest()) != 0 {
		return nil, corrupt("%d trailing bytes after columns", len(d.rest()))
	}
	if nameCount != sizeCount || nameCount != typeCount {
		return nil, corrupt("column lengths differ: %d names, %d sizes, %d content types",
			nameCount, sizeCount, typeCount)
	}
	if nameCount != rows {
		return nil, corrupt("header declares %d rows, columns hold %d", rows, nameCount)
	}

	names, err := decodeStrings(nameSec, rows)
	if err != nil {
		return nil, corrupt("%s column: %v", ColumnFileName, err)
	}

	if uint64(len(sizeSec)) != 8*rows {
		return nil, corrupt("%s column: %d bytes for %d values", ColumnFileSize, len(sizeSec), rows)
	}

	types, err := decodeOptionalStrings(typeSec, rows)
	if err != nil {
		return nil, corrupt("%s column: %v", ColumnContentType, err)
	}

	records := make([]FileRecord, rows)
	for i := range records {
		if names[i] == "" {
			return nil, corrupt("row %d has an empty name", i)
		}
		records[i] = FileRecord{
			Name:        names[i],
			SizeBytes:   binary.LittleEndian.Uint64(sizeSec[8*i:]),
			ContentType: types[i],
		}
	}
	return records, nil
}

func decodeStrings(sec []byte, n uint64) ([]string, error) {
	// Each value needs at least its one-byte length prefix.
	if n > uint64(len(sec)) {
		return nil, fmt.Errorf("%d values cannot fit in %d bytes", n, len(sec))
	}
	d := &cursor{buf: sec}
	out := make([]string, n)
	for i := range out {
		out[i] = d.str()
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.rest()) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(d.rest()))
	}
	return out, nil
}

func decodeOptionalStrings(sec []byte, n uint64) ([]*string, error) {
	d := &cursor{buf: sec}
	bmLen := d.u64()
	raw := d.take(int(min(bmLen, uint64(len(sec)+1))))
	if d.err != nil {
		return nil, errors.New("truncated presence mask")
	}
	present := roaring.New()
	if err := present.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("presence mask: %w", err)
	}
	if !present.IsEmpty() && uint64(present.Maximum()) >= n {
		return nil, fmt.Errorf("presence mask references row %d of %d", present.Maximum(), n)
	}

	values, err := decodeStrings(d.rest(), present.GetCardinality())
	if err != nil {
		return nil, err
	}
	out := make([]*string, n)
	it := present.Iterator()
	for i := 0; it.HasNext(); i++ {
		row := it.Next()
		v := values[i]
		out[row] = &v
	}
	return out, nil
}

func checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// cursor reads little-endian values and records the first short read.
type cursor struct {
	buf []byte
	off int
	err error
}

var errShort = errors.New("unexpected end of data")

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || len(c.buf)-c.off < n {
		c.err = errShort
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *cursor) u32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (c *cursor) u64() uint64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (c *cursor) str() string {
	if c.err != nil {
		return ""
	}
	n, w := binary.Uvarint(c.buf[c.off:])
	if w <= 0 || n > uint64(len(c.buf)-c.off-w) {
		c.err = errShort
		return ""
	}
	c.off += w
	return string(c.take(int(n)))
}

func (c *cursor) section() (uint64, []byte) {
	count := c.u64()
	n := c.u64()
	if c.err == nil && n > uint64(len(c.buf)-c.off) {
		c.err = errShort
		return 0, nil
	}
	return count, c.take(int(n))
}

func (c *cursor) rest() []byte {
	return c.buf[c.off:]
}
