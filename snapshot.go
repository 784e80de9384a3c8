package spatialhash

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/spatialhash/internal/compress"
	"github.com/hupe1980/spatialhash/internal/conv"
	"github.com/hupe1980/spatialhash/internal/hash"
)

const (
	// snapshotMagic identifies snapshot files (ASCII: "SPHT").
	snapshotMagic = 0x54485053
	// snapshotVersion is the current snapshot format version.
	snapshotVersion = 1

	// snapshotHeaderSize is binary.Size(snapshotHeader{}).
	snapshotHeaderSize = 28

	// entrySize is X, Y, Z float64 plus the int64 value.
	entrySize = 32
)

// snapshotHeader is the fixed header at the start of every snapshot.
type snapshotHeader struct {
	Magic       uint32 // 0x54485053 ("SPHT")
	Version     uint16
	Compression uint8
	Reserved    uint8
	Capacity    uint32
	MaxProbe    uint32
	Entries     uint32
	PayloadLen  uint32
	Checksum    uint32 // CRC32C of the payload as stored
}

// maxPayload bounds the stored payload of a snapshot for the given capacity.
// Roaring needs at most a few bytes per value, each entry needs entrySize.
func maxPayload(capacity uint32) uint64 {
	return uint64(capacity)*(entrySize+16) + 4096
}

// maxRaw bounds the decompressed payload of a snapshot holding entries of
// capacity slots: the bitmap length prefix, the serialized occupancy bitmap
// and the entry records.
func maxRaw(capacity, entries uint32) uint64 {
	return 4 + roaringBound(capacity, entries) + uint64(entries)*entrySize
}

// roaringBound is the largest portable serialization of a bitmap holding
// entries values below capacity. Each 65536-value container stores at most
// 8192 bytes, or 2 bytes per value while it is an array; run containers are
// only chosen when smaller. Headers take at most 16 bytes per container plus
// the cookie.
func roaringBound(capacity, entries uint32) uint64 {
	containers := (uint64(capacity) + 0xffff) >> 16
	return 16 + containers*16 + min(2*uint64(entries), containers*8192)
}

type snapshotOptions struct {
	compression Compression
}

// SnapshotOption configures EncodeSnapshot and Save.
type SnapshotOption func(*snapshotOptions)

// WithSnapshotCompression overrides the table's configured compression for
// one snapshot.
func WithSnapshotCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

func (t *Table) applySnapshotOptions(optFns []SnapshotOption) snapshotOptions {
	o := snapshotOptions{compression: t.compression}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// EncodeSnapshot writes a snapshot of t to w.
//
// Entries keep their exact slot positions, so a decoded table probes
// identically to the original.
func EncodeSnapshot(w io.Writer, t *Table, optFns ...SnapshotOption) (int64, error) {
	data, err := t.encode(t.applySnapshotOptions(optFns).compression)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// DecodeSnapshot replaces the contents of t with the snapshot read from r.
//
// The snapshot must have been written by a table of the same capacity
// (ErrCapacityMismatch otherwise). A snapshot that fails validation yields
// ErrCorruptSnapshot. On error t is left unchanged.
func DecodeSnapshot(r io.Reader, t *Table) (int64, error) {
	var hdrBuf [snapshotHeaderSize]byte
	n, err := io.ReadFull(r, hdrBuf[:])
	read := int64(n)
	if err != nil {
		return read, corruptf("read header: %v", err)
	}

	hdr, err := parseHeader(hdrBuf[:])
	if err != nil {
		return read, err
	}
	if err := t.checkHeader(hdr); err != nil {
		return read, err
	}

	payload := make([]byte, hdr.PayloadLen)
	n, err = io.ReadFull(r, payload)
	read += int64(n)
	if err != nil {
		return read, corruptf("read payload: %v", err)
	}

	return read, t.decodePayload(hdr, payload)
}

// WriteTo implements io.WriterTo using the table's configured compression.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	return EncodeSnapshot(w, t)
}

// ReadFrom implements io.ReaderFrom. See DecodeSnapshot.
func (t *Table) ReadFrom(r io.Reader) (int64, error) {
	return DecodeSnapshot(r, t)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Table) MarshalBinary() ([]byte, error) {
	return t.encode(t.compression)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The receiver must already have the snapshot's capacity.
func (t *Table) UnmarshalBinary(data []byte) error {
	return t.decode(data)
}

func (t *Table) encode(c Compression) ([]byte, error) {
	if t.closed() {
		return nil, ErrClosed
	}
	if !c.Valid() {
		return nil, fmt.Errorf("spatialhash: unknown compression %d", c)
	}

	bm := t.Occupied()
	bm.RunOptimize()

	var raw bytes.Buffer
	raw.Grow(4 + int(bm.GetSerializedSizeInBytes()) + t.count*entrySize)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(bm.GetSerializedSizeInBytes()))
	raw.Write(lenBuf[:])
	if _, err := bm.WriteTo(&raw); err != nil {
		return nil, fmt.Errorf("spatialhash: encode occupancy: %w", err)
	}

	var entry [entrySize]byte
	it := bm.Iterator()
	for it.HasNext() {
		s := &t.slots[it.Next()]
		binary.LittleEndian.PutUint64(entry[0:], math.Float64bits(s.key.X))
		binary.LittleEndian.PutUint64(entry[8:], math.Float64bits(s.key.Y))
		binary.LittleEndian.PutUint64(entry[16:], math.Float64bits(s.key.Z))
		binary.LittleEndian.PutUint64(entry[24:], uint64(int64(s.value)))
		raw.Write(entry[:])
	}

	payload, err := compress.Encode(raw.Bytes(), c)
	if err != nil {
		return nil, fmt.Errorf("spatialhash: compress snapshot: %w", err)
	}

	payloadLen, err := conv.IntToUint32(len(payload))
	if err != nil {
		return nil, fmt.Errorf("spatialhash: snapshot payload: %w", err)
	}

	// Capacity fits uint32 (checked by New), so do count and probe distance.
	hdr := snapshotHeader{
		Magic:       snapshotMagic,
		Version:     snapshotVersion,
		Compression: uint8(c),
		Capacity:    uint32(len(t.slots)),
		MaxProbe:    uint32(t.maxProbeDistance),
		Entries:     uint32(t.count),
		PayloadLen:  payloadLen,
		Checksum:    hash.CRC32C(payload),
	}

	var out bytes.Buffer
	out.Grow(snapshotHeaderSize + len(payload))
	if err := binary.Write(&out, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	out.Write(payload)
	return out.Bytes(), nil
}

func (t *Table) decode(data []byte) error {
	if len(data) < snapshotHeaderSize {
		return corruptf("snapshot is %d bytes, header needs %d", len(data), snapshotHeaderSize)
	}
	hdr, err := parseHeader(data[:snapshotHeaderSize])
	if err != nil {
		return err
	}
	if err := t.checkHeader(hdr); err != nil {
		return err
	}
	payload := data[snapshotHeaderSize:]
	if uint64(len(payload)) != uint64(hdr.PayloadLen) {
		return corruptf("payload is %d bytes, header says %d", len(payload), hdr.PayloadLen)
	}
	return t.decodePayload(hdr, payload)
}

func parseHeader(b []byte) (snapshotHeader, error) {
	var hdr snapshotHeader
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &hdr); err != nil {
		return hdr, corruptf("parse header: %v", err)
	}
	if hdr.Magic != snapshotMagic {
		return hdr, corruptf("bad magic 0x%08x", hdr.Magic)
	}
	if hdr.Version != snapshotVersion {
		return hdr, corruptf("unsupported version %d", hdr.Version)
	}
	if !Compression(hdr.Compression).Valid() {
		return hdr, corruptf("unknown compression %d", hdr.Compression)
	}
	return hdr, nil
}

func (t *Table) checkHeader(hdr snapshotHeader) error {
	if t.closed() {
		return ErrClosed
	}
	n := uint32(len(t.slots))
	if hdr.Capacity != n {
		return fmt.Errorf("%w: snapshot has %d slots, table has %d", ErrCapacityMismatch, hdr.Capacity, n)
	}
	if hdr.Entries > n {
		return corruptf("%d entries exceed capacity %d", hdr.Entries, n)
	}
	if hdr.MaxProbe >= n {
		return corruptf("probe distance %d out of range", hdr.MaxProbe)
	}
	if uint64(hdr.PayloadLen) > maxPayload(n) {
		return corruptf("payload length %d too large", hdr.PayloadLen)
	}
	return nil
}

func (t *Table) decodePayload(hdr snapshotHeader, payload []byte) error {
	if !hash.Verify(payload, hdr.Checksum) {
		return corruptf("checksum mismatch")
	}

	raw, err := compress.Decode(payload, Compression(hdr.Compression), maxRaw(hdr.Capacity, hdr.Entries))
	if err != nil {
		return fmt.Errorf("%w: decompress: %w", ErrCorruptSnapshot, err)
	}
	if len(raw) < 4 {
		return corruptf("missing occupancy bitmap")
	}
	bmLen := uint64(binary.LittleEndian.Uint32(raw))
	raw = raw[4:]
	if uint64(len(raw)) < bmLen {
		return corruptf("occupancy bitmap truncated")
	}

	bm := roaring.New()
	if err := bm.UnmarshalBinary(raw[:bmLen]); err != nil {
		return corruptf("occupancy bitmap: %v", err)
	}
	raw = raw[bmLen:]

	n := len(t.slots)
	if bm.GetCardinality() != uint64(hdr.Entries) {
		return corruptf("bitmap holds %d slots, header says %d entries", bm.GetCardinality(), hdr.Entries)
	}
	if uint64(len(raw)) != uint64(hdr.Entries)*entrySize {
		return corruptf("entry section is %d bytes, want %d", len(raw), uint64(hdr.Entries)*entrySize)
	}
	if hdr.Entries > 0 && bm.Maximum() >= uint32(n) {
		return corruptf("slot %d out of range", bm.Maximum())
	}

	slots := make([]slot, n)
	it := bm.Iterator()
	for off := 0; it.HasNext(); off += entrySize {
		idx := int(it.Next())
		e := raw[off : off+entrySize]
		s := slot{
			key: Key{
				X: math.Float64frombits(binary.LittleEndian.Uint64(e[0:])),
				Y: math.Float64frombits(binary.LittleEndian.Uint64(e[8:])),
				Z: math.Float64frombits(binary.LittleEndian.Uint64(e[16:])),
			},
			occupied: true,
		}
		v, err := conv.Int64ToInt(int64(binary.LittleEndian.Uint64(e[24:])))
		if err != nil {
			return corruptf("slot %d value: %v", idx, err)
		}
		s.value = v
		if !s.key.Valid() {
			return corruptf("slot %d holds invalid key %v", idx, s.key)
		}
		if isReserved(s.value) {
			return corruptf("slot %d holds reserved value %d", idx, s.value)
		}
		slots[idx] = s
	}

	// Every entry must be reachable from its home bucket through a run of
	// occupied slots within the probe bound, and must be the first match.
	maxProbe, err := conv.Uint32ToInt(hdr.MaxProbe)
	if err != nil {
		return corruptf("probe distance: %v", err)
	}
	entries, err := conv.Uint32ToInt(hdr.Entries)
	if err != nil {
		return corruptf("entries: %v", err)
	}
	for i := range slots {
		if !slots[i].occupied {
			continue
		}
		k := slots[i].key
		home := Hash(k, n)
		dist := (i - home + n) % n
		if dist > maxProbe {
			return corruptf("slot %d is %d from home, bound is %d", i, dist, maxProbe)
		}
		for d := 0; d < dist; d++ {
			p := &slots[(home+d)%n]
			if !p.occupied {
				return corruptf("slot %d unreachable from home %d", i, home)
			}
			if p.key == k {
				return corruptf("duplicate key %v", k)
			}
		}
	}

	t.slots = slots
	t.count = entries
	t.maxProbeDistance = maxProbe
	return nil
}
