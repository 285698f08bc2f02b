package sbn

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"time"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/blobstore"
	"github.com/subsplit/sbn/codec"
	"github.com/subsplit/sbn/support"
)

// Snapshot wire format:
//
//	magic "SBN1" | version u16 | codec name | compression name |
//	manifest len u32 | manifest | payload len u32 | payload | crc32 u32
//
// Names are u8-length-prefixed strings. The manifest is codec-marshaled and
// uncompressed; the payload is codec-marshaled then compressed. The CRC32
// (IEEE) covers everything before it.
const (
	snapshotMagic   = "SBN1"
	snapshotVersion = uint16(1)
)

type snapshotManifest struct {
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	Taxa       int       `json:"taxa"`
	Rootsplits int       `json:"rootsplits"`
	Parameters int       `json:"parameters"`
}

type snapshotEntry struct {
	// Rootsplit bits, or empty for a PCSS slot.
	Rootsplit string `json:"rootsplit,omitempty"`
	// Parent and Child bits of a PCSS slot.
	Parent string `json:"parent,omitempty"`
	Child  string `json:"child,omitempty"`
}

type snapshotPayload struct {
	Taxa    int             `json:"taxa"`
	Entries []snapshotEntry `json:"entries"`
	Params  []float64       `json:"params"`
}

// SaveSnapshot persists the processed model (indexer entries and parameters)
// under name in the store. The loaded topology collection itself is not part
// of the snapshot; a restored instance can sample and score but not retrain.
func (in *Instance) SaveSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	if in.maps == nil {
		return ErrMapsNotAvailable
	}
	data, err := in.encodeSnapshot()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("sbn: saving snapshot %s: %w", name, err)
	}
	in.logger.Info("snapshot saved",
		"name", name,
		"bytes", len(data),
		"codec", in.opts.codec.Name(),
		"compression", in.opts.compression.Name())
	return nil
}

// LoadSnapshot restores the model persisted under name, replacing the
// instance's indexer and parameters. The codec and compression are resolved
// from the snapshot header, not from the instance options.
func (in *Instance) LoadSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	data, err := store.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("sbn: loading snapshot %s: %w", name, err)
	}
	if err := in.decodeSnapshot(data); err != nil {
		return fmt.Errorf("sbn: loading snapshot %s: %w", name, err)
	}
	in.logger.Info("snapshot loaded",
		"name", name,
		"taxa", in.maps.TaxonCount(),
		"parameters", in.maps.Len())
	return nil
}

func (in *Instance) encodeSnapshot() ([]byte, error) {
	entries := in.maps.Entries()
	payload := snapshotPayload{
		Taxa:    in.maps.TaxonCount(),
		Entries: make([]snapshotEntry, len(entries)),
		Params:  make([]float64, len(in.params)),
	}
	// JSON has no -Inf; starved slots are stored as the most negative finite
	// value and restored on load.
	for i, p := range in.params {
		if math.IsInf(p, -1) {
			p = -math.MaxFloat64
		}
		payload.Params[i] = p
	}
	for i, e := range entries {
		if e.Kind == support.KindRootsplit {
			payload.Entries[i] = snapshotEntry{Rootsplit: e.Rootsplit.String()}
		} else {
			payload.Entries[i] = snapshotEntry{Parent: e.PCSS.Parent.String(), Child: e.PCSS.Child.String()}
		}
	}

	manifest, err := in.opts.codec.Marshal(snapshotManifest{
		Name:       in.name,
		CreatedAt:  time.Now().UTC(),
		Taxa:       in.maps.TaxonCount(),
		Rootsplits: in.maps.RootsplitCount(),
		Parameters: in.maps.Len(),
	})
	if err != nil {
		return nil, fmt.Errorf("sbn: marshaling manifest: %w", err)
	}
	raw, err := in.opts.codec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("sbn: marshaling payload: %w", err)
	}
	compressed, err := in.opts.compression.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("sbn: compressing payload: %w", err)
	}

	buf := []byte(snapshotMagic)
	buf = binary.LittleEndian.AppendUint16(buf, snapshotVersion)
	buf = appendString(buf, in.opts.codec.Name())
	buf = appendString(buf, in.opts.compression.Name())
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(manifest)))
	buf = append(buf, manifest...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(compressed)))
	buf = append(buf, compressed...)
	buf = binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf))
	return buf, nil
}

func (in *Instance) decodeSnapshot(data []byte) error {
	if len(data) < len(snapshotMagic)+2+4 || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return fmt.Errorf("not a snapshot (bad magic)")
	}
	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return fmt.Errorf("checksum mismatch")
	}
	r := body[len(snapshotMagic):]
	version := binary.LittleEndian.Uint16(r)
	if version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", version)
	}
	r = r[2:]

	codecName, r, err := readString(r)
	if err != nil {
		return err
	}
	compressionName, r, err := readString(r)
	if err != nil {
		return err
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		return fmt.Errorf("unknown codec %q", codecName)
	}
	comp, ok := codec.CompressionByName(compressionName)
	if !ok {
		return fmt.Errorf("unknown compression %q", compressionName)
	}

	manifestRaw, r, err := readBlock(r)
	if err != nil {
		return err
	}
	var manifest snapshotManifest
	if err := c.Unmarshal(manifestRaw, &manifest); err != nil {
		return fmt.Errorf("unmarshaling manifest: %w", err)
	}
	compressed, _, err := readBlock(r)
	if err != nil {
		return err
	}
	raw, err := comp.Decompress(compressed)
	if err != nil {
		return fmt.Errorf("decompressing payload: %w", err)
	}
	var payload snapshotPayload
	if err := c.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("unmarshaling payload: %w", err)
	}
	if len(payload.Params) != len(payload.Entries) {
		return fmt.Errorf("%d params for %d entries", len(payload.Params), len(payload.Entries))
	}
	if manifest.Parameters != len(payload.Entries) {
		return fmt.Errorf("manifest claims %d parameters, payload has %d", manifest.Parameters, len(payload.Entries))
	}

	entries := make([]support.Entry, len(payload.Entries))
	for i, se := range payload.Entries {
		if se.Rootsplit != "" {
			rs, err := bitset.Parse(se.Rootsplit)
			if err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}
			entries[i] = support.Entry{Kind: support.KindRootsplit, Rootsplit: rs}
			continue
		}
		parent, err := bitset.Parse(se.Parent)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		child, err := bitset.Parse(se.Child)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		pcss, err := bitset.NewPCSS(parent, child)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		entries[i] = support.Entry{Kind: support.KindPCSS, PCSS: pcss}
	}
	maps, err := support.FromEntries(payload.Taxa, entries)
	if err != nil {
		return err
	}

	for i, p := range payload.Params {
		if p <= -math.MaxFloat64 {
			payload.Params[i] = math.Inf(-1)
		}
	}
	in.maps = maps
	in.psp = nil
	in.params = payload.Params
	return nil
}

func appendString(buf []byte, s string) []byte {
	if len(s) > 255 {
		panic("sbn: snapshot string too long")
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

func readString(data []byte) (string, []byte, error) {
	if len(data) < 1 {
		return "", nil, fmt.Errorf("truncated snapshot header")
	}
	n := int(data[0])
	if len(data) < 1+n {
		return "", nil, fmt.Errorf("truncated snapshot header")
	}
	return string(data[1 : 1+n]), data[1+n:], nil
}

func readBlock(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("truncated snapshot block")
	}
	n := int(binary.LittleEndian.Uint32(data))
	if len(data) < 4+n {
		return nil, nil, fmt.Errorf("truncated snapshot block")
	}
	return data[4 : 4+n], data[4+n:], nil
}
