// Package segment implements the byte-exact persistence format (Save / Load)
// for a built VectorModel + WordMatcher snapshot: a stable binary
// layout behind an atomic temp-file-then-rename writer, with a trailing
// CRC32 footer so a corrupt file is refused rather than partially loaded.
package segment

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/infidex/infidex/internal/document"
	"github.com/infidex/infidex/internal/term"
	pkgerrors "github.com/infidex/infidex/pkg/errors"
)

// MagicTag is the format identifier written as the first length-prefixed
// string in every segment file.
const MagicTag = "INFIDEX_V1"

// ErrInvalidFormat is returned by Load when the magic tag doesn't match or
// the trailing CRC32 footer doesn't verify. Per spec, a corrupt or
// wrong-version file is refused outright; no partial state is exposed. It is
// pkg/errors.ErrInvalidFormat, so callers can branch on pkgerrors.KindOf
// without this package needing its own parallel sentinel.
var ErrInvalidFormat = pkgerrors.ErrInvalidFormat

// DocumentRecord is one document's persisted state.
type DocumentRecord struct {
	ID            int32
	Key           int64
	IndexedText   string
	ClientInfo    string
	SegmentNumber int32
	Boundaries    []document.FieldBoundary
	Deleted       bool
}

// TermRecord is one term's persisted, already-built posting list.
type TermRecord struct {
	Text              string
	DocumentFrequency int32
	Postings          []term.Posting
}

// WordIndex is one of WordMatcher's word -> doc-id-set dictionaries.
type WordIndex map[string][]int32

// WordMatcherSnapshot carries WordMatcher's backing dictionaries. Exact,
// LD1, and Prefix are the "three dictionaries" of the wire format; Suffix
// follows as the trailing affix section (there is no FST library in the
// reference corpus, so the affix section is shaped identically to the
// other three rather than as a compressed trie).
type WordMatcherSnapshot struct {
	Exact  WordIndex
	LD1    WordIndex
	Prefix WordIndex
	Suffix WordIndex
}

// Snapshot is everything Save persists and Load restores.
type Snapshot struct {
	Documents   []DocumentRecord
	Terms       []TermRecord
	WordMatcher *WordMatcherSnapshot
}

// Save atomically writes snap to path: it writes to a ".tmp" sibling file,
// fsyncs, then renames over the destination, so a crash mid-write never
// leaves a corrupt file at path.
func Save(path string, snap Snapshot) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("segment: creating directory: %w", err)
		}
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("segment: creating temp file: %w", err)
	}
	defer f.Close()

	checksum := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(f, checksum))
	if err := writeSnapshot(bw, snap); err != nil {
		return fmt.Errorf("segment: writing body: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("segment: flushing body: %w", err)
	}

	var footer [4]byte
	binary.LittleEndian.PutUint32(footer[:], checksum.Sum32())
	if _, err := f.Write(footer[:]); err != nil {
		return fmt.Errorf("segment: writing footer: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("segment: syncing: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("segment: closing: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("segment: renaming into place: %w", err)
	}
	return nil
}

// Load reads and verifies path, returning ErrInvalidFormat if the magic tag
// or trailing CRC32 footer don't check out.
func Load(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("segment: opening: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Snapshot{}, fmt.Errorf("segment: stat: %w", err)
	}
	if info.Size() < 4 {
		return Snapshot{}, ErrInvalidFormat
	}
	bodySize := info.Size() - 4

	checksum := crc32.NewIEEE()
	body := io.TeeReader(io.LimitReader(f, bodySize), checksum)
	snap, err := readSnapshot(bufio.NewReader(body))
	if err != nil {
		return Snapshot{}, ErrInvalidFormat
	}

	if _, err := f.Seek(bodySize, io.SeekStart); err != nil {
		return Snapshot{}, fmt.Errorf("segment: seeking to footer: %w", err)
	}
	var footer [4]byte
	if _, err := io.ReadFull(f, footer[:]); err != nil {
		return Snapshot{}, ErrInvalidFormat
	}
	if binary.LittleEndian.Uint32(footer[:]) != checksum.Sum32() {
		return Snapshot{}, ErrInvalidFormat
	}
	return snap, nil
}

func writeSnapshot(w io.Writer, snap Snapshot) error {
	if err := writeString(w, MagicTag); err != nil {
		return err
	}
	if err := writeInt32(w, int32(len(snap.Documents))); err != nil {
		return err
	}
	for _, d := range snap.Documents {
		if err := writeDocument(w, d); err != nil {
			return err
		}
	}
	if err := writeInt32(w, int32(len(snap.Terms))); err != nil {
		return err
	}
	for _, t := range snap.Terms {
		if err := writeTerm(w, t); err != nil {
			return err
		}
	}
	hasWordMatcher := snap.WordMatcher != nil
	if err := writeBool(w, hasWordMatcher); err != nil {
		return err
	}
	if hasWordMatcher {
		if err := writeWordIndex(w, snap.WordMatcher.Exact); err != nil {
			return err
		}
		if err := writeWordIndex(w, snap.WordMatcher.LD1); err != nil {
			return err
		}
		if err := writeWordIndex(w, snap.WordMatcher.Prefix); err != nil {
			return err
		}
		if err := writeWordIndex(w, snap.WordMatcher.Suffix); err != nil {
			return err
		}
	}
	return nil
}

func readSnapshot(r byteReader) (Snapshot, error) {
	tag, err := readString(r)
	if err != nil {
		return Snapshot{}, err
	}
	if tag != MagicTag {
		return Snapshot{}, ErrInvalidFormat
	}

	docCount, err := readInt32(r)
	if err != nil {
		return Snapshot{}, err
	}
	docs := make([]DocumentRecord, 0, docCount)
	for i := int32(0); i < docCount; i++ {
		d, err := readDocument(r)
		if err != nil {
			return Snapshot{}, err
		}
		docs = append(docs, d)
	}

	termCount, err := readInt32(r)
	if err != nil {
		return Snapshot{}, err
	}
	terms := make([]TermRecord, 0, termCount)
	for i := int32(0); i < termCount; i++ {
		t, err := readTerm(r)
		if err != nil {
			return Snapshot{}, err
		}
		terms = append(terms, t)
	}

	hasWordMatcher, err := readBool(r)
	if err != nil {
		return Snapshot{}, err
	}
	var wm *WordMatcherSnapshot
	if hasWordMatcher {
		exact, err := readWordIndex(r)
		if err != nil {
			return Snapshot{}, err
		}
		ld1, err := readWordIndex(r)
		if err != nil {
			return Snapshot{}, err
		}
		prefix, err := readWordIndex(r)
		if err != nil {
			return Snapshot{}, err
		}
		suffix, err := readWordIndex(r)
		if err != nil {
			return Snapshot{}, err
		}
		wm = &WordMatcherSnapshot{Exact: exact, LD1: ld1, Prefix: prefix, Suffix: suffix}
	}

	return Snapshot{Documents: docs, Terms: terms, WordMatcher: wm}, nil
}

func writeDocument(w io.Writer, d DocumentRecord) error {
	if err := writeInt32(w, d.ID); err != nil {
		return err
	}
	if err := writeInt64(w, d.Key); err != nil {
		return err
	}
	if err := writeString(w, d.IndexedText); err != nil {
		return err
	}
	if err := writeString(w, d.ClientInfo); err != nil {
		return err
	}
	if err := writeInt32(w, d.SegmentNumber); err != nil {
		return err
	}
	// json_index is repurposed here to carry the field-boundary count: the
	// distilled format never separately accounts for boundary persistence,
	// and boundaries must survive a reload for documents to remain
	// re-indexable afterward.
	if err := writeInt32(w, int32(len(d.Boundaries))); err != nil {
		return err
	}
	for _, b := range d.Boundaries {
		if err := writeUint16(w, b.Position); err != nil {
			return err
		}
		if err := writeUint8(w, uint8(b.WeightClass)); err != nil {
			return err
		}
	}
	return writeBool(w, d.Deleted)
}

func readDocument(r byteReader) (DocumentRecord, error) {
	var d DocumentRecord
	var err error
	if d.ID, err = readInt32(r); err != nil {
		return d, err
	}
	if d.Key, err = readInt64(r); err != nil {
		return d, err
	}
	if d.IndexedText, err = readString(r); err != nil {
		return d, err
	}
	if d.ClientInfo, err = readString(r); err != nil {
		return d, err
	}
	if d.SegmentNumber, err = readInt32(r); err != nil {
		return d, err
	}
	boundaryCount, err := readInt32(r)
	if err != nil {
		return d, err
	}
	d.Boundaries = make([]document.FieldBoundary, 0, boundaryCount)
	for i := int32(0); i < boundaryCount; i++ {
		pos, err := readUint16(r)
		if err != nil {
			return d, err
		}
		class, err := readUint8(r)
		if err != nil {
			return d, err
		}
		d.Boundaries = append(d.Boundaries, document.FieldBoundary{
			Position:    pos,
			WeightClass: document.Weight(class),
		})
	}
	if d.Deleted, err = readBool(r); err != nil {
		return d, err
	}
	return d, nil
}

func writeTerm(w io.Writer, t TermRecord) error {
	if err := writeString(w, t.Text); err != nil {
		return err
	}
	if err := writeInt32(w, t.DocumentFrequency); err != nil {
		return err
	}
	if err := writeInt32(w, int32(len(t.Postings))); err != nil {
		return err
	}
	for _, p := range t.Postings {
		if err := writeInt32(w, p.DocID); err != nil {
			return err
		}
		if err := writeUint8(w, p.Weight); err != nil {
			return err
		}
	}
	return nil
}

func readTerm(r byteReader) (TermRecord, error) {
	var t TermRecord
	var err error
	if t.Text, err = readString(r); err != nil {
		return t, err
	}
	if t.DocumentFrequency, err = readInt32(r); err != nil {
		return t, err
	}
	postingCount, err := readInt32(r)
	if err != nil {
		return t, err
	}
	t.Postings = make([]term.Posting, 0, postingCount)
	for i := int32(0); i < postingCount; i++ {
		docID, err := readInt32(r)
		if err != nil {
			return t, err
		}
		weight, err := readUint8(r)
		if err != nil {
			return t, err
		}
		t.Postings = append(t.Postings, term.Posting{DocID: docID, Weight: weight})
	}
	return t, nil
}

func writeWordIndex(w io.Writer, idx WordIndex) error {
	if err := writeInt32(w, int32(len(idx))); err != nil {
		return err
	}
	// Map iteration order is randomized; keys must be sorted so Save is
	// byte-exact across repeated runs over the identical index.
	keys := make([]string, 0, len(idx))
	for key := range idx {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ids := idx[key]
		if err := writeString(w, key); err != nil {
			return err
		}
		if err := writeInt32(w, int32(len(ids))); err != nil {
			return err
		}
		for _, id := range ids {
			if err := writeInt32(w, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func readWordIndex(r byteReader) (WordIndex, error) {
	count, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	idx := make(WordIndex, count)
	for i := int32(0); i < count; i++ {
		key, err := readString(r)
		if err != nil {
			return nil, err
		}
		idCount, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		ids := make([]int32, 0, idCount)
		for j := int32(0); j < idCount; j++ {
			id, err := readInt32(r)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		idx[key] = ids
	}
	return idx, nil
}
