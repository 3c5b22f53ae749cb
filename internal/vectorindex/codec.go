package vectorindex

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

// Artifact names of the companion pair. They are only valid together.
const (
	VectorFileName = "index.vec"
	MetaFileName   = "index.meta"
)

const (
	vecMagic   uint32 = 0x44564543 // "DVEC"
	vecVersion uint16 = 1
)

// encodeVectors serializes the dense-vector artifact: a fixed header
// (magic, version, dimension, count) followed by row-major little-endian
// float32 values.
func encodeVectors(vectors [][]float32) ([]byte, error) {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	var buf bytes.Buffer
	for _, v := range []any{vecMagic, vecVersion, uint32(dim), uint32(len(vectors))} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("write vector header: %w", err)
		}
	}
	for _, row := range vectors {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: ragged vector row", ErrCorrupt)
		}
		if err := binary.Write(&buf, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("write vector row: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func decodeVectors(data []byte) ([][]float32, error) {
	r := bytes.NewReader(data)

	var magic uint32
	var version uint16
	var dim, count uint32
	for _, v := range []any{&magic, &version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("%w: short vector header", ErrCorrupt)
		}
	}
	if magic != vecMagic {
		return nil, fmt.Errorf("%w: bad vector magic", ErrCorrupt)
	}
	if version != vecVersion {
		return nil, fmt.Errorf("%w: unsupported vector version %d", ErrCorrupt, version)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("%w: truncated vector data", ErrCorrupt)
		}
		vectors[i] = row
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing vector data", ErrCorrupt)
	}
	return vectors, nil
}

// indexMeta is the gob-encoded lookup artifact. Count is cross-checked
// against the vector artifact on load.
type indexMeta struct {
	Count   int
	Records []Record
}

func encodeRecords(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	meta := indexMeta{Count: len(records), Records: records}
	if err := gob.NewEncoder(&buf).Encode(meta); err != nil {
		return nil, fmt.Errorf("encode index metadata: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecords(data []byte) ([]Record, error) {
	var meta indexMeta
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable index metadata", ErrCorrupt)
	}
	if meta.Count != len(meta.Records) {
		return nil, fmt.Errorf("%w: metadata count %d for %d records", ErrCorrupt, meta.Count, len(meta.Records))
	}
	return meta.Records, nil
}
