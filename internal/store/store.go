// Package store persists the file index as a compressed columnar artifact.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var (
	// ErrNotFound is returned when the artifact does not exist or cannot be opened.
	ErrNotFound = errors.New("index not found")
	// ErrCorruptIndex is returned when an artifact fails validation on read.
	ErrCorruptIndex = errors.New("corrupt index")
	// ErrWriteFailed is returned when an artifact could not be written completely.
	ErrWriteFailed = errors.New("index write failed")
)

// WriteOptions controls how an artifact is encoded.
type WriteOptions struct {
	Codec Codec
}

// Write encodes records into the artifact at path. The file appears
// atomically: readers see either the previous artifact or the new one.
// Concurrent writers of the same path are serialized through <path>.lock.
func Write(path string, records []FileRecord, opts WriteOptions) error {
	data, err := Encode(records, opts.Codec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %v", ErrWriteFailed, dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %v", ErrWriteFailed, path, err)
	}
	defer lock.Unlock()

	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Encode returns the complete artifact bytes for records.
func Encode(records []FileRecord, codec Codec) ([]byte, error) {
	if !codec.valid() {
		return nil, fmt.Errorf("unsupported codec %s", codec)
	}

	names := make([]string, len(records))
	sizes := make([]uint64, len(records))
	types := make([]*string, len(records))
	for i, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("record %d has an empty name", i)
		}
		names[i] = r.Name
		sizes[i] = r.SizeBytes
		types[i] = r.ContentType
	}

	columns, err := encodeColumns(names, sizes, types)
	if err != nil {
		return nil, err
	}
	return assemble(FileSchema, codec, uint64(len(records)), columns)
}

func assemble(schema Schema, codec Codec, rows uint64, columns []byte) ([]byte, error) {
	payload, err := codec.compress(columns)
	if err != nil {
		return nil, fmt.Errorf("compress columns: %w", err)
	}
	h := Header{
		Version:     formatVersion,
		Codec:       codec,
		Schema:      schema,
		Rows:        rows,
		PayloadSize: uint64(len(payload)),
		Checksum:    checksum(payload),
	}
	out := appendHeader(make([]byte, 0, 64+len(payload)), h)
	return append(out, payload...), nil
}

// atomicWrite writes data to a temp file in the target directory and renames
// it over path. The temp file is removed on any failure.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		tmp = nil
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		tmp = nil
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		tmp = nil
		os.Remove(tmpPath)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	tmp = nil
	return nil
}

// Read loads every record of the artifact at path, in the order written.
func Read(path string) ([]FileRecord, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses complete artifact bytes.
func Decode(data []byte) ([]FileRecord, error) {
	h, payload, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) != h.PayloadSize {
		return nil, corrupt("payload is %d bytes, header declares %d", len(payload), h.PayloadSize)
	}
	if checksum(payload) != h.Checksum {
		return nil, corrupt("payload checksum mismatch")
	}
	columns, err := h.Codec.decompress(payload)
	if err != nil {
		return nil, corrupt("decompress %s payload: %v", h.Codec, err)
	}
	return decodeColumns(columns, h.Rows)
}

// Inspect validates the header and payload framing of the artifact at path
// without decoding the columns.
func Inspect(path string) (*Header, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	h, payload, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) != h.PayloadSize {
		return nil, corrupt("payload is %d bytes, header declares %d", len(payload), h.PayloadSize)
	}
	return &h, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	return data, nil
}
