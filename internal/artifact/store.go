package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	apperrors "crimerisk/internal/errors"
)

const (
	magic         = "CRMA"
	formatVersion = uint16(1)
	headerSize    = len(magic) + 2 + blake2b.Size256
)

// Store persists a single bundle at a fixed path
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the artifact file at path
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "artifact_store")),
	}
}

// Path returns the artifact file location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether an artifact file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save validates and writes the bundle. The previous file is replaced only
// once the new one is completely on disk.
func (s *Store) Save(b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}

	data, err := Encode(b)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("create artifact directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError("create temporary artifact", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("write temporary artifact", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("sync temporary artifact", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("close temporary artifact", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return apperrors.NewStorageError("replace artifact", err)
	}

	s.logger.Info("artifact saved",
		slog.String("path", s.path),
		slog.String("artifact_id", b.Metadata.ID),
		slog.Int("features", len(b.Features)),
		slog.Int("bytes", len(data)))
	return nil
}

// Load reads, verifies and validates the bundle
func (s *Store) Load() (*Bundle, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewArtifactNotFoundError(s.path)
		}
		return nil, apperrors.NewStorageError("read artifact", err)
	}

	b, err := Decode(data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("artifact loaded",
		slog.String("path", s.path),
		slog.String("artifact_id", b.Metadata.ID),
		slog.Int("features", len(b.Features)))
	return b, nil
}

// Encode serialises a bundle into the enveloped on-disk format
func Encode(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, apperrors.NewArtifactError("encode bundle", err)
	}

	payload := snappy.Encode(nil, buf.Bytes())
	digest := blake2b.Sum256(payload)

	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, magic...)
	out = binary.BigEndian.AppendUint16(out, formatVersion)
	out = append(out, digest[:]...)
	out = append(out, payload...)
	return out, nil
}

// Decode verifies the envelope and decodes a validated bundle
func Decode(data []byte) (*Bundle, error) {
	if len(data) < headerSize {
		return nil, apperrors.NewArtifactError(fmt.Sprintf("artifact truncated at %d bytes", len(data)), nil)
	}
	if string(data[:len(magic)]) != magic {
		return nil, apperrors.NewArtifactError("not a model artifact", nil)
	}

	off := len(magic)
	if v := binary.BigEndian.Uint16(data[off:]); v != formatVersion {
		return nil, apperrors.NewArtifactError(fmt.Sprintf("unsupported artifact version %d", v), nil)
	}
	off += 2

	want := data[off : off+blake2b.Size256]
	payload := data[headerSize:]
	got := blake2b.Sum256(payload)
	if !bytes.Equal(want, got[:]) {
		return nil, apperrors.NewArtifactError("artifact digest mismatch", nil)
	}

	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, apperrors.NewArtifactError("decompress artifact", err)
	}

	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return nil, apperrors.NewArtifactError("decode bundle", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
