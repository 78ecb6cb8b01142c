package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdSuffix marks a compressed document.
const ZstdSuffix = ".zst"

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ZstdSuffix)
}

// readDocument returns the JSON bytes stored at path, decompressing .zst files.
func readDocument(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !isCompressed(path) {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
	}
	defer dec.Close()
	b, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return b, nil
}

// writeDocument writes b to path through a temp file and a rename, so a
// crash never leaves a half-written document. Paths ending in .zst are
// compressed.
func writeDocument(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encodeTo(tmp, b, isCompressed(path)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encodeTo(w io.Writer, b []byte, compress bool) error {
	if !compress {
		_, err := io.Copy(w, bytes.NewReader(b))
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(b); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
