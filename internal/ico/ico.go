// Package ico writes multi-image Windows ICO containers.
//
// ICO supports PNG as the image payload (since Windows Vista), so entries
// carry already-encoded PNG bytes and the container just records where each
// payload lives. Layout: a 6-byte ICONDIR header, one 16-byte directory
// entry per image, then the concatenated payloads with no padding.
package ico

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	headerSize   = 6
	dirEntrySize = 16

	// resourceType 1 marks the container as an icon (2 would be a cursor).
	resourceType = 1

	// MaxDim is the largest dimension the directory can express. The
	// stored width/height fields are a single byte; 256 is written as 0.
	MaxDim = 256

	// maxEntries bounds the 16-bit image count field.
	maxEntries = 0xFFFF
)

// Entry is one image to embed: its square pixel dimension and its encoded
// payload. The payload must be a single-frame encoding with an alpha
// channel (PNG in practice) whose own width and height equal Dim.
type Entry struct {
	Dim  int
	Data []byte
}

// FormatError reports inconsistent input (the caller's bug, never retried).
// Sink errors are returned wrapped instead, so callers can tell the two
// kinds apart with errors.As.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "ico: " + e.Reason
}

func formatErrf(format string, args ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

func validate(entries []Entry) error {
	if len(entries) == 0 {
		return formatErrf("no entries")
	}
	if len(entries) > maxEntries {
		return formatErrf("%d entries exceed the 16-bit count field", len(entries))
	}
	for i, e := range entries {
		if e.Dim < 1 || e.Dim > MaxDim {
			return formatErrf("entry %d: dimension %d outside [1,%d]", i, e.Dim, MaxDim)
		}
		if len(e.Data) == 0 {
			return formatErrf("entry %d: empty payload", i)
		}
	}
	return nil
}

// dimByte encodes a logical dimension into the 8-bit directory field,
// where 0 means 256.
func dimByte(dim int) byte {
	if dim >= MaxDim {
		return 0
	}
	return byte(dim)
}

// EncodeBytes serializes entries into a complete container, in input order.
// Every directory offset points exactly at the start of its payload.
func EncodeBytes(entries []Entry) ([]byte, error) {
	if err := validate(entries); err != nil {
		return nil, err
	}

	total := headerSize + dirEntrySize*len(entries)
	for _, e := range entries {
		total += len(e.Data)
	}
	out := make([]byte, total)

	// ICONDIR
	binary.LittleEndian.PutUint16(out[0:], 0)                    // reserved
	binary.LittleEndian.PutUint16(out[2:], resourceType)         // type
	binary.LittleEndian.PutUint16(out[4:], uint16(len(entries))) // image count

	// Directory entries; payloads start right after the directory.
	offset := headerSize + dirEntrySize*len(entries)
	pos := headerSize
	for _, e := range entries {
		d := out[pos : pos+dirEntrySize]
		d[0] = dimByte(e.Dim) // width (0 = 256)
		d[1] = dimByte(e.Dim) // height (0 = 256)
		d[2] = 0              // color palette count
		d[3] = 0              // reserved
		binary.LittleEndian.PutUint16(d[4:], 1)                // color planes
		binary.LittleEndian.PutUint16(d[6:], 32)               // bits per pixel
		binary.LittleEndian.PutUint32(d[8:], uint32(len(e.Data)))
		binary.LittleEndian.PutUint32(d[12:], uint32(offset))
		offset += len(e.Data)
		pos += dirEntrySize
	}

	// Payloads, in directory order.
	for _, e := range entries {
		pos += copy(out[pos:], e.Data)
	}
	return out, nil
}

// Encode writes the container to w. On a FormatError nothing is written;
// a sink error leaves w partially written (use EncodeFile for atomicity).
func Encode(w io.Writer, entries []Entry) error {
	out, err := EncodeBytes(entries)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("ico: write container: %w", err)
	}
	return nil
}

// EncodeFile writes the container to path via a temp file in the same
// directory and a rename, so a failed run never leaves a truncated
// container at the destination.
func EncodeFile(path string, entries []Entry) error {
	out, err := EncodeBytes(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("ico: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ico: write container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ico: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ico: rename into place: %w", err)
	}
	return nil
}
