package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"

	goico "github.com/sergeymakinen/go-ico"
)

// DirEntry is one decoded directory record. Width and Height are logical
// dimensions (the 0-means-256 convention already undone).
type DirEntry struct {
	Width        int
	Height       int
	BitsPerPixel int
	Size         uint32 // payload byte length
	Offset       uint32 // absolute from file start
}

// Payload returns the byte region the entry points at. ParseDir has
// already bounds-checked it against data.
func (d DirEntry) Payload(data []byte) []byte {
	return data[d.Offset : d.Offset+d.Size]
}

func logicalDim(b byte) int {
	if b == 0 {
		return MaxDim
	}
	return int(b)
}

// ParseDir reads the container header and directory from data and
// bounds-checks every payload region. It does not decode payloads.
func ParseDir(data []byte) ([]DirEntry, error) {
	if len(data) < headerSize {
		return nil, formatErrf("truncated header: %d bytes", len(data))
	}
	if reserved := binary.LittleEndian.Uint16(data[0:]); reserved != 0 {
		return nil, formatErrf("header reserved field is %d, want 0", reserved)
	}
	if typ := binary.LittleEndian.Uint16(data[2:]); typ != resourceType {
		return nil, formatErrf("resource type %d is not an icon", typ)
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	if count == 0 {
		return nil, formatErrf("container holds no images")
	}
	if len(data) < headerSize+dirEntrySize*count {
		return nil, formatErrf("truncated directory: %d bytes for %d entries", len(data), count)
	}

	entries := make([]DirEntry, 0, count)
	for i := 0; i < count; i++ {
		d := data[headerSize+dirEntrySize*i:]
		e := DirEntry{
			Width:        logicalDim(d[0]),
			Height:       logicalDim(d[1]),
			BitsPerPixel: int(binary.LittleEndian.Uint16(d[6:])),
			Size:         binary.LittleEndian.Uint32(d[8:]),
			Offset:       binary.LittleEndian.Uint32(d[12:]),
		}
		end := uint64(e.Offset) + uint64(e.Size)
		if end > uint64(len(data)) {
			return nil, formatErrf("entry %d: payload [%d,%d) outside container of %d bytes",
				i, e.Offset, end, len(data))
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Verify checks that data is a structurally sound container that a real
// ICO decoder accepts. The decode goes through sergeymakinen/go-ico, which
// handles PNG-payload icons.
func Verify(data []byte) error {
	if _, err := ParseDir(data); err != nil {
		return err
	}
	if _, err := goico.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("ico: decode check: %w", err)
	}
	return nil
}
