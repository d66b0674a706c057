//go:build windows

package main

import (
	"bytes"
	"log"

	"github.com/fogleman/gg"

	"github.com/schedulehq/desktop-tools/internal/ico"
)

// trayIconICO renders the tray glyph (an up-arrow in a disc) and wraps it
// in a single-entry ICO container, which is what the tray API expects on
// Windows.
func trayIconICO() []byte {
	const size = 32

	dc := gg.NewContext(size, size)
	dc.SetRGBA(0.13, 0.47, 0.94, 1) // ScheduleHQ blue
	dc.DrawCircle(size/2, size/2, size/2-1)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 1)
	dc.MoveTo(16, 7)
	dc.LineTo(25, 17)
	dc.LineTo(19, 17)
	dc.LineTo(19, 25)
	dc.LineTo(13, 25)
	dc.LineTo(13, 17)
	dc.LineTo(7, 17)
	dc.ClosePath()
	dc.Fill()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		log.Printf("[icon] Encode failed: %v", err)
		return nil
	}

	data, err := ico.EncodeBytes([]ico.Entry{{Dim: size, Data: buf.Bytes()}})
	if err != nil {
		log.Printf("[icon] Container failed: %v", err)
		return nil
	}
	return data
}
