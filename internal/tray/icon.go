package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

var (
	iconBody = color.NRGBA{R: 0x2b, G: 0x2f, B: 0x36, A: 0xff}
	iconLit  = color.NRGBA{R: 0x4c, G: 0xc2, B: 0xff, A: 0xff}
)

// Icon renders the D-pad cross. With ico set the PNG is wrapped in a
// single-entry ICO container, which Windows requires.
func Icon(ico bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, drawCross()); err != nil {
		return nil, err
	}
	if !ico {
		return buf.Bytes(), nil
	}
	return wrapICO(buf.Bytes()), nil
}

func drawCross() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	const arm, thick = 4, 12
	lo, hi := (iconSize-thick)/2, (iconSize+thick)/2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			vertical := x >= lo && x < hi && y >= arm && y < iconSize-arm
			horizontal := y >= lo && y < hi && x >= arm && x < iconSize-arm
			switch {
			case vertical && y < lo:
				img.SetNRGBA(x, y, iconLit)
			case vertical || horizontal:
				img.SetNRGBA(x, y, iconBody)
			}
		}
	}
	return img
}

func wrapICO(pngData []byte) []byte {
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	buf.Write([]byte{iconSize, iconSize, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(pngData)), 6 + 16})
	buf.Write(pngData)
	return buf.Bytes()
}
