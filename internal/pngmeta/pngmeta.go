// Package pngmeta extracts pixel dimensions from a PNG byte stream without
// decoding any image data.
package pngmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrInvalidImage = errors.New("invalid png image")

const (
	// A well-formed PNG starts with an 8-byte signature, then the IHDR
	// chunk: 4-byte length, 4-byte type, then width and height as
	// big-endian uint32 at offsets 16 and 20.
	headerLen    = 24
	widthOffset  = 16
	heightOffset = 20

	// Anything larger than this is almost certainly a mis-parsed or
	// truncated file, not a real certificate template.
	maxDimension = 10000
)

// Dimensions returns the pixel width and height from the IHDR chunk. Only
// the first 24 bytes are inspected.
func Dimensions(data []byte) (width, height uint32, err error) {
	if len(data) < headerLen {
		return 0, 0, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidImage, headerLen, len(data))
	}
	width = binary.BigEndian.Uint32(data[widthOffset:])
	height = binary.BigEndian.Uint32(data[heightOffset:])
	if width == 0 || height == 0 || width > maxDimension || height > maxDimension {
		return 0, 0, fmt.Errorf("%w: implausible dimensions %dx%d", ErrInvalidImage, width, height)
	}
	return width, height, nil
}
