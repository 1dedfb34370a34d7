// Package raster sniffs raster image formats and reads PNG dimensions
// from the file header. A full image decoder is deliberately avoided:
// layout only needs the pixel size, not the pixels.
package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors for raster inspection.
var (
	ErrUnknownFormat = errors.New("raster: unrecognized image format")
	ErrTruncated     = errors.New("raster: data too short")
	ErrBadPNGHeader  = errors.New("raster: malformed PNG header")
)

// Recognized formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
)

// Magic byte prefixes.
var (
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegPrefix   = []byte{0xff, 0xd8, 0xff}
	gif87Prefix  = []byte("GIF87a")
	gif89Prefix  = []byte("GIF89a")
)

// DetectFormat identifies the image format from leading magic bytes.
func DetectFormat(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return FormatPNG, nil
	case bytes.HasPrefix(data, jpegPrefix):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, gif87Prefix), bytes.HasPrefix(data, gif89Prefix):
		return FormatGIF, nil
	default:
		return "", ErrUnknownFormat
	}
}

// PNGDimensions reads pixel width and height from the IHDR chunk, which
// the PNG spec requires to be the first chunk after the signature.
func PNGDimensions(data []byte) (width, height int, err error) {
	// signature(8) + chunk length(4) + "IHDR"(4) + width(4) + height(4)
	if len(data) < 24 {
		return 0, 0, ErrTruncated
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return 0, 0, fmt.Errorf("%w: bad signature", ErrBadPNGHeader)
	}
	if string(data[12:16]) != "IHDR" {
		return 0, 0, fmt.Errorf("%w: IHDR chunk not found", ErrBadPNGHeader)
	}

	width = int(binary.BigEndian.Uint32(data[16:20]))
	height = int(binary.BigEndian.Uint32(data[20:24]))
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: zero dimension", ErrBadPNGHeader)
	}
	return width, height, nil
}
