package raster

import (
	"errors"
	"testing"
)

// minimalPNG builds just enough header for dimension parsing.
func minimalPNG(w, h int) []byte {
	b := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	b = append(b, 0, 0, 0, 13)
	b = append(b, 'I', 'H', 'D', 'R')
	b = append(b, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	b = append(b, byte(h>>24), byte(h>>16), byte(h>>8), byte(h))
	return b
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{name: "png", data: minimalPNG(1, 1), want: FormatPNG},
		{name: "jpeg", data: []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, want: FormatJPEG},
		{name: "gif87", data: []byte("GIF87a trailing"), want: FormatGIF},
		{name: "gif89", data: []byte("GIF89a trailing"), want: FormatGIF},
		{name: "unknown", data: []byte("<svg xmlns="), wantErr: ErrUnknownFormat},
		{name: "empty", data: nil, wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DetectFormat(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DetectFormat() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPNGDimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantW   int
		wantH   int
		wantErr error
	}{
		{name: "small image", data: minimalPNG(640, 480), wantW: 640, wantH: 480},
		{name: "large dimensions", data: minimalPNG(1<<16, 3), wantW: 1 << 16, wantH: 3},
		{name: "truncated", data: minimalPNG(1, 1)[:16], wantErr: ErrTruncated},
		{name: "not a png", data: []byte("definitely not a png, but long enough"), wantErr: ErrBadPNGHeader},
		{name: "zero width", data: minimalPNG(0, 100), wantErr: ErrBadPNGHeader},
		{name: "zero height", data: minimalPNG(100, 0), wantErr: ErrBadPNGHeader},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h, err := PNGDimensions(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PNGDimensions() error = %v, want %v", err, tt.wantErr)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("PNGDimensions() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPNGDimensionsMissingIHDR(t *testing.T) {
	t.Parallel()

	data := minimalPNG(10, 10)
	copy(data[12:16], "IDAT")
	_, _, err := PNGDimensions(data)
	if !errors.Is(err, ErrBadPNGHeader) {
		t.Errorf("PNGDimensions() error = %v, want ErrBadPNGHeader", err)
	}
}
