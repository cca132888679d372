package hair

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Binary HAIR format layout (Cem Yuksel's .hair container): a 128-byte
// header followed by optional arrays selected by the header flags.
const (
	hairFileMagic      = "HAIR"
	hairFileHeaderSize = 128

	hairFileHasSegments     = 1 << 0
	hairFileHasPoints       = 1 << 1
	hairFileHasThickness    = 1 << 2
	hairFileHasTransparency = 1 << 3
	hairFileHasColor        = 1 << 4
)

// LoadStyleFile reads a binary .hair style asset and assembles a HairStyle
// from its strand arrays. Strands with per-point thickness keep it; otherwise
// the file's default thickness applies. Malformed files surface as a
// *GeometryError with strand index -1.
//
// Parameters:
//   - path: filesystem path to the .hair asset
//
// Returns:
//   - HairStyle: the loaded style, named after the file
//   - error: a *GeometryError on malformed content, or a wrapped I/O error
func LoadStyleFile(path string) (HairStyle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hair style %q: %w", path, err)
	}

	strands, defaultThickness, err := parseStyleFile(raw)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewHairStyle(name,
		WithStrands(strands),
		WithDefaultThickness(defaultThickness),
	), nil
}

// parseStyleFile decodes the HAIR container from raw bytes.
func parseStyleFile(raw []byte) ([]Strand, float32, error) {
	fileErr := func(format string, args ...any) error {
		return &GeometryError{Strand: -1, Reason: fmt.Sprintf(format, args...)}
	}

	if len(raw) < hairFileHeaderSize {
		return nil, 0, fileErr("file too short for header: %d bytes", len(raw))
	}
	if string(raw[:4]) != hairFileMagic {
		return nil, 0, fileErr("bad magic %q", raw[:4])
	}

	strandCount := binary.LittleEndian.Uint32(raw[4:])
	pointCount := binary.LittleEndian.Uint32(raw[8:])
	flags := binary.LittleEndian.Uint32(raw[12:])
	defaultSegments := binary.LittleEndian.Uint32(raw[16:])
	defaultThickness := math.Float32frombits(binary.LittleEndian.Uint32(raw[20:]))

	if flags&hairFileHasPoints == 0 {
		return nil, 0, fileErr("file carries no points array")
	}

	offset := hairFileHeaderSize

	var segments []uint16
	if flags&hairFileHasSegments != 0 {
		need := int(strandCount) * 2
		if len(raw) < offset+need {
			return nil, 0, fileErr("truncated segments array")
		}
		segments = make([]uint16, strandCount)
		for i := range segments {
			segments[i] = binary.LittleEndian.Uint16(raw[offset+2*i:])
		}
		offset += need
	}

	need := int(pointCount) * 12
	if len(raw) < offset+need {
		return nil, 0, fileErr("truncated points array")
	}
	points := make([]mgl32.Vec3, pointCount)
	for i := range points {
		base := offset + 12*i
		points[i] = mgl32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(raw[base:])),
			math.Float32frombits(binary.LittleEndian.Uint32(raw[base+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(raw[base+8:])),
		}
	}
	offset += need

	var thickness []float32
	if flags&hairFileHasThickness != 0 {
		need = int(pointCount) * 4
		if len(raw) < offset+need {
			return nil, 0, fileErr("truncated thickness array")
		}
		thickness = make([]float32, pointCount)
		for i := range thickness {
			thickness[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[offset+4*i:]))
		}
	}
	// Transparency and per-point color arrays follow but feed no part of the
	// shading pipeline; the flags are accepted and the arrays skipped.

	strands := make([]Strand, 0, strandCount)
	cursor := 0
	for si := 0; si < int(strandCount); si++ {
		segs := int(defaultSegments)
		if segments != nil {
			segs = int(segments[si])
		}
		n := segs + 1
		if cursor+n > int(pointCount) {
			return nil, 0, fileErr("strand %d overruns points array (%d points declared)", si, pointCount)
		}

		s := Strand{Points: points[cursor : cursor+n]}
		if thickness != nil {
			s.Thickness = thickness[cursor : cursor+n]
		}
		strands = append(strands, s)
		cursor += n
	}
	if cursor != int(pointCount) {
		return nil, 0, fileErr("strands cover %d of %d points", cursor, pointCount)
	}

	return strands, defaultThickness, nil
}
