package raytracer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/strandworks/strand-go/common"
)

// Framebuffer is the CPU render target: tightly packed rgba8 texels, row
// major, sized to the surface the image will be blitted to. Workers write
// disjoint tiles, so SetPixel needs no synchronization.
type Framebuffer struct {
	width  int
	height int
	pixels []byte
}

// NewFramebuffer creates a framebuffer with every texel zeroed.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - *Framebuffer: the allocated framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]byte, width*height*4),
	}
}

// Width returns the framebuffer width in pixels.
//
// Returns:
//   - int: the width
func (f *Framebuffer) Width() int {
	return f.width
}

// Height returns the framebuffer height in pixels.
//
// Returns:
//   - int: the height
func (f *Framebuffer) Height() int {
	return f.height
}

// Pixels returns the rgba8 texel buffer. The slice aliases the framebuffer's
// memory, sized for a direct blit upload.
//
// Returns:
//   - []byte: the texel buffer, width*height*4 bytes
func (f *Framebuffer) Pixels() []byte {
	return f.pixels
}

// Clear fills every texel with the given color at full alpha.
//
// Parameters:
//   - color: the linear clear color, clamped to [0, 1]
func (f *Framebuffer) Clear(color mgl32.Vec3) {
	r := encodeChannel(color.X())
	g := encodeChannel(color.Y())
	b := encodeChannel(color.Z())
	for i := 0; i < len(f.pixels); i += 4 {
		f.pixels[i] = r
		f.pixels[i+1] = g
		f.pixels[i+2] = b
		f.pixels[i+3] = 0xFF
	}
}

// SetPixel writes a shaded color at full alpha. Out-of-range coordinates are
// ignored.
//
// Parameters:
//   - x: the pixel x coordinate
//   - y: the pixel y coordinate
//   - color: the linear color, clamped to [0, 1]
func (f *Framebuffer) SetPixel(x, y int, color mgl32.Vec3) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	offset := (y*f.width + x) * 4
	f.pixels[offset] = encodeChannel(color.X())
	f.pixels[offset+1] = encodeChannel(color.Y())
	f.pixels[offset+2] = encodeChannel(color.Z())
	f.pixels[offset+3] = 0xFF
}

// Pixel returns the decoded color at a pixel, for inspection in tests and
// image export.
//
// Parameters:
//   - x: the pixel x coordinate
//   - y: the pixel y coordinate
//
// Returns:
//   - mgl32.Vec3: the decoded color in [0, 1]
func (f *Framebuffer) Pixel(x, y int) mgl32.Vec3 {
	offset := (y*f.width + x) * 4
	return mgl32.Vec3{
		float32(f.pixels[offset]) / 255,
		float32(f.pixels[offset+1]) / 255,
		float32(f.pixels[offset+2]) / 255,
	}
}

func encodeChannel(v float32) byte {
	return byte(common.Clamp(v, 0, 1)*255 + 0.5)
}
