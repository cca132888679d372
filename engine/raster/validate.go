package raster

import (
	"fmt"

	"github.com/strandworks/strand-go/common"
)

// validateShadowStaging checks that staged deep shadow map texels carry the
// format and byte count the fragment stage binds at the shadow map slot.
func validateShadowStaging(s common.TextureStagingData) error {
	bindErr := func(format string, args ...any) error {
		return &ResourceBindingError{Resource: "deep shadow map", Reason: fmt.Sprintf(format, args...)}
	}
	if len(s.Texels) == 0 {
		return bindErr("no staged texels")
	}
	if s.Format != common.DeepShadowMapFormat {
		return bindErr("format %v, want %v", s.Format, common.DeepShadowMapFormat)
	}
	if s.BytesPerTexel != 4 {
		return bindErr("texel stride %d, want 4", s.BytesPerTexel)
	}
	if s.Depth == 0 {
		return bindErr("no depth layers")
	}
	want := int(s.Width * s.Height * s.Depth * s.BytesPerTexel)
	if len(s.Texels) != want {
		return bindErr("texel bytes %d do not cover %dx%dx%d (%d)", len(s.Texels), s.Width, s.Height, s.Depth, want)
	}
	return nil
}

// validateVolumeStaging checks that staged density volume texels carry the
// format and byte count the fragment stage binds at the volume slot.
func validateVolumeStaging(s common.TextureStagingData) error {
	bindErr := func(format string, args ...any) error {
		return &ResourceBindingError{Resource: "density volume", Reason: fmt.Sprintf(format, args...)}
	}
	if len(s.Texels) == 0 {
		return bindErr("no staged texels")
	}
	if s.Format != common.DensityVolumeFormat {
		return bindErr("format %v, want %v", s.Format, common.DensityVolumeFormat)
	}
	if s.BytesPerTexel != 1 {
		return bindErr("texel stride %d, want 1", s.BytesPerTexel)
	}
	want := int(s.Width * s.Height * s.Depth)
	if len(s.Texels) != want {
		return bindErr("texel bytes %d do not cover %dx%dx%d", len(s.Texels), s.Width, s.Height, s.Depth)
	}
	return nil
}
