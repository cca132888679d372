package volume

// DefaultResolution is the voxel count per axis used when no resolution
// option is given. 256 matches a head-of-hair at millimeter voxels.
const DefaultResolution = 256

// DensityVolumeBuilderOption defines a function that modifies the
// densityVolume during construction.
type DensityVolumeBuilderOption func(*densityVolume)

// WithResolution sets the voxel count per axis. Non-positive values are
// ignored and the package default is kept.
//
// Parameters:
//   - resolution: voxels per axis (must be > 0)
//
// Returns:
//   - DensityVolumeBuilderOption: a function that applies the resolution to the volume
func WithResolution(resolution int) DensityVolumeBuilderOption {
	return func(v *densityVolume) {
		if resolution > 0 {
			v.resolution = resolution
		}
	}
}
