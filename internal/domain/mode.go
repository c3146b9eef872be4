package domain

// SourceMode selects what drives cell brightness.
type SourceMode string

const (
	SourceNoise  SourceMode = "noise"
	SourceCamera SourceMode = "camera"
)

// ResolveMode returns SourceCamera only when the camera is wanted and a stream is live.
func ResolveMode(cameraWanted, streamActive bool) SourceMode {
	if cameraWanted && streamActive {
		return SourceCamera
	}
	return SourceNoise
}
