package window

// Key codes forwarded to the key-down callback, matching GLFW's values so
// callers never import the platform layer directly.
const (
	KeyTab   uint32 = 258
	KeyOne   uint32 = 49
	KeyTwo   uint32 = 50
	KeyThree uint32 = 51
	KeyR     uint32 = 82
)
