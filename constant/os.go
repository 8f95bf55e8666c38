package constant

// Values of runtime.GOOS with platform specific handling.
const (
	Linux   = "linux"
	Darwin  = "darwin"
	Windows = "windows"
	Android = "android"
)
