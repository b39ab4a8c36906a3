package version

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Generator identifies this build in exported assets.
func Generator() string {
	return "cloudload " + Version + " (" + GitSHA + ")"
}

// String is the one-line form printed by -version.
func String() string {
	return "cloudload " + Version + " (git " + GitSHA + ", built " + BuildTime + ")"
}
