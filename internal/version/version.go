package version

// value is overridden at build time with -ldflags "-X vigil-reporter/internal/version.value=v1.2.3".
var value = "dev"

// Value returns the build version.
func Value() string {
	return value
}
