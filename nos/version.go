package nos

const (
	major = "1"
	minor = "0"
	patch = "1"
)

// Version returns the version of the SDK.
func Version() string {
	return major + "." + minor + "." + patch
}
