package plugins

import "fmt"

// ObtainMode governs whether reading a construct's value may build it.
type ObtainMode int

const (
	// Never returns the cached value only.
	Never ObtainMode = iota
	// Auto builds once on first access and caches the result.
	Auto
	// Always builds a fresh instance and bypasses the cache.
	Always
)

func (m ObtainMode) String() string {
	switch m {
	case Never:
		return "never"
	case Auto:
		return "auto"
	case Always:
		return "always"
	default:
		return fmt.Sprintf("ObtainMode(%d)", int(m))
	}
}

// ParseObtainMode parses the lowercase name of a mode.
func ParseObtainMode(s string) (ObtainMode, error) {
	switch s {
	case "never":
		return Never, nil
	case "auto", "":
		return Auto, nil
	case "always":
		return Always, nil
	}
	return Never, fmt.Errorf("unknown obtain mode %q", s)
}
