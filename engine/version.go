package engine

import "github.com/coreos/go-semver/semver"

// BackgroundInstantiateMin is the first engine version whose background
// instantiation path is considered stable. Older engines fall back to the
// synchronous path even when they expose AsyncInstantiator.
var BackgroundInstantiateMin = semver.New("2.1.0")

// SupportsBackgroundInstantiate reports whether e exposes a background
// instantiation path and its version is new enough to use it. Engines with
// unparseable versions are treated as too old.
func SupportsBackgroundInstantiate(e Engine) bool {
	if _, ok := e.(AsyncInstantiator); !ok {
		return false
	}
	v, err := semver.NewVersion(e.Version())
	if err != nil {
		return false
	}
	return !v.LessThan(*BackgroundInstantiateMin)
}
