package monitoring

import (
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// ProgressLogger returns a progress callback that logs through Logf each
// time the whole-percent value for a name changes. The callback has the
// shape of pointcloud.ProgressFunc.
func ProgressLogger(name string) func(label string, fraction float64) {
	var mu sync.Mutex
	last := -1
	return func(label string, fraction float64) {
		pct := int(fraction * 100)
		mu.Lock()
		defer mu.Unlock()
		if pct == last {
			return
		}
		last = pct
		Logf("%s: %s %3d%%", name, label, pct)
	}
}
