package hal

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// EnvOverrides pins device signals instead of detecting them. Zero values
// mean "detect".
type EnvOverrides struct {
	Concurrency      int
	DevicePixelRatio float64
	ReducedMotion    *bool
	NetworkType      string
	Mobile           *bool
}

// Environment variables consulted when a signal has no native source.
const (
	EnvReducedMotion = "BACKDROP_REDUCED_MOTION"
	EnvNetworkType   = "BACKDROP_NETWORK"
)

type hostEnv struct {
	mu  sync.Mutex
	ovr EnvOverrides

	// scale is installed by hosts that can query the monitor.
	scale func() (float64, bool)

	lookup func(string) (string, bool)
}

func newHostEnv(ovr EnvOverrides) *hostEnv {
	return &hostEnv{ovr: ovr, lookup: os.LookupEnv}
}

func (e *hostEnv) setScaleSource(fn func() (float64, bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scale = fn
}

func (e *hostEnv) Concurrency() (int, bool) {
	if e.ovr.Concurrency > 0 {
		return e.ovr.Concurrency, true
	}
	n := runtime.NumCPU()
	return n, n > 0
}

func (e *hostEnv) DevicePixelRatio() (float64, bool) {
	if e.ovr.DevicePixelRatio > 0 {
		return e.ovr.DevicePixelRatio, true
	}
	e.mu.Lock()
	fn := e.scale
	e.mu.Unlock()
	if fn == nil {
		return 0, false
	}
	v, ok := fn()
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func (e *hostEnv) ReducedMotion() (bool, bool) {
	if e.ovr.ReducedMotion != nil {
		return *e.ovr.ReducedMotion, true
	}
	s, ok := e.lookup(EnvReducedMotion)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false
	}
	return v, true
}

func (e *hostEnv) NetworkType() (string, bool) {
	if e.ovr.NetworkType != "" {
		return e.ovr.NetworkType, true
	}
	s, ok := e.lookup(EnvNetworkType)
	s = strings.ToLower(strings.TrimSpace(s))
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (e *hostEnv) Mobile() (bool, bool) {
	if e.ovr.Mobile != nil {
		return *e.ovr.Mobile, true
	}
	switch runtime.GOOS {
	case "android", "ios":
		return true, true
	}
	return false, true
}
