package app

import "backdrop/hal"

// overrideEnv layers pinned values over a host Env. Zero fields defer to the
// host.
type overrideEnv struct {
	base hal.Env
	ovr  hal.EnvOverrides
}

func (e overrideEnv) Concurrency() (int, bool) {
	if e.ovr.Concurrency > 0 {
		return e.ovr.Concurrency, true
	}
	return e.base.Concurrency()
}

func (e overrideEnv) DevicePixelRatio() (float64, bool) {
	if e.ovr.DevicePixelRatio > 0 {
		return e.ovr.DevicePixelRatio, true
	}
	return e.base.DevicePixelRatio()
}

func (e overrideEnv) ReducedMotion() (bool, bool) {
	if e.ovr.ReducedMotion != nil {
		return *e.ovr.ReducedMotion, true
	}
	return e.base.ReducedMotion()
}

func (e overrideEnv) NetworkType() (string, bool) {
	if e.ovr.NetworkType != "" {
		return e.ovr.NetworkType, true
	}
	return e.base.NetworkType()
}

func (e overrideEnv) Mobile() (bool, bool) {
	if e.ovr.Mobile != nil {
		return *e.ovr.Mobile, true
	}
	return e.base.Mobile()
}
