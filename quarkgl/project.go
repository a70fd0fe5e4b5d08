package quarkgl

// Projector maps world points to screen pixels for one camera and target
// size. Set it up once per frame.
type Projector struct {
	w, h Scalar
	mvp  Mat4
	ok   bool
}

// Setup computes the combined view-projection for a w×h target.
func (p *Projector) Setup(cam Camera, w, h Scalar) {
	p.w, p.h = w, h
	p.ok = w > 0 && h > 0
	if !p.ok {
		return
	}
	p.mvp = Mat4Mul(cam.Projection(w/h), cam.View())
}

// Projected is one point on screen. Depth is NDC z mapped to [0,1]; smaller is
// nearer.
type Projected struct {
	X, Y  Scalar
	Depth Scalar
	// Scale is the perspective factor 1/w, useful for sizing sprites.
	Scale Scalar
}

// Project returns the screen position of v. The second result is false when v
// is behind the near plane or beyond the far plane.
func (p *Projector) Project(v Vec3) (Projected, bool) {
	if !p.ok {
		return Projected{}, false
	}
	c := Mat4MulV4(p.mvp, Vec4{X: v.X, Y: v.Y, Z: v.Z, W: 1})
	if c.W <= 0 {
		return Projected{}, false
	}
	inv := 1 / c.W
	nx, ny, nz := c.X*inv, c.Y*inv, c.Z*inv
	if nz < -1 || nz > 1 {
		return Projected{}, false
	}
	return Projected{
		X:     (nx*0.5 + 0.5) * p.w,
		Y:     (1 - (ny*0.5 + 0.5)) * p.h,
		Depth: nz*0.5 + 0.5,
		Scale: inv,
	}, true
}
