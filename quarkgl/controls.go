package quarkgl

import "math"

// OrbitController places a camera on a sphere around Target.
type OrbitController struct {
	Target Vec3
	Yaw    Scalar
	Pitch  Scalar
	Radius Scalar

	MinRadius Scalar
	MaxRadius Scalar
	MaxPitch  Scalar // 0 means ±π/2
}

func (c *OrbitController) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := c.Radius
	if r == 0 {
		r = 3
	}
	if c.MinRadius != 0 && r < c.MinRadius {
		r = c.MinRadius
	}
	if c.MaxRadius != 0 && r > c.MaxRadius {
		r = c.MaxRadius
	}

	m := Mat4Mul(Mat4RotateY(c.Yaw), Mat4RotateX(c.Pitch))
	p := Mat4MulV4(m, Vec4{X: 0, Y: 0, Z: r, W: 1})

	cam.Position = c.Target.Add(V3(p.X, p.Y, p.Z))
	cam.Target = c.Target
	if cam.Up == (Vec3{}) {
		cam.Up = V3(0, 1, 0)
	}
}

func (c *OrbitController) Rotate(deltaYaw, deltaPitch Scalar) {
	c.Yaw = math.Mod(c.Yaw+deltaYaw, 2*math.Pi)
	c.Pitch += deltaPitch
	lim := c.MaxPitch
	if lim == 0 {
		lim = math.Pi / 2
	}
	if c.Pitch > lim {
		c.Pitch = lim
	}
	if c.Pitch < -lim {
		c.Pitch = -lim
	}
}

func (c *OrbitController) Zoom(delta Scalar) {
	c.Radius += delta
	if c.MinRadius != 0 && c.Radius < c.MinRadius {
		c.Radius = c.MinRadius
	}
	if c.MaxRadius != 0 && c.Radius > c.MaxRadius {
		c.Radius = c.MaxRadius
	}
}

// Ease moves Yaw and Pitch a fraction k of the way toward the given angles.
func (c *OrbitController) Ease(yaw, pitch, k Scalar) {
	if k <= 0 {
		return
	}
	if k > 1 {
		k = 1
	}
	c.Rotate((yaw-c.Yaw)*k, (pitch-c.Pitch)*k)
}
