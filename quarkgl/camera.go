package quarkgl

// Camera is a perspective look-at camera.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	FOVYRad Scalar
	Near    Scalar
	Far     Scalar
}

// DefaultCamera looks at the origin from +Z.
func DefaultCamera() Camera {
	return Camera{
		Position: V3(0, 0, 3),
		Up:       V3(0, 1, 0),
		FOVYRad:  1.0,
		Near:     0.05,
		Far:      100,
	}
}

// View returns the camera view matrix.
func (c Camera) View() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

// Projection returns the projection matrix for a target aspect.
func (c Camera) Projection(aspect Scalar) Mat4 {
	fov := c.FOVYRad
	if fov == 0 {
		fov = 1.0
	}
	near, far := c.Near, c.Far
	if near <= 0 {
		near = 0.05
	}
	if far <= near {
		far = near + 100
	}
	return Mat4Perspective(fov, aspect, near, far)
}
