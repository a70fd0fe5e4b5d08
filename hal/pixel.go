package hal

// rgbaAt returns the pixel at (x, y) of a tightly packed RGBA buffer, or
// black when out of range.
func rgbaAt(buf []byte, w, h, x, y int) (r, g, b uint8) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, 0, 0
	}
	off := (y*w + x) * 4
	if off+2 >= len(buf) {
		return 0, 0, 0
	}
	return buf[off], buf[off+1], buf[off+2]
}

// scaleCoord maps a coordinate in a space of size from onto a space of size to
// (nearest neighbour).
func scaleCoord(v, from, to int) int {
	if from <= 0 || to <= 0 {
		return 0
	}
	return v * to / from
}
