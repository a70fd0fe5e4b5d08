// Package quarkgl is a small software 3D projection kit: vector and matrix
// math, a look-at camera with an orbit controller, and a projector that maps
// world points to screen pixels.
//
// Pipeline (fixed):
//
//	World → View → Projection → Near-plane reject → Screen.
//
// quarkgl does not rasterize; callers draw projected points with their own
// target (see package raster).
package quarkgl
