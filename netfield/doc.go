// Package netfield is the adaptive network visualization engine: a graph of
// drifting nodes and proximity edges painted behind host content.
//
// Pipeline (fixed, one pass per tick):
//
//	probe → tier → viewport sizing → field seed → loop { clear, graph, step, paint }
//
// The subpackages are leaf-first:
//
//	probe     device capability snapshot
//	tier      snapshot → quality tier table lookup
//	field     node set, seeding and physics
//	graph     proximity edges with fan-out limits
//	interact  decaying pointer focus
//	sched     single-threaded timer queue driven by the host frame
//	viewport  DPI-aware backing store sizing and reseeding
//	loop      tick state machine and painting
//	bridge    optional escalation to the heavier net3d renderer
//	net3d     3D net renderer on quarkgl
//	hud       debug text overlay
//
// All node state is written only on the engine goroutine; hosts publish
// observations through latch values.
package netfield
