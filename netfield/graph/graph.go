// Package graph links each node to its nearest neighbours.
package graph

import (
	"math"
	"sort"

	"backdrop/netfield/field"
)

// Edge is one drawn connection. A is always the smaller id.
type Edge struct {
	A, B     int
	Distance float64
	// Strength fades from 1 at zero distance to 0 at the connection distance.
	Strength float64
}

type candidate struct {
	id int
	d  float64
}

// Graph keeps scratch buffers between recomputes.
type Graph struct {
	cands []candidate
	edges []Edge
}

// Recompute rebuilds nodes[i].Connections as the ids of up to maxConn other
// nodes no farther than dist, nearest first, ties broken by lower id.
// Every node is compared against every other node.
//
// The returned edges are the drawn set: node i contributes i→j only for
// j > i, so a mutual pair is drawn once. The slice is reused by the next
// call.
func (g *Graph) Recompute(nodes []field.Node, maxConn int, dist float64) []Edge {
	g.edges = g.edges[:0]
	for i := range nodes {
		n := &nodes[i]
		n.Connections = n.Connections[:0]
		if maxConn <= 0 || dist <= 0 {
			continue
		}
		g.cands = g.cands[:0]
		for j := range nodes {
			if j == i || nodes[j].ID == n.ID {
				continue
			}
			d := math.Hypot(nodes[j].X-n.X, nodes[j].Y-n.Y)
			if d <= dist {
				g.cands = append(g.cands, candidate{id: nodes[j].ID, d: d})
			}
		}
		sort.Slice(g.cands, func(a, b int) bool {
			if g.cands[a].d != g.cands[b].d {
				return g.cands[a].d < g.cands[b].d
			}
			return g.cands[a].id < g.cands[b].id
		})
		if len(g.cands) > maxConn {
			g.cands = g.cands[:maxConn]
		}
		for _, c := range g.cands {
			n.Connections = append(n.Connections, c.id)
			if c.id > n.ID {
				g.edges = append(g.edges, Edge{
					A:        n.ID,
					B:        c.id,
					Distance: c.d,
					Strength: 1 - c.d/dist,
				})
			}
		}
	}
	return g.edges
}

// Recompute is a convenience wrapper around a throwaway Graph.
func Recompute(nodes []field.Node, maxConn int, dist float64) []Edge {
	var g Graph
	return g.Recompute(nodes, maxConn, dist)
}
