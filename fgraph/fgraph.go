// Package fgraph holds the factor graph itself: an ordered collection of
// factors over a shared Values container.
package fgraph

import "github.com/rkleinman/factorgraph/factor"

// Graph is an ordered list of factors.
type Graph struct {
	factors []factor.Factor
}

// New returns an empty graph.
func New() *Graph { return &Graph{} }

// Add appends a factor to the graph.
func (g *Graph) Add(f factor.Factor) { g.factors = append(g.factors, f) }

// Factors returns the graph's factors in insertion order.
func (g *Graph) Factors() []factor.Factor {
	out := make([]factor.Factor, len(g.factors))
	copy(out, g.factors)
	return out
}

// Len returns the number of factors in the graph.
func (g *Graph) Len() int { return len(g.factors) }
