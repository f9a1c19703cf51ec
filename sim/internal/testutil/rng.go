// Package testutil provides shared test infrastructure for the laundry simulator.
// It consolidates replayable random sources and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"math"
	"testing"
)

// NoEvent is a uniform draw that fails every probability check below 1.
const NoEvent = 0.999999

// ScriptedSource replays a fixed sequence of uniform draws.
// After the script is exhausted it returns Fallback.
type ScriptedSource struct {
	Draws    []float64
	Fallback float64
	next     int
}

// NewScriptedSource returns a source that replays draws, then NoEvent.
func NewScriptedSource(draws ...float64) *ScriptedSource {
	return &ScriptedSource{Draws: draws, Fallback: NoEvent}
}

// Float64 returns the next scripted draw.
func (s *ScriptedSource) Float64() float64 {
	if s.next >= len(s.Draws) {
		return s.Fallback
	}
	v := s.Draws[s.next]
	s.next++
	return v
}

// Consumed returns how many scripted draws have been used.
func (s *ScriptedSource) Consumed() int {
	return s.next
}

// Repeat returns n copies of v, for building scripts.
func Repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Concat joins draw scripts.
func Concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// AssertClose fails the test when |got-want| > tol.
func AssertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}
