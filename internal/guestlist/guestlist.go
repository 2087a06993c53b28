// Package guestlist gates submissions behind an optional access code.
package guestlist

import "strings"

// Gate authorizes requests against a configured guestlist code. With no
// code configured the list is open and every request passes.
type Gate struct {
	code string
}

func New(code string) *Gate {
	return &Gate{code: code}
}

// Enabled reports whether a code is configured at all.
func (g *Gate) Enabled() bool {
	return g.code != ""
}

// Allow reports whether the supplied code grants entry. Matching is
// case-insensitive.
func (g *Gate) Allow(code string) bool {
	if g.code == "" {
		return true
	}
	return strings.EqualFold(code, g.code)
}
