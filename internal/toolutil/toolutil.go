// Package toolutil provides shared helper functions for go_sentinel MCP tools.
package toolutil

import (
	"strings"

	"github.com/anatolykoptev/go_sentinel/internal/engine/research"
)

// NormTopic trims a topic field.
func NormTopic(topic string) string {
	return strings.TrimSpace(topic)
}

// NormPersona normalises a persona field: empty string → "default", otherwise lower-cased.
func NormPersona(persona string) string {
	p := strings.ToLower(strings.TrimSpace(persona))
	if p == "" {
		return research.DefaultPersona
	}
	return p
}

// NonNil returns s, or an empty slice when s is nil, so JSON output shows [] instead of null.
func NonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
