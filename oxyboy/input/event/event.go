// Package event classifies input deliveries: an initial press, a release,
// and the repeated hold notifications some backends emit in between.
package event

// Type distinguishes how a key event should be interpreted.
type Type int

const (
	Press   Type = iota // key went down
	Release             // key came back up
	Hold                // still down; emitted between Press and Release
)
