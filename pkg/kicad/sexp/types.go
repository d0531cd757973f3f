// Package sexp provides S-expression helpers shared by the KiCad file readers.
package sexp

// Position is a 2D coordinate in millimeters, as stored in schematic files
type Position struct {
	X float64
	Y float64
}

// Angle is a rotation in degrees
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// Size represents dimensions
type Size struct {
	Width  float64
	Height float64
}

// UUID is a KiCad object identifier
type UUID string

// Effects holds the text effects that matter for connectivity
type Effects struct {
	Hide bool
}

// Property represents a key-value property of a symbol or sheet
type Property struct {
	Key      string
	Value    string
	Position PositionAngle
	Effects  Effects
}
