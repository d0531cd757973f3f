package connectivity

import "fmt"

// IUPerMM is the number of internal units per millimeter (100 nm resolution)
const IUPerMM = 10000

// Point is a location in sheet space, in internal units
type Point struct {
	X, Y int64
}

// Pt builds a Point
func Pt(x, y int64) Point {
	return Point{X: x, Y: y}
}

// PointFromMM converts millimeter coordinates, as stored in schematic files,
// to internal units.
func PointFromMM(x, y float64) Point {
	return Point{X: mmToIU(x), Y: mmToIU(y)}
}

func mmToIU(v float64) int64 {
	if v < 0 {
		return int64(v*IUPerMM - 0.5)
	}
	return int64(v*IUPerMM + 0.5)
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", float64(p.X)/IUPerMM, float64(p.Y)/IUPerMM)
}

// onSegment reports whether p lies on the segment a-b, endpoints included
func onSegment(p, a, b Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if cross != 0 {
		return false
	}
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}
