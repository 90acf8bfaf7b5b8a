package graphicsstate

import "math"

// Point is a position in text or device space.
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance to other.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Matrix is a 2D affine transform [a b c d e f], applied to row vectors:
// x' = a·x + c·y + e, y' = b·x + d·y + f.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale by (sx, sy).
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation by angle radians.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m×other, the transform that applies m first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Matrix{1, 0, 0, 1, 0, 0}
}
