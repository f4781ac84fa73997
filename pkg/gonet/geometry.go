package gonet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Region geometry. Every mask producer here is a pure function of its
// geometric parameters: none of them read pixel data, so the same mask can
// be built once and applied to any number of same-shaped channels.
//
// Conventions: a grid cell at row i, column j is tested at the point
// (x=j, y=i); angles are measured in degrees, counter-clockwise from the
// positive x axis.

// Point is a 2D vertex in grid coordinates.
type Point struct {
	X float64
	Y float64
}

// NormalizeAngleDeg reduces an angle to [0, 360).
func NormalizeAngleDeg(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// NormalizeStartEndAngles normalizes both angles to [0, 360) and, when the
// end does not exceed the start, lifts it by a full turn so the pair always
// describes a positive sweep in the increasing-angle direction. A sector
// from 350 to 10 degrees therefore sweeps the 20-degree arc crossing zero,
// never the 340-degree complement, and equal angles sweep the full circle.
func NormalizeStartEndAngles(start, end float64) (float64, float64) {
	s := NormalizeAngleDeg(start)
	e := NormalizeAngleDeg(end)
	if e <= s {
		e += 360
	}
	return s, e
}

// MaskSector selects the cells strictly inside the circle of the given
// center and radius whose angle falls in the [start, end) sweep produced
// by NormalizeStartEndAngles.
func MaskSector(cx, cy, radius, startAngle, endAngle float64, rows, cols int) (*Mask, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative sector radius %g", ErrGeometry, radius)
	}
	start, end := NormalizeStartEndAngles(startAngle, endAngle)
	return maskArc(cx, cy, 0, radius, start, end, rows, cols), nil
}

// MaskAnnularSector selects the cells of the ring rInner <= distance <
// rOuter whose angle falls in the [start, end) sweep.
func MaskAnnularSector(cx, cy, rInner, rOuter, startAngle, endAngle float64, rows, cols int) (*Mask, error) {
	if rInner < 0 || rOuter < 0 {
		return nil, fmt.Errorf("%w: negative annulus radius (inner %g, outer %g)", ErrGeometry, rInner, rOuter)
	}
	if rInner > rOuter {
		return nil, fmt.Errorf("%w: inner radius %g exceeds outer radius %g", ErrGeometry, rInner, rOuter)
	}
	start, end := NormalizeStartEndAngles(startAngle, endAngle)
	return maskArc(cx, cy, rInner, rOuter, start, end, rows, cols), nil
}

// maskArc rasterizes the annular sector rInner <= d < rOuter over the
// normalized sweep [start, end), end in (start, start+360].
func maskArc(cx, cy, rInner, rOuter, start, end float64, rows, cols int) *Mask {
	mask := NewMask(rows, cols)
	in2 := rInner * rInner
	out2 := rOuter * rOuter
	for i := 0; i < rows; i++ {
		dy := float64(i) - cy
		for j := 0; j < cols; j++ {
			dx := float64(j) - cx
			d2 := dx*dx + dy*dy
			if d2 < in2 || d2 >= out2 {
				continue
			}
			a := NormalizeAngleDeg(math.Atan2(dy, dx) * 180 / math.Pi)
			if a < start {
				a += 360
			}
			if a < end {
				mask.Set(i, j, true)
			}
		}
	}
	return mask
}

// ParseSVGPath interprets a minimal SVG path grammar into the vertices of
// a closed polygon. Supported commands are absolute move-to (M), absolute
// line-to (L), and close-path (Z); after the initial M, bare coordinate
// pairs continue the current line sequence per SVG semantics. Any other
// command, a second subpath, or a path that is never closed is a format
// error.
func ParseSVGPath(path string) ([]Point, error) {
	tokens := tokenizePath(path)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty SVG path", ErrFormat)
	}

	var vertices []Point
	closed := false
	started := false

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		if closed {
			return nil, fmt.Errorf("%w: SVG path continues after Z", ErrFormat)
		}
		switch tok {
		case "M":
			if started {
				return nil, fmt.Errorf("%w: SVG path has more than one subpath", ErrFormat)
			}
			started = true
			i++
		case "L":
			if !started {
				return nil, fmt.Errorf("%w: SVG path must start with M", ErrFormat)
			}
			i++
		case "Z":
			if !started || len(vertices) == 0 {
				return nil, fmt.Errorf("%w: SVG path closed before any vertex", ErrFormat)
			}
			closed = true
			i++
			continue
		default:
			if isCommandToken(tok) {
				return nil, fmt.Errorf("%w: unsupported SVG command %q", ErrFormat, tok)
			}
			if !started {
				return nil, fmt.Errorf("%w: SVG path must start with M", ErrFormat)
			}
			// bare coordinate pair: implicit line-to
		}

		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("%w: SVG path ends inside a coordinate pair", ErrFormat)
		}
		x, errX := strconv.ParseFloat(tokens[i], 64)
		y, errY := strconv.ParseFloat(tokens[i+1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: invalid SVG coordinate pair %q %q", ErrFormat, tokens[i], tokens[i+1])
		}
		vertices = append(vertices, Point{X: x, Y: y})
		i += 2
	}

	if !closed {
		return nil, fmt.Errorf("%w: SVG path is not closed (missing Z)", ErrFormat)
	}
	// drop an explicit closing vertex that repeats the first
	if n := len(vertices); n > 1 && vertices[0] == vertices[n-1] {
		vertices = vertices[:n-1]
	}
	return vertices, nil
}

// tokenizePath splits a path string into command letters and numbers.
// Commas separate coordinates and command letters may abut numbers.
func tokenizePath(path string) []string {
	var b strings.Builder
	for _, r := range path {
		switch {
		case r == ',':
			b.WriteRune(' ')
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isCommandToken(tok string) bool {
	if len(tok) != 1 {
		return false
	}
	r := tok[0]
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// MaskFromClosedPath rasterizes a closed polygon with the even-odd rule: a
// cell is selected iff a ray cast from its center in the +x direction
// crosses an odd number of polygon edges. Boundary-touching cells resolve
// by that same crossing count. Degenerate paths (a point or a line) select
// nothing.
func MaskFromClosedPath(vertices []Point, rows, cols int) *Mask {
	mask := NewMask(rows, cols)
	n := len(vertices)
	if n < 3 {
		return mask
	}
	for i := 0; i < rows; i++ {
		y := float64(i)
		for j := 0; j < cols; j++ {
			x := float64(j)
			inside := false
			for k := 0; k < n; k++ {
				p1 := vertices[k]
				p2 := vertices[(k+1)%n]
				if (p1.Y > y) == (p2.Y > y) {
					continue
				}
				xCross := p1.X + (y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y)
				if x < xCross {
					inside = !inside
				}
			}
			if inside {
				mask.Set(i, j, true)
			}
		}
	}
	return mask
}

// MaskFromSVGPath parses the path and rasterizes it in one step.
func MaskFromSVGPath(path string, rows, cols int) (*Mask, error) {
	vertices, err := ParseSVGPath(path)
	if err != nil {
		return nil, err
	}
	return MaskFromClosedPath(vertices, rows, cols), nil
}
