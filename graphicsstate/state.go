package graphicsstate

import (
	"fmt"
	"math"

	"github.com/unpdf/unpdf/contentstream"
)

// nominalLineStep is the text-space line advance used by the T*, ' and "
// operators. Producers that set a different leading position their lines
// with explicit Td or Tm moves instead.
const nominalLineStep = 12.0

// TextState carries the text-positioning half of the graphics state.
type TextState struct {
	FontName string
	FontSize float64

	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent
	Leading           float64
	RenderMode        int
	Rise              float64

	// Matrix is the combined text matrix; LineY tracks the baseline Y of
	// the current line for grouping spans that share it.
	Matrix Matrix
	LineY  float64
}

// SetMatrix replaces the text matrix (Tm) and starts a new line.
func (ts *TextState) SetMatrix(a, b, c, d, e, f float64) {
	ts.Matrix = Matrix{a, b, c, d, e, f}
	ts.LineY = f
}

// Translate moves the text position by (tx, ty) in unscaled text space
// (Td). A vertical component starts a new line.
func (ts *TextState) Translate(tx, ty float64) {
	m := &ts.Matrix
	m[4] += tx*m[0] + ty*m[2]
	m[5] += tx*m[1] + ty*m[3]
	if ty != 0 {
		ts.LineY = m[5]
	}
}

// NextLine advances one nominal line down (T*).
func (ts *TextState) NextLine() {
	ts.Matrix[5] -= nominalLineStep * ts.Matrix[3]
	ts.LineY = ts.Matrix[5]
}

// Position returns the current text-space origin.
func (ts *TextState) Position() (x, y float64) {
	return ts.Matrix[4], ts.Matrix[5]
}

// Scale returns the horizontal magnitude of the text matrix, the factor by
// which the matrix scales the nominal font size.
func (ts *TextState) Scale() float64 {
	return math.Sqrt(ts.Matrix[0]*ts.Matrix[0] + ts.Matrix[2]*ts.Matrix[2])
}

// EffectiveFontSize returns the font size after text matrix scaling.
func (ts *TextState) EffectiveFontSize() float64 {
	return ts.FontSize * ts.Scale()
}

// State is the graphics state a content stream mutates as it runs: the
// current transformation matrix, stroke and fill colors, line width and the
// text state, with a save stack for q/Q.
type State struct {
	CTM         Matrix
	LineWidth   float64
	StrokeColor [3]float64
	FillColor   [3]float64
	Text        TextState

	stack []State
}

// New returns a graphics state with the standard defaults.
func New() *State {
	return &State{
		CTM:       Identity(),
		LineWidth: 1.0,
		Text: TextState{
			FontSize:          12.0,
			HorizontalScaling: 100.0,
			Matrix:            Identity(),
		},
	}
}

// Save pushes the current state (q).
func (s *State) Save() {
	saved := *s
	saved.stack = nil
	s.stack = append(s.stack, saved)
}

// Restore pops the most recently saved state (Q).
func (s *State) Restore() error {
	if len(s.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	saved := s.stack[len(s.stack)-1]
	stack := s.stack[:len(s.stack)-1]
	*s = saved
	s.stack = stack
	return nil
}

// Depth returns the number of saved states.
func (s *State) Depth() int { return len(s.stack) }

// Concat prepends m to the current transformation matrix (cm).
func (s *State) Concat(m Matrix) {
	s.CTM = m.Multiply(s.CTM)
}

// BeginText resets the text matrix at the start of a text object (BT).
func (s *State) BeginText() {
	s.Text.Matrix = Identity()
	s.Text.LineY = 0
}

// SetFont records the active font resource name and size (Tf).
func (s *State) SetFont(name string, size float64) {
	s.Text.FontName = name
	s.Text.FontSize = size
}

// Apply mutates the state for one operation. Operators that do not touch
// the graphics state, including the text-showing operators, are ignored;
// the ' and " shortcuts do apply their line advance here.
func (s *State) Apply(op contentstream.Operation) error {
	switch op.Operator {
	case "q":
		s.Save()
	case "Q":
		return s.Restore()
	case "cm":
		if m, ok := matrixOperands(op); ok {
			s.Concat(m)
		}
	case "w":
		if v, ok := op.GetNumber(0); ok {
			s.LineWidth = v
		}

	case "RG":
		if c, ok := rgbOperands(op); ok {
			s.StrokeColor = c
		}
	case "rg":
		if c, ok := rgbOperands(op); ok {
			s.FillColor = c
		}
	case "G":
		if v, ok := op.GetNumber(0); ok {
			s.StrokeColor = [3]float64{v, v, v}
		}
	case "g":
		if v, ok := op.GetNumber(0); ok {
			s.FillColor = [3]float64{v, v, v}
		}
	case "K":
		if c, ok := cmykOperands(op); ok {
			s.StrokeColor = c
		}
	case "k":
		if c, ok := cmykOperands(op); ok {
			s.FillColor = c
		}

	case "BT":
		s.BeginText()
	case "ET":
		// Text object state needs no teardown.
	case "Tf":
		name, ok := op.GetName(0)
		size, ok2 := op.GetNumber(1)
		if ok && ok2 {
			s.SetFont(string(name), size)
		}
	case "Td":
		tx, ok := op.GetNumber(0)
		ty, ok2 := op.GetNumber(1)
		if ok && ok2 {
			s.Text.Translate(tx, ty)
		}
	case "TD":
		tx, ok := op.GetNumber(0)
		ty, ok2 := op.GetNumber(1)
		if ok && ok2 {
			s.Text.Leading = -ty
			s.Text.Translate(tx, ty)
		}
	case "Tm":
		if m, ok := matrixOperands(op); ok {
			s.Text.SetMatrix(m[0], m[1], m[2], m[3], m[4], m[5])
		}
	case "T*", "'", "\"":
		s.Text.NextLine()
	case "Tc":
		if v, ok := op.GetNumber(0); ok {
			s.Text.CharSpacing = v
		}
	case "Tw":
		if v, ok := op.GetNumber(0); ok {
			s.Text.WordSpacing = v
		}
	case "Tz":
		if v, ok := op.GetNumber(0); ok {
			s.Text.HorizontalScaling = v
		}
	case "TL":
		if v, ok := op.GetNumber(0); ok {
			s.Text.Leading = v
		}
	case "Tr":
		if v, ok := op.GetInt(0); ok {
			s.Text.RenderMode = v
		}
	case "Ts":
		if v, ok := op.GetNumber(0); ok {
			s.Text.Rise = v
		}
	}
	return nil
}

func matrixOperands(op contentstream.Operation) (Matrix, bool) {
	if len(op.Operands) < 6 {
		return Matrix{}, false
	}
	var m Matrix
	for i := 0; i < 6; i++ {
		v, ok := op.GetNumber(i)
		if !ok {
			return Matrix{}, false
		}
		m[i] = v
	}
	return m, true
}

func rgbOperands(op contentstream.Operation) ([3]float64, bool) {
	if len(op.Operands) < 3 {
		return [3]float64{}, false
	}
	var c [3]float64
	for i := 0; i < 3; i++ {
		v, ok := op.GetNumber(i)
		if !ok {
			return [3]float64{}, false
		}
		c[i] = v
	}
	return c, true
}

// cmykOperands converts a CMYK color operand list to RGB.
func cmykOperands(op contentstream.Operation) ([3]float64, bool) {
	if len(op.Operands) < 4 {
		return [3]float64{}, false
	}
	var cmyk [4]float64
	for i := 0; i < 4; i++ {
		v, ok := op.GetNumber(i)
		if !ok {
			return [3]float64{}, false
		}
		cmyk[i] = v
	}
	k := cmyk[3]
	return [3]float64{
		(1 - cmyk[0]) * (1 - k),
		(1 - cmyk[1]) * (1 - k),
		(1 - cmyk[2]) * (1 - k),
	}, true
}
