// Package graphicsstate tracks the graphics and text state of a content
// stream as its operators execute.
//
// State applies the operators that matter for text extraction: q/Q save
// and restore, cm, the color and line attributes, and the full text state
// including the text matrix. Feed it operations one at a time:
//
//	s := graphicsstate.New()
//	for _, op := range ops {
//	    if err := s.Apply(op); err != nil { ... }
//	    // read s.Text.Position(), s.Text.EffectiveFontSize(), ...
//	}
//
// Text-showing operators never move the text matrix here; extraction reads
// the position at each show and relies on explicit Td/Tm moves, which is
// how virtually all producers lay out lines.
package graphicsstate
