// Package contentstream tokenizes decoded page content streams.
//
// A content stream is a sequence of operands followed by an operator:
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//	    switch op.Operator {
//	    case "Tj":
//	        s, _ := op.GetString(0)
//	        // ...
//	    }
//	}
//
// The parser is purely lexical: it does not validate operand counts or
// operator ordering, which is left to the consumers that interpret text and
// graphics state. Inline images are reported as a bare BI operation and
// their binary payload is skipped.
package contentstream
