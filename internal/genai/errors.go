package genai

import "fmt"

// TransportError marks a failed round-trip: network fault, timeout, or a
// non-2xx status. Callers may treat it as "nothing generated" but can also
// tell it apart from a malformed reply.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("genai transport error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("genai transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusCode implements httpx.HTTPStatusCoder for retry classification.
func (e *TransportError) HTTPStatusCode() int { return e.Status }

// ParseError marks a reply that arrived but did not match the expected shape.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("genai parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
