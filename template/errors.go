package template

import "strings"

// ValidationError aggregates the placeholder-level problems collected over a
// full substitution pass. Individual problems never short-circuit the pass;
// the encoders fail once, afterwards, with every message joined.
type ValidationError struct {
	Messages []string
}

// Error joins the collected messages with a comma.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ",")
}
