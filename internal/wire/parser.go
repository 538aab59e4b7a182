// Package wire implements the text-command inbound protocol and the
// JSON outbound notifications described in spec.md §4.1.
package wire

import "strings"

// Command is a parsed inbound frame: a verb plus its space-separated
// arguments.
type Command struct {
	Verb string
	Args []string
}

// Parse tokenizes a single inbound text frame. An empty frame yields a
// zero-value Command whose Verb is "" — callers treat unknown verbs as
// protocol violations to be silently ignored (spec.md §4.1, §7).
func Parse(frame string) Command {
	fields := strings.Fields(frame)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Verb: fields[0], Args: fields[1:]}
}
