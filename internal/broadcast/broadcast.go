// Package broadcast serializes an outbound notification once and fans
// it out to a supplied set of sessions (spec.md §2's Broadcast
// component). It never blocks the caller's worker on a slow session: a
// target's own Send implementation is expected to enforce the
// bounded-queue/drop-on-overflow or send-deadline policy spec.md §9
// calls for (that policy is transport-specific, see internal/transport/ws).
package broadcast

// Sender is the minimal capability Broadcast needs from a notification
// target — usually a connected player, sometimes a lobby session.
type Sender interface {
	Send(data []byte) error
}

// FanOut writes the already-serialized payload to every target,
// reporting (not panicking on) per-target failures via onFailure so the
// caller can route them through spec.md §4.6 disconnect handling instead
// of letting one dead socket affect the others.
func FanOut[S Sender](targets []S, payload []byte, onFailure func(target S, err error)) {
	for _, target := range targets {
		if err := target.Send(payload); err != nil && onFailure != nil {
			onFailure(target, err)
		}
	}
}
