package engine

import (
	"log/slog"

	"github.com/tartampluch/go-celebrations/internal/config"
)

// Reconcile attaches the directory email to each event whose name is known.
// Unmatched events are kept with an empty Email. The input slice is not
// modified and the output preserves its order; the roster join happens later,
// when each event is formatted.
func Reconcile(events []CelebrationEvent, dir Directory) []CelebrationEvent {
	out := make([]CelebrationEvent, len(events))
	for i, e := range events {
		if email, ok := dir.Lookup(e.Name); ok {
			e.Email = email
		} else {
			slog.Debug(config.MsgNoDirectoryHit,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, e.Name,
			)
		}
		out[i] = e
	}
	return out
}
