package lua

import "github.com/rs/zerolog"

// StateOption configures a state family created by NewState.
type StateOption func(*family)

// WithLogger sets the logger used by the main thread and every derived thread.
// Threads add a "thread" field to it.
func WithLogger(log zerolog.Logger) StateOption {
	return func(f *family) { f.log = log }
}

// WithName names the main thread. The default is "main".
func WithName(name string) StateOption {
	return func(f *family) {
		if name != "" {
			f.name = name
		}
	}
}

// WithInheritExtra makes NewThread copy the parent's extra reference into the
// new thread right after creating it. Without it threads start with an empty slot.
func WithInheritExtra(inherit bool) StateOption {
	return func(f *family) { f.inherit = inherit }
}
