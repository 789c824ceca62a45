package chart

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithTrackedBodies sets the bodies a chart is expected to contain, in
// output order. An empty list keeps the default.
func WithTrackedBodies(names ...string) Option {
	return func(a *Assembler) {
		if len(names) > 0 {
			a.tracked = append([]string(nil), names...)
		}
	}
}

// WithRequiredBodies sets the bodies whose absence aborts assembly.
// Calling it with no names makes every body optional.
func WithRequiredBodies(names ...string) Option {
	return func(a *Assembler) {
		a.required = append([]string(nil), names...)
	}
}

// WithObliquity overrides the obliquity used to transform body positions.
func WithObliquity(eps float64) Option {
	return func(a *Assembler) {
		a.obliquity = eps
	}
}
