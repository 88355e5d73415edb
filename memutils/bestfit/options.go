package bestfit

import "golang.org/x/exp/slog"

type Option func(a *Allocator)

// WithLogger sets the logger used by LogStatus and Close. Without it, the allocator logs to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		a.logger = logger
	}
}

func (a *Allocator) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}
