// Package reogrid loads xlsx workbooks into the in-memory model, recalculates
// their formulas and writes the computed values back.
package reogrid

import (
	"log/slog"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/recalc"
)

// Options configures loading and recalculation.
type Options struct {
	// MaxDepth is the recursion ceiling of the recalculation pass.
	// Zero means recalc.DefaultMaxDepth.
	MaxDepth int
	// IncludeFormulas specifies whether formula texts are reported.
	// If nil, defaults to true.
	IncludeFormulas *bool
	// IncludePrintAreas specifies whether print areas are reported.
	// If nil, defaults to true.
	IncludePrintAreas *bool
	// Logger receives recalculation diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		MaxDepth: recalc.DefaultMaxDepth,
	}
}

// ShouldIncludeFormulas returns whether to report formula texts.
func (o Options) ShouldIncludeFormulas() bool {
	if o.IncludeFormulas != nil {
		return *o.IncludeFormulas
	}
	return true
}

// ShouldIncludePrintAreas returns whether to report print areas.
func (o Options) ShouldIncludePrintAreas() bool {
	if o.IncludePrintAreas != nil {
		return *o.IncludePrintAreas
	}
	return true
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return recalc.DefaultMaxDepth
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) recalcOptions() []recalc.Option {
	return []recalc.Option{
		recalc.WithMaxDepth(o.maxDepth()),
		recalc.WithLogger(o.logger()),
	}
}
