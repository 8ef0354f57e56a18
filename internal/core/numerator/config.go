// Package numerator provides the contracts for human-readable record numbers
// such as license numbers. Implementations live in the infrastructure layer.
package numerator

// ResetPeriod controls when a sequence starts over.
type ResetPeriod string

const (
	ResetYearly  ResetPeriod = "year"
	ResetMonthly ResetPeriod = "month"
	ResetNever   ResetPeriod = "never"
)

// Config holds the numbering format.
type Config struct {
	// Prefix added to all numbers (e.g., "LIC")
	Prefix string

	// IncludeYear adds the period's year to the number
	IncludeYear bool

	// PadWidth is the minimum width of the counter (default 5)
	PadWidth int

	ResetPeriod ResetPeriod
}

// DefaultConfig returns PREFIX-YYYY-NNNNN numbering that restarts every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYearly,
	}
}
