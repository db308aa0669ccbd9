package engine

import (
	"time"

	"uplens/internal/bucket"
	"uplens/internal/normalize"
)

// Config is the single explicit configuration value threaded through every
// engine entry point: column mapping, band geometry, benchmark constants,
// tolerance band. There is no hidden global configuration.
type Config struct {
	Schema normalize.Schema `json:"schema"`

	BucketWidth int64 `json:"bucketWidth"`
	BucketCap   int64 `json:"bucketCap"`

	Benchmarks bucket.Benchmarks `json:"benchmarks"`
	Tolerance  bucket.Tolerance  `json:"tolerance"`

	// OthersMinShare is the percentage below which items-per-order slices
	// fold into "Others".
	OthersMinShare float64 `json:"othersMinShare"`

	// RecentWindowDays is the length of the trailing sub-analysis window.
	RecentWindowDays int `json:"recentWindowDays"`

	// SplitAt is the last day of the prior period for before/after
	// comparison; zero means auto (midpoint by day count).
	SplitAt time.Time `json:"splitAt"`
}

// DefaultConfig carries the benchmark averages and band geometry the
// reporting pages historically used. Benchmarks are reference values
// across all malls and get overridden per engagement.
func DefaultConfig() Config {
	return Config{
		Schema:      normalize.DefaultSchema(),
		BucketWidth: 10000,
		BucketCap:   200000,
		Benchmarks: bucket.Benchmarks{
			UpsellConvRatio: 7.14,
			TogetherRatio:   3.17,
			AOVLift:         34.0,
			ItemsLift:       0.7,
		},
		Tolerance:        bucket.DefaultTolerance(),
		OthersMinShare:   3,
		RecentWindowDays: 30,
	}
}
