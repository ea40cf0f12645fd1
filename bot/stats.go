package bot

import "sync/atomic"

// Stats counts what the router has done since start
type Stats struct {
	events           atomic.Int64
	commands         atomic.Int64
	texts            atomic.Int64
	buttons          atomic.Int64
	throttled        atomic.Int64
	lookups          atomic.Int64
	notFound         atomic.Int64
	providerErrors   atomic.Int64
	validationErrors atomic.Int64
	sendErrors       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	Events           int64 `json:"events"`
	Commands         int64 `json:"commands"`
	Texts            int64 `json:"texts"`
	Buttons          int64 `json:"buttons"`
	Throttled        int64 `json:"throttled"`
	Lookups          int64 `json:"lookups"`
	NotFound         int64 `json:"notFound"`
	ProviderErrors   int64 `json:"providerErrors"`
	ValidationErrors int64 `json:"validationErrors"`
	SendErrors       int64 `json:"sendErrors"`
}

// Snapshot reads all counters
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Events:           s.events.Load(),
		Commands:         s.commands.Load(),
		Texts:            s.texts.Load(),
		Buttons:          s.buttons.Load(),
		Throttled:        s.throttled.Load(),
		Lookups:          s.lookups.Load(),
		NotFound:         s.notFound.Load(),
		ProviderErrors:   s.providerErrors.Load(),
		ValidationErrors: s.validationErrors.Load(),
		SendErrors:       s.sendErrors.Load(),
	}
}
