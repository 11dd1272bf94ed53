// Package harvester ties the pipeline together: it streams pages from the
// concurrent fetcher, applies every declared action to each page, and files
// the matches in a result cache under each action's identity.
package harvester

import (
	"context"
	"fmt"

	"harvest-go/pkg/action"
	"harvest-go/pkg/extractor"
	"harvest-go/pkg/fetcher"
	"harvest-go/pkg/logger"
	"harvest-go/pkg/storage"
)

// Config controls one harvester instance.
type Config struct {
	MaxWorkers    int
	StopThreshold int
}

// Harvester runs harvests against a transport and accumulates results.
type Harvester struct {
	transport fetcher.Transport
	cache     *storage.ResultCache
	config    Config
	log       *logger.Logger
}

// Report summarizes one harvest run.
type Report struct {
	PagesFetched int            `json:"pages_fetched"`
	StoppedEarly bool           `json:"stopped_early"`
	Matches      map[string]int `json:"matches"` // action identity (hex) -> match count
}

// New creates a harvester. Zero config values fall back to the fetcher
// defaults.
func New(transport fetcher.Transport, config Config) *Harvester {
	if config.MaxWorkers == 0 {
		config.MaxWorkers = fetcher.DefaultMaxWorkers
	}
	if config.StopThreshold == 0 {
		config.StopThreshold = fetcher.DefaultStopThreshold
	}
	return &Harvester{
		transport: transport,
		cache:     storage.NewResultCache(),
		config:    config,
		log:       logger.GetLogger().WithField("component", "harvester"),
	}
}

// Cache exposes the accumulated results, addressed by action identity.
func (h *Harvester) Cache() *storage.ResultCache {
	return h.cache
}

// Run fetches the given URLs and applies every action to every non-repeated
// page. Action identities are computed up front, so an unhashable action
// fails the run before any fetch is dispatched. A transport failure aborts
// the run and is returned alongside the partial report.
func (h *Harvester) Run(ctx context.Context, urls []string, actions []*action.Action) (*Report, error) {
	identities := make([]uint64, len(actions))
	for i, act := range actions {
		id, err := act.Identity()
		if err != nil {
			return nil, fmt.Errorf("harvester: action %d: %w", i, err)
		}
		identities[i] = id
	}

	stream, err := fetcher.Fetch(ctx, h.transport, urls,
		fetcher.WithMaxWorkers(h.config.MaxWorkers),
		fetcher.WithStopThreshold(h.config.StopThreshold),
	)
	if err != nil {
		return nil, err
	}

	report := &Report{Matches: make(map[string]int)}
	for page := range stream.Pages() {
		report.PagesFetched++
		for i, act := range actions {
			matches := extractor.Extract(page.Doc, act)
			if len(matches) == 0 {
				continue
			}
			h.cache.Put(identities[i], page.URL, matches)
			report.Matches[IdentityKey(identities[i])] += len(matches)
		}
	}

	report.StoppedEarly = stream.Stopped()
	if err := stream.Err(); err != nil {
		return report, fmt.Errorf("harvester: %w", err)
	}

	h.log.WithFields(map[string]interface{}{
		"pages":         report.PagesFetched,
		"stopped_early": report.StoppedEarly,
	}).Info("Harvest finished")
	return report, nil
}

// IdentityKey renders an identity hash the way it appears in reports and
// API responses.
func IdentityKey(id uint64) string {
	return fmt.Sprintf("%016x", id)
}
