package service

import (
	"context"

	"harvest-go/pkg/action"
	"harvest-go/pkg/harvester"
	"harvest-go/pkg/storage"
)

// HarvestService is the narrow surface the HTTP handlers depend on.
type HarvestService interface {
	Harvest(ctx context.Context, urls []string, actions []*action.Action) (*harvester.Report, error)
	Results(identity uint64) []storage.PageMatches
}

type harvestService struct {
	harvester *harvester.Harvester
}

// NewHarvestService wraps a harvester as a HarvestService.
func NewHarvestService(h *harvester.Harvester) HarvestService {
	return &harvestService{harvester: h}
}

func (s *harvestService) Harvest(ctx context.Context, urls []string, actions []*action.Action) (*harvester.Report, error) {
	return s.harvester.Run(ctx, urls, actions)
}

func (s *harvestService) Results(identity uint64) []storage.PageMatches {
	return s.harvester.Cache().Get(identity)
}
