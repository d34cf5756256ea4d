package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/petfm/server/models"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/ws"
)

// regionPrefix selects the upstream entries that count as regions.
const regionPrefix = "REGIONAL DE"

// RegionSyncService reconciles the local region table against an
// upstream directory. It runs once at startup and then on a fixed
// interval: upstream entries whose name carries the regional prefix are
// upserted as active, local regions missing upstream are deactivated
// but never deleted, albums may still reference them.
type RegionSyncService struct {
	regions  repository.RegionRepository
	hub      ws.EventPublisher
	client   *http.Client
	url      string
	interval time.Duration
}

// upstreamRegion is the shape of one entry in the upstream listing.
type upstreamRegion struct {
	Name string `json:"name"`
}

func NewRegionSyncService(
	regions repository.RegionRepository,
	hub ws.EventPublisher,
	url string,
	interval time.Duration,
) *RegionSyncService {
	return &RegionSyncService{
		regions:  regions,
		hub:      hub,
		client:   &http.Client{Timeout: 30 * time.Second},
		url:      url,
		interval: interval,
	}
}

// Run performs an immediate sync and then loops on the interval until
// the context is canceled. Started from main with go syncSvc.Run(ctx).
func (s *RegionSyncService) Run(ctx context.Context) {
	if err := s.SyncOnce(ctx); err != nil {
		log.Printf("[region-sync] initial sync failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				log.Printf("[region-sync] sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("[region-sync] stopped")
			return
		}
	}
}

// SyncOnce runs a single reconciliation pass.
func (s *RegionSyncService) SyncOnce(ctx context.Context) error {
	names, err := s.fetchUpstream(ctx)
	if err != nil {
		return err
	}

	upstream := make(map[string]bool, len(names))
	for _, name := range names {
		upstream[name] = true
	}

	// Upsert everything upstream as active.
	for _, name := range names {
		region := &models.Region{Name: name, Active: true}
		if err := s.regions.Upsert(ctx, region); err != nil {
			return fmt.Errorf("failed to upsert region %s: %w", name, err)
		}
	}

	// Deactivate local regions that disappeared upstream.
	active, err := s.regions.GetAllActive(ctx)
	if err != nil {
		return err
	}

	deactivated := 0
	for _, region := range active {
		if upstream[region.Name] {
			continue
		}
		if err := s.regions.SetActive(ctx, region.ID, false); err != nil {
			return fmt.Errorf("failed to deactivate region %s: %w", region.Name, err)
		}
		deactivated++
	}

	log.Printf("[region-sync] synced: %d active, %d deactivated", len(names), deactivated)

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRegionsSynced, Data: ws.RegionsSyncedData{
		Active:      len(names),
		Deactivated: deactivated,
	}})

	return nil
}

// fetchUpstream downloads the upstream listing and returns the names
// matching the regional prefix.
func (s *RegionSyncService) fetchUpstream(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upstream regions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var entries []upstreamRegion
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode upstream regions: %w", err)
	}

	var names []string
	seen := make(map[string]bool)
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if !strings.HasPrefix(name, regionPrefix) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}
