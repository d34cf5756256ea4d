package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfm/server/database"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/ws"
)

// stubPublisher records broadcast events for assertions.
type stubPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *stubPublisher) BroadcastToAll(event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *stubPublisher) byOp(op ws.Op) []ws.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []ws.Event
	for _, e := range p.events {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}

// upstreamStub serves a swappable JSON body so tests can present a
// different snapshot on each sync pass.
type upstreamStub struct {
	mu   sync.Mutex
	body string
}

func (u *upstreamStub) set(body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.body = body
}

func (u *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(u.body))
}

func newSyncFixture(t *testing.T, initialBody string) (*RegionSyncService, repository.RegionRepository, *stubPublisher, *upstreamStub) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath, database.EmbeddedMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	upstream := &upstreamStub{body: initialBody}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	repo := repository.NewSQLiteRegionRepo(db.Conn)
	hub := &stubPublisher{}
	svc := NewRegionSyncService(repo, hub, srv.URL, time.Minute)

	return svc, repo, hub, upstream
}

func TestSyncOnceFiltersAndUpserts(t *testing.T) {
	svc, repo, hub, _ := newSyncFixture(t, `[
		{"name": "REGIONAL DE NORTE"},
		{"name": "REGIONAL DE SUL"},
		{"name": "NACIONAL"},
		{"name": "REGIONAL DE NORTE"}
	]`)
	ctx := context.Background()

	require.NoError(t, svc.SyncOnce(ctx))

	// Only the prefixed entries land, deduplicated.
	regions, err := repo.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	names := []string{regions[0].Name, regions[1].Name}
	assert.Contains(t, names, "REGIONAL DE NORTE")
	assert.Contains(t, names, "REGIONAL DE SUL")

	events := hub.byOp(ws.OpRegionsSynced)
	require.Len(t, events, 1)
	data, ok := events[0].Data.(ws.RegionsSyncedData)
	require.True(t, ok)
	assert.Equal(t, 2, data.Active)
	assert.Equal(t, 0, data.Deactivated)
}

func TestSyncOnceDeactivatesMissingRegions(t *testing.T) {
	svc, repo, hub, upstream := newSyncFixture(t, `[
		{"name": "REGIONAL DE NORTE"},
		{"name": "REGIONAL DE SUL"}
	]`)
	ctx := context.Background()

	require.NoError(t, svc.SyncOnce(ctx))

	// Second snapshot drops SUL; it must flip inactive, not vanish.
	upstream.set(`[{"name": "REGIONAL DE NORTE"}]`)
	require.NoError(t, svc.SyncOnce(ctx))

	active, err := repo.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "REGIONAL DE NORTE", active[0].Name)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	events := hub.byOp(ws.OpRegionsSynced)
	require.Len(t, events, 2)
	data := events[1].Data.(ws.RegionsSyncedData)
	assert.Equal(t, 1, data.Active)
	assert.Equal(t, 1, data.Deactivated)
}

func TestSyncOnceReactivatesReturningRegion(t *testing.T) {
	svc, repo, _, upstream := newSyncFixture(t, `[{"name": "REGIONAL DE NORTE"}]`)
	ctx := context.Background()

	require.NoError(t, svc.SyncOnce(ctx))

	original, err := repo.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, original, 1)

	upstream.set(`[]`)
	require.NoError(t, svc.SyncOnce(ctx))

	upstream.set(`[{"name": "REGIONAL DE NORTE"}]`)
	require.NoError(t, svc.SyncOnce(ctx))

	// The region keeps its identity across the deactivate cycle.
	active, err := repo.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, original[0].ID, active[0].ID)
}

func TestSyncOnceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath, database.EmbeddedMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSQLiteRegionRepo(db.Conn)
	svc := NewRegionSyncService(repo, &stubPublisher{}, srv.URL, time.Minute)

	err = svc.SyncOnce(context.Background())
	assert.ErrorContains(t, err, "upstream returned status 500")
}
