package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/anhducmata/scenario"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ scenario.Store = (*PGStore)(nil)

// newTestStore connects to DATABASE_URL and resets the schema. Tests are
// skipped when no database is configured.
func newTestStore(t *testing.T) *PGStore {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping postgres integration tests")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.DropSchema(context.Background()))
	require.NoError(t, s.CreateSchema(context.Background()))
	return s
}

func graph(nodeIDs ...string) scenario.ScenarioData {
	d := scenario.ScenarioData{Nodes: []scenario.Node{}, Edges: []scenario.Edge{}}
	for _, id := range nodeIDs {
		d.Nodes = append(d.Nodes, scenario.Node{
			ID: id, Kind: scenario.KindAgent, Ref: &scenario.NodeRef{ID: id, Name: id},
		})
	}
	return d
}

func TestScenarioRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	data := graph("A", "B")
	data.Edges = append(data.Edges, scenario.Edge{
		ID: "eAB", Source: "A", Target: "B", Label: "when user wants to", Kind: scenario.EdgeHandoff,
	})
	data.Metadata = map[string]any{"canvas": "v1"}

	created, err := s.CreateScenario(ctx, "flow", "roundtrip", "u1", data)
	require.NoError(t, err)
	assert.Equal(t, 1, created.CurrentVersion)
	assert.True(t, created.IsActive)

	got, err := s.GetScenario(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, data.Nodes, got.Data.Nodes, "graph survives the JSONB round trip")
	assert.Equal(t, data.Edges, got.Data.Edges)

	absent, err := s.GetScenario(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestVersioningProtocol(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v1Data := graph("A", "B")
	sc, err := s.CreateScenario(ctx, "Checkout Flow", "", "u1", v1Data)
	require.NoError(t, err)

	versions, err := s.ListVersions(ctx, sc.ID)
	require.NoError(t, err)
	assert.Empty(t, versions, "creation writes no snapshot")

	// Rename and swap the graph; the outgoing state becomes snapshot 1.
	name := "Checkout Flow v2"
	v2Data := graph("A", "B", "C")
	updated, err := s.UpdateScenario(ctx, sc.ID, scenario.UpdateFields{Name: &name, Data: &v2Data}, "u1", "add C")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)
	assert.Equal(t, name, updated.Name)

	v1, err := s.GetVersion(ctx, sc.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, v1)
	assert.Equal(t, v1Data.Nodes, v1.Data.Nodes)
	assert.Equal(t, "add C", v1.ChangeDescription)

	// Partial update leaves everything else alone.
	active := false
	updated, err = s.UpdateScenario(ctx, sc.ID, scenario.UpdateFields{IsActive: &active}, "u1", "pause")
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentVersion)
	assert.False(t, updated.IsActive)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, v2Data.Nodes, updated.Data.Nodes)

	// Restore is additive.
	restored, err := s.RestoreVersion(ctx, sc.ID, 1, "u2")
	require.NoError(t, err)
	assert.Equal(t, 4, restored.CurrentVersion)
	assert.Equal(t, v1Data.Nodes, restored.Data.Nodes)

	versions, err = s.ListVersions(ctx, sc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].VersionNumber, "newest first")

	v3, err := s.GetVersion(ctx, sc.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, v3)
	assert.Equal(t, v2Data.Nodes, v3.Data.Nodes, "pre-restore state snapshotted")
	assert.Equal(t, "Restored from version 1", v3.ChangeDescription)

	_, err = s.RestoreVersion(ctx, sc.ID, 99, "u1")
	assert.ErrorIs(t, err, scenario.ErrVersionNotFound)
}

func TestUpdateMissingScenario(t *testing.T) {
	s := newTestStore(t)

	name := "x"
	_, err := s.UpdateScenario(context.Background(), "ghost", scenario.UpdateFields{Name: &name}, "u1", "")
	assert.ErrorIs(t, err, scenario.ErrScenarioNotFound)
}

func TestDeleteCascadesVersions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sc, err := s.CreateScenario(ctx, "flow", "", "u1", graph("A"))
	require.NoError(t, err)
	name := "renamed"
	_, err = s.UpdateScenario(ctx, sc.ID, scenario.UpdateFields{Name: &name}, "u1", "")
	require.NoError(t, err)

	deleted, err := s.DeleteScenario(ctx, sc.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.GetScenario(ctx, sc.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	versions, err := s.ListVersions(ctx, sc.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestListScenariosScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateScenario(ctx, "mine", "", "u1", graph("A"))
	require.NoError(t, err)
	_, err = s.CreateScenario(ctx, "theirs", "", "u2", graph("B"))
	require.NoError(t, err)

	mine, err := s.ListScenarios(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].Name)
}

func TestRegistries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateAgent(ctx, &scenario.Agent{Name: "Billing", Owner: "u1"})
	require.NoError(t, err)
	_, err = s.CreateAgent(ctx, &scenario.Agent{Name: "Shared", Owner: "u2", IsPublic: true})
	require.NoError(t, err)

	visible, err := s.ListAgents(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, visible, 2, "own plus public")

	a.Instructions = "Handle billing."
	require.NoError(t, s.UpdateAgent(ctx, a))
	got, err := s.GetAgent(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Handle billing.", got.Instructions)

	tool, err := s.CreateTool(ctx, &scenario.Tool{Name: "Lookup", Method: "GET", URL: "https://x", Owner: "u1"})
	require.NoError(t, err)
	tool.Method = "POST"
	require.NoError(t, s.UpdateTool(ctx, tool))

	tools, err := s.ListTools(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "POST", tools[0].Method)

	assert.ErrorIs(t, s.UpdateAgent(ctx, &scenario.Agent{ID: "ghost"}), scenario.ErrAgentNotFound)
	assert.ErrorIs(t, s.UpdateTool(ctx, &scenario.Tool{ID: "ghost"}), scenario.ErrToolNotFound)
}
