// Package memory provides an in-memory scenario.Store for tests and for
// running the server without a database. Semantics mirror the postgres
// implementation: nil, nil for absent lookups, sentinel errors on missing
// mutations, deep-copied snapshots.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anhducmata/scenario"
	"github.com/google/uuid"
)

// MemStore implements scenario.Store with mutex-guarded maps. Every value
// crossing the API boundary is copied, so callers can never mutate stored
// state in place.
type MemStore struct {
	mu        sync.Mutex
	scenarios map[string]*scenario.Scenario
	versions  map[string][]scenario.ScenarioVersion
	agents    map[string]*scenario.Agent
	tools     map[string]*scenario.Tool
}

// New creates an empty MemStore.
func New() *MemStore {
	return &MemStore{
		scenarios: make(map[string]*scenario.Scenario),
		versions:  make(map[string][]scenario.ScenarioVersion),
		agents:    make(map[string]*scenario.Agent),
		tools:     make(map[string]*scenario.Tool),
	}
}

// CreateSchema is a no-op for the in-memory store.
func (s *MemStore) CreateSchema(ctx context.Context) error { return nil }

// DropSchema discards all stored state.
func (s *MemStore) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = make(map[string]*scenario.Scenario)
	s.versions = make(map[string][]scenario.ScenarioVersion)
	s.agents = make(map[string]*scenario.Agent)
	s.tools = make(map[string]*scenario.Tool)
	return nil
}

func copyScenario(sc *scenario.Scenario) *scenario.Scenario {
	out := *sc
	out.Data = sc.Data.Clone()
	return &out
}

// CreateScenario stores a new scenario at version 1 with no snapshots.
func (s *MemStore) CreateScenario(ctx context.Context, name, description, owner string, data scenario.ScenarioData) (*scenario.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sc := &scenario.Scenario{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    description,
		IsActive:       true,
		Owner:          owner,
		Data:           data.Clone(),
		CurrentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.scenarios[sc.ID] = sc
	return copyScenario(sc), nil
}

// GetScenario returns the scenario, or nil, nil if absent.
func (s *MemStore) GetScenario(ctx context.Context, scenarioID string) (*scenario.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenarios[scenarioID]
	if !ok {
		return nil, nil
	}
	return copyScenario(sc), nil
}

// ListScenarios returns the owner's scenarios, most recently updated first.
func (s *MemStore) ListScenarios(ctx context.Context, owner string) ([]scenario.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []scenario.Scenario{}
	for _, sc := range s.scenarios {
		if sc.Owner == owner {
			out = append(out, *copyScenario(sc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// UpdateScenario snapshots the outgoing state, applies the non-nil fields,
// and bumps current_version by one, all under a single lock.
func (s *MemStore) UpdateScenario(ctx context.Context, scenarioID string, fields scenario.UpdateFields, owner, changeDescription string) (*scenario.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scenarios[scenarioID]
	if !ok {
		return nil, scenario.ErrScenarioNotFound
	}

	s.versions[scenarioID] = append(s.versions[scenarioID], scenario.ScenarioVersion{
		ScenarioID:        scenarioID,
		VersionNumber:     sc.CurrentVersion,
		Data:              sc.Data.Clone(),
		CreatedBy:         owner,
		ChangeDescription: changeDescription,
		CreatedAt:         time.Now(),
	})

	if fields.Name != nil {
		sc.Name = *fields.Name
	}
	if fields.Description != nil {
		sc.Description = *fields.Description
	}
	if fields.IsActive != nil {
		sc.IsActive = *fields.IsActive
	}
	if fields.Data != nil {
		sc.Data = fields.Data.Clone()
	}
	sc.CurrentVersion++
	sc.UpdatedAt = time.Now()

	return copyScenario(sc), nil
}

// DeleteScenario removes the scenario and all of its versions.
func (s *MemStore) DeleteScenario(ctx context.Context, scenarioID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenarios[scenarioID]; !ok {
		return false, nil
	}
	delete(s.scenarios, scenarioID)
	delete(s.versions, scenarioID)
	return true, nil
}

// ListVersions returns all snapshots, newest first.
func (s *MemStore) ListVersions(ctx context.Context, scenarioID string) ([]scenario.ScenarioVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []scenario.ScenarioVersion{}
	for _, v := range s.versions[scenarioID] {
		v.Data = v.Data.Clone()
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

// GetVersion returns one snapshot, or nil, nil if absent.
func (s *MemStore) GetVersion(ctx context.Context, scenarioID string, versionNumber int) (*scenario.ScenarioVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.versions[scenarioID] {
		if v.VersionNumber == versionNumber {
			v.Data = v.Data.Clone()
			return &v, nil
		}
	}
	return nil, nil
}

// RestoreVersion re-applies a snapshot's graph through UpdateScenario, so
// the pre-restore state is itself snapshotted and history stays append-only.
func (s *MemStore) RestoreVersion(ctx context.Context, scenarioID string, versionNumber int, owner string) (*scenario.Scenario, error) {
	v, err := s.GetVersion(ctx, scenarioID, versionNumber)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, scenario.ErrVersionNotFound
	}

	data := v.Data.Clone()
	return s.UpdateScenario(ctx, scenarioID,
		scenario.UpdateFields{Data: &data},
		owner,
		fmt.Sprintf("Restored from version %d", versionNumber),
	)
}

// CreateAgent stores a new agent definition.
func (s *MemStore) CreateAgent(ctx context.Context, a *scenario.Agent) (*scenario.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := *a
	s.agents[a.ID] = &stored
	return a, nil
}

// GetAgent returns the agent, or nil, nil if absent.
func (s *MemStore) GetAgent(ctx context.Context, agentID string) (*scenario.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agents[agentID]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

// ListAgents returns the owner's agents plus public ones, newest first.
func (s *MemStore) ListAgents(ctx context.Context, owner string) ([]scenario.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []scenario.Agent{}
	for _, a := range s.agents {
		if a.Owner == owner || a.IsPublic {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// UpdateAgent replaces an existing agent's editable fields.
func (s *MemStore) UpdateAgent(ctx context.Context, a *scenario.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.agents[a.ID]
	if !ok {
		return scenario.ErrAgentNotFound
	}
	cur.Name = a.Name
	cur.Description = a.Description
	cur.Instructions = a.Instructions
	cur.Avatar = a.Avatar
	cur.IsPublic = a.IsPublic
	cur.UpdatedAt = time.Now()
	return nil
}

// DeleteAgent removes an agent.
func (s *MemStore) DeleteAgent(ctx context.Context, agentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[agentID]; !ok {
		return false, nil
	}
	delete(s.agents, agentID)
	return true, nil
}

// CreateTool stores a new tool definition.
func (s *MemStore) CreateTool(ctx context.Context, t *scenario.Tool) (*scenario.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	s.tools[t.ID] = &stored
	return t, nil
}

// GetTool returns the tool, or nil, nil if absent.
func (s *MemStore) GetTool(ctx context.Context, toolID string) (*scenario.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tools[toolID]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

// ListTools returns the owner's tools, newest first.
func (s *MemStore) ListTools(ctx context.Context, owner string) ([]scenario.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []scenario.Tool{}
	for _, t := range s.tools {
		if t.Owner == owner {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// UpdateTool replaces an existing tool's editable fields.
func (s *MemStore) UpdateTool(ctx context.Context, t *scenario.Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tools[t.ID]
	if !ok {
		return scenario.ErrToolNotFound
	}
	cur.Name = t.Name
	cur.Description = t.Description
	cur.Method = t.Method
	cur.URL = t.URL
	cur.UpdatedAt = time.Now()
	return nil
}

// DeleteTool removes a tool.
func (s *MemStore) DeleteTool(ctx context.Context, toolID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tools[toolID]; !ok {
		return false, nil
	}
	delete(s.tools, toolID)
	return true, nil
}
