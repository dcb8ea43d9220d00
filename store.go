package scenario

import (
	"context"
	"errors"
)

var (
	ErrScenarioNotFound = errors.New("scenario: scenario not found")
	ErrVersionNotFound  = errors.New("scenario: version not found")
	ErrAgentNotFound    = errors.New("scenario: agent not found")
	ErrToolNotFound     = errors.New("scenario: tool not found")
)

// Store defines the contract for persisting scenarios, their version
// history, and the agent/tool registries the graphs reference.
//
// Get-style lookups return nil, nil when the row is absent; mutations that
// require an existing row return the matching sentinel error instead.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Scenarios
	CreateScenario(ctx context.Context, name, description, owner string, data ScenarioData) (*Scenario, error)
	GetScenario(ctx context.Context, scenarioID string) (*Scenario, error)
	ListScenarios(ctx context.Context, owner string) ([]Scenario, error)
	UpdateScenario(ctx context.Context, scenarioID string, fields UpdateFields, owner, changeDescription string) (*Scenario, error)
	DeleteScenario(ctx context.Context, scenarioID string) (bool, error)

	// Versions
	ListVersions(ctx context.Context, scenarioID string) ([]ScenarioVersion, error)
	GetVersion(ctx context.Context, scenarioID string, versionNumber int) (*ScenarioVersion, error)
	RestoreVersion(ctx context.Context, scenarioID string, versionNumber int, owner string) (*Scenario, error)

	// Agents
	CreateAgent(ctx context.Context, a *Agent) (*Agent, error)
	GetAgent(ctx context.Context, agentID string) (*Agent, error)
	ListAgents(ctx context.Context, owner string) ([]Agent, error)
	UpdateAgent(ctx context.Context, a *Agent) error
	DeleteAgent(ctx context.Context, agentID string) (bool, error)

	// Tools
	CreateTool(ctx context.Context, t *Tool) (*Tool, error)
	GetTool(ctx context.Context, toolID string) (*Tool, error)
	ListTools(ctx context.Context, owner string) ([]Tool, error)
	UpdateTool(ctx context.Context, t *Tool) error
	DeleteTool(ctx context.Context, toolID string) (bool, error)
}
