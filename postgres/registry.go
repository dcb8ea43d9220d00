package postgres

import (
	"context"
	"fmt"

	"github.com/anhducmata/scenario"
	"github.com/google/uuid"
)

// CreateAgent inserts a new agent definition.
// If a.ID is empty, a UUID is auto-generated.
func (s *PGStore) CreateAgent(ctx context.Context, a *scenario.Agent) (*scenario.Agent, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO agents (id, owner_id, name, description, instructions, avatar, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		a.ID, a.Owner, a.Name, a.Description, a.Instructions, a.Avatar, a.IsPublic,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scenario: insert agent: %w", err)
	}

	return a, nil
}

// GetAgent fetches a single agent by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetAgent(ctx context.Context, agentID string) (*scenario.Agent, error) {
	var a scenario.Agent
	err := s.db.QueryRow(ctx,
		`SELECT id, owner_id, name, description, instructions, avatar, is_public, created_at, updated_at
		 FROM agents WHERE id = $1`, agentID,
	).Scan(&a.ID, &a.Owner, &a.Name, &a.Description, &a.Instructions, &a.Avatar, &a.IsPublic, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scenario: get agent: %w", err)
	}

	return &a, nil
}

// ListAgents returns the owner's agents plus public ones, newest first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListAgents(ctx context.Context, owner string) ([]scenario.Agent, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, name, description, instructions, avatar, is_public, created_at, updated_at
		 FROM agents WHERE owner_id = $1 OR is_public ORDER BY updated_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("scenario: list agents: %w", err)
	}
	defer rows.Close()

	agents := []scenario.Agent{}
	for rows.Next() {
		var a scenario.Agent
		if err := rows.Scan(&a.ID, &a.Owner, &a.Name, &a.Description, &a.Instructions, &a.Avatar, &a.IsPublic, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scenario: scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenario: rows agents: %w", err)
	}

	return agents, nil
}

// UpdateAgent updates an existing agent's editable fields.
// Returns ErrAgentNotFound if the agent doesn't exist.
func (s *PGStore) UpdateAgent(ctx context.Context, a *scenario.Agent) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE agents SET name = $1, description = $2, instructions = $3, avatar = $4, is_public = $5, updated_at = NOW()
		 WHERE id = $6`,
		a.Name, a.Description, a.Instructions, a.Avatar, a.IsPublic, a.ID,
	)
	if err != nil {
		return fmt.Errorf("scenario: update agent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return scenario.ErrAgentNotFound
	}
	return nil
}

// DeleteAgent deletes an agent by its ID.
// Returns whether a row was actually deleted.
func (s *PGStore) DeleteAgent(ctx context.Context, agentID string) (bool, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM agents WHERE id = $1`, agentID)
	if err != nil {
		return false, fmt.Errorf("scenario: delete agent: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// CreateTool inserts a new tool definition.
// If t.ID is empty, a UUID is auto-generated.
func (s *PGStore) CreateTool(ctx context.Context, t *scenario.Tool) (*scenario.Tool, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO tools (id, owner_id, name, description, method, url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		t.ID, t.Owner, t.Name, t.Description, t.Method, t.URL,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scenario: insert tool: %w", err)
	}

	return t, nil
}

// GetTool fetches a single tool by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetTool(ctx context.Context, toolID string) (*scenario.Tool, error) {
	var t scenario.Tool
	err := s.db.QueryRow(ctx,
		`SELECT id, owner_id, name, description, method, url, created_at, updated_at
		 FROM tools WHERE id = $1`, toolID,
	).Scan(&t.ID, &t.Owner, &t.Name, &t.Description, &t.Method, &t.URL, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scenario: get tool: %w", err)
	}

	return &t, nil
}

// ListTools returns all tools for an owner, newest first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListTools(ctx context.Context, owner string) ([]scenario.Tool, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, name, description, method, url, created_at, updated_at
		 FROM tools WHERE owner_id = $1 ORDER BY updated_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("scenario: list tools: %w", err)
	}
	defer rows.Close()

	tools := []scenario.Tool{}
	for rows.Next() {
		var t scenario.Tool
		if err := rows.Scan(&t.ID, &t.Owner, &t.Name, &t.Description, &t.Method, &t.URL, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scenario: scan tool: %w", err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenario: rows tools: %w", err)
	}

	return tools, nil
}

// UpdateTool updates an existing tool's editable fields.
// Returns ErrToolNotFound if the tool doesn't exist.
func (s *PGStore) UpdateTool(ctx context.Context, t *scenario.Tool) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE tools SET name = $1, description = $2, method = $3, url = $4, updated_at = NOW()
		 WHERE id = $5`,
		t.Name, t.Description, t.Method, t.URL, t.ID,
	)
	if err != nil {
		return fmt.Errorf("scenario: update tool: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return scenario.ErrToolNotFound
	}
	return nil
}

// DeleteTool deletes a tool by its ID.
// Returns whether a row was actually deleted.
func (s *PGStore) DeleteTool(ctx context.Context, toolID string) (bool, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM tools WHERE id = $1`, toolID)
	if err != nil {
		return false, fmt.Errorf("scenario: delete tool: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
