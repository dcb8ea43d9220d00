package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/anhducmata/scenario"
	"github.com/google/uuid"
)

const scenarioCols = `id, owner_id, name, description, is_active, data, current_version, created_at, updated_at`

func scanScenario(row interface{ Scan(...any) error }) (*scenario.Scenario, error) {
	var sc scenario.Scenario
	err := row.Scan(&sc.ID, &sc.Owner, &sc.Name, &sc.Description, &sc.IsActive,
		&sc.Data, &sc.CurrentVersion, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// CreateScenario persists a new scenario at version 1. No version snapshot
// is written: there is nothing prior to snapshot.
func (s *PGStore) CreateScenario(ctx context.Context, name, description, owner string, data scenario.ScenarioData) (*scenario.Scenario, error) {
	id := uuid.NewString()
	row := s.db.QueryRow(ctx,
		`INSERT INTO scenarios (id, owner_id, name, description, data)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+scenarioCols,
		id, owner, name, description, data,
	)
	sc, err := scanScenario(row)
	if err != nil {
		return nil, fmt.Errorf("scenario: insert scenario: %w", err)
	}
	return sc, nil
}

// GetScenario fetches a scenario by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetScenario(ctx context.Context, scenarioID string) (*scenario.Scenario, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+scenarioCols+` FROM scenarios WHERE id = $1`, scenarioID)
	sc, err := scanScenario(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scenario: get scenario: %w", err)
	}
	return sc, nil
}

// ListScenarios returns all scenarios belonging to owner, newest first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListScenarios(ctx context.Context, owner string) ([]scenario.Scenario, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+scenarioCols+` FROM scenarios WHERE owner_id = $1 ORDER BY updated_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("scenario: list scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := []scenario.Scenario{}
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scenario: scan scenario: %w", err)
		}
		scenarios = append(scenarios, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scenario: rows scenarios: %w", err)
	}

	return scenarios, nil
}

// UpdateScenario applies the non-nil fields and bumps current_version by
// one, snapshotting the outgoing state into scenario_versions first. The
// snapshot and the row update commit together or not at all: a failure
// anywhere in between leaves the scenario untouched.
//
// There is no expected-version precondition; concurrent writers both
// succeed, each leaving its own snapshot, last write wins.
func (s *PGStore) UpdateScenario(ctx context.Context, scenarioID string, fields scenario.UpdateFields, owner, changeDescription string) (*scenario.Scenario, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the row so the snapshot and the bump see the same state.
	cur, err := scanScenario(tx.QueryRow(ctx,
		`SELECT `+scenarioCols+` FROM scenarios WHERE id = $1 FOR UPDATE`, scenarioID))
	if err != nil {
		if isNoRows(err) {
			return nil, scenario.ErrScenarioNotFound
		}
		return nil, fmt.Errorf("scenario: lock scenario: %w", err)
	}

	// Snapshot the state about to be overwritten, under its outgoing
	// version number.
	if _, err := tx.Exec(ctx,
		`INSERT INTO scenario_versions (scenario_id, version_number, data, created_by, change_description)
		 VALUES ($1, $2, $3, $4, $5)`,
		cur.ID, cur.CurrentVersion, cur.Data, owner, changeDescription,
	); err != nil {
		return nil, fmt.Errorf("scenario: insert version: %w", err)
	}

	// Apply only the fields present in the partial update.
	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if fields.IsActive != nil {
		add("is_active", *fields.IsActive)
	}
	if fields.Data != nil {
		add("data", *fields.Data)
	}
	add("current_version", cur.CurrentVersion+1)
	args = append(args, scenarioID)

	updated, err := scanScenario(tx.QueryRow(ctx,
		fmt.Sprintf(`UPDATE scenarios SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s`,
			strings.Join(set, ", "), len(args), scenarioCols),
		args...,
	))
	if err != nil {
		return nil, fmt.Errorf("scenario: update scenario: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("scenario: commit: %w", err)
	}

	return updated, nil
}

// DeleteScenario removes a scenario; its versions cascade via the FK.
// Returns whether a row was actually deleted.
func (s *PGStore) DeleteScenario(ctx context.Context, scenarioID string) (bool, error) {
	ct, err := s.db.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, scenarioID)
	if err != nil {
		return false, fmt.Errorf("scenario: delete scenario: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
