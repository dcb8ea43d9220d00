package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scenarios (
    id              TEXT PRIMARY KEY,
    owner_id        TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    data            JSONB NOT NULL DEFAULT '{"nodes":[],"edges":[]}',
    current_version INTEGER NOT NULL DEFAULT 1,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS scenario_versions (
    scenario_id        TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
    version_number     INTEGER NOT NULL,
    data               JSONB NOT NULL,
    created_by         TEXT NOT NULL,
    change_description TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (scenario_id, version_number)
);

CREATE TABLE IF NOT EXISTS agents (
    id           TEXT PRIMARY KEY,
    owner_id     TEXT NOT NULL,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    instructions TEXT NOT NULL DEFAULT '',
    avatar       TEXT NOT NULL DEFAULT '',
    is_public    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tools (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    method      TEXT NOT NULL DEFAULT 'GET',
    url         TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_scenarios_owner        ON scenarios(owner_id);
CREATE INDEX IF NOT EXISTS idx_scenario_versions_sid  ON scenario_versions(scenario_id);
CREATE INDEX IF NOT EXISTS idx_agents_owner           ON agents(owner_id);
CREATE INDEX IF NOT EXISTS idx_tools_owner            ON tools(owner_id);
`

// CreateSchema creates the scenario, version, agent, and tool tables if
// they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops all scenario-related tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS scenario_versions, scenarios, agents, tools CASCADE;`)
	return err
}
