package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/anhducmata/scenario"
	"github.com/anhducmata/scenario/draft"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/utils/v2"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// ownerKey is the Locals slot the identity middleware fills in.
const ownerKey = "owner"

func owner(c fiber.Ctx) string {
	v, _ := c.Locals(ownerKey).(string)
	return v
}

// param returns a route parameter detached from the request buffer. Fiber
// hands out zero-copy strings that the next request overwrites, so anything
// that outlives the handler (store keys, persisted ids) must be copied.
func param(c fiber.Ctx, key string) string {
	return utils.CopyString(c.Params(key))
}

// requireIdentity rejects requests without the opaque user id supplied by
// the auth proxy in front of this service. The id is copied out of the
// request buffer before it is stored: it ends up persisted as the owner of
// created rows.
func requireIdentity(c fiber.Ctx) error {
	id := c.Get("X-User-ID")
	if id == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing identity"})
	}
	c.Locals(ownerKey, utils.CopyString(id))
	return c.Next()
}

// requestLogger tags every request with a ULID and logs its outcome.
func requestLogger(c fiber.Ctx) error {
	reqID := ulid.Make().String()
	c.Set("X-Request-ID", reqID)

	start := time.Now()
	err := c.Next()

	log.Info().
		Str("request_id", reqID).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request")
	return err
}

// newApp wires all routes over the given store. completer may be nil, in
// which case instruction drafting answers 503.
func newApp(store scenario.Store, completer draft.Completer) *fiber.App {
	app := fiber.New()
	app.Use(requestLogger)

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "schema creation failed"})
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "schema drop failed"})
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	api := app.Group("", requireIdentity)

	// getOwned loads a scenario and hides it when the caller doesn't own
	// it: not-owned and absent are indistinguishable to the client. On a
	// nil scenario the response has already been written and the handler
	// must return the accompanying error as-is.
	getOwned := func(c fiber.Ctx) (*scenario.Scenario, error) {
		sc, err := store.GetScenario(c.Context(), param(c, "id"))
		if err != nil {
			return nil, c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if sc == nil || sc.Owner != owner(c) {
			return nil, c.Status(404).JSON(fiber.Map{"error": "scenario not found"})
		}
		return sc, nil
	}

	// ── Scenarios ─────────────────────────────────────────────────────
	api.Get("/scenarios", func(c fiber.Ctx) error {
		scenarios, err := store.ListScenarios(c.Context(), owner(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(scenarios)
	})

	api.Post("/scenarios", func(c fiber.Ctx) error {
		var body struct {
			Name        string                 `json:"name"`
			Description string                 `json:"description"`
			Data        *scenario.ScenarioData `json:"data"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if body.Name == "" || body.Data == nil {
			return c.Status(400).JSON(fiber.Map{"error": "name and data are required"})
		}
		sc, err := store.CreateScenario(c.Context(), body.Name, body.Description, owner(c), *body.Data)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.Status(201).JSON(sc)
	})

	api.Get("/scenarios/:id", func(c fiber.Ctx) error {
		sc, err := getOwned(c)
		if sc == nil {
			return err
		}
		return c.JSON(sc)
	})

	api.Put("/scenarios/:id", func(c fiber.Ctx) error {
		var body struct {
			scenario.UpdateFields
			ChangeDescription string `json:"change_description"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if sc, err := getOwned(c); sc == nil {
			return err
		}
		sc, err := store.UpdateScenario(c.Context(), param(c, "id"), body.UpdateFields, owner(c), body.ChangeDescription)
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "scenario not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(sc)
	})

	api.Delete("/scenarios/:id", func(c fiber.Ctx) error {
		if sc, err := getOwned(c); sc == nil {
			return err
		}
		deleted, err := store.DeleteScenario(c.Context(), param(c, "id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if !deleted {
			return c.Status(404).JSON(fiber.Map{"error": "scenario not found"})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// ── Versions ──────────────────────────────────────────────────────
	api.Get("/scenarios/:id/versions", func(c fiber.Ctx) error {
		if sc, err := getOwned(c); sc == nil {
			return err
		}
		if q := c.Query("version"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid version"})
			}
			v, err := store.GetVersion(c.Context(), param(c, "id"), n)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
			}
			if v == nil {
				return c.Status(404).JSON(fiber.Map{"error": "version not found"})
			}
			return c.JSON(v)
		}
		versions, err := store.ListVersions(c.Context(), param(c, "id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(versions)
	})

	api.Post("/scenarios/:id/restore", func(c fiber.Ctx) error {
		var body struct {
			Version int `json:"version"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if sc, err := getOwned(c); sc == nil {
			return err
		}
		sc, err := store.RestoreVersion(c.Context(), param(c, "id"), body.Version, owner(c))
		if errors.Is(err, scenario.ErrVersionNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "version not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(sc)
	})

	// ── Interactive edge validation ───────────────────────────────────
	// Answers whether source → target is a legal connection for the
	// current graph and, when it is, returns the edge the editor should
	// append. Nothing is persisted here; the editor saves via PUT.
	api.Post("/scenarios/:id/connect", func(c fiber.Ctx) error {
		var body struct {
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		sc, err := getOwned(c)
		if sc == nil {
			return err
		}
		if !scenario.CanConnect(&sc.Data, body.Source, body.Target) {
			return c.Status(422).JSON(fiber.Map{"ok": false})
		}
		edge := scenario.NewEdge(*sc.Data.NodeByID(body.Source), *sc.Data.NodeByID(body.Target))
		return c.JSON(fiber.Map{"ok": true, "edge": edge})
	})

	// ── Agents ────────────────────────────────────────────────────────
	api.Get("/agents", func(c fiber.Ctx) error {
		agents, err := store.ListAgents(c.Context(), owner(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(agents)
	})

	api.Post("/agents", func(c fiber.Ctx) error {
		var a scenario.Agent
		if err := c.Bind().JSON(&a); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if a.Name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "name is required"})
		}
		a.ID = ""
		a.Owner = owner(c)
		created, err := store.CreateAgent(c.Context(), &a)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.Status(201).JSON(created)
	})

	api.Post("/agents/draft", func(c fiber.Ctx) error {
		var body struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if body.Name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "name is required"})
		}
		if completer == nil {
			return c.Status(503).JSON(fiber.Map{"error": "drafting not configured"})
		}
		instructions, err := draft.Instructions(c.Context(), completer, body.Name, body.Description)
		if err != nil {
			return c.Status(502).JSON(fiber.Map{"error": "drafting failed"})
		}
		return c.JSON(fiber.Map{"instructions": instructions})
	})

	api.Get("/agents/:id", func(c fiber.Ctx) error {
		a, err := store.GetAgent(c.Context(), param(c, "id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if a == nil || (a.Owner != owner(c) && !a.IsPublic) {
			return c.Status(404).JSON(fiber.Map{"error": "agent not found"})
		}
		return c.JSON(a)
	})

	api.Put("/agents/:id", func(c fiber.Ctx) error {
		var a scenario.Agent
		if err := c.Bind().JSON(&a); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		a.ID = param(c, "id")
		cur, err := store.GetAgent(c.Context(), a.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if cur == nil || cur.Owner != owner(c) {
			return c.Status(404).JSON(fiber.Map{"error": "agent not found"})
		}
		if err := store.UpdateAgent(c.Context(), &a); err != nil {
			if errors.Is(err, scenario.ErrAgentNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "agent not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.SendStatus(204)
	})

	api.Delete("/agents/:id", func(c fiber.Ctx) error {
		cur, err := store.GetAgent(c.Context(), param(c, "id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if cur == nil || cur.Owner != owner(c) {
			return c.Status(404).JSON(fiber.Map{"error": "agent not found"})
		}
		if _, err := store.DeleteAgent(c.Context(), param(c, "id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	// ── Tools ─────────────────────────────────────────────────────────
	api.Get("/tools", func(c fiber.Ctx) error {
		tools, err := store.ListTools(c.Context(), owner(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(tools)
	})

	api.Post("/tools", func(c fiber.Ctx) error {
		var t scenario.Tool
		if err := c.Bind().JSON(&t); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if t.Name == "" || t.URL == "" {
			return c.Status(400).JSON(fiber.Map{"error": "name and url are required"})
		}
		t.ID = ""
		t.Owner = owner(c)
		created, err := store.CreateTool(c.Context(), &t)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.Status(201).JSON(created)
	})

	api.Get("/tools/:id", func(c fiber.Ctx) error {
		t, err := store.GetTool(c.Context(), param(c, "id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if t == nil || t.Owner != owner(c) {
			return c.Status(404).JSON(fiber.Map{"error": "tool not found"})
		}
		return c.JSON(t)
	})

	api.Put("/tools/:id", func(c fiber.Ctx) error {
		var t scenario.Tool
		if err := c.Bind().JSON(&t); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		t.ID = param(c, "id")
		cur, err := store.GetTool(c.Context(), t.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if cur == nil || cur.Owner != owner(c) {
			return c.Status(404).JSON(fiber.Map{"error": "tool not found"})
		}
		if err := store.UpdateTool(c.Context(), &t); err != nil {
			if errors.Is(err, scenario.ErrToolNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "tool not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.SendStatus(204)
	})

	api.Delete("/tools/:id", func(c fiber.Ctx) error {
		cur, err := store.GetTool(c.Context(), param(c, "id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		if cur == nil || cur.Owner != owner(c) {
			return c.Status(404).JSON(fiber.Map{"error": "tool not found"})
		}
		if _, err := store.DeleteTool(c.Context(), param(c, "id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "storage failure"})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	return app
}
