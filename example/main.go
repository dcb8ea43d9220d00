package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/anhducmata/scenario"
	"github.com/anhducmata/scenario/memory"
	"github.com/anhducmata/scenario/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	ctx := context.Background()

	// Runs against postgres when DATABASE_URL is set, in memory otherwise.
	var store scenario.Store = memory.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Build a small flow: start → triage agent → support tool ──────
	start := scenario.NewNode(scenario.KindStarter, nil, scenario.Position{})
	triage := scenario.NewNode(scenario.KindAgent, &scenario.NodeRef{ID: "triage", Name: "Triage"}, scenario.Position{})
	lookup := scenario.NewNode(scenario.KindTool, &scenario.NodeRef{ID: "order-lookup", Name: "Order Lookup", Method: "GET", URL: "https://api.example.com/orders"}, scenario.Position{})

	data := scenario.ScenarioData{
		Nodes: scenario.AutoLayout([]scenario.Node{start, triage, lookup}),
		Edges: []scenario.Edge{
			scenario.NewEdge(start, triage),
			scenario.NewEdge(triage, lookup),
		},
	}

	created, err := store.CreateScenario(ctx, "Support Flow", "Routes callers to the right place", "demo-user", data)
	if err != nil {
		log.Fatalf("create scenario: %v", err)
	}
	fmt.Println("scenario created at version", created.CurrentVersion)
	printJSON(created)

	// ── Update: rename; the outgoing state is snapshotted as v1 ──────
	name := "Support Flow v2"
	updated, err := store.UpdateScenario(ctx, created.ID, scenario.UpdateFields{Name: &name}, "demo-user", "rename")
	if err != nil {
		log.Fatalf("update: %v", err)
	}
	fmt.Println("\nupdated to version", updated.CurrentVersion)

	versions, err := store.ListVersions(ctx, created.ID)
	if err != nil {
		log.Fatalf("list versions: %v", err)
	}
	fmt.Printf("history (%d):\n", len(versions))
	printJSON(versions)

	// ── Restore v1: additive, the pre-restore state becomes v2 ───────
	restored, err := store.RestoreVersion(ctx, created.ID, 1, "demo-user")
	if err != nil {
		log.Fatalf("restore: %v", err)
	}
	fmt.Println("\nrestored, now at version", restored.CurrentVersion)

	// ── Cleanup ──────────────────────────────────────────────────────
	if _, err := store.DeleteScenario(ctx, created.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\nscenario deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
