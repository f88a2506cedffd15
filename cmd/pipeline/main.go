// Command pipeline runs one query through the full classify -> plan ->
// execute path against in-memory stores, for manual inspection and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goa.design/clue/log"

	"github.com/junkim100/homebrew-trace-sub001/actions"
	"github.com/junkim100/homebrew-trace-sub001/classifier"
	"github.com/junkim100/homebrew-trace-sub001/config"
	"github.com/junkim100/homebrew-trace-sub001/executor"
	"github.com/junkim100/homebrew-trace-sub001/llm"
	"github.com/junkim100/homebrew-trace-sub001/planner"
	"github.com/junkim100/homebrew-trace-sub001/runtime/agent/telemetry"
	"github.com/junkim100/homebrew-trace-sub001/store"
	"github.com/junkim100/homebrew-trace-sub001/websearch"
)

func main() {
	var (
		queryF = flag.String("query", "What have I been doing while listening to music this week?", "query to run through the pipeline")
		dbgF   = flag.Bool("debug", false, "log request and response bodies")
	)
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.Load()
	logger := telemetry.NewClueLogger()

	notes, aggregates, graph := seedStores()

	deps := actions.Dependencies{
		Notes:      notes,
		Aggregates: aggregates,
		Graph:      graph,
		LLMClient:  buildLLMClient(cfg),
		WebSearch:  websearch.NewTavilyProvider(cfg.TavilyAPIKey),
		Logger:     logger,
	}
	registry := actions.NewDefaultRegistry(deps)

	classify := classifier.New()
	plan := planner.New(deps.LLMClient, planner.WithLogger(logger))
	exec := executor.New(registry, executor.WithLogger(logger), executor.WithPlanTimeout(cfg.PlanTimeout))

	query := *queryF
	classification := classify.Classify(query)
	log.Print(ctx, log.KV{K: "query_type", V: string(classification.QueryType)}, log.KV{K: "is_complex", V: classification.IsComplex})

	if !classification.IsComplex {
		log.Print(ctx, log.KV{K: "result", V: "simple query, no plan needed"})
		return
	}

	queryPlan, err := plan.PlanForType(ctx, query, classification.QueryType, "")
	if err != nil {
		log.Fatal(ctx, err)
	}
	log.Print(ctx, log.KV{K: "plan_id", V: queryPlan.PlanID}, log.KV{K: "steps", V: len(queryPlan.Steps)})

	result := exec.Execute(ctx, queryPlan)
	log.Print(ctx,
		log.KV{K: "success", V: result.Success},
		log.KV{K: "steps_completed", V: result.StepsCompleted},
		log.KV{K: "steps_failed", V: result.StepsFailed},
		log.KV{K: "notes", V: len(result.MergedNotes)},
		log.KV{K: "patterns", V: len(result.Patterns)},
	)
	fmt.Println(result.ToMap())
}

func buildLLMClient(cfg config.Config) llm.Client {
	if cfg.LLMProvider == config.LLMProviderOpenAI {
		return llm.NewOpenAIClient(llm.WithOpenAIAPIKey(cfg.OpenAIAPIKey))
	}
	return llm.NewAnthropicClient(llm.WithAnthropicAPIKey(cfg.AnthropicAPIKey))
}

// seedStores builds small in-memory stores with a handful of activity notes
// so the demo CLI has something to retrieve without a real database.
func seedStores() (*store.InMemoryNoteStore, *store.InMemoryAggregateStore, *store.InMemoryGraphStore) {
	now := time.Now().UTC()
	notes := &store.InMemoryNoteStore{
		Notes: []store.Note{
			{NoteID: "n1", StartTS: now.Add(-2 * time.Hour).Format(time.RFC3339), Summary: "Listened to lo-fi focus music while reading a paper on quantum error correction", Categories: []string{"music", "research"}},
			{NoteID: "n2", StartTS: now.Add(-26 * time.Hour).Format(time.RFC3339), Summary: "Studied Go concurrency patterns with jazz playing in the background", Categories: []string{"study", "music"}},
			{NoteID: "n3", StartTS: now.Add(-50 * time.Hour).Format(time.RFC3339), Summary: "Worked out, no music", Categories: []string{"exercise"}},
		},
	}
	aggregates := &store.InMemoryAggregateStore{
		Tables: map[string][]store.AggregateItem{
			"app":      {{Key: "Spotify", Value: 180}, {Key: "VS Code", Value: 240}},
			"category": {{Key: "music", Value: 180}, {Key: "study", Value: 300}},
		},
	}
	graph := &store.InMemoryGraphStore{
		Entities: map[string]store.Entity{
			"music": {EntityID: "e1", EntityType: "topic", CanonicalName: "music"},
			"study":  {EntityID: "e2", EntityType: "topic", CanonicalName: "study"},
		},
		Edges: map[string][]string{
			"e1": {"e2"},
		},
		Notes: map[string][]store.Note{
			"e1": notes.Notes,
		},
	}
	return notes, aggregates, graph
}
