// Package run orchestrates a comparison: the template is introspected once,
// then every target flows through introspection, diffing, and synthesis on a
// bounded worker pool. Failures never cross target boundaries; each target
// ends in DONE or FAILED and the run itself always completes.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemalign/schemalign/internal/config"
	"github.com/schemalign/schemalign/internal/diff"
	"github.com/schemalign/schemalign/internal/inspect"
	"github.com/schemalign/schemalign/internal/ir"
	"github.com/schemalign/schemalign/internal/report"
	"github.com/schemalign/schemalign/internal/synth"
)

// State tracks one target through the pipeline. FAILED is terminal and
// reachable from every step.
type State string

const (
	StatePending       State = "PENDING"
	StateIntrospecting State = "INTROSPECTING"
	StateDiffing       State = "DIFFING"
	StateSynthesizing  State = "SYNTHESIZING"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

// Runner executes comparison runs for one configuration.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
}

// New creates a runner. The logger is a required collaborator; orchestration
// never logs through globals.
func New(cfg *config.Config, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run compares every configured target against the template and returns one
// report per target, ordered by target name. Failures, the template's
// included, are recorded in the reports rather than returned; deciding what
// a failure means for the process is the caller's call.
func (r *Runner) Run(ctx context.Context) []*report.TargetReport {
	names := r.cfg.TargetNames()

	template, tmplNotFound, err := r.introspectTemplate(ctx)
	if err != nil {
		r.log.Error("template introspection failed",
			"database", r.cfg.TemplateDatabase.Name,
			"error", err)
		reports := make([]*report.TargetReport, len(names))
		for i, name := range names {
			reports[i] = failedReport(name, fmt.Errorf("template introspection failed: %w", err))
		}
		return reports
	}

	reports := make([]*report.TargetReport, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			reports[i] = r.compareTarget(gctx, name, template, tmplNotFound)
			return nil
		})
	}
	// Workers record failures in their own report and always return nil
	_ = g.Wait()

	return reports
}

func (r *Runner) introspectTemplate(ctx context.Context) (*ir.Schema, []string, error) {
	db := r.cfg.TemplateDatabase
	d, err := db.Dialect()
	if err != nil {
		return nil, nil, err
	}

	r.log.Info("introspecting template", "database", db.Name, "dialect", string(d))
	conn, err := inspect.Connect(ctx, db, r.connectTimeout())
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	schema, notFound, err := inspect.BuildSchema(ctx, inspect.NewInspector(conn), d, r.cfg.Tables, r.cfg.AllTables)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range notFound {
		r.log.Warn("configured table missing from template", "table", t)
	}
	return schema, notFound, nil
}

// compareTarget runs the full pipeline for one target. Every failure is
// converted into a FAILED report at this boundary.
func (r *Runner) compareTarget(ctx context.Context, name string, template *ir.Schema, tmplNotFound []string) *report.TargetReport {
	log := r.log.With("target", name)
	fail := func(err error) *report.TargetReport {
		log.Error("target failed", "error", err)
		return failedReport(name, err)
	}

	// Cancellation stops targets that have not started; in-flight ones run
	// to completion or time out on their own
	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("not started: %w", err))
	}

	db := r.cfg.TargetDatabases[name]
	d, err := db.Dialect()
	if err != nil {
		return fail(err)
	}

	rep := &report.TargetReport{Target: name, Dialect: d, State: string(StateIntrospecting)}
	log.Info("introspecting target", "dialect", string(d))

	conn, err := inspect.Connect(ctx, db, r.connectTimeout())
	if err != nil {
		return fail(err)
	}
	defer conn.Close()

	schema, notFound, err := inspect.BuildSchema(ctx, inspect.NewInspector(conn), d, r.cfg.Tables, r.cfg.AllTables)
	if err != nil {
		return fail(err)
	}

	rep.State = string(StateDiffing)
	rep.Tables = diff.Compare(template, schema)

	rep.State = string(StateSynthesizing)
	rep.Statements = synth.Synthesize(d, rep.Tables)

	rep.SkippedTables = missingEverywhere(r.cfg.Tables, tmplNotFound, notFound)
	summary := report.Summarize(rep.Tables)
	rep.Summary = &summary
	rep.State = string(StateDone)

	log.Info("target compared",
		"created", summary.Created,
		"modified", summary.Modified,
		"renamed", summary.Renamed,
		"identical", summary.Identical)
	return rep
}

func (r *Runner) connectTimeout() time.Duration {
	return time.Duration(r.cfg.ConnectTimeout) * time.Second
}

func failedReport(name string, err error) *report.TargetReport {
	return &report.TargetReport{Target: name, State: string(StateFailed), Error: err.Error()}
}

// missingEverywhere returns the configured tables found in neither the
// template nor the target, in configuration order. A table absent from only
// one side is a real diff, not a skip; wildcard selection never skips.
func missingEverywhere(configured, tmplNotFound, tgtNotFound []string) []string {
	if len(tmplNotFound) == 0 || len(tgtNotFound) == 0 {
		return nil
	}
	tmpl := make(map[string]struct{}, len(tmplNotFound))
	for _, t := range tmplNotFound {
		tmpl[t] = struct{}{}
	}
	tgt := make(map[string]struct{}, len(tgtNotFound))
	for _, t := range tgtNotFound {
		tgt[t] = struct{}{}
	}

	var skipped []string
	for _, t := range configured {
		if _, inTmpl := tmpl[t]; !inTmpl {
			continue
		}
		if _, inTgt := tgt[t]; !inTgt {
			continue
		}
		skipped = append(skipped, t)
	}
	return skipped
}
