package generate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/wptgen/wptgen/internal/delivery"
	"github.com/wptgen/wptgen/internal/logging"
	"github.com/wptgen/wptgen/internal/observability"
	"github.com/wptgen/wptgen/internal/spec"
)

type Options struct {
	OutputDir string
	Extension string
	Template  string
	WriteJSON bool
	DryRun    bool
}

type Generator struct {
	opts     Options
	renderer *Renderer
	logger   *slog.Logger
	genLog   *logging.GenerationLogger
	metrics  *observability.Metrics
	runID    string
	now      func() time.Time
}

type Summary struct {
	RunID      string
	TestCases  int
	Overridden int
	Written    []string
}

func New(opts Options, renderer *Renderer) *Generator {
	return &Generator{
		opts:     opts,
		renderer: renderer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		runID:    uuid.NewString(),
		now:      time.Now,
	}
}

func (g *Generator) SetLogger(logger *slog.Logger) {
	g.logger = logger
}

func (g *Generator) SetGenerationLogger(genLog *logging.GenerationLogger) {
	g.genLog = genLog
}

func (g *Generator) SetMetrics(metrics *observability.Metrics) {
	g.metrics = metrics
}

func (g *Generator) RunID() string {
	return g.runID
}

func (g *Generator) Run(ctx context.Context, s *spec.Spec) (Summary, error) {
	summary := Summary{RunID: g.runID}

	cases, err := Expand(s)
	if err != nil {
		g.metrics.ObserveError("expand")
		return summary, err
	}
	g.logger.Info("spec expanded", "run_id", g.runID, "spec", s.Path(), "test_cases", len(cases))

	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		contexts := contextRecords(tc.Expansions)
		for _, c := range contexts {
			g.metrics.ObserveContext(c.SourceContextType, c.Resolved, c.Skipped)
		}

		outPath := filepath.Join(g.opts.OutputDir, tc.Scenario, tc.Name+g.opts.Extension)
		if !g.opts.DryRun {
			if err := g.write(tc, outPath); err != nil {
				g.metrics.ObserveError("write")
				return summary, err
			}
			summary.Written = append(summary.Written, outPath)
		}

		g.metrics.ObserveTestCase(tc.Scenario)
		summary.TestCases++
		if tc.Overridden {
			summary.Overridden++
		}
		g.logger.Debug("test case generated", "name", tc.Name, "scenario", tc.Scenario, "path", outPath)

		record := logging.Record{
			Timestamp:         g.now().UTC(),
			RunID:             g.runID,
			Scenario:          tc.Scenario,
			SourceContextList: tc.SourceContextListKey,
			TestCase:          tc.Name,
			OutputPath:        outPath,
			Overridden:        tc.Overridden,
			Contexts:          contexts,
		}
		if err := g.genLog.Write(record); err != nil {
			return summary, fmt.Errorf("write generation log: %w", err)
		}
	}

	return summary, nil
}

func (g *Generator) write(tc TestCase, outPath string) error {
	rendered, err := g.renderer.Render(g.opts.Template, tc)
	if err != nil {
		return fmt.Errorf("render %s: %w", tc.Name, err)
	}
	if err := WriteFile(outPath, rendered); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	if !g.opts.WriteJSON {
		return nil
	}

	data, err := MarshalCase(tc)
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(g.opts.OutputDir, tc.Scenario, tc.Name+".json")
	if err := WriteFile(jsonPath, data); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	return nil
}

func contextRecords(expansions []delivery.Expansion) []logging.ContextRecord {
	out := make([]logging.ContextRecord, 0, len(expansions))
	for _, exp := range expansions {
		rec := logging.ContextRecord{
			SourceContextType: exp.Context.Type,
			Resolved:          len(exp.Context.PolicyDeliveries),
		}
		for _, skip := range exp.Skipped {
			if rec.Skipped == nil {
				rec.Skipped = map[string]int{}
			}
			rec.Skipped[string(skip.Reason)]++
		}
		out = append(out, rec)
	}
	return out
}
