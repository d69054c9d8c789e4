// Package runner sequences the provider pipelines, applies the
// per-provider wall-clock timeout, and prints the final audit. A failing
// pipeline never stops the ones after it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AscendedCode/ecuador-macro/internal/audit"
	"github.com/AscendedCode/ecuador-macro/internal/infrastructure"
	"github.com/AscendedCode/ecuador-macro/internal/pipeline"
)

// Status is a provider pipeline's terminal state.
type Status string

const (
	StatusOK      Status = "OK"
	StatusError   Status = "ERROR"
	StatusTimeout Status = "TIMEOUT"
	StatusPanic   Status = "FAILED"
)

// Provider couples a display name, an output directory and a runnable
// pipeline.
type Provider struct {
	Name     string
	Dir      string
	Pipeline *pipeline.Pipeline
}

// Runner executes providers one after another.
type Runner struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
	out       io.Writer
}

// New creates a runner. out receives the banner, progress and audit table;
// timeout bounds each provider's wall-clock run.
func New(providers []Provider, timeout time.Duration, logger *slog.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		out:       out,
	}
}

// Run executes every provider and prints the audit summary. It returns an
// error only when no provider finished OK.
func (r *Runner) Run(ctx context.Context) error {
	ctx = infrastructure.WithRunID(ctx, uuid.NewString())
	logger := infrastructure.LoggerFromContext(ctx, r.logger)

	fmt.Fprintf(r.out, "%s\n  ECUADOR MACRO — DATA EXTRACTION PIPELINE\n%s\n",
		strings.Repeat("=", 70), strings.Repeat("=", 70))

	type outcome struct {
		status   Status
		elapsed  time.Duration
		failures []pipeline.Failure
	}
	outcomes := make([]outcome, len(r.providers))

	for i, prov := range r.providers {
		fmt.Fprintf(r.out, "\n%s\n  Running: %s\n%s\n\n",
			strings.Repeat("-", 70), prov.Name, strings.Repeat("-", 70))

		status, result := r.runOne(ctx, prov, logger)
		outcomes[i] = outcome{status: status, elapsed: result.Elapsed, failures: result.Failures}

		logger.Info("provider finished",
			slog.String("provider", prov.Name),
			slog.String("status", string(status)),
			slog.Duration("elapsed", result.Elapsed))
	}

	entries := make([]audit.Entry, len(r.providers))
	succeeded := 0
	var failures []pipeline.Failure
	for i, prov := range r.providers {
		entries[i] = audit.Entry{
			Name:    prov.Name,
			Status:  string(outcomes[i].status),
			Stats:   audit.CountCSVs(prov.Dir),
			Elapsed: outcomes[i].elapsed,
		}
		if outcomes[i].status == StatusOK {
			succeeded++
		}
		failures = append(failures, outcomes[i].failures...)
	}

	audit.PrintSummary(r.out, entries)
	printFailures(r.out, failures)

	if succeeded == 0 && len(r.providers) > 0 {
		return errors.New("all provider pipelines failed")
	}
	return nil
}

// runOne runs a single pipeline under the per-provider timeout, converting
// panics and context expiry into terminal statuses.
func (r *Runner) runOne(ctx context.Context, prov Provider, logger *slog.Logger) (status Status, result *pipeline.Result) {
	pctx := ctx
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		pctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	result = &pipeline.Result{}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("provider pipeline panicked",
				slog.String("provider", prov.Name),
				slog.Any("panic", rec))
			status = StatusPanic
			result.Elapsed = time.Since(start)
		}
	}()

	res, err := prov.Pipeline.Run(pctx)
	if res != nil {
		result = res
	}

	switch {
	case err == nil:
		return StatusOK, result
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("provider pipeline timed out",
			slog.String("provider", prov.Name),
			slog.Duration("timeout", r.timeout))
		return StatusTimeout, result
	default:
		logger.Error("provider pipeline failed",
			slog.String("provider", prov.Name),
			slog.String("error", err.Error()))
		return StatusError, result
	}
}

// printFailures renders the consolidated per-indicator failure list.
func printFailures(w io.Writer, failures []pipeline.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\n  %d series failed:\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "    %s: %s — %s\n", f.Code, f.Label, f.Reason)
	}
}
