// Package pipeline drives one crawl over the source list: fetch, prompt,
// generate, parse, normalize, persist.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/extract"
	"github.com/sells-group/schools-cli/internal/llm"
	"github.com/sells-group/schools-cli/internal/model"
	"github.com/sells-group/schools-cli/internal/resilience"
	"github.com/sells-group/schools-cli/internal/scrape"
	"github.com/sells-group/schools-cli/internal/store"
)

// DefaultDelay is the pause between the end of one source and the start of
// the next.
const DefaultDelay = 5 * time.Second

// Generator produces model text for a prompt. *llm.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a Pipeline.
type Options struct {
	// Delay is slept after each source except the last. Zero disables it.
	Delay time.Duration
	// DryRun extracts records without writing them.
	DryRun          bool
	MaxContentChars int
	// Now supplies "today" for the prompt. Defaults to time.Now.
	Now func() time.Time
}

// Pipeline processes sources strictly one at a time.
type Pipeline struct {
	scraper scrape.Scraper
	gen     Generator
	store   store.Store
	prompt  extract.PromptBuilder
	opts    Options
}

// New creates a Pipeline. st may be nil when opts.DryRun is set.
func New(sc scrape.Scraper, gen Generator, st store.Store, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		scraper: sc,
		gen:     gen,
		store:   st,
		prompt:  extract.PromptBuilder{MaxContentChars: opts.MaxContentChars},
		opts:    opts,
	}
}

// Run processes every source in order. A source whose page cannot be fetched
// is skipped and its stored record is left as it was. A model failure still
// writes a record with every field unknown. A store error aborts the run.
func (p *Pipeline) Run(ctx context.Context, sources []model.Source) (*model.RunResult, error) {
	result := &model.RunResult{
		RunID:     uuid.New().String(),
		StartedAt: p.opts.Now().UTC(),
		Sources:   len(sources),
	}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting run",
		zap.Int("sources", len(sources)),
		zap.Bool("dry_run", p.opts.DryRun),
	)

	finish := func(status model.RunStatus) *model.RunResult {
		result.Status = status
		result.FinishedAt = p.opts.Now().UTC()
		log.Info("pipeline: run finished",
			zap.String("status", string(status)),
			zap.Int("fetched", result.Fetched),
			zap.Int("skipped", result.Skipped),
			zap.Int("model_failures", result.ModelFailures),
			zap.Int("written", result.Written),
			zap.Duration("duration", result.Duration()),
		)
		return result
	}

	for i, src := range sources {
		if i > 0 {
			if err := resilience.Sleep(ctx, p.opts.Delay); err != nil {
				return finish(model.RunStatusCancelled), eris.Wrap(err, "pipeline: wait between sources")
			}
		} else if err := ctx.Err(); err != nil {
			return finish(model.RunStatusCancelled), eris.Wrap(err, "pipeline: run cancelled")
		}

		srcLog := log.With(zap.String("name", src.Name), zap.String("link", src.Link), zap.Int("index", i))

		rec, err := p.Process(ctx, src)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return finish(model.RunStatusCancelled), eris.Wrap(ctx.Err(), "pipeline: run cancelled")
		case errors.Is(err, scrape.ErrSkip):
			srcLog.Warn("pipeline: skipping source", zap.Error(err))
			result.Skipped++
			result.SkippedLinks = append(result.SkippedLinks, src.Link)
			continue
		case errors.Is(err, llm.ErrGenerationFailed):
			// Process has already produced the empty record.
			srcLog.Warn("pipeline: model failed, writing empty record", zap.Error(err))
			result.ModelFailures++
		default:
			return finish(model.RunStatusFailed), err
		}
		result.Fetched++

		if p.opts.DryRun {
			srcLog.Info("pipeline: dry run, not persisting",
				zap.Stringp("venue", rec.Venue),
				zap.Stringp("start_date", rec.StartDate),
				zap.Stringp("end_date", rec.EndDate),
				zap.Stringp("application_deadline", rec.ApplicationDeadline),
				zap.Stringp("registration_status", rec.RegistrationStatus),
			)
			continue
		}

		if err := p.store.Upsert(ctx, *rec); err != nil {
			srcLog.Error("pipeline: persist failed", zap.Error(err))
			return finish(model.RunStatusFailed), eris.Wrapf(err, "pipeline: persist %s", src.Link)
		}
		result.Written++
		srcLog.Info("pipeline: record written")
	}

	return finish(model.RunStatusComplete), nil
}

// Process fetches one source and extracts its record. A fetch failure
// returns an error matching scrape.ErrSkip and no record. A model failure
// returns the all-unknown record together with an error matching
// llm.ErrGenerationFailed.
func (p *Pipeline) Process(ctx context.Context, src model.Source) (*model.Record, error) {
	page, err := p.scraper.Scrape(ctx, src.Link)
	if err != nil {
		if !errors.Is(err, scrape.ErrSkip) {
			err = &scrape.SkipError{URL: src.Link, Reason: "fetch failed", Err: err}
		}
		return nil, err
	}
	zap.L().Debug("pipeline: page fetched",
		zap.String("link", src.Link),
		zap.String("title", page.Title),
		zap.Int("chars", len(page.Text)),
	)

	prompt := p.prompt.Build(page.Text, p.opts.Now())

	reply, genErr := p.gen.Generate(ctx, prompt)
	if genErr != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "pipeline: generate")
		}
		reply = ""
		if !errors.Is(genErr, llm.ErrGenerationFailed) {
			genErr = &llm.GenerationError{Attempts: 1, Err: genErr}
		}
	}

	fields := extract.Normalize(extract.ParseReply(reply))
	rec := model.NewRecord(src, fields)
	return &rec, genErr
}
