// ABOUTME: Ingestion pipeline: discover, parse, match, derive, and upsert.
// ABOUTME: Each source file commits on its own; a store failure aborts the run.
package ingest

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/runlog/internal/derive"
	"github.com/harperreed/runlog/internal/logging"
	"github.com/harperreed/runlog/internal/match"
	"github.com/harperreed/runlog/internal/models"
	"github.com/harperreed/runlog/internal/parse"
	"github.com/harperreed/runlog/internal/storage"
)

// Options tunes one ingestion run.
type Options struct {
	// MatchToleranceKm is the largest device/activity distance delta accepted.
	MatchToleranceKm float64
	// Derive configures the derivation engine.
	Derive derive.Options
	// ActivityTypes keeps only activities of these types. Empty keeps all.
	ActivityTypes []string
}

// DefaultOptions returns the standard ingestion settings.
func DefaultOptions() Options {
	return Options{
		MatchToleranceKm: match.DefaultToleranceKm,
		Derive:           derive.DefaultOptions(),
		ActivityTypes:    []string{"Run"},
	}
}

// Pipeline runs ingestions against one store.
type Pipeline struct {
	store storage.Writer
	opts  Options
}

// New creates a pipeline writing to store.
func New(store storage.Writer, opts Options) *Pipeline {
	return &Pipeline{store: store, opts: opts}
}

// Run ingests every export found in dir.
//
// A file that fails to parse is recorded in the report and skipped. A store
// failure is returned as a *storage.WriteError together with the report so
// far; files committed before it stay committed.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Dir: dir}
	log := logging.With().Str("run_id", rep.RunID).Logger()

	src, err := Discover(dir)
	if err != nil {
		return rep, err
	}
	log.Info().
		Str("dir", dir).
		Bool("activity", src.Activity != "").
		Int("recovery_files", len(src.Recovery)).
		Int("device_files", len(src.Device)).
		Msg("starting ingestion")

	devices := p.parseDevices(src.Device, rep, log)
	// Replaced by the matcher's count when the activity file is ingested.
	rep.UnmatchedDevice = len(devices)

	if src.Activity == "" {
		log.Warn().Str("pattern", ActivityDirPattern+"/"+ActivityFileName).Msg("no activity export found")
	} else if err := p.ingestActivities(ctx, src.Activity, devices, rep, log); err != nil {
		return rep, err
	}
	if rep.UnmatchedDevice > 0 {
		log.Warn().Int("count", rep.UnmatchedDevice).Msg("device records left unmatched")
	}

	if len(src.Recovery) == 0 {
		log.Warn().Str("pattern", RecoveryFilePattern).Msg("no recovery export found")
	}
	for _, path := range src.Recovery {
		if err := p.ingestRecovery(ctx, path, rep, log); err != nil {
			return rep, err
		}
	}

	log.Info().
		Int("matched", rep.Matched).
		Int("unmatched_device", rep.UnmatchedDevice).
		Int("rejected_files", len(rep.Rejected())).
		Msg("ingestion finished")
	return rep, nil
}

// parseDevices reads every device file. Rejected files contribute nothing
// to matching.
func (p *Pipeline) parseDevices(paths []string, rep *Report, log zerolog.Logger) []*models.DeviceMetrics {
	var all []*models.DeviceMetrics
	for _, path := range paths {
		res := FileResult{Path: path, Source: SourceDevice}
		recs, err := parse.DeviceMetricsFile(path)
		if err != nil {
			res.Err = err
			log.Error().Err(err).Str("file", path).Str("source", string(SourceDevice)).Msg("file rejected")
		} else {
			res.Parsed = len(recs)
			all = append(all, recs...)
			log.Debug().Str("file", path).Int("rows", res.Parsed).Msg("parsed device metrics")
		}
		rep.Files = append(rep.Files, res)
	}
	return all
}

func (p *Pipeline) ingestActivities(ctx context.Context, path string, devices []*models.DeviceMetrics, rep *Report, log zerolog.Logger) error {
	res := FileResult{Path: path, Source: SourceActivity}
	defer func() { rep.Files = append(rep.Files, res) }()

	acts, err := parse.ActivityFile(path)
	if err != nil {
		res.Err = err
		log.Error().Err(err).Str("file", path).Str("source", string(SourceActivity)).Msg("file rejected")
		return nil
	}
	res.Parsed = len(acts)

	kept := acts
	if len(p.opts.ActivityTypes) > 0 {
		kept = slices.DeleteFunc(slices.Clone(acts), func(a *models.Activity) bool {
			return !slices.Contains(p.opts.ActivityTypes, a.ActivityType)
		})
	}
	res.Skipped = len(acts) - len(kept)

	m := match.Match(kept, devices, p.opts.MatchToleranceKm)
	rep.Matched = len(m.Matches)
	rep.UnmatchedDevice = len(m.Unmatched)

	runs := derive.All(kept, m.Matches, p.opts.Derive)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	n, err := p.store.UpsertRuns(ctx, runs)
	if err != nil {
		return err
	}
	res.Written = n
	log.Info().Str("file", path).Str("source", string(SourceActivity)).
		Int("rows", n).Int("skipped", res.Skipped).Int("matched", rep.Matched).Msg("file committed")
	return nil
}

func (p *Pipeline) ingestRecovery(ctx context.Context, path string, rep *Report, log zerolog.Logger) error {
	res := FileResult{Path: path, Source: SourceRecovery}
	defer func() { rep.Files = append(rep.Files, res) }()

	recs, err := parse.RecoveryFile(path)
	if err != nil {
		res.Err = err
		log.Error().Err(err).Str("file", path).Str("source", string(SourceRecovery)).Msg("file rejected")
		return nil
	}
	res.Parsed = len(recs)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	n, err := p.store.UpsertSleep(ctx, recs)
	if err != nil {
		return err
	}
	res.Written = n
	log.Info().Str("file", path).Str("source", string(SourceRecovery)).Int("rows", n).Msg("file committed")
	return nil
}
