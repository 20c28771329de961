// Package app wires the source, export, snapshot and watch adapters around
// the domain: load part records, normalize them, evaluate every rule and
// write the result tables.
package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/corey/fpvcompat/internal/adapters/bbolt"
	"github.com/corey/fpvcompat/internal/adapters/export"
	"github.com/corey/fpvcompat/internal/adapters/metrics"
	"github.com/corey/fpvcompat/internal/adapters/source"
	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/domain/part"
	"github.com/corey/fpvcompat/internal/ports"
)

// ErrNoParts is returned when the inputs yield no part records.
var ErrNoParts = errors.New("no parts loaded")

// Options holds the collaborators of an App. Zero fields get defaults.
type Options struct {
	FS      afero.Fs
	Logger  *zap.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
	NewID   func() string
}

// App is the top-level container wiring all components together.
type App struct {
	cfg     *Config
	fs      afero.Fs
	log     *zap.Logger
	metrics *metrics.Recorder
	loader  *source.Loader
	now     func() time.Time
	newID   func() string

	newWatcher  func(accept func(string) bool) (ports.Watcher, error)
	watchSettle time.Duration
}

// Result is one evaluation run.
type Result struct {
	ID        string
	CreatedAt time.Time
	Headroom  float64
	Reports   []source.FileReport
	Parts     part.Table
	Results   compat.Results
}

// Sources returns the paths that loaded without error.
func (r *Result) Sources() []string {
	var out []string
	for _, rep := range r.Reports {
		if rep.Err == nil {
			out = append(out, rep.Path)
		}
	}
	return out
}

// Failed returns the reports of sources that could not be loaded.
func (r *Result) Failed() []source.FileReport {
	var out []source.FileReport
	for _, rep := range r.Reports {
		if rep.Err != nil {
			out = append(out, rep)
		}
	}
	return out
}

// New creates an App for cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts Options) *App {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &App{
		cfg:         cfg,
		fs:          opts.FS,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		loader:      source.NewLoader(opts.FS),
		now:         opts.Now,
		newID:       opts.NewID,
		newWatcher:  newFSWatcher,
		watchSettle: defaultWatchSettle,
	}
}

// Config returns the configuration the App runs with.
func (a *App) Config() *Config { return a.cfg }

// Metrics returns the App's metric recorder.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

// Evaluate loads inputs and runs every rule over the normalized records.
// Unreadable sources are logged and skipped. ErrNoParts is returned when
// nothing loads.
func (a *App) Evaluate(inputs []string) (*Result, error) {
	start := a.now()

	rows, reports, err := a.loader.Load(inputs)
	if err != nil {
		return nil, fmt.Errorf("collect inputs: %w", err)
	}
	for _, rep := range reports {
		if rep.Err != nil {
			a.metrics.SourcesFailed.Inc()
			a.log.Warn("source skipped", zap.String("path", rep.Path), zap.Error(rep.Err))
			continue
		}
		a.metrics.SourcesLoaded.Inc()
		a.log.Info("source loaded",
			zap.String("path", rep.Path),
			zap.String("format", rep.Format),
			zap.Int("records", rep.Records))
	}

	table := part.Normalize(rows)
	if table.Len() == 0 {
		return nil, ErrNoParts
	}
	a.metrics.ObserveParts(table)
	for typ, n := range table.CountByType() {
		a.log.Debug("parts", zap.String("type", string(typ)), zap.Int("count", n))
	}

	results := compat.Build(table, a.cfg.Headroom)
	if a.cfg.Output.PassOnly {
		results = compat.PassOnly(results)
	}
	for _, t := range results {
		a.log.Debug("pair evaluated", zap.String("pair", t.Key), zap.Int("edges", len(t.Edges)))
	}
	a.metrics.ObserveResults(results)
	a.metrics.Runs.Inc()
	a.metrics.RunDuration.Observe(a.now().Sub(start).Seconds())

	a.log.Info("evaluation complete",
		zap.Int("parts", table.Len()),
		zap.Int("pairs", len(results)),
		zap.Int("edges", results.EdgeCount()))

	return &Result{
		ID:        a.newID(),
		CreatedAt: start,
		Headroom:  effectiveHeadroom(a.cfg.Headroom),
		Reports:   reports,
		Parts:     table,
		Results:   results,
	}, nil
}

func effectiveHeadroom(h float64) float64 {
	if h <= 0 {
		return compat.DefaultHeadroom
	}
	return h
}

// Export writes res to dest in the configured format, or the one inferred
// from dest.
func (a *App) Export(res *Result, dest string) error {
	format, err := export.ParseFormat(a.cfg.Output.Format, dest)
	if err != nil {
		return err
	}
	opts := export.Options{Merge: a.cfg.Output.Merge}

	var w ports.ResultWriter
	switch format {
	case export.FormatBolt:
		w = snapshotWriter{app: a, res: res}
	case export.FormatJSON:
		w = export.JSONWriter{FS: a.fs, Opts: opts}
	default:
		w = export.CSVWriter{FS: a.fs, Opts: opts}
	}
	if err := w.Write(dest, res.Results); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	a.log.Info("output written",
		zap.String("path", dest),
		zap.String("format", string(format)),
		zap.Bool("merge", opts.Merge))
	return nil
}

// Run evaluates inputs, writes the result to dest when dest is set, and
// dumps metrics when a metrics file is configured.
func (a *App) Run(inputs []string, dest string) (*Result, error) {
	res, err := a.Evaluate(inputs)
	if err != nil {
		return nil, err
	}
	if dest != "" {
		if err := a.Export(res, dest); err != nil {
			return nil, err
		}
	}
	if err := a.WriteMetrics(); err != nil {
		return nil, err
	}
	return res, nil
}

// WriteMetrics writes the metric textfile when metrics.file is set.
func (a *App) WriteMetrics() error {
	path := a.cfg.Metrics.File
	if path == "" {
		return nil
	}
	if err := a.metrics.WriteFile(path); err != nil {
		return err
	}
	a.log.Debug("metrics written", zap.String("path", path))
	return nil
}

// snapshotWriter saves a run into a bbolt database at dest.
type snapshotWriter struct {
	app *App
	res *Result
}

func (w snapshotWriter) Write(dest string, rs compat.Results) error {
	store, err := bbolt.NewStore(dest)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	return store.SaveRun(&ports.Run{
		RunInfo: ports.RunInfo{
			ID:        w.res.ID,
			CreatedAt: w.res.CreatedAt,
			Headroom:  w.res.Headroom,
			Sources:   w.res.Sources(),
			Parts:     w.res.Parts.Len(),
		},
		Results: rs,
	})
}

// LoadSnapshot reads a stored run from the database at path: the run with
// the given id, or the latest one when id is empty.
func LoadSnapshot(path, id string) (*ports.Run, error) {
	store, err := openSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if id == "" {
		return store.LatestRun()
	}
	return store.LoadRun(id)
}

// ListSnapshots returns the run headers stored at path, newest first.
func ListSnapshots(path string) ([]ports.RunInfo, error) {
	store, err := openSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.ListRuns()
}

// openSnapshot opens an existing database. bbolt would create a missing
// file, which would hide a mistyped path.
func openSnapshot(path string) (*bbolt.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	store, err := bbolt.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return store, nil
}
