package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"matchtracker/internal/config"
	"matchtracker/internal/deps"
	"matchtracker/internal/history"
	"matchtracker/internal/imaging"
	"matchtracker/internal/logging"
	"matchtracker/internal/match"
	"matchtracker/internal/ocr"
	"matchtracker/internal/preflight"
	"matchtracker/internal/report"
	"matchtracker/internal/resultcache"
	"matchtracker/internal/screen"
	"matchtracker/internal/textmatch"
	"matchtracker/internal/video"
)

// ErrPreflight reports a blocking preflight failure.
var ErrPreflight = errors.New("preflight failed")

// Mode selects what a run produces.
type Mode = history.Mode

const (
	ModeAnalyze    = history.ModeAnalyze
	ModeTimestamps = history.ModeTimestamps
)

// Result summarizes a finished run.
type Result struct {
	RunID         string
	VideoKey      string
	Mode          Mode
	Frames        int
	Matches       int
	Records       []match.Record
	Timestamps    []match.Timestamp
	OutputPath    string
	ScreenLogPath string
	FramesCached  bool
	ScreensCached bool
	Elapsed       time.Duration
}

// Pipeline runs analyses with one configuration.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	cache      *resultcache.Store
	sampler    *video.Sampler
	progress   ProgressFactory
	similarity screen.Similarity
	recognizer ocr.Recognizer
	refresh    bool
	skipChecks bool
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithProgress sets how phase progress is reported.
func WithProgress(factory ProgressFactory) Option {
	return func(p *Pipeline) { p.progress = factory }
}

// WithSimilarity replaces the template similarity primitive.
func WithSimilarity(sim screen.Similarity) Option {
	return func(p *Pipeline) { p.similarity = sim }
}

// WithRecognizer replaces the tesseract recognizer.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithRefresh discards cached entries for the video before running.
func WithRefresh(refresh bool) Option {
	return func(p *Pipeline) { p.refresh = refresh }
}

// WithoutPreflight skips the directory and binary checks.
func WithoutPreflight() Option {
	return func(p *Pipeline) { p.skipChecks = true }
}

// New constructs a Pipeline.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	logger = logging.NewComponentLogger(logger, "pipeline")
	cacheDir := ""
	if cfg.Cache.Enabled {
		cacheDir = cfg.Cache.Dir
	}
	p := &Pipeline{
		cfg:        cfg,
		logger:     logger,
		cache:      resultcache.Open(cacheDir, logger),
		sampler:    video.NewSampler(cfg, logger),
		progress:   NoProgress,
		similarity: imaging.TemplateMatcher{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyzes the recording at input.
func (p *Pipeline) Run(ctx context.Context, input string, mode Mode) (Result, error) {
	started := time.Now()
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, errors.New("input path is empty")
	}
	if mode == "" {
		mode = ModeAnalyze
	}
	key := video.Key(input)
	runID := history.NewRunID()
	ctx = logging.WithRunID(logging.WithVideoKey(ctx, key), runID)
	logger := logging.WithContext(ctx, p.logger)

	if err := p.cfg.EnsureDirectories(); err != nil {
		return Result{}, err
	}
	if !p.skipChecks {
		if err := p.preflight(ctx); err != nil {
			return Result{}, err
		}
	}

	unlock, err := p.cache.Lock(ctx, key)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	if p.refresh {
		if err := p.cache.Invalidate(key); err != nil {
			return Result{}, fmt.Errorf("refresh cache: %w", err)
		}
	}

	src, err := p.source(ctx, input, key)
	if err != nil {
		return Result{}, err
	}

	res := Result{RunID: runID, VideoKey: key, Mode: mode}

	frames, cached, err := p.frames(ctx, src)
	if err != nil {
		return Result{}, err
	}
	res.Frames = len(frames)
	res.FramesCached = cached

	screens, matchCount, cached, err := p.screens(ctx, src, frames)
	if err != nil {
		return Result{}, err
	}
	res.ScreensCached = cached
	res.Matches = matchCount
	res.ScreenLogPath = report.ScreenLogPath(p.cfg.Paths.ResultsDir)

	seq := p.scanSequence(screens)
	if len(seq) != len(screens) {
		logger.Debug("other frames dropped before scan",
			logging.Int("frames", len(screens)),
			logging.Int("kept", len(seq)))
	}

	interval := p.cfg.FrameInterval()
	switch mode {
	case ModeTimestamps:
		res.Timestamps = match.Timestamps(seq, interval)
		res.Matches = len(res.Timestamps)
		res.OutputPath = report.TimestampsPath(p.cfg.Paths.ResultsDir, key)
		if err := report.WriteTimestamps(res.OutputPath, res.Timestamps); err != nil {
			return Result{}, fmt.Errorf("write timestamps: %w", err)
		}
	case ModeAnalyze:
		records, err := p.records(ctx, seq, match.CountMatches(seq))
		if err != nil {
			return Result{}, err
		}
		res.Records = records
		res.Matches = len(records)
		res.OutputPath = report.ResultPath(p.cfg.Paths.ResultsDir, key)
		if err := report.WriteRecords(res.OutputPath, records); err != nil {
			return Result{}, fmt.Errorf("write results: %w", err)
		}
	default:
		return Result{}, fmt.Errorf("unknown mode %q", mode)
	}

	res.Elapsed = time.Since(started)
	p.archive(ctx, src, res, started)

	logger.Info("analysis complete",
		logging.String("mode", string(mode)),
		logging.Int("frames", res.Frames),
		logging.Int("matches", res.Matches),
		logging.String("output", res.OutputPath),
		logging.Duration("elapsed", res.Elapsed.Round(time.Millisecond)),
	)
	return res, nil
}

func (p *Pipeline) preflight(ctx context.Context) error {
	if blocking := preflight.Blocking(preflight.RunAll(ctx, p.cfg)); len(blocking) > 0 {
		parts := make([]string, 0, len(blocking))
		for _, r := range blocking {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return fmt.Errorf("%w: %s", ErrPreflight, strings.Join(parts, "; "))
	}
	return nil
}

// requireBinaries fails when any of the named external tools is missing.
func (p *Pipeline) requireBinaries(names ...string) error {
	if p.skipChecks {
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var reqs []deps.Requirement
	for _, req := range deps.Requirements(p.cfg) {
		if want[req.Name] {
			req.Optional = false
			reqs = append(reqs, req)
		}
	}
	if missing := deps.Missing(deps.CheckBinaries(reqs)); len(missing) > 0 {
		parts := make([]string, 0, len(missing))
		for _, s := range missing {
			parts = append(parts, fmt.Sprintf("%s: %s", s.Name, s.Detail))
		}
		return fmt.Errorf("%w: %s", ErrPreflight, strings.Join(parts, "; "))
	}
	return nil
}

// source stats the recording. A recording that has gone missing is
// tolerated when its cache entries are complete, since nothing needs to be
// read from it.
func (p *Pipeline) source(ctx context.Context, input, key string) (video.Source, error) {
	src, err := video.Stat(input)
	if err == nil {
		return src, nil
	}
	if p.cache.HasFrames(key) && p.cache.HasScreens(key) {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "source missing; using cached results", "source_missing",
			logging.String("source", input),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "restore the recording or clear the cache entry"),
			logging.String(logging.FieldImpact, "results come entirely from the cache"),
		)
		return video.Source{Path: input, Key: key}, nil
	}
	return video.Source{}, err
}

func sourceInfo(src video.Source) resultcache.SourceInfo {
	return resultcache.SourceInfo{Path: src.Path, Size: src.Size, ModTime: src.ModTime}
}

// stale reports whether a cached entry was computed from a different file
// than src. With verification off the mismatch is only logged.
func (p *Pipeline) stale(ctx context.Context, src video.Source, cached resultcache.SourceInfo, entry string) bool {
	if src.ModTime.IsZero() || cached.Matches(sourceInfo(src)) {
		return false
	}
	logger := logging.WithContext(ctx, p.logger)
	if p.cfg.Cache.VerifySource {
		logger.Info("cache entry stale; recomputing",
			logging.String("entry", entry),
			logging.Int64("cached_size", cached.Size),
			logging.Int64("source_size", src.Size),
		)
		return true
	}
	logging.WarnWithContext(logger, "cache entry does not match source; reusing it", "cache_source_mismatch",
		logging.String("entry", entry),
		logging.Int64("cached_size", cached.Size),
		logging.Int64("source_size", src.Size),
		logging.String(logging.FieldErrorHint, "run with --refresh or set cache.verify_source = true"),
		logging.String(logging.FieldImpact, "results may describe an older recording"),
	)
	return false
}

// framesReusable decides whether cached frames can stand in for sampling.
// Frame indices only map to times at the interval they were sampled at, so
// an entry from a different interval is resampled. Without the recording
// there is nothing to resample from and the entry is left alone.
func (p *Pipeline) framesReusable(ctx context.Context, src video.Source, entry resultcache.FramesEntry) (bool, error) {
	if entry.Interval != p.cfg.Video.FrameInterval {
		if src.ModTime.IsZero() {
			return false, fmt.Errorf("%w: cached frames were sampled every %gs but frame_interval is %gs",
				video.ErrSourceUnreadable, entry.Interval, p.cfg.Video.FrameInterval)
		}
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "cached frames use a different interval; resampling", "cache_interval_mismatch",
			logging.String("cached_interval", fmt.Sprintf("%gs", entry.Interval)),
			logging.String("interval", fmt.Sprintf("%gs", p.cfg.Video.FrameInterval)),
			logging.String(logging.FieldErrorHint, "keep video.frame_interval fixed to reuse cached frames"),
			logging.String(logging.FieldImpact, "frames and screens are recomputed for this recording"),
		)
		return false, nil
	}
	return !p.stale(ctx, src, entry.Source, "frames"), nil
}

func (p *Pipeline) frames(ctx context.Context, src video.Source) ([]screen.Frame, bool, error) {
	if p.cache.HasFrames(src.Key) {
		entry, err := p.cache.LoadFrames(src.Key)
		if err != nil {
			return nil, false, err
		}
		reuse, err := p.framesReusable(ctx, src, entry)
		if err != nil {
			return nil, false, err
		}
		if reuse {
			logging.WithContext(ctx, p.logger).Info("using cached frames", logging.Int("frames", len(entry.Frames)))
			return entry.Frames, true, nil
		}
		if err := p.cache.Invalidate(src.Key); err != nil {
			return nil, false, err
		}
	}

	if err := p.requireBinaries("FFmpeg", "FFprobe"); err != nil {
		return nil, false, err
	}
	opened, err := video.Open(ctx, p.cfg.Video.FFprobeBinary, src.Path)
	if err != nil {
		return nil, false, err
	}
	frames, err := p.sampler.SampleFrames(ctx, opened)
	if err != nil {
		return nil, false, err
	}
	err = p.cache.SaveFrames(resultcache.FramesEntry{
		Key:      src.Key,
		Source:   sourceInfo(src),
		Interval: p.cfg.Video.FrameInterval,
		Frames:   frames,
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache frames: %w", err)
	}
	return frames, false, nil
}

func (p *Pipeline) screens(ctx context.Context, src video.Source, frames []screen.Frame) ([]screen.ClassifiedFrame, int, bool, error) {
	logger := logging.WithContext(ctx, p.logger)
	if p.cache.HasScreens(src.Key) {
		entry, err := p.cache.LoadScreens(src.Key)
		if err != nil {
			return nil, 0, false, err
		}
		if !p.stale(ctx, src, entry.Source, "screens") {
			matchCount := match.CountMatches(p.scanSequence(entry.Screens))
			logger.Info("using cached screens",
				logging.Int("screens", len(entry.Screens)),
				logging.Int("matches", matchCount))
			return entry.Screens, matchCount, true, nil
		}
		if err := p.cache.Invalidate(src.Key); err != nil {
			return nil, 0, false, err
		}
	}

	classifier, err := p.classifier()
	if err != nil {
		return nil, 0, false, err
	}
	bar := p.progress("classifying frames", len(frames))
	seq, err := screen.ClassifyAll(ctx, classifier, frames, imaging.Load, p.cfg.Screen.Workers, func(int) { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		return nil, 0, false, err
	}
	matchCount := match.CountMatches(p.scanSequence(seq))
	logger.Info("frames classified",
		logging.Int("frames", len(seq)),
		logging.Int("matches", matchCount))

	if err := report.WriteScreenLog(report.ScreenLogPath(p.cfg.Paths.ResultsDir), seq); err != nil {
		return nil, 0, false, fmt.Errorf("write screen log: %w", err)
	}
	err = p.cache.SaveScreens(resultcache.ScreensEntry{
		Key:        src.Key,
		Source:     sourceInfo(src),
		Screens:    seq,
		MatchCount: matchCount,
	})
	if err != nil {
		return nil, 0, false, fmt.Errorf("cache screens: %w", err)
	}
	return seq, matchCount, false, nil
}

// scanSequence applies the skip-other policy to a classified sequence.
func (p *Pipeline) scanSequence(screens []screen.ClassifiedFrame) []screen.ClassifiedFrame {
	if p.cfg.Boundary.SkipOtherFrames {
		return screen.WithoutOther(screens)
	}
	return screens
}

func (p *Pipeline) classifier() (*screen.Classifier, error) {
	sc := p.cfg.Screen
	targets := []struct {
		label     screen.Label
		template  string
		roi       []float64
		threshold float64
	}{
		{screen.LabelMatching, sc.MatchingTemplate, sc.MatchingROI, sc.MatchingThreshold},
		{screen.LabelResultWin, sc.WinTemplate, sc.WinROI, sc.WinThreshold},
		{screen.LabelResultLose, sc.LoseTemplate, sc.LoseROI, sc.LoseThreshold},
	}
	specs := make([]screen.DetectorSpec, 0, len(targets))
	for _, t := range targets {
		region, err := screen.RegionFromRatios(t.roi)
		if err != nil {
			return nil, fmt.Errorf("%s region: %w", t.label, err)
		}
		specs = append(specs, screen.DetectorSpec{
			Label:        t.label,
			TemplatePath: t.template,
			Region:       region,
			Threshold:    t.threshold,
		})
	}
	c := screen.NewClassifier(specs, p.similarity, imaging.Load, p.logger)
	if !c.Enabled(screen.LabelMatching) {
		logging.WarnWithContext(p.logger, "matching screen detection disabled", "no_matches_possible",
			logging.String(logging.FieldErrorHint, "configure screen.matching_template"),
			logging.String(logging.FieldImpact, "no matches will be found"),
		)
	}
	return c, nil
}

func (p *Pipeline) extractor(ctx context.Context) (match.FieldExtractor, error) {
	if !p.cfg.OCR.Enabled {
		return match.NoFields{}, nil
	}
	recognizer := p.recognizer
	if recognizer == nil {
		if err := p.requireBinaries("Tesseract"); err != nil {
			return nil, err
		}
		recognizer = ocr.NewTesseract(p.cfg.OCR)
	}
	players, err := textmatch.LoadVocabulary(p.cfg.Vocabulary.PlayerNames, p.logger)
	if err != nil {
		return nil, fmt.Errorf("load player names: %w", err)
	}
	units, err := textmatch.LoadVocabulary(p.cfg.Vocabulary.UnitNames, p.logger)
	if err != nil {
		return nil, fmt.Errorf("load unit names: %w", err)
	}
	fields, err := ocr.FieldRegions(p.cfg.Fields)
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, p.logger).Info("field recognition enabled",
		logging.Int("fields", len(fields)),
		logging.Int("player_names", players.Len()),
		logging.Int("unit_names", units.Len()),
	)
	corrector := textmatch.NewCorrector(players, units, p.cfg.OCR.ScoreCutoff)
	return ocr.NewExtractor(fields, recognizer, corrector, p.cfg.Preprocess, imaging.Load, p.logger), nil
}

func (p *Pipeline) records(ctx context.Context, seq []screen.ClassifiedFrame, total int) ([]match.Record, error) {
	extractor, err := p.extractor(ctx)
	if err != nil {
		return nil, err
	}
	bar := p.progress("extracting matches", total)
	defer func() { _ = bar.Finish() }()
	builder := match.NewBuilder(extractor, p.cfg.FrameInterval(), p.logger,
		match.WithProgress(func() { _ = bar.Add(1) }))
	return builder.Build(ctx, seq)
}

// archive stores the run in history. Failures are logged, never returned:
// the outputs are already written.
func (p *Pipeline) archive(ctx context.Context, src video.Source, res Result, started time.Time) {
	if !p.cfg.History.Enabled {
		return
	}
	logger := logging.WithContext(ctx, p.logger)
	store, err := history.Open(ctx, p.cfg.History.Path)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path or delete an incompatible database"),
			logging.String(logging.FieldImpact, "this run is not archived"),
		)
		return
	}
	defer store.Close()

	_, err = store.RecordRun(ctx, history.Run{
		ID:            res.RunID,
		VideoKey:      res.VideoKey,
		SourcePath:    src.Path,
		Mode:          res.Mode,
		FrameInterval: p.cfg.Video.FrameInterval,
		FrameCount:    res.Frames,
		MatchCount:    res.Matches,
		OutputPath:    res.OutputPath,
		StartedAt:     started,
		FinishedAt:    time.Now(),
	}, res.Records)
	if err != nil {
		logging.WarnWithContext(logger, "failed to archive run", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check disk space and permissions for history.path"),
			logging.String(logging.FieldImpact, "this run is not archived"),
		)
	}
}

// RemoveFrames deletes the sampled frames of a video key.
func RemoveFrames(cfg *config.Config, key string) error {
	dir := video.NewSampler(cfg, nil).FramesDir(key)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove frames for %s: %w", key, err)
	}
	return nil
}
