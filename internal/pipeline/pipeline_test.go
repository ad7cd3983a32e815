package pipeline_test

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"matchtracker/internal/config"
	"matchtracker/internal/imaging"
	"matchtracker/internal/ocr"
	"matchtracker/internal/pipeline"
	"matchtracker/internal/report"
	"matchtracker/internal/resultcache"
	"matchtracker/internal/testsupport"
	"matchtracker/internal/video"
)

const (
	shadeMatching = 50
	shadeOther    = 100
	shadeWin      = 150
	shadeLose     = 200
)

// recording is the label layout of the stub video, one shade per sampled
// second: other, matching x2, win, other, matching, other, lose, matching,
// lose.
var recording = []uint8{
	shadeOther, shadeMatching, shadeMatching, shadeWin, shadeOther,
	shadeMatching, shadeOther, shadeLose, shadeMatching, shadeLose,
}

// shadeSimilarity scores 1 when the centre pixels of region and template
// share a gray level.
type shadeSimilarity struct{}

func (shadeSimilarity) Score(region, template image.Image) float64 {
	if center(region) == center(template) {
		return 1
	}
	return 0
}

func center(img image.Image) uint8 {
	g := imaging.Gray(img)
	b := g.Bounds()
	return g.GrayAt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).Y
}

type fixture struct {
	cfg      *config.Config
	input    string
	fixtures string
}

// newFixture writes frame images and templates, and stubs ffprobe and an
// ffmpeg that copies the frames into the requested output directory and
// logs each call.
func newFixture(t *testing.T, opts ...testsupport.ConfigOption) fixture {
	t.Helper()

	fixtures := t.TempDir()
	for i, shade := range recording {
		testsupport.WritePNG(t, filepath.Join(fixtures, "frames", video.FrameName(i)), testsupport.SolidGray(32, 18, shade))
	}

	ffmpeg := fmt.Sprintf(`for a in "$@"; do last="$a"; done
echo call >> %q
cp %q/*.png "$(dirname "$last")"/`, filepath.Join(fixtures, "ffmpeg.calls"), filepath.Join(fixtures, "frames"))
	ffprobe := `cat <<'JSON'
{"streams":[{"index":0,"codec_type":"video","width":32,"height":18,"avg_frame_rate":"30/1"}],"format":{"duration":"10.0"}}
JSON`

	opts = append([]testsupport.ConfigOption{
		testsupport.WithFrameInterval(1),
		testsupport.WithScript("ffmpeg", ffmpeg),
		testsupport.WithScript("ffprobe", ffprobe),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	templates := map[*string]uint8{
		&cfg.Screen.MatchingTemplate: shadeMatching,
		&cfg.Screen.WinTemplate:      shadeWin,
		&cfg.Screen.LoseTemplate:     shadeLose,
	}
	for field, shade := range templates {
		path := filepath.Join(fixtures, "templates", fmt.Sprintf("shade_%d.png", shade))
		testsupport.WritePNG(t, path, testsupport.SolidGray(8, 8, shade))
		*field = path
	}

	input := filepath.Join(fixtures, "session01.mp4")
	testsupport.WriteFile(t, input, 1024)
	return fixture{cfg: cfg, input: input, fixtures: fixtures}
}

func (f fixture) ffmpegCalls(t *testing.T) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.fixtures, "ffmpeg.calls"))
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatalf("read ffmpeg calls: %v", err)
	}
	return strings.Count(string(data), "call")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "\ufeff") {
		t.Fatalf("%s is missing the UTF-8 byte order mark", path)
	}
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func newPipeline(cfg *config.Config, opts ...pipeline.Option) *pipeline.Pipeline {
	opts = append([]pipeline.Option{pipeline.WithSimilarity(shadeSimilarity{})}, opts...)
	return pipeline.New(cfg, nil, opts...)
}

func TestRunAnalyzeWritesRecords(t *testing.T) {
	f := newFixture(t)

	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.VideoKey != "session01" {
		t.Fatalf("VideoKey = %q", res.VideoKey)
	}
	if res.Frames != len(recording) {
		t.Fatalf("Frames = %d, want %d", res.Frames, len(recording))
	}
	if res.Matches != 2 || len(res.Records) != 2 {
		t.Fatalf("Matches = %d records = %d, want 2", res.Matches, len(res.Records))
	}

	first, second := res.Records[0], res.Records[1]
	if first.StartTime != "00:00:01" || first.FrameName != "frame_00001.png" {
		t.Fatalf("first record = %+v", first)
	}
	if first.Player1Result != "WIN" || first.Player3Result != "LOSE" {
		t.Fatalf("first outcomes = %v", first.Outcomes())
	}
	if second.StartTime != "00:00:08" || second.Player1Result != "LOSE" || second.Player4Result != "WIN" {
		t.Fatalf("second record = %+v", second)
	}

	wantPath := report.ResultPath(f.cfg.Paths.ResultsDir, "session01")
	if res.OutputPath != wantPath {
		t.Fatalf("OutputPath = %q, want %q", res.OutputPath, wantPath)
	}
	rows := readCSV(t, wantPath)
	if len(rows) != 3 {
		t.Fatalf("result rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "player1_name" || rows[0][len(rows[0])-1] != "ocr_frame_name" {
		t.Fatalf("header = %v", rows[0])
	}

	log := readCSV(t, res.ScreenLogPath)
	if len(log) != len(recording)+1 {
		t.Fatalf("screen log rows = %d", len(log))
	}
	if log[2][1] != "matching" || log[4][1] != "result_win" || log[1][1] != "other" {
		t.Fatalf("screen log = %v", log)
	}
}

func TestRunTimestampsMode(t *testing.T) {
	f := newFixture(t)

	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 0 {
		t.Fatalf("timestamps mode produced records: %+v", res.Records)
	}
	rows := readCSV(t, report.TimestampsPath(f.cfg.Paths.ResultsDir, "session01"))
	want := [][]string{
		{"match_number", "start_time"},
		{"1", "00:00:01"},
		{"2", "00:00:08"},
	}
	if fmt.Sprint(rows) != fmt.Sprint(want) {
		t.Fatalf("timestamps = %v, want %v", rows, want)
	}
}

func TestRunSkipOtherFramesJoinsInterruptedGroup(t *testing.T) {
	f := newFixture(t)
	f.cfg.Boundary.SkipOtherFrames = true

	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var starts []string
	for _, ts := range res.Timestamps {
		starts = append(starts, ts.StartTime)
	}
	want := []string{"00:00:01", "00:00:05", "00:00:08"}
	if fmt.Sprint(starts) != fmt.Sprint(want) {
		t.Fatalf("starts = %v, want %v", starts, want)
	}
}

func TestRunSkipOtherFramesCachesFilteredCount(t *testing.T) {
	f := newFixture(t)
	f.cfg.Boundary.SkipOtherFrames = true

	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Matches != 3 {
		t.Fatalf("Matches = %d, want 3", res.Matches)
	}
	entry, err := resultcache.Open(f.cfg.Cache.Dir, nil).LoadScreens("session01")
	if err != nil {
		t.Fatalf("LoadScreens: %v", err)
	}
	if entry.MatchCount != res.Matches {
		t.Fatalf("cached match count = %d, want %d", entry.MatchCount, res.Matches)
	}

	f.cfg.Boundary.SkipOtherFrames = false
	strict, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("strict Run: %v", err)
	}
	if !strict.ScreensCached || strict.Matches != 2 {
		t.Fatalf("strict run = cached %v matches %d, want cached with 2", strict.ScreensCached, strict.Matches)
	}
}

func TestRunReusesCache(t *testing.T) {
	f := newFixture(t)
	p := newPipeline(f.cfg)

	first, err := p.Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.FramesCached || first.ScreensCached {
		t.Fatalf("first run reported cache hits: %+v", first)
	}

	second, err := p.Run(context.Background(), f.input, pipeline.ModeTimestamps)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !second.FramesCached || !second.ScreensCached {
		t.Fatalf("second run missed the cache: %+v", second)
	}
	if got := f.ffmpegCalls(t); got != 1 {
		t.Fatalf("ffmpeg ran %d times, want 1", got)
	}
	if second.Matches != first.Matches {
		t.Fatalf("cached matches = %d, want %d", second.Matches, first.Matches)
	}

	if _, err := newPipeline(f.cfg, pipeline.WithRefresh(true)).Run(context.Background(), f.input, pipeline.ModeAnalyze); err != nil {
		t.Fatalf("refresh Run: %v", err)
	}
	if got := f.ffmpegCalls(t); got != 2 {
		t.Fatalf("ffmpeg ran %d times after refresh, want 2", got)
	}
}

func TestRunUsesCacheWhenSourceIsGone(t *testing.T) {
	f := newFixture(t)
	p := newPipeline(f.cfg)
	if _, err := p.Run(context.Background(), f.input, pipeline.ModeAnalyze); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := os.Remove(f.input); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	res, err := p.Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("Run without source: %v", err)
	}
	if res.Matches != 2 {
		t.Fatalf("Matches = %d, want 2", res.Matches)
	}
}

func TestRunVerifySourceInvalidatesStaleCache(t *testing.T) {
	f := newFixture(t)
	f.cfg.Cache.VerifySource = true
	p := newPipeline(f.cfg)
	if _, err := p.Run(context.Background(), f.input, pipeline.ModeAnalyze); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	testsupport.WriteFile(t, f.input, 4096)

	res, err := p.Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.FramesCached {
		t.Fatal("stale frames entry was reused")
	}
	if got := f.ffmpegCalls(t); got != 2 {
		t.Fatalf("ffmpeg ran %d times, want 2", got)
	}
}

func TestRunResamplesWhenIntervalChanges(t *testing.T) {
	f := newFixture(t)
	if _, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	f.cfg.Video.FrameInterval = 2
	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.FramesCached || res.ScreensCached {
		t.Fatalf("entry sampled at another interval was reused: %+v", res)
	}
	if got := f.ffmpegCalls(t); got != 2 {
		t.Fatalf("ffmpeg ran %d times, want 2", got)
	}
	var starts []string
	for _, ts := range res.Timestamps {
		starts = append(starts, ts.StartTime)
	}
	if want := []string{"00:00:02", "00:00:16"}; fmt.Sprint(starts) != fmt.Sprint(want) {
		t.Fatalf("starts = %v, want %v", starts, want)
	}

	entry, err := resultcache.Open(f.cfg.Cache.Dir, nil).LoadFrames("session01")
	if err != nil {
		t.Fatalf("LoadFrames: %v", err)
	}
	if entry.Interval != 2 {
		t.Fatalf("cached interval = %g, want 2", entry.Interval)
	}
}

func TestRunIntervalChangeWithoutSourceKeepsCache(t *testing.T) {
	f := newFixture(t)
	if _, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := os.Remove(f.input); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	f.cfg.Video.FrameInterval = 5
	_, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps)
	if !errors.Is(err, video.ErrSourceUnreadable) {
		t.Fatalf("err = %v, want ErrSourceUnreadable", err)
	}

	f.cfg.Video.FrameInterval = 1
	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeTimestamps)
	if err != nil {
		t.Fatalf("Run at original interval: %v", err)
	}
	if !res.FramesCached || len(res.Timestamps) != 2 {
		t.Fatalf("cache entry lost: %+v", res)
	}
}

func TestRunMissingSourceFails(t *testing.T) {
	f := newFixture(t)

	_, err := newPipeline(f.cfg).Run(context.Background(), filepath.Join(f.fixtures, "absent.mp4"), pipeline.ModeAnalyze)
	if !errors.Is(err, video.ErrSourceUnreadable) {
		t.Fatalf("err = %v, want ErrSourceUnreadable", err)
	}
}

func TestRunWithoutMatchingTemplateFindsNoMatches(t *testing.T) {
	f := newFixture(t)
	f.cfg.Screen.MatchingTemplate = ""

	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Matches != 0 {
		t.Fatalf("Matches = %d, want 0", res.Matches)
	}
	if rows := readCSV(t, res.OutputPath); len(rows) != 1 {
		t.Fatalf("result rows = %d, want header only", len(rows))
	}
}

func TestRunReadsFieldsWithRecognizer(t *testing.T) {
	f := newFixture(t, testsupport.WithOCR())
	f.cfg.Fields = config.Fields{Player1Name: []float64{0, 0, 1, 1}}
	testsupport.WriteLines(t, f.cfg.Vocabulary.PlayerNames, "Alice", "Bob")

	recognizer := ocr.RecognizerFunc(func(context.Context, image.Image) (string, error) {
		return "Alic3", nil
	})
	p := newPipeline(f.cfg, pipeline.WithRecognizer(recognizer), pipeline.WithoutPreflight())

	res, err := p.Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, rec := range res.Records {
		if rec.Player1Name != "Alice" {
			t.Fatalf("record %d player1_name = %q, want Alice", i, rec.Player1Name)
		}
		if rec.Player2Name != "" {
			t.Fatalf("record %d player2_name = %q, want unknown", i, rec.Player2Name)
		}
	}
}

func TestRunArchivesHistory(t *testing.T) {
	f := newFixture(t)

	res, err := newPipeline(f.cfg).Run(context.Background(), f.input, pipeline.ModeAnalyze)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	store := testsupport.MustOpenHistory(t, f.cfg)
	run, err := store.FindRun(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("FindRun: %v", err)
	}
	if run.VideoKey != "session01" || run.MatchCount != 2 || run.Mode != pipeline.ModeAnalyze {
		t.Fatalf("archived run = %+v", run)
	}
	records, err := store.RunRecords(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("RunRecords: %v", err)
	}
	if len(records) != 2 || records[0].StartTime != "00:00:01" {
		t.Fatalf("archived records = %+v", records)
	}
}

func TestRunCanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newPipeline(f.cfg).Run(ctx, f.input, pipeline.ModeAnalyze); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
