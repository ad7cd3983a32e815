package config

import "runtime"

const (
	defaultFramesDir       = "~/.local/share/matchtracker/frames"
	defaultResultsDir      = "output/results"
	defaultLogDir          = "~/.local/share/matchtracker/logs"
	defaultCacheDir        = "~/.cache/matchtracker"
	defaultHistoryPath     = "~/.local/share/matchtracker/history.db"
	defaultFrameInterval   = 2.0
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultMinFreeGiB      = 2
	defaultThreshold       = 0.3
	defaultOCRBinary       = "tesseract"
	defaultOCRLanguage     = "jpn+eng"
	defaultOCRPSM          = 7
	defaultScoreCutoff     = 30
	defaultOCRTimeout      = 30
	defaultPreprocessScale = 4
	defaultPreprocessAlpha = 1.0
	defaultPreprocessBeta  = 10
	defaultBinaryThreshold = 127
	defaultPlayerNamesPath = "data/player_names.csv"
	defaultUnitNamesPath   = "data/unit_names.csv"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults. Field regions
// are the 1920x1080 pre-match layout expressed as ratios.
func Default() Config {
	return Config{
		Paths: Paths{
			FramesDir:  defaultFramesDir,
			ResultsDir: defaultResultsDir,
			LogDir:     defaultLogDir,
		},
		Video: Video{
			FrameInterval: defaultFrameInterval,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			MinFreeGiB:    defaultMinFreeGiB,
		},
		Screen: Screen{
			MatchingTemplate:  "templates/vs.png",
			WinTemplate:       "templates/win.png",
			LoseTemplate:      "templates/lose.png",
			MatchingThreshold: defaultThreshold,
			WinThreshold:      defaultThreshold,
			LoseThreshold:     defaultThreshold,
			MatchingROI:       []float64{0.40, 0.30, 0.60, 0.60},
			WinROI:            []float64{0.30, 0.05, 0.70, 0.25},
			LoseROI:           []float64{0.30, 0.05, 0.70, 0.25},
			Workers:           runtime.NumCPU(),
		},
		OCR: OCR{
			Binary:         defaultOCRBinary,
			Language:       defaultOCRLanguage,
			PSM:            defaultOCRPSM,
			ScoreCutoff:    defaultScoreCutoff,
			TimeoutSeconds: defaultOCRTimeout,
		},
		Preprocess: Preprocess{
			Scale:     defaultPreprocessScale,
			Alpha:     defaultPreprocessAlpha,
			Beta:      defaultPreprocessBeta,
			Threshold: defaultBinaryThreshold,
			Sharpen:   true,
		},
		Fields: Fields{
			Player1Name: []float64{0.0432, 0.6907, 0.1786, 0.7185},
			Player1Unit: []float64{0.0339, 0.7370, 0.2208, 0.7583},
			Player2Name: []float64{0.2698, 0.6481, 0.3927, 0.6713},
			Player2Unit: []float64{0.2609, 0.6889, 0.4302, 0.7102},
			Player3Name: []float64{0.5625, 0.6481, 0.6854, 0.6713},
			Player3Unit: []float64{0.5724, 0.6889, 0.7401, 0.7102},
			Player4Name: []float64{0.7703, 0.6907, 0.9047, 0.7185},
			Player4Unit: []float64{0.7813, 0.7370, 0.9688, 0.7583},
		},
		Vocabulary: Vocabulary{
			PlayerNames: defaultPlayerNamesPath,
			UnitNames:   defaultUnitNamesPath,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
