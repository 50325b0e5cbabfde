package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"github.com/ngocvo/rollcall/internal/constants"
)

//go:embed symbols.yaml
var symbolsYAML []byte

type Config struct {
	Attendance AttendanceConfig
	Portraits  PortraitsConfig
	Evidence   EvidenceConfig
	Results    ResultsConfig
	Oracle     OracleConfig
	Extractor  ExtractorConfig
	Database   DatabaseConfig
	Batch      BatchConfig
	Symbols    SymbolsConfig
}

type AttendanceConfig struct {
	Dir string // directory of per-person .xlsx attendance sheets
}

type PortraitsConfig struct {
	Dir string // portrait bucket root (person subdirs or name-as-filename images)
}

type EvidenceConfig struct {
	Dir string // evidence photo root, one subdirectory per day of month (01..31)
}

type ResultsConfig struct {
	Dir string // output directory for exported report workbooks
}

type OracleConfig struct {
	URL   string // verification oracle base URL (defaults to http://localhost:8000)
	Model string // model name passed to the oracle, informational
}

type ExtractorConfig struct {
	URL string // text extractor base URL (optional, extraction skipped if empty)
}

type DatabaseConfig struct {
	Path string // SQLite database path (defaults to <results>/rollcall.db)
}

type BatchConfig struct {
	Workers           int     // worker pool size (default 4)
	DistanceThreshold float64 // max oracle distance for a match (default 0.6)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in (0, 1].
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	symbols, err := loadSymbols(symbolsYAML)
	if err != nil {
		// The symbols file is embedded, so this only fires on a broken build.
		panic("failed to unmarshal embedded symbols.yaml: " + err.Error())
	}

	cfg := &Config{
		Attendance: AttendanceConfig{
			Dir: envDir("ATTENDANCE_DIR", "attendance"),
		},
		Portraits: PortraitsConfig{
			Dir: envDir("PORTRAIT_DIR", "portraits"),
		},
		Evidence: EvidenceConfig{
			Dir: envDir("EVIDENCE_DIR", "evidence"),
		},
		Results: ResultsConfig{
			Dir: envDir("RESULTS_DIR", "results"),
		},
		Oracle: OracleConfig{
			URL:   os.Getenv("ORACLE_URL"),
			Model: os.Getenv("ORACLE_MODEL"),
		},
		Extractor: ExtractorConfig{
			URL: os.Getenv("EXTRACTOR_URL"),
		},
		Database: DatabaseConfig{
			Path: os.Getenv("DATABASE_PATH"),
		},
		Batch: BatchConfig{
			Workers:           envInt("BATCH_WORKERS", constants.DefaultWorkers),
			DistanceThreshold: envFloat("DISTANCE_THRESHOLD", constants.DefaultDistanceThreshold),
		},
		Symbols: symbols,
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = cfg.Results.Dir + string(os.PathSeparator) + "rollcall.db"
	}

	return cfg
}

func envDir(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}
