package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Convert contains the default conversion settings applied when the CLI
// flags leave a value unset.
type Convert struct {
	Format     string  `toml:"format"`
	Quality    float64 `toml:"quality"`
	ResizeMode string  `toml:"resize_mode"`
	Scale      float64 `toml:"scale"`
	KeepAspect bool    `toml:"keep_aspect"`
	Sequence   bool    `toml:"sequence"`
}

// Intake contains configuration for batch intake.
type Intake struct {
	Previews    bool `toml:"previews"`
	PreviewSize int  `toml:"preview_size"`
}

// Workflow contains orchestration timing and concurrency settings.
type Workflow struct {
	// MaxConcurrent caps in-flight conversions; 0 means no cap.
	MaxConcurrent int `toml:"max_concurrent"`
	// PollInterval is the watch-mode idle sleep in seconds.
	PollInterval int `toml:"poll_interval"`
}

// Export contains output delivery settings.
type Export struct {
	// DownloadDelayMS is the fixed pause between sequential file exports.
	DownloadDelayMS   int    `toml:"download_delay_ms"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
	ZipName           string `toml:"zip_name"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic       string `toml:"ntfy_topic"`
	RequestTimeout  int    `toml:"request_timeout"`
	Batch           bool   `toml:"batch"`
	Errors          bool   `toml:"errors"`
	BatchMinItems   int    `toml:"batch_min_items"`
	BatchMinSeconds int    `toml:"batch_min_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for imagemill.
//
// Sections by subsystem:
//   - Paths: staging, default output, and log directories
//   - Convert: default format/quality/resize policy
//   - Intake: preview thumbnail generation
//   - Workflow: concurrency cap and watch polling
//   - Export: delivery pacing, overwrite policy, zip naming
//   - Notifications: ntfy topic and suppression thresholds
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Convert       Convert       `toml:"convert"`
	Intake        Intake        `toml:"intake"`
	Workflow      Workflow      `toml:"workflow"`
	Export        Export        `toml:"export"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/imagemill/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The resolved path and
// whether a file existed there are returned for CLI reporting.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("imagemill.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Convert.Format = strings.ToLower(strings.TrimSpace(c.Convert.Format))
	c.Convert.ResizeMode = strings.ToLower(strings.TrimSpace(c.Convert.ResizeMode))
	c.Export.ZipName = strings.TrimSpace(c.Export.ZipName)
	if c.Export.ZipName == "" {
		c.Export.ZipName = defaultZipName
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("IMAGEMILL_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// EnsureDirectories creates the directories imagemill relies on. The output
// directory is created on a best-effort basis so sessions can start while the
// destination (for example a network share) is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StagingDir,
		// Session areas written by conversion and intake.
		filepath.Join(c.Paths.StagingDir, "outputs"),
		filepath.Join(c.Paths.StagingDir, "previews"),
		c.Paths.LogDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
