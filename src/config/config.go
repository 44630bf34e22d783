package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"screen-fixed-crop/src/overlay"
	"screen-fixed-crop/src/screenshot"
)

const (
	EnvFileEnvVar        = "SCREEN_CROP_ENV"
	DefaultOutputDirName = "Screenshot Outputs"
	DefaultHotkey        = "Ctrl+Alt+S"
	DefaultRatio         = "Custom"
	DefaultNotifyTimeout = 2000 * time.Millisecond
	DefaultHideDelay     = 250 * time.Millisecond
)

// LoadOptions carries command-line overrides. Empty strings and zero values
// leave the environment value in place.
type LoadOptions struct {
	OutputDirOverride string
	HotkeyOverride    *string
	RatioOverride     string
	WidthOverride     int
	HeightOverride    int
	BackendOverride   string
}

type Config struct {
	OutputDir         string
	Hotkey            string
	DefaultRatio      string
	DefaultWidth      int
	DefaultHeight     int
	OverlayBackend    string
	OutsideFill       string
	NotifyTimeout     time.Duration
	HideDelay         time.Duration
	ShowHints         bool
	EnableFileLogging bool
	EnvPath           string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CROP_ENV as a path to a config file
	// Values already in the process environment win over the file.
	envPath := resolveEnvPath()
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		OutputDir:         resolveOutputDir(opts),
		Hotkey:            resolveHotkey(opts),
		DefaultRatio:      firstNonEmpty(opts.RatioOverride, getEnvWithDefault("DEFAULT_RATIO", DefaultRatio)),
		DefaultWidth:      firstPositive(opts.WidthOverride, getEnvInt("DEFAULT_WIDTH", 0)),
		DefaultHeight:     firstPositive(opts.HeightOverride, getEnvInt("DEFAULT_HEIGHT", 0)),
		OverlayBackend:    resolveBackend(firstNonEmpty(opts.BackendOverride, os.Getenv("OVERLAY_BACKEND"))),
		OutsideFill:       resolveFill(os.Getenv("OUTSIDE_FILL")),
		NotifyTimeout:     getEnvMillis("NOTIFY_TIMEOUT_MS", DefaultNotifyTimeout),
		HideDelay:         getEnvMillis("HIDE_DELAY_MS", DefaultHideDelay),
		ShowHints:         getEnvBool("SHOW_HINTS", true),
		EnableFileLogging: getEnvBool("ENABLE_FILE_LOGGING", false),
		EnvPath:           envPath,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveOutputDir(opts LoadOptions) string {
	dir := firstNonEmpty(opts.OutputDirOverride, os.Getenv("OUTPUT_DIR"))
	if dir == "" {
		dir = DefaultOutputDirName
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, dir)
	}
	return dir
}

// resolveHotkey allows an explicit empty value to disable the hotkey.
func resolveHotkey(opts LoadOptions) string {
	if opts.HotkeyOverride != nil {
		return strings.TrimSpace(*opts.HotkeyOverride)
	}
	if v, ok := os.LookupEnv("HOTKEY"); ok {
		return strings.TrimSpace(v)
	}
	return DefaultHotkey
}

func resolveBackend(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case overlay.BackendNative:
		return overlay.BackendNative
	default:
		return overlay.BackendFyne
	}
}

func resolveFill(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), screenshot.FillBlack) {
		return screenshot.FillBlack
	}
	return screenshot.FillTransparent
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
