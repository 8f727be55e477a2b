package config

import (
	"os"
	"path/filepath"
	"strings"

	apperrors "topicsdk/internal/core/errors"

	"github.com/BurntSushi/toml"
)

// Load reads a config file. Files ending in .toml are decoded as TOML; any
// other file is read in the line-oriented "key value" format.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound,
				"MISSING CONFIGURATION FILE. You need a configuration file such as configuration.txt or topicsdk.toml")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeIO, "read configuration file")
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeParse, "decode toml configuration")
		}
	} else {
		if err := parseLegacy(string(data), &cfg); err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(path)
	if err == nil {
		cfg.BaseDir = filepath.Dir(abs)
	} else {
		cfg.BaseDir = filepath.Dir(path)
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	normalize(&cfg)
	resolvePaths(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Win32.TopicTypes) == 0 {
		cfg.Win32.TopicTypes = []string{"function"}
	}
	if strings.TrimSpace(cfg.Checkout.Command) == "" {
		cfg.Checkout.Command = "sd edit {path}"
	}
	if cfg.Checkout.Rate <= 0 {
		cfg.Checkout.Rate = 10
	}
	if cfg.Checkout.Burst <= 0 {
		cfg.Checkout.Burst = 1
	}
	if cfg.Cache.TopicCacheSize <= 0 {
		cfg.Cache.TopicCacheSize = 512
	}
	if len(cfg.Tasks) == 0 {
		cfg.Tasks = []string{TaskWinRTReport}
	}
}

func normalize(cfg *Config) {
	cfg.EnlistmentDir = expandEnlistment(strings.TrimSpace(cfg.EnlistmentDir))
	cfg.StubDir = strings.TrimSpace(cfg.StubDir)
	cfg.UWPProjects = dedupe(cfg.UWPProjects)
	cfg.WinRTProjects = dedupe(cfg.WinRTProjects)
	cfg.UWPExcludedTypes = dedupe(cfg.UWPExcludedTypes)
	cfg.Tasks = dedupe(cfg.Tasks)
	cfg.Win32.TopicTypes = dedupe(cfg.Win32.TopicTypes)

	prefixes := make([]string, 0, len(cfg.ReferencePrefixes))
	for _, p := range cfg.ReferencePrefixes {
		// "w_" and "w" name the same prefix.
		p = strings.TrimSuffix(strings.TrimSpace(p), "_")
		if p == "" {
			continue
		}
		prefixes = appendUnique(prefixes, p)
	}
	cfg.ReferencePrefixes = prefixes
}

func resolvePaths(cfg *Config) {
	if strings.TrimSpace(cfg.Paths.LogsDir) == "" {
		cfg.Paths.LogsDir = cfg.BaseDir
	} else {
		cfg.Paths.LogsDir = ResolveRelative(cfg.BaseDir, cfg.Paths.LogsDir)
	}
	resolveOptional(cfg.BaseDir, &cfg.Paths.ModuleDB)
	resolveOptional(cfg.BaseDir, &cfg.Paths.HistoryDB)
	resolveOptional(cfg.BaseDir, &cfg.Mappings.RetitleMap)
	resolveOptional(cfg.BaseDir, &cfg.Mappings.InjectedTypes)
	resolveOptional(cfg.BaseDir, &cfg.Win32.InjectedInterfaces)
	resolveOptional(cfg.BaseDir, &cfg.Observability.MetricsFile)
}

func resolveOptional(base string, target *string) {
	if strings.TrimSpace(*target) == "" {
		*target = ""
		return
	}
	*target = ResolveRelative(base, *target)
}

// Validate checks the settings every run needs.
func Validate(cfg *Config) error {
	if cfg.EnlistmentDir == "" {
		return apperrors.New(apperrors.CodeValidationError,
			"MISSING ENLISTMENT FOLDER CONFIG INFO. Your configuration needs to contain something like: my_enlistment_folder D:\\Source_Depot\\devdocmain")
	}
	info, err := os.Stat(cfg.EnlistmentDir)
	if err != nil || !info.IsDir() {
		return apperrors.Newf(apperrors.CodeValidationError, "enlistment folder %s does not exist", cfg.EnlistmentDir)
	}
	if cfg.StubDir == "" {
		return apperrors.New(apperrors.CodeValidationError,
			"MISSING API REFERENCE STUB FOLDER CONFIG INFO. Your configuration needs to contain something like: api_ref_stub_folder \\\\server\\winrt\\latest")
	}
	for _, task := range cfg.Tasks {
		if !knownTasks[task] {
			return apperrors.Newf(apperrors.CodeValidationError, "unknown task %q", task)
		}
	}
	if cfg.HasTask(TaskRetitle) && cfg.Mappings.RetitleMap == "" {
		return apperrors.New(apperrors.CodeValidationError, "task retitle requires retitle_map")
	}
	if cfg.HasTask(TaskWin32Report) && cfg.Paths.ModuleDB == "" {
		return apperrors.New(apperrors.CodeValidationError, "task win32-report requires module_db")
	}
	if !strings.Contains(cfg.Checkout.Command, "{path}") {
		return apperrors.Newf(apperrors.CodeValidationError, "checkout command %q must contain {path}", cfg.Checkout.Command)
	}
	return nil
}
