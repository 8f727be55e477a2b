package config

import (
	"strings"
)

// Config is the single run context built once at startup and read by every
// component afterwards.
type Config struct {
	EnlistmentDir     string        `toml:"enlistment_dir"`
	StubDir           string        `toml:"stub_dir"`
	DryRun            bool          `toml:"dry_run"`
	UWPProjects       []string      `toml:"uwp_projects"`
	UWPExcludedTypes  []string      `toml:"uwp_excluded_types"`
	WinRTProjects     []string      `toml:"winrt_projects"`
	ReferencePrefixes []string      `toml:"reference_prefixes"`
	Tasks             []string      `toml:"tasks"`
	Paths             Paths         `toml:"paths"`
	Mappings          Mappings      `toml:"mappings"`
	Win32             Win32         `toml:"win32"`
	Checkout          Checkout      `toml:"checkout"`
	Observability     Observability `toml:"observability"`
	Cache             Cache         `toml:"cache"`

	// BaseDir is the directory the config file was read from. Relative paths
	// in Paths and Mappings resolve against it.
	BaseDir string `toml:"-"`
}

type Paths struct {
	LogsDir   string `toml:"logs_dir"`
	ModuleDB  string `toml:"module_db"`
	HistoryDB string `toml:"history_db"`
}

type Mappings struct {
	RetitleMap    string `toml:"retitle_map"`
	InjectedTypes string `toml:"injected_types"`
}

type Win32 struct {
	TopicTypes         []string `toml:"topic_types"`
	InjectedInterfaces string   `toml:"injected_interfaces"`
}

type Checkout struct {
	Command string  `toml:"command"`
	Rate    float64 `toml:"rate"`
	Burst   int     `toml:"burst"`
}

type Observability struct {
	MetricsFile  string `toml:"metrics_file"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	RecordDiffs  bool   `toml:"record_diffs"`
}

type Cache struct {
	TopicCacheSize int `toml:"topic_cache_size"`
}

const (
	TaskWinRTReport = "winrt-report"
	TaskWin32Report = "win32-report"
	TaskRetitle     = "retitle"
)

var knownTasks = map[string]bool{
	TaskWinRTReport: true,
	TaskWin32Report: true,
	TaskRetitle:     true,
}

// DefaultConfig returns a config with defaults applied and no enlistment.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// HasTask reports whether the named task is enabled.
func (c *Config) HasTask(name string) bool {
	for _, t := range c.Tasks {
		if t == name {
			return true
		}
	}
	return false
}

// IsReferencePrefix reports whether prefix (text before the first underscore
// of a project directory name) is one of the configured reference prefixes.
func (c *Config) IsReferencePrefix(prefix string) bool {
	for _, p := range c.ReferencePrefixes {
		if p == prefix {
			return true
		}
	}
	return false
}

// IsExcludedType reports whether "Namespace.Type" is excluded from UWP.
func (c *Config) IsExcludedType(qualified string) bool {
	for _, t := range c.UWPExcludedTypes {
		if t == qualified {
			return true
		}
	}
	return false
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = appendUnique(out, v)
	}
	return out
}
