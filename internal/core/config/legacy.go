package config

import (
	"bufio"
	"strconv"
	"strings"

	apperrors "topicsdk/internal/core/errors"
)

// parseLegacy reads the line-oriented "key value" format. Lines starting with
// "//" and blank lines are ignored; unknown keys are skipped.
func parseLegacy(content string, cfg *Config) error {
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		key, value := splitLegacyLine(line)
		if err := applyLegacyKey(cfg, key, value); err != nil {
			return apperrors.AddContext(err, "line", strconv.Itoa(lineNo))
		}
	}
	if err := scanner.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeIO, "scan configuration file")
	}
	return nil
}

func splitLegacyLine(line string) (string, string) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx+1:])
}

func applyLegacyKey(cfg *Config, key, value string) error {
	switch key {
	case "my_enlistment_folder":
		cfg.EnlistmentDir = value
	case "api_ref_stub_folder":
		cfg.StubDir = value
	case "dryrun":
		cfg.DryRun = value == "1" || strings.EqualFold(value, "true")
	case "uwp_proj":
		cfg.UWPProjects = append(cfg.UWPProjects, value)
	case "uwp_exclude_type":
		cfg.UWPExcludedTypes = append(cfg.UWPExcludedTypes, value)
	case "winrt_proj":
		cfg.WinRTProjects = append(cfg.WinRTProjects, value)
	case "ref_proj_prefix":
		cfg.ReferencePrefixes = append(cfg.ReferencePrefixes, value)
	case "task":
		cfg.Tasks = append(cfg.Tasks, value)
	case "logs_dir":
		cfg.Paths.LogsDir = value
	case "module_db":
		cfg.Paths.ModuleDB = value
	case "history_db":
		cfg.Paths.HistoryDB = value
	case "metrics_file":
		cfg.Observability.MetricsFile = value
	case "otlp_endpoint":
		cfg.Observability.OTLPEndpoint = value
	case "record_diffs":
		cfg.Observability.RecordDiffs = value == "1" || strings.EqualFold(value, "true")
	case "checkout_command":
		cfg.Checkout.Command = value
	case "checkout_rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeParse, "checkout_rate must be a number")
		}
		cfg.Checkout.Rate = f
	case "win32_topic_type":
		cfg.Win32.TopicTypes = append(cfg.Win32.TopicTypes, value)
	case "retitle_map":
		cfg.Mappings.RetitleMap = value
	case "injected_types":
		cfg.Mappings.InjectedTypes = value
	case "injected_interfaces":
		cfg.Win32.InjectedInterfaces = value
	case "topic_cache_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeParse, "topic_cache_size must be an integer")
		}
		cfg.Cache.TopicCacheSize = n
	}
	return nil
}
