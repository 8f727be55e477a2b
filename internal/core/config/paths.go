package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const sdkBoxVar = "%SDKBX%"

var percentVar = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// ResolveRelative joins value onto base unless value is already absolute.
func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// expandEnlistment expands %VAR% and $VAR references in an enlistment path.
// The bare value %SDKBX% names the SDK box folder; the enlistment is its parent.
func expandEnlistment(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.EqualFold(raw, sdkBoxVar) {
		box := os.Getenv("SDKBX")
		if box == "" {
			return ""
		}
		return filepath.Dir(filepath.Clean(box))
	}
	expanded := percentVar.ReplaceAllStringFunc(raw, func(m string) string {
		name := strings.Trim(m, "%")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
	return os.ExpandEnv(expanded)
}
