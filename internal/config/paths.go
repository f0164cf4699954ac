package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var windowsVar = regexp.MustCompile(`%([^%]+)%`)

// expandPath expands environment variables and a leading ~ in p.
// On Windows, %VAR% references and a ~\ prefix are expanded too.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsVar.ReplaceAllStringFunc(p, func(ref string) string {
			if v, ok := os.LookupEnv(ref[1 : len(ref)-1]); ok {
				return v
			}
			return ref
		})
	}

	rest, ok := strings.CutPrefix(p, "~")
	if !ok || (rest != "" && !isHomeSeparator(rest[0])) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest[1:])
}

func isHomeSeparator(c byte) bool {
	return c == '/' || (runtime.GOOS == "windows" && c == '\\')
}
