package cpu

import (
	"os"
	"path/filepath"
	"strings"
)

// Sysfs abstracts the cpufreq sysfs tree so topology detection and
// governor writes are testable against a fake filesystem.
type Sysfs interface {
	Read(path string) (string, error)
	Write(path, value string) error
	Glob(pattern string) ([]string, error)
}

type hostSysfs struct{}

// Host returns the real /sys-backed implementation.
func Host() Sysfs { return hostSysfs{} }

func (hostSysfs) Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (hostSysfs) Write(path, value string) error {
	return os.WriteFile(path, []byte(value), 0644)
}

func (hostSysfs) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}
