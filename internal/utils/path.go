package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config directory.
const AppName = "termserve"

// PathResolver finds index directories and dictionary files given on the command line,
// trying the working directory, the executable's directory and the config directory.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver locates the running executable and the user config directory.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     getConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// getConfigDir returns the platform config directory for AppName.
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, ".config", AppName)
	}
}

// Candidates lists where a user supplied path is looked for, in order.
func (pr *PathResolver) Candidates(userPath string) []string {
	if filepath.IsAbs(userPath) {
		return []string{userPath}
	}
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, userPath))
	}
	return append(candidates,
		filepath.Join(pr.executableDir, userPath),
		filepath.Join(pr.configDir, userPath),
	)
}

// Resolve returns the first candidate of userPath that exists.
func (pr *PathResolver) Resolve(userPath string) (string, error) {
	for _, p := range pr.Candidates(userPath) {
		if FileExists(p) {
			log.Debugf("Resolved %s to %s", userPath, p)
			return p, nil
		}
		log.Debugf("Path candidate not found: %s", p)
	}
	return "", fmt.Errorf("%s: %w", userPath, os.ErrNotExist)
}
