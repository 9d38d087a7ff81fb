package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult represents the result of dir checks
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists reports whether path can be stat'ed.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0o755)
}

// SaveTOMLFile encodes data into filePath. The file is written next to its final name and
// renamed into place, so readers never see a half written file.
func SaveTOMLFile(data any, filePath string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*")
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = toml.NewEncoder(tmp).Encode(data); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

// AbsPath returns path made absolute, or path itself when that fails.
func AbsPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func testWriteAccess(dirPath string) bool {
	f, err := os.CreateTemp(dirPath, ".write_test*")
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dirPath, err)
		return false
	}
	f.Close()
	os.Remove(f.Name())
	return true
}

// GetExecutableDir returns the directory of the running binary.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus creates dirPath when missing and tests whether it is writable.
func CheckDirStatus(dirPath string) DirCheckResult {
	var result DirCheckResult
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		result.Error = err
		log.Warnf("Cannot create directory %s: %v", dirPath, err)
		return result
	}
	result.Exists = true
	result.Writable = testWriteAccess(dirPath)
	return result
}
