package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the on-disk locations used by devchat
type Paths struct {
	ConfigDir string // base directory for config, credentials and cache
}

// DetectPaths resolves the devchat directory, honouring an explicit override
func DetectPaths(override string) (Paths, error) {
	if override != "" {
		return Paths{ConfigDir: override}, nil
	}

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return Paths{ConfigDir: filepath.Join(dir, "devchat")}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library/Application Support/devchat")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			base = filepath.Join(appData, "devchat")
		} else {
			base = filepath.Join(home, "AppData", "Roaming", "devchat")
		}
	default:
		base = filepath.Join(home, ".config", "devchat")
	}

	return Paths{ConfigDir: base}, nil
}

// CredentialsPath returns the path to the stored credential file
func (p Paths) CredentialsPath() string {
	return filepath.Join(p.ConfigDir, "credentials.yaml")
}

// CachePath returns the path to the session list cache database
func (p Paths) CachePath() string {
	return filepath.Join(p.ConfigDir, "sessions.db")
}

// EnvFilePath returns the path to an optional dotenv file inside the config dir
func (p Paths) EnvFilePath() string {
	return filepath.Join(p.ConfigDir, ".env")
}

// HistoryPath returns the path to the chat prompt history
func (p Paths) HistoryPath() string {
	return filepath.Join(p.ConfigDir, "chat_history")
}

// Ensure creates the config directory if it does not exist
func (p Paths) Ensure() error {
	return os.MkdirAll(p.ConfigDir, 0700)
}

// Exists reports whether the config directory exists
func (p Paths) Exists() bool {
	info, err := os.Stat(p.ConfigDir)
	return err == nil && info.IsDir()
}

// IsCIEnvironment detects if we're running in a CI/CD environment
func IsCIEnvironment() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
		"CIRCLECI",
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}
