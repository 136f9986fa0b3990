package offline

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppDirEnv overrides the Maya user directory, as in Maya itself.
const AppDirEnv = "MAYA_APP_DIR"

// QuarantineDirName is the folder under the prefs dir that receives unnamed
// scenes saved after a fix.
const QuarantineDirName = "QUARANTINED"

// DefaultPrefsDir returns the Maya user directory for the running platform.
func DefaultPrefsDir() string {
	return prefsDirFor(runtime.GOOS, os.Getenv(AppDirEnv), homeDir())
}

func prefsDirFor(goos, appDir, home string) string {
	if appDir != "" {
		return appDir
	}
	switch goos {
	case "windows":
		return filepath.Join(home, "Documents", "maya")
	case "darwin":
		return filepath.Join(home, "Library", "Preferences", "Autodesk", "maya")
	default:
		return filepath.Join(home, "maya")
	}
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ScriptsDir is the user scripts folder under prefs.
func ScriptsDir(prefs string) string { return filepath.Join(prefs, "scripts") }

// QuarantineDir is the QUARANTINED folder under prefs.
func QuarantineDir(prefs string) string { return filepath.Join(prefs, QuarantineDirName) }
