package mayascan

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hannesdelbeke/maya-security-tools/internal/config"
	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/engine"
	"github.com/hannesdelbeke/maya-security-tools/internal/logger"
	"github.com/hannesdelbeke/maya-security-tools/internal/offline"
	"github.com/hannesdelbeke/maya-security-tools/internal/signatures"
	"github.com/hannesdelbeke/maya-security-tools/internal/tui"
	"github.com/hannesdelbeke/maya-security-tools/internal/update"
)

func selfUpdate() (string, error) {
	v := version
	// Use build info if tag overridden at build-time
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(v) == 0 {
				v = s.Value
			}
		}
	}
	return update.SelfUpdate(v)
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// settings is the resolved CLI > local > global configuration.
type settings struct {
	local, global config.FileConfig

	prefs      string
	quarantine string
	logPath    string
	headless   bool
	noColor    bool
	noCache    bool
	policy     signatures.HelperPolicy
	log        *logrus.Logger
}

func loadSettings(dir string) settings {
	var s settings
	if c, err := config.LoadGlobal(); err == nil {
		s.global = c
	}
	if c, err := config.LoadLocal(dir); err == nil {
		s.local = c
	}
	l, g := s.local, s.global

	s.prefs = expandHome(pickString(flagPrefs, l.PrefsDir, g.PrefsDir))
	if s.prefs == "" {
		s.prefs = offline.DefaultPrefsDir()
	}
	s.quarantine = expandHome(pickString("", l.QuarantineDir, g.QuarantineDir))
	s.logPath = expandHome(pickString(flagLogPath, l.LogPath, g.LogPath))
	s.headless = pickBool(flagHeadless, l.Headless, g.Headless)
	s.noColor = pickBool(flagNoColor, l.NoColor, g.NoColor)
	s.noCache = pickBool(flagNoCache, l.NoCache, g.NoCache)
	s.policy = signatures.ParseHelperPolicy(pickString("", l.HelperPolicy, g.HelperPolicy))
	s.log = logger.New(logger.ParseLevel(pickString(flagLogLevel, l.LogLevel, g.LogLevel)))
	return s
}

// newHost returns the offline host. Interactive hosts prompt through the
// terminal dialog unless dialogs is false.
func (s settings) newHost(dialogs bool) *offline.Host {
	opts := offline.Options{
		PrefsDir: s.prefs,
		Headless: s.headless,
		Logger:   s.log,
	}
	if dialogs {
		opts.Dialogs = tui.NewDialogs()
	}
	return offline.New(opts)
}

// engineConfig returns the engine configuration shared by every command.
// Scan history and the last results live next to the scripts directory.
func (s settings) engineConfig() engine.Config {
	return engine.Config{
		DefaultExcludes: flagDefaultExcludes,
		NoCache:         s.noCache,
		Signatures:      signatures.Set{HelperPolicy: s.policy},
		Mode:            confirm.Interactive,
		LogPath:         s.logPath,
		QuarantineDir:   s.quarantine,
		HistoryDir:      s.prefs,
		ResultsDir:      s.prefs,
	}
}
