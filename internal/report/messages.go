package report

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Dialog buttons of the post-scan decision.
const (
	SaveAndQuit       = "Save and Quit"
	QuitWithoutSaving = "Quit without Saving"
)

// DialogTitle titles every summary dialog.
const DialogTitle = "MayaScanner"

var plainReplacer = strings.NewReplacer(
	"  ", "\n",
	"<br>", "\n",
	"<b>", "",
	"</b>", "",
	"<ol>", "\n",
	"</ol>", "",
	"<ul>", "\n",
	"</ul>", "",
	"<li>", "  - ",
	"</li>", "\n",
)

// FormatMessage adapts a dialog message to the platform's dialogs. Windows
// dialogs ignore the markup, so the tags become newlines and bullets there;
// other platforms render it as is.
func FormatMessage(msg, goos string) string {
	if goos == "windows" {
		return plainReplacer.Replace(msg)
	}
	return msg
}

// FormatLocal is FormatMessage for the running platform.
func FormatLocal(msg string) string { return FormatMessage(msg, runtime.GOOS) }

// Plain strips the dialog markup regardless of platform, for terminals.
func Plain(msg string) string { return FormatMessage(msg, "windows") }

// CorruptedReferences lists references that could not be cleaned.
func CorruptedReferences(paths []string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, p := range paths {
		b.WriteString("<li>" + filepath.Base(p) + "</li>")
	}
	b.WriteString("</ul>")
	return "Found corrupted scene during reference load.<br>" +
		"We are unable to clean the referenced file(s):" +
		b.String() +
		"<br><br>We recommend that you:<ol>" +
		"<li><b>Quit</b> Maya.</li>" +
		"<li>Load scene(s) separately or fix offline.</li></ol><br>"
}

// UnnamedQuarantine offers to save an unnamed scene into the quarantine folder.
func UnnamedQuarantine(path string) string {
	return fmt.Sprintf("Found corrupted scene, No scene name.<br>"+
		"Attempting to save to: '%s' before quitting Maya ?", path)
}

// UnnamedCannotSave is shown after an explicit scan of an unnamed scene.
func UnnamedCannotSave() string {
	return "Found corrupted scene, No scene name, cannot save.<br>" +
		"We recommend that you:<ol>" +
		"<li><b>Quit</b> Maya.</li>" +
		"<li>Load scene separately or fix offline.</li></ol><br>"
}

// NotFullyFixed is shown when at least one finding was left in place.
func NotFullyFixed(ext string) string {
	return "Found corrupted scene, not fully fixed.<br>" +
		"We recommend that you:<ol>" +
		"<li><b>Quit</b> Maya.</li>" +
		fmt.Sprintf("<li>Check userSetup.%s and scene file scriptNodes.</li>", ext) +
		"<li>Start new Maya session.</li></ol><br>"
}

// AttemptedFix is shown when every finding was fixed.
func AttemptedFix(ext string) string {
	return "Found corrupted scene, attempted to fix.<br>" +
		"We recommend that you:<ol>" +
		"<li><b>Save</b> the current scene.</li>" +
		"<li>Quit Maya.</li>" +
		fmt.Sprintf("<li>Check userSetup.%s and scene file scriptNodes.</li>", ext) +
		"<li>Start new Maya session.</li></ol><br>"
}

// BatchNotice is the warning printed after a headless auto-save.
func BatchNotice(ext, quarantineDir string, quarantined bool) string {
	msg := "Batch mode : Found corrupted scene, attempted to fix. Please check userSetup." + ext
	if quarantined {
		return msg + ", scene file scriptNodes and '" + quarantineDir + "' folder."
	}
	return msg + " and scene file scriptNodes."
}

// DetectedCorrupted is the warning raised after a file event found issues.
func DetectedCorrupted(event, scene string) string {
	return fmt.Sprintf("%s : detected corrupted scene. Please check scene file '%s'", event, scene)
}

// ScanCompleted points at the session log after an explicit scan.
func ScanCompleted(logPath string, clean bool) string {
	if clean {
		return "Scan completed: no issues found"
	}
	return fmt.Sprintf("Scan completed: see '%s' for issues found", logPath)
}
