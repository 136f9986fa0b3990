package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hannesdelbeke/maya-security-tools/internal/confirm"
	"github.com/hannesdelbeke/maya-security-tools/internal/report"
	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

var bothChoices = []string{report.SaveAndQuit, report.QuitWithoutSaving}

// resolveEvent makes the post-event decision for a file callback that found
// issues: warn, offer to save and quit, and quit with the exit code.
// Reference loads only warn; the enclosing open reports them.
func (e *Engine) resolveEvent(res *Result) {
	if res.Tally.Clean() {
		return
	}
	res.ExitCode = types.ExitIssuesFound
	proc := e.host.Process()
	doc := e.host.Document()
	batch := proc.IsHeadless()
	unnamed := doc.Path() == ""
	ext := res.Tally.Dominant.Extension()

	warnCase := "FileCallback"
	switch {
	case res.Kind.IsReference():
		warnCase = "ReferenceCallback"
	case res.Kind == types.OpImport && unnamed:
		warnCase = "Import No Scene Name"
	}
	proc.Warn(report.DetectedCorrupted(warnCase, filepath.Base(res.Target)))
	if res.Kind.IsReference() {
		return
	}

	quarantined := filepath.Join(e.cfg.QuarantineDir, filepath.Base(res.Target))
	if err := os.MkdirAll(e.cfg.QuarantineDir, 0o755); err != nil {
		e.log.Error(fmt.Sprintf("could not create %s: %v", e.cfg.QuarantineDir, err))
	}
	renamed := false
	rename := func() {
		if err := doc.Rename(quarantined); err != nil {
			e.log.Error(fmt.Sprintf("could not rename scene to %s: %v", quarantined, err))
			return
		}
		renamed = true
	}

	switch {
	case len(res.Unresolved) > 0:
		res.Choice = e.choose(report.CorruptedReferences(res.Unresolved), []string{report.QuitWithoutSaving}, report.QuitWithoutSaving)
		if batch && unnamed {
			rename()
		}
	case unnamed:
		rename()
		res.Choice = e.choose(report.UnnamedQuarantine(quarantined), bothChoices, report.SaveAndQuit)
	case !res.Tally.FullyFixed():
		res.Choice = e.choose(report.NotFullyFixed(ext), bothChoices, report.QuitWithoutSaving)
	default:
		res.Choice = e.choose(report.AttemptedFix(ext), bothChoices, report.SaveAndQuit)
	}

	if batch || res.Choice == report.SaveAndQuit {
		e.save(res)
	}
	if batch {
		proc.Warn(report.BatchNotice(ext, e.cfg.QuarantineDir, renamed))
	}
	switch res.Choice {
	case report.QuitWithoutSaving:
		// Drop whatever the references left behind before leaving.
		if err := doc.New(); err != nil {
			e.log.Error(fmt.Sprintf("could not clear the scene: %v", err))
		}
		e.quit(res)
	case report.SaveAndQuit:
		e.quit(res)
	}
}

// resolveScan makes the end-of-scan decision for an explicit scan of one
// document. A scan that found issues always quits.
func (e *Engine) resolveScan(res *Result) {
	proc := e.host.Process()
	if res.Tally.Clean() {
		proc.Info(report.ScanCompleted(e.log.Path(), true))
		return
	}
	res.ExitCode = types.ExitIssuesFound
	proc.Warn(report.ScanCompleted(e.log.Path(), false))
	ext := res.Tally.Dominant.Extension()
	batch := proc.IsHeadless()
	unnamed := e.host.Document().Path() == ""

	switch {
	case unnamed:
		res.Choice = e.choose(report.UnnamedCannotSave(), []string{report.QuitWithoutSaving}, report.QuitWithoutSaving)
	case !res.Tally.FullyFixed():
		res.Choice = e.choose(report.NotFullyFixed(ext), bothChoices, report.QuitWithoutSaving)
	default:
		res.Choice = e.choose(report.AttemptedFix(ext), bothChoices, report.SaveAndQuit)
	}
	if !unnamed && (batch || res.Choice == report.SaveAndQuit) {
		e.save(res)
	}
	if batch {
		proc.Warn(report.BatchNotice(ext, e.cfg.QuarantineDir, false))
	}
	e.quit(res)
}

// resolveDirectory reports a directory scan. Scenes were saved as they were
// fixed, so the exit code only says whether every infected scene made it.
func (e *Engine) resolveDirectory(res *Result, unsaved int) {
	proc := e.host.Process()
	for _, p := range res.Skipped {
		proc.Warn(fmt.Sprintf("Skipped unsupported or unreadable scene: %s", p))
	}
	if res.Tally.Clean() {
		proc.Info(report.ScanCompleted(e.log.Path(), true))
		return
	}
	res.ExitCode = types.ExitIssuesFound
	if res.Tally.FullyFixed() && unsaved == 0 {
		res.ExitCode = types.ExitFixedSaved
	}
	proc.Warn(report.ScanCompleted(e.log.Path(), false))
	if proc.IsHeadless() {
		proc.Warn(report.BatchNotice(res.Tally.Dominant.Extension(), e.cfg.QuarantineDir, false))
	}
	e.quit(res)
}

// choose asks the user, or takes the default when there is nobody to ask.
// A dismissed or failed dialog counts as quitting without saving.
func (e *Engine) choose(msg string, options []string, def string) string {
	if e.host.Process().IsHeadless() {
		return def
	}
	got, err := e.host.Dialogs().Choose(report.DialogTitle, report.FormatLocal(msg), options, def)
	if err != nil || got == "" {
		return report.QuitWithoutSaving
	}
	return got
}

// save writes the document and, when every finding was fixed, marks the
// operation as fixed and saved.
func (e *Engine) save(res *Result) {
	// Report-only runs never write the scene.
	if e.cfg.Mode == confirm.Silent {
		return
	}
	doc := e.host.Document()
	if err := doc.Save(); err != nil {
		e.log.Error(fmt.Sprintf("could not save %s: %v", doc.Path(), err))
		e.host.Process().Warn(fmt.Sprintf("could not save scene: %v", err))
		return
	}
	res.Saved = append(res.Saved, doc.Path())
	// A scene saved with findings left in it still exits as not fixed.
	if res.Tally.FullyFixed() {
		res.ExitCode = types.ExitFixedSaved
	}
}

func (e *Engine) quit(res *Result) {
	res.Quit = true
	e.host.Process().Quit(res.ExitCode)
}
