package hosttest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hannesdelbeke/maya-security-tools/internal/host"
)

// Sample artifacts as the dropper writes them.
const (
	MelHeader = "// Maya Mel UI Configuration File.Maya Mel UI Configuration File..\n// \n//\n//  This script is machine generated.  Edit at your own risk"

	InfectedPy = "import vaccine\nimport maya.cmds as cmds\n" +
		"cmds.evalDeferred('leukocyte = vaccine.phage()')\n" +
		"cmds.evalDeferred('leukocyte.occupation()')\n"

	InfectedCompanion = "import maya.cmds as cmds\n" +
		"petri_dish_path = cmds.internalVar(userAppDir=True) + 'scripts/userSetup.py'\n"

	NodeBody = "// This script is machine generated.  Edit at your own risk\n" +
		"python(\"...\"); // fuck_All_U\n"

	JobDescription = "python(\"leukocyte.antivirus()\")"
)

// InfectedMel returns a userSetup.mel body that matches the mel signature.
func InfectedMel() string {
	body := MelHeader + "\nglobal proc UI_Mel_Configuration_think(){ string $chengxu = \"\"; }\n"
	return body + strings.Repeat("/", 4118-len(body))
}

// InfectedNode returns the script node the infection plants in scenes.
func InfectedNode(name string) host.ScriptNode {
	return host.ScriptNode{Name: name, Body: NodeBody}
}

// WriteScript writes a script into the fake's scripts directory.
func (f *Fake) WriteScript(name, content string) (string, error) {
	dir := filepath.Join(f.Dir, "scripts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, name)
	return p, os.WriteFile(p, []byte(content), 0o644)
}
