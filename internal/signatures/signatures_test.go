package signatures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// InfectedMel returns a userSetup.mel body that satisfies the mel rule.
func infectedMel() string {
	body := melHeader + "\nglobal proc x(){ " + melVar + " = \"\"; }\n"
	return body + strings.Repeat("/", MelMinLength-len(body))
}

func TestMatchScriptFile_CompromisedShortCircuits(t *testing.T) {
	s := Default()
	for _, v := range []types.ScriptVariant{types.VariantMel, types.VariantPy, types.VariantCompanion} {
		got := s.MatchScriptFile(v, "print('hi')\n// "+CompromisedMarker)
		assert.True(t, got.Matched, v.String())
		assert.True(t, got.Compromised, v.String())
		assert.False(t, got.Unverifiable)
	}
}

func TestMatchScriptFile_Mel(t *testing.T) {
	s := Default()
	assert.True(t, s.MatchScriptFile(types.VariantMel, infectedMel()).Matched)

	short := melHeader + melVar
	assert.False(t, s.MatchScriptFile(types.VariantMel, short).Matched, "below the length threshold")

	noVar := strings.Repeat("x", MelMinLength) + melHeader
	assert.False(t, s.MatchScriptFile(types.VariantMel, noVar).Matched)

	assert.False(t, s.MatchScriptFile(types.VariantMel, "// my own userSetup\nloadPlugin \"foo\";\n").Matched)
}

func TestMatchScriptFile_Py(t *testing.T) {
	s := Default()
	infected := "import vaccine\n" + pyPhage + "\n" + pyOccupation + "\n"
	assert.True(t, s.MatchScriptFile(types.VariantPy, infected).Matched)
	assert.False(t, s.MatchScriptFile(types.VariantPy, pyPhage).Matched, "both literals are required")
	assert.False(t, s.MatchScriptFile(types.VariantPy, "import maya.cmds as cmds\n").Matched)
}

func TestMatchScriptFile_Companion(t *testing.T) {
	s := Default()

	full := s.MatchScriptFile(types.VariantCompanion, "x\n"+companionMarker+"'\n")
	assert.True(t, full.Matched)
	assert.False(t, full.Unverifiable)

	partial := s.MatchScriptFile(types.VariantCompanion, "import maya.cmds as cmds\npetri_di")
	assert.True(t, partial.Matched)
	assert.True(t, partial.Unverifiable)
	assert.Contains(t, partial.Evidence, "unverifiable")

	assert.False(t, s.MatchScriptFile(types.VariantCompanion, "").Matched, "empty helper is not flagged")

	lenient := Set{HelperPolicy: HelperIgnore}
	assert.False(t, lenient.MatchScriptFile(types.VariantCompanion, "import maya.cmds").Matched)
	assert.True(t, lenient.MatchScriptFile(types.VariantCompanion, companionMarker).Matched)
}

func TestParseHelperPolicy(t *testing.T) {
	assert.Equal(t, HelperIgnore, ParseHelperPolicy(" Ignore "))
	assert.Equal(t, HelperQuarantine, ParseHelperPolicy(""))
	assert.Equal(t, HelperQuarantine, ParseHelperPolicy("bogus"))
}

func TestMatchScriptNode(t *testing.T) {
	s := Default()
	body := "// " + nodeBodyHeader + "\n" + CompromisedMarker
	cases := []struct {
		name string
		body string
		want bool
	}{
		{"MayaMelUIConfigurationFile1", body, true},
		{"|grp|ns:MayaMelUIConfigurationFile", body, true},
		{"MayaMelUIConfigurationFile", "// " + nodeBodyHeader, false},
		{"uiConfigurationScriptNode", body, false},
		{"vaccine_gene", "", true},
		{"ref:breed_gene", "anything", true},
		{"sceneConfigurationScriptNode", "", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, s.MatchScriptNode(c.name, c.body), c.name)
	}
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "node", ShortName("|a|b:c|ns:node"))
	assert.Equal(t, "node", ShortName("node"))
}

func TestMatchBackgroundJob(t *testing.T) {
	s := Default()

	id, ok := s.MatchBackgroundJob("57: python(\"leukocyte.antivirus()\")", 0, false)
	assert.True(t, ok)
	assert.Equal(t, 57, id)

	id, ok = s.MatchBackgroundJob("12: event=SceneSaved autoUpdatcAttrEd", 12, true)
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = s.MatchBackgroundJob("123: event=idle other", 12, true)
	assert.False(t, ok, "recorded id is matched on a number boundary")

	_, ok = s.MatchBackgroundJob("abc: leukocyte.antivirus()", 0, false)
	assert.False(t, ok, "non-numeric prefix is rejected")

	_, ok = s.MatchBackgroundJob("4: event=idle myTool()", 0, false)
	assert.False(t, ok)
}

func TestMatchGlobal(t *testing.T) {
	s := Default()
	for _, g := range Globals {
		assert.True(t, s.MatchGlobal(g, true), g)
		assert.False(t, s.MatchGlobal(g, false), "builtin "+g)
	}
	assert.False(t, s.MatchGlobal("myProc", true))
}

func TestVariantFor(t *testing.T) {
	assert.Equal(t, types.VariantMel, VariantFor(MelScript))
	assert.Equal(t, types.VariantPy, VariantFor(PyScript))
	assert.Equal(t, types.VariantCompanion, VariantFor(CompanionScript))
	assert.Equal(t, types.VariantNone, VariantFor("other.py"))
	assert.Len(t, ScriptNames(), 3)
	assert.NotEmpty(t, IDs())
}
