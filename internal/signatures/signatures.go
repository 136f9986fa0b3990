package signatures

import (
	"strconv"
	"strings"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

// Known markers of the MayaMelUIConfigurationFile / vaccine family.
const (
	// CompromisedMarker short-circuits every script-file rule.
	CompromisedMarker = "fuck_All_U"

	melHeader = "// Maya Mel UI Configuration File.Maya Mel UI Configuration File..\n// \n//\n//  This script is machine generated.  Edit at your own risk"
	melVar    = "string $chengxu"
	// MelMinLength is the smallest infected userSetup.mel seen in the wild.
	MelMinLength = 4118

	pyPhage      = "cmds.evalDeferred('leukocyte = vaccine.phage()')"
	pyOccupation = "cmds.evalDeferred('leukocyte.occupation()')"

	companionMarker = "petri_dish_path = cmds.internalVar(userAppDir=True) + 'scripts/userSetup.py"

	nodeName        = "MayaMelUIConfigurationFile"
	nodeBodyHeader  = "This script is machine generated.  Edit at your own risk"
	nodeVaccineGene = "vaccine_gene"
	nodeBreedGene   = "breed_gene"

	jobMarker    = "leukocyte.antivirus()"
	jobDelimiter = ":"

	// JobIDVariable is the MEL int global the mel variant stores its job id in.
	JobIDVariable = "autoUpdateAttrEd_aoto_int"
)

// Well-known script file names in the user scripts directory.
const (
	MelScript       = "userSetup.mel"
	PyScript        = "userSetup.py"
	CompanionScript = "vaccine.py"
)

// Globals lists the MEL procedures the infection defines interactively.
var Globals = []string{
	"UI_Mel_Configuration_think",
	"UI_Mel_Configuration_think_a",
	"UI_Mel_Configuration_think_b",
	"autoUpdateAttrEd_SelectSystem",
	"autoUpdatcAttrEd",
	"autoUpdatoAttrEnd",
}

// HelperPolicy controls what happens when the companion script exists but
// does not carry its marker.
type HelperPolicy string

const (
	// HelperQuarantine flags any non-empty companion script as suspect.
	HelperQuarantine HelperPolicy = "quarantine"
	// HelperIgnore only flags the companion script on a full marker match.
	HelperIgnore HelperPolicy = "ignore"
)

// ParseHelperPolicy returns the policy named by s, defaulting to quarantine.
func ParseHelperPolicy(s string) HelperPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(HelperIgnore)) {
		return HelperIgnore
	}
	return HelperQuarantine
}

// Verdict is the result of matching one script file.
type Verdict struct {
	Matched bool
	// Compromised is set when the short-circuit marker was present.
	Compromised bool
	// Unverifiable is set when the file was flagged without a marker match.
	Unverifiable bool
	Evidence     string
}

// Set is the fixed set of signatures plus the tunable helper policy.
type Set struct {
	HelperPolicy HelperPolicy
}

// Default returns the signature set with the quarantine helper policy.
func Default() Set {
	return Set{HelperPolicy: HelperQuarantine}
}

// ScriptNames returns the well-known script files in scan order.
func ScriptNames() []string {
	return []string{MelScript, PyScript, CompanionScript}
}

// VariantFor maps a well-known script name to its variant.
func VariantFor(name string) types.ScriptVariant {
	switch name {
	case MelScript:
		return types.VariantMel
	case PyScript:
		return types.VariantPy
	case CompanionScript:
		return types.VariantCompanion
	}
	return types.VariantNone
}

// MatchScriptFile applies the rule for the given variant to the full content
// of a script file.
func (s Set) MatchScriptFile(v types.ScriptVariant, content string) Verdict {
	if strings.Contains(content, CompromisedMarker) {
		return Verdict{Matched: true, Compromised: true, Evidence: "Compromised by Malware!"}
	}
	switch v {
	case types.VariantMel:
		if len(content) >= MelMinLength &&
			strings.Contains(content, melHeader) &&
			strings.Contains(content, melVar) {
			return Verdict{Matched: true, Evidence: "Infected by Malware!"}
		}
	case types.VariantPy:
		if strings.Contains(content, pyPhage) && strings.Contains(content, pyOccupation) {
			return Verdict{Matched: true, Evidence: "Infected by Malware!"}
		}
	case types.VariantCompanion:
		if strings.Contains(content, companionMarker) {
			return Verdict{Matched: true, Evidence: "Infected by Malware!"}
		}
		// A crashed dropper can leave the file truncated or garbled.
		if s.HelperPolicy != HelperIgnore && len(content) > 0 {
			return Verdict{
				Matched:      true,
				Unverifiable: true,
				Evidence:     "unverifiable, treat as suspect. Please verify manually.",
			}
		}
	}
	return Verdict{}
}

// ShortName strips DAG path and namespace prefixes from a node name.
func ShortName(name string) string {
	if i := strings.LastIndex(name, "|"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// MatchScriptNode reports whether a script node is part of the infection.
func (s Set) MatchScriptNode(name, body string) bool {
	if strings.Contains(ShortName(name), nodeName) &&
		strings.Contains(body, nodeBodyHeader) &&
		strings.Contains(body, CompromisedMarker) {
		return true
	}
	return strings.Contains(name, nodeVaccineGene) || strings.Contains(name, nodeBreedGene)
}

// MatchBackgroundJob reports whether a job description belongs to the
// infection and returns the job id to cancel. recorded is the id stored in
// JobIDVariable, if the interpreter had one.
func (s Set) MatchBackgroundJob(description string, recorded int, haveRecorded bool) (int, bool) {
	if haveRecorded {
		id := strconv.Itoa(recorded)
		// "12" must not claim job "123".
		if rest, ok := strings.CutPrefix(description, id); ok && (rest == "" || !isDigit(rest[0])) {
			return recorded, true
		}
	}
	if strings.Contains(description, jobMarker) {
		prefix, _, _ := strings.Cut(description, jobDelimiter)
		id, err := strconv.Atoi(strings.TrimSpace(prefix))
		if err != nil || id < 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

// MatchGlobal reports whether name is a known infection procedure that is
// currently defined interactively.
func (s Set) MatchGlobal(name string, interactive bool) bool {
	if !interactive {
		return false
	}
	for _, g := range Globals {
		if g == name {
			return true
		}
	}
	return false
}

// IDs lists the signature identifiers, one per rule.
func IDs() []string {
	return []string{
		"script_file.compromised",
		"script_file.mel",
		"script_file.py",
		"script_file.companion",
		"script_node.mel_ui_configuration",
		"script_node.gene",
		"background_job.recorded_id",
		"background_job.antivirus",
		"interpreter_global.interactive_proc",
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
