package report

import (
	"encoding/json"
	"io"

	"github.com/hannesdelbeke/maya-security-tools/internal/types"
)

type sarif struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLoc        `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation *sarifPhys       `json:"physicalLocation,omitempty"`
	LogicalLocations []sarifLogicalLoc `json:"logicalLocations,omitempty"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifLogicalLoc struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func outcomeLevel(o types.Outcome) string {
	if o.Fixed {
		return "note"
	}
	return "error"
}

// WriteSARIF writes outcomes as SARIF 2.1.0 to the provided writer. Script
// files carry a physical location, the other classes a logical one.
func WriteSARIF(w io.Writer, outcomes []types.Outcome, version string) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "mayascan", Version: version}},
		Results: []sarifResult{},
	}
	for _, o := range outcomes {
		f := o.Finding
		loc := sarifLoc{}
		if fl, ok := f.Locator.(types.FileLocator); ok {
			loc.PhysicalLocation = &sarifPhys{ArtifactLocation: sarifArt{URI: fl.Path}}
		} else {
			loc.LogicalLocations = []sarifLogicalLoc{{Name: f.Where(), Kind: string(f.Class)}}
		}
		props := map[string]string{}
		if o.Reason != types.ReasonNone {
			props["reason"] = string(o.Reason)
		}
		if f.Ambiguous {
			props["ambiguous"] = "true"
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:     string(f.Class),
			Level:      outcomeLevel(o),
			Message:    sarifMessage{Text: f.Evidence},
			Locations:  []sarifLoc{loc},
			Properties: props,
		})
	}
	doc := sarif{Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
