package core

import (
	"encoding/json"
	"io"
)

// MarshalOutcomes pretty-prints outcomes as JSON for humans or pipelines.
func MarshalOutcomes(w io.Writer, outcomes []Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}

// UnmarshalOutcomes decodes outcomes JSON, useful for ingestion tests.
func UnmarshalOutcomes(r io.Reader) ([]Outcome, error) {
	var out []Outcome
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
