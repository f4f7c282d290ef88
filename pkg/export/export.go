package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/maintsched/core/evaluation"
	"github.com/kilianp07/maintsched/core/formulation"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatYAML     = "yaml"
	FormatSolution = "solution"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatCSV, FormatYAML, FormatSolution}

// Report is the outcome of one run as exported and published.
type Report struct {
	RunID      string                            `json:"run_id" yaml:"run_id"`
	Instance   string                            `json:"instance" yaml:"instance"`
	Status     string                            `json:"status" yaml:"status"`
	SolvedAt   time.Time                         `json:"solved_at" yaml:"solved_at"`
	Schedule   map[string]formulation.Assignment `json:"schedule" yaml:"schedule"`
	Model      formulation.Stats                 `json:"model" yaml:"model"`
	Branches   int64                             `json:"branches" yaml:"branches"`
	WallTimeMS int64                             `json:"wall_time_ms" yaml:"wall_time_ms"`
	Violations []formulation.Violation           `json:"violations,omitempty" yaml:"violations,omitempty"`
	Score      *evaluation.Score                 `json:"score,omitempty" yaml:"score,omitempty"`
}

// Names returns the scheduled intervention names in sorted order.
func (r Report) Names() []string {
	out := make([]string, 0, len(r.Schedule))
	for name := range r.Schedule {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Write encodes r to w in the named format.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case FormatJSON, "":
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatSolution:
		return WriteSolution(w, r)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes the full report to w in indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the full report to w in YAML.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes one row per intervention.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"intervention", "start", "duration", "end"}); err != nil {
		return err
	}
	for _, name := range r.Names() {
		a := r.Schedule[name]
		rec := []string{name, strconv.Itoa(a.Start), strconv.Itoa(a.Duration), strconv.Itoa(a.End)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSolution writes the challenge solution layout: "<intervention> <start>"
// per line.
func WriteSolution(w io.Writer, r Report) error {
	for _, name := range r.Names() {
		if _, err := fmt.Fprintf(w, "%s %d\n", name, r.Schedule[name].Start); err != nil {
			return err
		}
	}
	return nil
}
