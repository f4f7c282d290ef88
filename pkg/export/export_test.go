package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/maintsched/core/formulation"
)

func sampleReport() Report {
	return Report{
		RunID:    "run-1",
		Instance: "example",
		Status:   "OPTIMAL",
		Schedule: map[string]formulation.Assignment{
			"I2": {Start: 3, Duration: 1, End: 4},
			"I1": {Start: 1, Duration: 2, End: 3},
		},
	}
}

func TestWriteSolution(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatSolution, sampleReport()))
	assert.Equal(t, "I1 1\nI2 3\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "intervention,start,duration,end", lines[0])
	assert.Equal(t, "I1,1,2,3", lines[1])
}

func TestWriteJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))
	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Schedule["I2"].Start)
	assert.Nil(t, decoded.Score)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, sampleReport()))
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "OPTIMAL", doc["status"])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", sampleReport()))
}
