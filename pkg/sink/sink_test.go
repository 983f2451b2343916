/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package sink

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/extract"
	"jinr.ru/greenlab/go-cpap/pkg/extract/extracttest"
	"jinr.ru/greenlab/go-cpap/pkg/layers"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
	"jinr.ru/greenlab/go-cpap/pkg/stream"
)

func extraction(t *testing.T, source string) *extract.Extraction {
	set, err := schema.Lookup(schema.DefaultSet)
	require.NoError(t, err)
	p, err := extract.NewPipeline(extract.Options{Set: set})
	require.NoError(t, err)
	h := extracttest.Header{MachineID: 1, SessionID: 2, StartTime: 842323380000, EndTime: 842323440000}
	e, err := p.Extract(source, stream.FromBytes(extracttest.Summary(h)))
	require.NoError(t, err)
	return e
}

func TestOutputName(t *testing.T) {
	e := extraction(t, "/card/DATALOG/SESSION.001")
	assert.Equal(t, "1996-09-10_02-43-00.txt", OutputName(Options{Naming: config.NamingTimestamp}, e))
	assert.Equal(t, "SESSION_extracted.yaml", OutputName(Options{Naming: config.NamingSource, Format: config.FormatYAML}, e))

	noStart := &extract.Extraction{Source: "x/OTHER.001"}
	assert.Equal(t, "OTHER_extracted.json", OutputName(Options{Naming: config.NamingTimestamp, Format: config.FormatJSON}, noStart))
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	e := extraction(t, "SESSION.001")
	opts := Options{Destination: dir, Naming: config.NamingTimestamp, Format: config.FormatText}

	filename, err := Write(opts, e)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1996-09-10_02-43-00.txt"), filename)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 1+12+1+2)
	assert.Equal(t, "---HEADER---", lines[0])
	assert.Equal(t, "Magic number: 202374880", lines[1])
	assert.Equal(t, "Start time: 1996-09-10 02:43:00", lines[6])
	assert.Equal(t, "End time: 1996-09-10 02:44:00", lines[7])
	assert.Equal(t, "---PENDING---", lines[13])
	assert.Equal(t, "Packet 1: 3 bytes not decoded", lines[14])
	assert.Equal(t, "Packet 2: 1 bytes not decoded", lines[15])
}

func TestWriteAppendAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	e := extraction(t, "SESSION.001")
	opts := Options{Destination: dir, Naming: config.NamingSource, Format: config.FormatText}

	filename, err := Write(opts, e)
	require.NoError(t, err)
	first, err := os.ReadFile(filename)
	require.NoError(t, err)

	_, err = Write(opts, e)
	require.NoError(t, err)
	appended, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 2*len(first), len(appended))

	opts.Overwrite = true
	_, err = Write(opts, e)
	require.NoError(t, err)
	overwritten, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, first, overwritten)
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	e := extraction(t, "SESSION.001")
	filename, err := Write(Options{Destination: dir, Naming: config.NamingSource, Format: config.FormatJSON}, e)
	require.NoError(t, err)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	doc := &Document{}
	require.NoError(t, json.Unmarshal(data, doc))
	assert.Equal(t, "SESSION.001", doc.Source)
	assert.Equal(t, schema.SummaryV2, doc.Set)
	require.Len(t, doc.Header, 12)
	assert.Equal(t, DocumentField{Name: "Session ID", Type: "uint32", Value: float64(2)}, doc.Header[4])
	assert.Equal(t, "1996-09-10 02:43:00", doc.Header[5].Value)
	assert.Equal(t, []int{3, 1}, doc.Pending)
	require.Len(t, doc.Diagnostics, 1)
}

func TestWriteYAML(t *testing.T) {
	dir := t.TempDir()
	e := extraction(t, "SESSION.001")
	filename, err := Write(Options{Destination: dir, Naming: config.NamingSource, Format: config.FormatYAML}, e)
	require.NoError(t, err)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	doc := &Document{}
	require.NoError(t, yaml.Unmarshal(data, doc))
	assert.Equal(t, "Start time", doc.Header[5].Name)
}

func TestWriteAppendedDocuments(t *testing.T) {
	dir := t.TempDir()
	first := extraction(t, "SESSION.001")
	second := extraction(t, "OTHER/SESSION.001")

	opts := Options{Destination: dir, Naming: config.NamingTimestamp, Format: config.FormatJSON}
	filename, err := Write(opts, first)
	require.NoError(t, err)
	_, err = Write(opts, second)
	require.NoError(t, err)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	var sources []string
	for _, line := range lines {
		doc := &Document{}
		require.NoError(t, json.Unmarshal([]byte(line), doc))
		sources = append(sources, doc.Source)
	}
	assert.Equal(t, []string{"SESSION.001", "OTHER/SESSION.001"}, sources)

	opts.Format = config.FormatYAML
	filename, err = Write(opts, first)
	require.NoError(t, err)
	_, err = Write(opts, second)
	require.NoError(t, err)

	data, err = os.ReadFile(filename)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), YAMLSeparator))
	documents := strings.Split(strings.TrimPrefix(string(data), YAMLSeparator), "\n"+YAMLSeparator)
	require.Len(t, documents, 2)
	sources = nil
	for _, document := range documents {
		doc := &Document{}
		require.NoError(t, yaml.Unmarshal([]byte(document), doc))
		require.Len(t, doc.Header, 12)
		sources = append(sources, doc.Source)
	}
	assert.Equal(t, []string{"SESSION.001", "OTHER/SESSION.001"}, sources)
}

func TestWriteMissingDestination(t *testing.T) {
	e := extraction(t, "SESSION.001")
	_, err := Write(Options{Destination: filepath.Join(t.TempDir(), "missing")}, e)
	var notFound ErrDestinationNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestDocumentNaN(t *testing.T) {
	e := &extract.Extraction{
		Source: "nan",
		Header: layers.Record{Fields: []layers.DecodedField{
			{Name: "Pressure", Type: schema.Float64, Value: math.NaN()},
		}},
	}
	data, err := json.Marshal(NewDocument(e))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"value":"NaN"`)
}

func TestWriterSections(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.txt")
	w, err := NewWriter(filename, false)
	require.NoError(t, err)
	require.NoError(t, w.WriteSection("body 1", []string{"a: 1"}))
	require.NoError(t, w.WriteSection("", nil))
	require.NoError(t, w.Flush())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "---BODY 1---\na: 1\n", string(data))
}
