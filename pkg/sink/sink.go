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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/diag"
	"jinr.ru/greenlab/go-cpap/pkg/extract"
	"jinr.ru/greenlab/go-cpap/pkg/layers"
	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/timeconv"
)

const (
	HeaderSection  = "header"
	BodySection    = "body"
	PendingSection = "pending"
	SourceSuffix   = "_extracted"
	// YAMLSeparator starts every yaml document. json outputs hold one
	// document per line.
	YAMLSeparator = "---\n"
)

type Options struct {
	Destination string
	Naming      string
	Format      string
	Overwrite   bool
}

func OptionsFromConfig(cfg *config.ExtractConfig) Options {
	return Options{
		Destination: cfg.Destination,
		Naming:      cfg.Naming,
		Format:      cfg.Format,
		Overwrite:   cfg.Overwrite,
	}
}

func extension(format string) string {
	switch format {
	case config.FormatYAML:
		return ".yaml"
	case config.FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// OutputName picks the output file name: the decoded start time, or the
// source base name when asked to or when there is no usable start time.
func OutputName(opts Options, e *extract.Extraction) string {
	if opts.Naming == config.NamingTimestamp {
		if start, ok := e.StartTime(); ok {
			return timeconv.FileStamp(start) + extension(opts.Format)
		}
		log.Warning("No start time in %s, naming output after the source", e.Source)
	}
	base := filepath.Base(e.Source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + SourceSuffix + extension(opts.Format)
}

type DocumentField struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Document is the structure written by the yaml and json formats and
// returned by the API.
type Document struct {
	Source      string            `json:"source"`
	Set         string            `json:"set"`
	Header      []DocumentField   `json:"header"`
	Body        [][]DocumentField `json:"body,omitempty"`
	Pending     []int             `json:"pending,omitempty"`
	Diagnostics []diag.Entry      `json:"diagnostics,omitempty"`
}

func documentFields(r layers.Record) []DocumentField {
	fields := make([]DocumentField, 0, len(r.Fields))
	for _, f := range r.Fields {
		fields = append(fields, DocumentField{Name: f.Name, Type: f.Type.String(), Value: jsonValue(f.Value)})
	}
	return fields
}

// jsonValue keeps values JSON can not represent (NaN, Inf) as text.
func jsonValue(v interface{}) interface{} {
	switch value := v.(type) {
	case float32:
		if math.IsNaN(float64(value)) || math.IsInf(float64(value), 0) {
			return layers.FormatValue(value)
		}
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return layers.FormatValue(value)
		}
	}
	return v
}

func NewDocument(e *extract.Extraction) *Document {
	doc := &Document{
		Source:      e.Source,
		Set:         e.Set,
		Header:      documentFields(e.Header),
		Diagnostics: e.Diagnostics,
	}
	for _, r := range e.Body {
		doc.Body = append(doc.Body, documentFields(r))
	}
	for _, p := range e.Pending {
		doc.Pending = append(doc.Pending, len(p))
	}
	return doc
}

// Sections renders the text format, one section per record.
func Sections(e *extract.Extraction) ([]string, [][]string) {
	titles := []string{HeaderSection}
	sections := [][]string{e.Header.Lines()}
	for i := range e.Body {
		titles = append(titles, fmt.Sprintf("%s %d", BodySection, i+1))
		sections = append(sections, e.Body[i].Lines())
	}
	if len(e.Pending) > 0 {
		var lines []string
		for i, p := range e.Pending {
			lines = append(lines, fmt.Sprintf("Packet %d: %d bytes not decoded", i+1, len(p)))
		}
		titles = append(titles, PendingSection)
		sections = append(sections, lines)
	}
	return titles, sections
}

// Write stores the extraction in the destination directory and returns the
// path written.
func Write(opts Options, e *extract.Extraction) (string, error) {
	info, err := os.Stat(opts.Destination)
	if err != nil || !info.IsDir() {
		return "", ErrDestinationNotFound{Path: opts.Destination}
	}

	filename := filepath.Join(opts.Destination, OutputName(opts, e))
	log.Info("Now writing %s to %s", e.Source, filename)

	w, err := NewWriter(filename, opts.Overwrite)
	if err != nil {
		return "", err
	}

	switch opts.Format {
	case config.FormatYAML:
		err = writeMarshaled(w, yaml.Marshal, YAMLSeparator, "", e)
	case config.FormatJSON:
		err = writeMarshaled(w, json.Marshal, "", "\n", e)
	default:
		titles, sections := Sections(e)
		for i := range titles {
			if err = w.WriteSection(titles[i], sections[i]); err != nil {
				break
			}
		}
	}
	if err != nil {
		w.Flush()
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return filename, nil
}

// writeMarshaled writes one document framed by prefix and suffix, so that an
// appended output stays a valid stream of documents.
func writeMarshaled(w *Writer, marshal func(interface{}) ([]byte, error), prefix, suffix string, e *extract.Extraction) error {
	data, err := marshal(NewDocument(e))
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(prefix)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte(suffix))
	return err
}
