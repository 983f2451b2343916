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

package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/extract"
	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
	"jinr.ru/greenlab/go-cpap/pkg/sink"
	"jinr.ru/greenlab/go-cpap/pkg/store"
	"jinr.ru/greenlab/go-cpap/pkg/stream"
)

// Runner extracts local files: pipeline, then sink, then the session index.
type Runner struct {
	Pipeline *extract.Pipeline
	Sink     sink.Options

	// State is optional; nil disables indexing.
	State *store.State
	Jobs  int
}

type Result struct {
	Source     string
	Output     string
	Extraction *extract.Extraction
	Elapsed    time.Duration
	Err        error
}

// NewPipeline builds the pipeline described by the extract config.
func NewPipeline(cfg *config.ExtractConfig) (*extract.Pipeline, error) {
	set, err := schema.Resolve(cfg.SchemaSet, cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	delimiter, err := packet.ParseDelimiter(cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	return extract.NewPipeline(extract.Options{
		Delimiter:  delimiter,
		Set:        set,
		DecodeBody: cfg.DecodeBody,
	})
}

// CollectSources expands directories into the files they contain with one of
// the given extensions. Files named explicitly are always taken.
func CollectSources(args []string, extensions []string) ([]string, error) {
	var sources []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, stream.ErrSourceNotFound{Path: arg}
		}
		if !info.IsDir() {
			sources = append(sources, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !hasExtension(path, extensions) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		log.Debug("Found %d sources in %s", len(found), arg)
		sources = append(sources, found...)
	}
	return sources, nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// ExtractOne runs one source through the whole chain.
func (r *Runner) ExtractOne(source string) Result {
	started := time.Now()
	result := Result{Source: source}

	e, err := r.Pipeline.ExtractFile(source)
	if err != nil {
		result.Err = err
		return result
	}
	result.Extraction = e

	output, err := sink.Write(r.Sink, e)
	if err != nil {
		result.Err = err
		return result
	}
	result.Output = output

	if r.State != nil {
		if err := r.State.PutSession(store.NewSession(e, output)); err != nil {
			log.Warning("Error while indexing %s: %s", source, err)
		}
	}

	result.Elapsed = time.Since(started)
	var in, out int64
	if info, err := os.Stat(source); err == nil {
		in = info.Size()
	}
	if info, err := os.Stat(output); err == nil {
		out = info.Size()
	}
	log.Info("Extracted %s (%d bytes) to %s (%d bytes) in %s", source, in, output, out, result.Elapsed)
	return result
}

// Run extracts all sources, at most Jobs at a time. Sources share nothing but
// the read-only pipeline, so they are independent of each other. Results are
// returned in the order of sources.
func (r *Runner) Run(sources []string) []Result {
	jobs := r.Jobs
	if jobs < 1 {
		jobs = 1
	}
	results := make([]Result, len(sources))
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, source string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.ExtractOne(source)
		}(i, source)
	}
	wg.Wait()
	return results
}
