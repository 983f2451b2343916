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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/extract/extracttest"
	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/sink"
	"jinr.ru/greenlab/go-cpap/pkg/store"
)

func writeSessions(t *testing.T, dir string, n int) []string {
	var paths []string
	for i := 0; i < n; i++ {
		h := extracttest.Header{
			MachineID: 1,
			SessionID: uint32(100 + i),
			StartTime: 842323380000 + uint64(i)*60000,
			EndTime:   842323440000 + uint64(i)*60000,
		}
		path := filepath.Join(dir, "DATALOG", "SESSION"+string(rune('A'+i))+".001")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, extracttest.Summary(h), 0644))
		paths = append(paths, path)
	}
	return paths
}

func TestNewPipeline(t *testing.T) {
	cfg := config.NewDefaultConfig().Extract
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSchemaSet, p.Set().Name)

	bad := *cfg
	bad.Delimiter = "not hex"
	_, err = NewPipeline(&bad)
	var invalid packet.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)

	bad = *cfg
	bad.SchemaSet = "summary-v9"
	_, err = NewPipeline(&bad)
	assert.Error(t, err)
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	paths := writeSessions(t, dir, 3)
	other := filepath.Join(dir, "DATALOG", "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))

	sources, err := CollectSources([]string{dir}, []string{".001"})
	require.NoError(t, err)
	assert.Equal(t, paths, sources)

	sources, err = CollectSources([]string{other}, []string{".001"})
	require.NoError(t, err)
	assert.Equal(t, []string{other}, sources)

	_, err = CollectSources([]string{filepath.Join(dir, "missing")}, nil)
	assert.Error(t, err)
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0755))
	paths := writeSessions(t, dir, 4)
	broken := filepath.Join(dir, "BROKEN.001")
	require.NoError(t, os.WriteFile(broken, []byte{0x01, 0x02}, 0644))
	sources := append(paths, broken)

	cfg := config.NewDefaultConfig().Extract
	cfg.Destination = out
	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	state, err := store.NewState(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	defer state.Close()

	runner := &Runner{
		Pipeline: p,
		Sink:     sink.OptionsFromConfig(cfg),
		State:    state,
		Jobs:     3,
	}
	results := runner.Run(sources)
	require.Len(t, results, 5)
	for i, path := range paths {
		require.NoError(t, results[i].Err)
		assert.Equal(t, path, results[i].Source)
		assert.FileExists(t, results[i].Output)
	}
	assert.Error(t, results[4].Err)
	assert.Equal(t, filepath.Join(out, "1996-09-10_02-43-00.txt"), results[0].Output)
	assert.Equal(t, filepath.Join(out, "1996-09-10_02-46-00.txt"), results[3].Output)

	sessions, err := state.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 4)
}
