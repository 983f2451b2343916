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

package stream

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SESSION.001")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	size, err := Size(s)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestOpenMissing(t *testing.T) {
	dir := t.TempDir()
	var notFound ErrSourceNotFound

	_, err := Open(filepath.Join(dir, "missing.001"))
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, filepath.Join(dir, "missing.001"), notFound.Path)

	_, err = Open(dir)
	assert.True(t, errors.As(err, &notFound))
}

func TestFromBytes(t *testing.T) {
	s := FromBytes([]byte{1, 2, 3, 4})
	buf := make([]byte, 1)
	_, err := s.Read(buf)
	require.NoError(t, err)

	size, err := Size(s)
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)

	rest, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4}, rest)
	assert.NoError(t, s.Close())
}
