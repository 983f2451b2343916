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

package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeTag(t *testing.T) {
	tests := map[string]TypeTag{
		"char":    Char,
		"c":       Char,
		"b":       Int8,
		"B":       Uint8,
		"int16":   Int16,
		"h":       Int16,
		"H":       Uint16,
		"i":       Int32,
		"l":       Int32,
		"L":       Uint32,
		"q":       Int64,
		"UINT64":  Uint64,
		"Q":       Uint64,
		"f":       Float32,
		"float64": Float64,
	}
	for in, want := range tests {
		got, err := ParseTypeTag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTypeTag("x")
	var unknown ErrUnknownType
	assert.True(t, errors.As(err, &unknown))
}

func TestTypeWidths(t *testing.T) {
	widths := map[TypeTag]int{
		Char: 1, Int8: 1, Uint8: 1,
		Int16: 2, Uint16: 2,
		Int32: 4, Uint32: 4, Float32: 4,
		Int64: 8, Uint64: 8, Float64: 8,
	}
	for tag, width := range widths {
		assert.Equal(t, width, tag.Width(), tag.String())
	}
	assert.False(t, TypeTag(0).Valid())
}

func TestNew(t *testing.T) {
	s, err := New("canonical",
		Field{Name: "short", Type: Int16},
		Field{Name: "int", Type: Int32},
		Field{Name: "long", Type: Int32},
		Field{Name: "longlong", Type: Int64},
	)
	require.NoError(t, err)
	assert.Equal(t, 18, s.Width())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 2, s.Index("long"))
	assert.Equal(t, -1, s.Index("missing"))

	var invalid ErrInvalidSchema
	_, err = New("empty")
	assert.True(t, errors.As(err, &invalid))
	_, err = New("dup", Field{Name: "a", Type: Uint8}, Field{Name: "a", Type: Uint8})
	assert.True(t, errors.As(err, &invalid))
	_, err = New("noname", Field{Name: " ", Type: Uint8})
	assert.True(t, errors.As(err, &invalid))
	_, err = New("notype", Field{Name: "a"})
	assert.True(t, errors.As(err, &invalid))
	_, err = New("floatstamp", Field{Name: "a", Type: Float64, Timestamp: true})
	assert.True(t, errors.As(err, &invalid))
}

func TestBuiltin(t *testing.T) {
	assert.Equal(t, []string{SummaryV1, SummaryV2}, Names())

	def, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSet, def.Name)

	for _, name := range Names() {
		set, err := Lookup(name)
		require.NoError(t, err)
		require.NoError(t, set.Validate())
		assert.Nil(t, set.Body)
		assert.Equal(t, 44, set.Header.Width(), name)
		assert.Equal(t, 0, set.Header.Index(FieldMagicNumber))
		for _, f := range set.Header.Fields {
			isTime := f.Name == FieldStartTime || f.Name == FieldEndTime
			assert.Equal(t, isTime, f.Timestamp, f.Name)
		}
	}

	v1, _ := Lookup(SummaryV1)
	assert.Equal(t, "MCSize", v1.Header.Fields[v1.Header.Len()-1].Name)
	v2, _ := Lookup(SummaryV2)
	assert.Equal(t, "Stream count", v2.Header.Fields[v2.Header.Len()-1].Name)

	_, err = Lookup("summary-v9")
	var notFound ErrSetNotFound
	assert.True(t, errors.As(err, &notFound))
}

const customSet = `
name: summary-custom
version: 3
header:
  name: header
  fields:
    - {name: Magic number, type: I}
    - {name: Start time, type: uint64, timestamp: true}
body:
  name: event
  fields:
    - {name: Code, type: B}
    - {name: Pressure, type: f}
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(customSet))
	require.NoError(t, err)
	assert.Equal(t, "summary-custom", set.Name)
	assert.Equal(t, 3, set.Version)
	assert.Equal(t, 12, set.Header.Width())
	require.NotNil(t, set.Body)
	assert.Equal(t, []Field{{Name: "Code", Type: Uint8}, {Name: "Pressure", Type: Float32}}, set.Body.Fields)

	_, err = Parse([]byte("name: x\nheader:\n  name: h\n  fields:\n    - {name: a, type: z}\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("name: x\nunknown: 1\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("name: x\n"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	v2, err := Lookup(SummaryV2)
	require.NoError(t, err)
	data, err := Marshal(v2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "set.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	loaded, err := Resolve("ignored", path)
	require.NoError(t, err)
	assert.Equal(t, v2, loaded)
}
