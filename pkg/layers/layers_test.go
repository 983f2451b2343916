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

package layers

import (
	"encoding/hex"
	"errors"
	"math"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
)

var canonicalSchema = schema.MustNew("canonical",
	schema.Field{Name: "short", Type: schema.Int16},
	schema.Field{Name: "int", Type: schema.Int32},
	schema.Field{Name: "long", Type: schema.Int32},
	schema.Field{Name: "longlong", Type: schema.Int64},
)

func mustHex(t *testing.T, s string) []byte {
	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}

func TestDecodeCanonical(t *testing.T) {
	p := packet.Packet(mustHex(t, "2a00c3010000c907cc00aaaa421acd794009"))
	record, err := Decode(&p, canonicalSchema)
	require.NoError(t, err)
	assert.Empty(t, p)

	require.Len(t, record.Fields, 4)
	assert.Equal(t, int16(42), record.Fields[0].Value)
	assert.Equal(t, int32(451), record.Fields[1].Value)
	assert.Equal(t, int32(13371337), record.Fields[2].Value)
	assert.Equal(t, int64(666666666666666666), record.Fields[3].Value)
	assert.Equal(t, 18, record.Width())
	assert.Equal(t, []string{
		"short: 42",
		"int: 451",
		"long: 13371337",
		"longlong: 666666666666666666",
	}, record.Lines())

	f, ok := record.Get("long")
	require.True(t, ok)
	assert.Equal(t, schema.Int32, f.Type)
	assert.Equal(t, 4, f.Width)
}

func TestDecodeLeavesTrailingBytes(t *testing.T) {
	p := packet.Packet(mustHex(t, "2a00c3010000c907cc00aaaa421acd794009beef"))
	_, err := Decode(&p, canonicalSchema)
	require.NoError(t, err)
	assert.Equal(t, packet.Packet{0xbe, 0xef}, p)
}

func TestDecodeTruncated(t *testing.T) {
	p := packet.Packet(mustHex(t, "2a00c3010000c907"))
	_, err := Decode(&p, canonicalSchema)
	var truncated ErrTruncatedPacket
	require.True(t, errors.As(err, &truncated))
	assert.Equal(t, "long", truncated.Field)
	assert.Equal(t, 4, truncated.Need)
	assert.Equal(t, 2, truncated.Have)
}

func TestDecodeOrderMatters(t *testing.T) {
	data := mustHex(t, "0100020000000300")
	forward := schema.MustNew("forward",
		schema.Field{Name: "a", Type: schema.Uint16},
		schema.Field{Name: "b", Type: schema.Uint32},
		schema.Field{Name: "c", Type: schema.Uint16},
	)
	reordered := schema.MustNew("reordered",
		schema.Field{Name: "b", Type: schema.Uint32},
		schema.Field{Name: "a", Type: schema.Uint16},
		schema.Field{Name: "c", Type: schema.Uint16},
	)

	p := packet.Packet(data)
	r1, err := Decode(&p, forward)
	require.NoError(t, err)
	p = packet.Packet(data)
	r2, err := Decode(&p, reordered)
	require.NoError(t, err)

	assert.Equal(t, []string{"a: 1", "b: 2", "c: 3"}, r1.Lines())
	assert.Equal(t, []string{"b: 131073", "a: 0", "c: 3"}, r2.Lines())
}

func TestDecodeAllTypes(t *testing.T) {
	s := schema.MustNew("all",
		schema.Field{Name: "c", Type: schema.Char},
		schema.Field{Name: "b", Type: schema.Int8},
		schema.Field{Name: "B", Type: schema.Uint8},
		schema.Field{Name: "h", Type: schema.Int16},
		schema.Field{Name: "Q", Type: schema.Uint64},
		schema.Field{Name: "f", Type: schema.Float32},
		schema.Field{Name: "d", Type: schema.Float64},
	)
	data := []byte{'A', 0xff, 0xff, 0xfe, 0xff}
	data = append(data, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	data = append(data, 0x00, 0x00, 0xc0, 0x3f)
	data = append(data, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xf8, 0x7f)

	p := packet.Packet(data)
	record, err := Decode(&p, s)
	require.NoError(t, err)

	values := record.Values()
	assert.Equal(t, Char('A'), values["c"])
	assert.Equal(t, int8(-1), values["b"])
	assert.Equal(t, uint8(255), values["B"])
	assert.Equal(t, int16(-2), values["h"])
	assert.Equal(t, uint64(math.MaxUint64), values["Q"])
	assert.Equal(t, float32(1.5), values["f"])
	assert.True(t, math.IsNaN(values["d"].(float64)))

	c, _ := record.Get("c")
	assert.Equal(t, `c: "A"`, c.String())
	f, _ := record.Get("f")
	assert.Equal(t, "f: 1.5", f.String())
}

func TestDecodePacket(t *testing.T) {
	data := mustHex(t, "2a00c3010000c907cc00aaaa421acd794009beef")
	l, trailing, err := DecodePacket(data, canonicalSchema)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xbe, 0xef}, trailing)
	assert.Equal(t, data[:18], l.LayerContents())
	assert.Equal(t, gopacket.LayerTypePayload, l.NextLayerType())
	assert.Equal(t, int16(42), l.Fields[0].Value)

	l, trailing, err = DecodePacket(data[:18], canonicalSchema)
	require.NoError(t, err)
	assert.Empty(t, trailing)
	assert.Equal(t, gopacket.LayerTypeZero, l.NextLayerType())

	_, _, err = DecodePacket(data[:3], canonicalSchema)
	var truncated ErrTruncatedPacket
	assert.True(t, errors.As(err, &truncated))
}

func TestDecodingLayerParser(t *testing.T) {
	data := mustHex(t, "2a00c3010000c907cc00aaaa421acd794009")
	l := &RecordLayer{Schema: canonicalSchema}
	parser := gopacket.NewDecodingLayerParser(RecordLayerType, l)
	var decoded []gopacket.LayerType
	require.NoError(t, parser.DecodeLayers(data, &decoded))
	assert.Equal(t, []gopacket.LayerType{RecordLayerType}, decoded)
	assert.Equal(t, int64(666666666666666666), l.Fields[3].Value)
}
