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
	"encoding/binary"
	"math"

	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
)

// Decode applies the schema to the front of the packet. Every field takes the
// next Width() bytes which are removed from the packet, so on success exactly
// s.Width() bytes are consumed and whatever is left in *p is trailing data.
func Decode(p *packet.Packet, s *schema.Schema) (Record, error) {
	record := Record{
		Name:   s.Name,
		Fields: make([]DecodedField, 0, len(s.Fields)),
	}
	for _, field := range s.Fields {
		width := field.Type.Width()
		if len(*p) < width {
			return Record{}, ErrTruncatedPacket{
				Schema: s.Name,
				Field:  field.Name,
				Need:   width,
				Have:   len(*p),
			}
		}
		value := decodeValue(field.Type, (*p)[:width])
		*p = (*p)[width:]

		log.Debug("Decode: %s: %s: %v", s.Name, field.Name, value)
		record.Fields = append(record.Fields, DecodedField{
			Name:      field.Name,
			Type:      field.Type,
			Width:     width,
			Timestamp: field.Timestamp,
			Raw:       value,
			Value:     value,
		})
	}
	return record, nil
}

func decodeValue(t schema.TypeTag, b []byte) interface{} {
	switch t {
	case schema.Char:
		return Char(b[0])
	case schema.Int8:
		return int8(b[0])
	case schema.Uint8:
		return b[0]
	case schema.Int16:
		return int16(binary.LittleEndian.Uint16(b))
	case schema.Uint16:
		return binary.LittleEndian.Uint16(b)
	case schema.Int32:
		return int32(binary.LittleEndian.Uint32(b))
	case schema.Uint32:
		return binary.LittleEndian.Uint32(b)
	case schema.Int64:
		return int64(binary.LittleEndian.Uint64(b))
	case schema.Uint64:
		return binary.LittleEndian.Uint64(b)
	case schema.Float32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case schema.Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return nil
}
