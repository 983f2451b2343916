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
	"encoding/json"
	"fmt"
	"strconv"

	"jinr.ru/greenlab/go-cpap/pkg/schema"
)

// Char is a decoded one byte character field.
type Char byte

func (c Char) String() string {
	return strconv.QuoteToASCII(string([]byte{byte(c)}))
}

func (c Char) MarshalJSON() ([]byte, error) {
	return json.Marshal(string([]byte{byte(c)}))
}

// DecodedField is the result of applying one schema entry to a packet.
type DecodedField struct {
	Name      string         `json:"name"`
	Type      schema.TypeTag `json:"type"`
	Width     int            `json:"width"`
	Timestamp bool           `json:"timestamp,omitempty"`

	// Raw is the value as decoded from the packet.
	Raw interface{} `json:"raw"`

	// Value is what gets written out. It starts equal to Raw; timestamp fields
	// are replaced with their formatted date.
	Value interface{} `json:"value"`
}

func (f DecodedField) String() string {
	return fmt.Sprintf("%s: %s", f.Name, FormatValue(f.Value))
}

// Record is one decoded packet, fields in schema order.
type Record struct {
	Name   string         `json:"name"`
	Fields []DecodedField `json:"fields"`
}

// Get returns the named field.
func (r *Record) Get(name string) (DecodedField, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return DecodedField{}, false
}

// Width is the number of packet bytes the record was decoded from.
func (r *Record) Width() int {
	width := 0
	for _, f := range r.Fields {
		width += f.Width
	}
	return width
}

// Lines renders the record as "<Field name>: <value>" lines.
func (r *Record) Lines() []string {
	lines := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		lines = append(lines, f.String())
	}
	return lines
}

// Values maps field names to output values. Used for yaml/json output where
// order is carried separately.
func (r *Record) Values() map[string]interface{} {
	values := make(map[string]interface{}, len(r.Fields))
	for _, f := range r.Fields {
		values[f.Name] = f.Value
	}
	return values
}

func FormatValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
