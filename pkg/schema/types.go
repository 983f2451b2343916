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
	"encoding/json"
	"fmt"
	"strings"
)

// TypeTag is a fixed-width primitive field type. All values are little-endian.
type TypeTag uint8

const (
	Char TypeTag = iota + 1
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

type typeInfo struct {
	name  string
	width int
}

var typeTable = map[TypeTag]typeInfo{
	Char:    {"char", 1},
	Int8:    {"int8", 1},
	Uint8:   {"uint8", 1},
	Int16:   {"int16", 2},
	Uint16:  {"uint16", 2},
	Int32:   {"int32", 4},
	Uint32:  {"uint32", 4},
	Int64:   {"int64", 8},
	Uint64:  {"uint64", 8},
	Float32: {"float32", 4},
	Float64: {"float64", 8},
}

// structCodes are the single letter codes the device tooling writes schemas
// with. 'l' and 'L' are the 4 byte longs of the standard size table.
var structCodes = map[byte]TypeTag{
	'c': Char,
	'b': Int8,
	'B': Uint8,
	'h': Int16,
	'H': Uint16,
	'i': Int32,
	'I': Uint32,
	'l': Int32,
	'L': Uint32,
	'q': Int64,
	'Q': Uint64,
	'f': Float32,
	'd': Float64,
}

// ParseTypeTag accepts either a type name (uint16) or a struct code (H).
func ParseTypeTag(s string) (TypeTag, error) {
	if len(s) == 1 {
		if t, ok := structCodes[s[0]]; ok {
			return t, nil
		}
	}
	name := strings.ToLower(strings.TrimSpace(s))
	for t, info := range typeTable {
		if info.name == name {
			return t, nil
		}
	}
	return 0, ErrUnknownType{Type: s}
}

func (t TypeTag) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

// Width is the number of bytes the type occupies.
func (t TypeTag) Width() int {
	return typeTable[t].width
}

func (t TypeTag) String() string {
	info, ok := typeTable[t]
	if !ok {
		return fmt.Sprintf("TypeTag(%d)", uint8(t))
	}
	return info.name
}

func (t TypeTag) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrUnknownType{Type: t.String()}
	}
	return json.Marshal(t.String())
}

func (t *TypeTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTypeTag(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
