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
	"sort"
)

const (
	SummaryV1 = "summary-v1"
	SummaryV2 = "summary-v2"
	// DefaultSet is used when no set is selected explicitly.
	DefaultSet = SummaryV2
)

// Header field names shared by all session summary sets.
const (
	FieldMagicNumber = "Magic number"
	FieldMachineID   = "Machine ID"
	FieldSessionID   = "Session ID"
	FieldStartTime   = "Start time"
	FieldEndTime     = "End time"
)

// commonHeader is the part of the session summary header every revision
// agrees on. Compression, file version and CRC semantics are unknown; they are
// decoded as opaque values.
func commonHeader() []Field {
	return []Field{
		{Name: FieldMagicNumber, Type: Uint32},
		{Name: "File version", Type: Uint16},
		{Name: "File type data", Type: Uint16},
		{Name: FieldMachineID, Type: Uint32},
		{Name: FieldSessionID, Type: Uint32},
		{Name: FieldStartTime, Type: Uint64, Timestamp: true},
		{Name: FieldEndTime, Type: Uint64, Timestamp: true},
		{Name: "Compression", Type: Uint16},
		{Name: "Machine type", Type: Uint16},
		{Name: "Data size", Type: Uint32},
		{Name: "CRC", Type: Uint16},
	}
}

var builtin = map[string]*Set{
	SummaryV1: {
		Name:    SummaryV1,
		Version: 1,
		Header:  MustNew("header", append(commonHeader(), Field{Name: "MCSize", Type: Uint16})...),
	},
	SummaryV2: {
		Name:    SummaryV2,
		Version: 2,
		Header:  MustNew("header", append(commonHeader(), Field{Name: "Stream count", Type: Uint16})...),
	},
}

// Lookup returns a built-in schema set. Sets are shared and must not be modified.
func Lookup(name string) (*Set, error) {
	if name == "" {
		name = DefaultSet
	}
	set, ok := builtin[name]
	if !ok {
		return nil, ErrSetNotFound{Name: name}
	}
	return set, nil
}

// Names lists the built-in sets in a stable order.
func Names() []string {
	var names []string
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
