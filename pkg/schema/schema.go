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
	"fmt"
	"strings"
)

// Field is one entry of a schema.
type Field struct {
	Name string  `json:"name"`
	Type TypeTag `json:"type"`

	// Timestamp marks fields holding milliseconds since the UNIX epoch.
	Timestamp bool `json:"timestamp,omitempty"`
}

// Schema describes the physical layout of a packet. The order of Fields is
// the order of the bytes: the same fields in a different order decode
// different bytes.
type Schema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// New builds a validated schema.
func New(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		Name:   name,
		Fields: fields,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New for the built-in tables.
func MustNew(name string, fields ...Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return ErrInvalidSchema{Schema: s.Name, What: "no fields"}
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return ErrInvalidSchema{Schema: s.Name, What: fmt.Sprintf("field %d has no name", i)}
		}
		if _, ok := seen[f.Name]; ok {
			return ErrInvalidSchema{Schema: s.Name, What: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		seen[f.Name] = struct{}{}
		if !f.Type.Valid() {
			return ErrInvalidSchema{Schema: s.Name, What: fmt.Sprintf("field %q has unknown type", f.Name)}
		}
		if f.Timestamp && !f.Type.Integer() {
			return ErrInvalidSchema{Schema: s.Name, What: fmt.Sprintf("timestamp field %q must be an integer", f.Name)}
		}
	}
	return nil
}

// Width is the number of bytes one packet of this layout occupies.
func (s *Schema) Width() int {
	width := 0
	for _, f := range s.Fields {
		width += f.Type.Width()
	}
	return width
}

func (s *Schema) Len() int {
	return len(s.Fields)
}

// Index returns the position of the named field or -1.
func (s *Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Integer reports whether the type is one of the integer kinds.
func (t TypeTag) Integer() bool {
	switch t {
	case Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64:
		return true
	}
	return false
}

// Set is a versioned group of schemas used together for one file kind.
type Set struct {
	Name    string  `json:"name"`
	Version int     `json:"version"`
	Header  *Schema `json:"header"`

	// Body decodes the packets following the header. None of the built-in
	// sets has one yet.
	Body *Schema `json:"body,omitempty"`
}

func (s *Set) Validate() error {
	if s.Name == "" {
		return ErrInvalidSchema{What: "schema set has no name"}
	}
	if s.Header == nil {
		return ErrInvalidSchema{Schema: s.Name, What: "schema set has no header schema"}
	}
	if err := s.Header.Validate(); err != nil {
		return err
	}
	if s.Body != nil {
		return s.Body.Validate()
	}
	return nil
}
