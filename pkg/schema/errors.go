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
)

// ErrUnknownType returned when a type tag is neither a known type name nor a struct code
type ErrUnknownType struct {
	Type string
}

func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("Unknown field type: %s", e.Type)
}

// ErrInvalidSchema returned when a schema definition can not describe a packet layout
type ErrInvalidSchema struct {
	Schema string
	What   string
}

func (e ErrInvalidSchema) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("Invalid schema: %s", e.What)
	}
	return fmt.Sprintf("Invalid schema %s: %s", e.Schema, e.What)
}

// ErrSetNotFound returned when a schema set name is not in the table
type ErrSetNotFound struct {
	Name string
}

func (e ErrSetNotFound) Error() string {
	return fmt.Sprintf("Schema set %s not found", e.Name)
}
