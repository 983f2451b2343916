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
	"os"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-cpap/pkg/log"
)

// Parse reads a schema set from YAML or JSON. Field types may be given either
// as names or as struct codes:
//
//	name: summary-custom
//	version: 3
//	header:
//	  name: header
//	  fields:
//	    - {name: Magic number, type: I}
//	    - {name: Start time, type: uint64, timestamp: true}
func Parse(data []byte) (*Set, error) {
	set := &Set{}
	if err := yaml.UnmarshalStrict(data, set); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadFile reads a schema set from a file.
func LoadFile(path string) (*Set, error) {
	log.Debug("Loading schema set from %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal renders a schema set as YAML.
func Marshal(set *Set) ([]byte, error) {
	return yaml.Marshal(set)
}

// Resolve picks the schema set for an extraction: a schema file wins over a
// set name.
func Resolve(name, file string) (*Set, error) {
	if file != "" {
		return LoadFile(file)
	}
	return Lookup(name)
}
