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

package extract

import (
	"fmt"
)

// ErrNoPackets returned when the source contains no data at all
type ErrNoPackets struct {
	Source string
}

func (e ErrNoPackets) Error() string {
	return fmt.Sprintf("No packets found in %s", e.Source)
}

// ErrNoSchemaSet returned when a pipeline is created without a schema set
type ErrNoSchemaSet struct{}

func (e ErrNoSchemaSet) Error() string {
	return "No schema set given"
}
