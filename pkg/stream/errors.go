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

package stream

import (
	"fmt"
)

// ErrSourceNotFound returned when the source path does not exist or is not a regular file
type ErrSourceNotFound struct {
	Path string
}

func (e ErrSourceNotFound) Error() string {
	return fmt.Sprintf("Source file %s not found", e.Path)
}
