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
	"jinr.ru/greenlab/go-cpap/pkg/diag"
	"jinr.ru/greenlab/go-cpap/pkg/layers"
	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
	"jinr.ru/greenlab/go-cpap/pkg/timeconv"
)

// Extraction is everything decoded from one source.
type Extraction struct {
	Source string          `json:"source"`
	Set    string          `json:"set"`
	Header layers.Record   `json:"header"`
	Body   []layers.Record `json:"body,omitempty"`

	// Pending holds packets that were read but not decoded.
	Pending     []packet.Packet `json:"-"`
	Diagnostics []diag.Entry    `json:"diagnostics,omitempty"`
}

func (e *Extraction) rawInt(name string) (int64, bool) {
	f, ok := e.Header.Get(name)
	if !ok {
		return 0, false
	}
	return timeconv.Millis(f.Raw)
}

// StartTime returns the raw start time in milliseconds.
func (e *Extraction) StartTime() (int64, bool) {
	return e.rawInt(schema.FieldStartTime)
}

func (e *Extraction) EndTime() (int64, bool) {
	return e.rawInt(schema.FieldEndTime)
}

func (e *Extraction) SessionID() (int64, bool) {
	return e.rawInt(schema.FieldSessionID)
}

func (e *Extraction) MachineID() (int64, bool) {
	return e.rawInt(schema.FieldMachineID)
}

// PendingCount is the number of packets read but not decoded.
func (e *Extraction) PendingCount() int {
	return len(e.Pending)
}

// Warnings is the number of warning diagnostics.
func (e *Extraction) Warnings() int {
	n := 0
	for _, d := range e.Diagnostics {
		if d.Severity == diag.SeverityWarning {
			n++
		}
	}
	return n
}
