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

package diag

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	c := NewCollector("test")
	c.Warn(KindTrailingData, "%d bytes left", 3)
	c.Notice(KindBodyNotDecoded, "kept raw")

	entries := c.Entries()
	assert.Equal(t, []Entry{
		{Severity: SeverityWarning, Kind: KindTrailingData, Message: "3 bytes left"},
		{Severity: SeverityNotice, Kind: KindBodyNotDecoded, Message: "kept raw"},
	}, entries)
	assert.True(t, c.Has(KindTrailingData))
	assert.False(t, c.Has(KindYear2038))
	assert.Equal(t, 1, c.Warnings())
	assert.Equal(t, "warning TrailingData: 3 bytes left", entries[0].String())

	entries[0].Message = "changed"
	assert.Equal(t, "3 bytes left", c.Entries()[0].Message)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Warn(KindEmptyDelimiter, "dropped")
	})
	assert.Nil(t, c.Entries())
	assert.Equal(t, 0, c.Warnings())
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector("test")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Notice(KindBodyNotDecoded, "notice")
		}()
	}
	wg.Wait()
	assert.Len(t, c.Entries(), 8)
}
