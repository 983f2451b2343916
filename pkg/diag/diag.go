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

// Package diag collects non-fatal findings produced while a single source is
// extracted. Entries are kept in emission order and returned with the result,
// and every entry is mirrored to the logger.
package diag

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"jinr.ru/greenlab/go-cpap/pkg/log"
)

type Severity string

const (
	SeverityNotice  Severity = "notice"
	SeverityWarning Severity = "warning"
)

type Kind string

const (
	KindEmptyDelimiter       Kind = "EmptyDelimiter"
	KindNonPositiveTimestamp Kind = "NonPositiveTimestamp"
	KindYear2038             Kind = "Year2038"
	KindConversionFailure    Kind = "ConversionFailure"
	KindTrailingData         Kind = "TrailingData"
	KindBodyNotDecoded       Kind = "BodyNotDecoded"
)

type Entry struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.Kind, e.Message)
}

// Collector is safe to use from several goroutines, although one collector
// normally belongs to exactly one extraction.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	logger  *logrus.Entry
}

func NewCollector(source string) *Collector {
	return &Collector{
		logger: log.WithSource(source),
	}
}

func (c *Collector) add(severity Severity, kind Kind, format string, v ...interface{}) {
	if c == nil {
		return
	}
	e := Entry{
		Severity: severity,
		Kind:     kind,
		Message:  fmt.Sprintf(format, v...),
	}
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()

	if c.logger == nil {
		return
	}
	l := c.logger.WithField("kind", string(kind))
	if severity == SeverityWarning {
		l.Warn(e.Message)
	} else {
		l.Info(e.Message)
	}
}

// Warn records a warning. A nil collector drops the entry.
func (c *Collector) Warn(kind Kind, format string, v ...interface{}) {
	c.add(SeverityWarning, kind, format, v...)
}

func (c *Collector) Notice(kind Kind, format string, v ...interface{}) {
	c.add(SeverityNotice, kind, format, v...)
}

// Entries returns a copy of everything recorded so far.
func (c *Collector) Entries() []Entry {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Collector) Has(kind Kind) bool {
	for _, e := range c.Entries() {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func (c *Collector) Warnings() int {
	n := 0
	for _, e := range c.Entries() {
		if e.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
