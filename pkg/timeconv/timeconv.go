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

// Package timeconv turns the device's millisecond epoch values into dates.
package timeconv

import (
	"fmt"
	"math"
	"time"

	"jinr.ru/greenlab/go-cpap/pkg/diag"
	"jinr.ru/greenlab/go-cpap/pkg/layers"
)

const (
	Layout     = "2006-01-02 15:04:05"
	FileLayout = "2006-01-02_15-04-05"
	// MaxInt32Seconds is the last second representable by a signed 32 bit time_t.
	MaxInt32Seconds = math.MaxInt32
)

// Seconds converts a raw millisecond value to whole UNIX seconds, truncating
// toward zero. ok is false for values that are not numbers.
func Seconds(raw interface{}) (seconds int64, ok bool) {
	switch v := raw.(type) {
	case int:
		return int64(v) / 1000, true
	case int8:
		return int64(v) / 1000, true
	case int16:
		return int64(v) / 1000, true
	case int32:
		return int64(v) / 1000, true
	case int64:
		return v / 1000, true
	case uint:
		return int64(uint64(v) / 1000), true
	case uint8:
		return int64(v) / 1000, true
	case uint16:
		return int64(v) / 1000, true
	case uint32:
		return int64(v) / 1000, true
	case uint64:
		return int64(v / 1000), true
	case float32:
		return secondsFromFloat(float64(v))
	case float64:
		return secondsFromFloat(v)
	}
	return 0, false
}

func secondsFromFloat(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	s := math.Trunc(v / 1000)
	if s >= math.MaxInt64 || s < math.MinInt64 {
		return 0, false
	}
	return int64(s), true
}

// Millis returns the raw value as milliseconds when it is an integer kind.
func Millis(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// Normalize formats a millisecond epoch value as "YYYY-MM-DD HH:MM:SS" UTC.
// Values at or before the epoch and values past the 32 bit time_t range are
// still converted, with a warning. Input that is not a number is returned as
// "ERROR: <input> is invalid".
func Normalize(raw interface{}, d *diag.Collector) string {
	seconds, ok := Seconds(raw)
	if !ok {
		d.Warn(diag.KindConversionFailure, "Timestamp %v is not a number", raw)
		return fmt.Sprintf("ERROR: %v is invalid", raw)
	}
	if seconds <= 0 {
		d.Warn(diag.KindNonPositiveTimestamp, "UNIX time %v evaluated to %d", raw, seconds)
	}
	if seconds >= MaxInt32Seconds {
		d.Warn(diag.KindYear2038, "UNIX time %v evaluated to beyond the year 2038", raw)
	}
	return time.Unix(seconds, 0).UTC().Format(Layout)
}

// FileStamp formats a millisecond epoch value for use in a file name.
func FileStamp(ms int64) string {
	return time.Unix(ms/1000, 0).UTC().Format(FileLayout)
}

// NormalizeRecord replaces the value of every timestamp field with its
// formatted date. Raw values are kept.
func NormalizeRecord(r *layers.Record, d *diag.Collector) {
	for i := range r.Fields {
		f := &r.Fields[i]
		if !f.Timestamp {
			continue
		}
		f.Value = Normalize(f.Raw, d)
	}
}
