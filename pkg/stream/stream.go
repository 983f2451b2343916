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
	"bytes"
	"errors"
	"io"
	"os"

	"jinr.ru/greenlab/go-cpap/pkg/log"
)

// ByteStream is a seekable binary source. Each stream belongs to a single
// extraction and is never shared.
type ByteStream interface {
	io.Reader
	io.Seeker
	io.Closer
}

type memStream struct {
	*bytes.Reader
}

func (m *memStream) Close() error {
	return nil
}

// FromBytes wraps an in-memory buffer.
func FromBytes(b []byte) ByteStream {
	return &memStream{Reader: bytes.NewReader(b)}
}

// Open opens a regular file for reading.
func Open(path string) (ByteStream, error) {
	log.Debug("Reading in %s", path)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSourceNotFound{Path: path}
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, ErrSourceNotFound{Path: path}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Size returns the total length of the stream. The read position is restored.
func Size(s io.Seeker) (int64, error) {
	current, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(current, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}
