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

package sink

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"jinr.ru/greenlab/go-cpap/pkg/log"
)

type Writer struct {
	file *os.File
	buf  *bufio.Writer
}

// NewWriter opens filename for writing. Without overwrite the file is appended
// to, so several record kinds may be written into one output over time.
func NewWriter(filename string, overwrite bool) (*Writer, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	file, err := os.OpenFile(filename, flags, 0644)
	if err != nil {
		log.Error("Error while creating file: %s", filename)
		return nil, err
	}
	return &Writer{
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

func (w *Writer) Write(buf []byte) (int, error) {
	return w.buf.Write(buf)
}

// WriteSection writes a "---TITLE---" banner followed by the lines.
func (w *Writer) WriteSection(title string, lines []string) error {
	if len(lines) == 0 {
		log.Warning("Output section %s is empty", title)
	}
	if title != "" {
		if _, err := fmt.Fprintf(w.buf, "---%s---\n", strings.ToUpper(title)); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w.buf, line); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered data to disk and closes the file.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
