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

// Package extracttest builds session summary files for tests.
package extracttest

import (
	"bytes"
	"encoding/binary"

	"jinr.ru/greenlab/go-cpap/pkg/packet"
)

const (
	Magic = 0x0c0ffee0
)

type Header struct {
	MachineID uint32
	SessionID uint32
	StartTime uint64
	EndTime   uint64
}

// Bytes encodes the header in the summary-v2 layout.
func (h Header) Bytes() []byte {
	buf := &bytes.Buffer{}
	le := binary.LittleEndian
	binary.Write(buf, le, uint32(Magic))
	binary.Write(buf, le, uint16(2))
	binary.Write(buf, le, uint16(1))
	binary.Write(buf, le, h.MachineID)
	binary.Write(buf, le, h.SessionID)
	binary.Write(buf, le, h.StartTime)
	binary.Write(buf, le, h.EndTime)
	binary.Write(buf, le, uint16(0))
	binary.Write(buf, le, uint16(37))
	binary.Write(buf, le, uint32(1024))
	binary.Write(buf, le, uint16(0xbeef))
	binary.Write(buf, le, uint16(3))
	return buf.Bytes()
}

// File joins packets with the default delimiter.
func File(packets ...[]byte) []byte {
	return bytes.Join(packets, packet.DefaultDelimiter)
}

// Summary is a file with the given header and two opaque body packets.
func Summary(h Header) []byte {
	return File(h.Bytes(), []byte{0x01, 0x02, 0x03}, []byte{0x04})
}
