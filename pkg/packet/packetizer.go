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

package packet

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-cpap/pkg/diag"
	"jinr.ru/greenlab/go-cpap/pkg/log"
)

const (
	// MinReaderSize is the smallest read buffer used for scanning. The buffer
	// grows when the delimiter is longer, since the delimiter must fit into a Peek.
	MinReaderSize = 4096
)

// DefaultDelimiter separates packets in session summary (.001) files.
var DefaultDelimiter = []byte{0xff, 0xff, 0xff, 0xff}

// Packet is one delimiter-bounded unit of raw bytes.
// Decoders consume it from the front by reslicing.
type Packet []byte

// Packetizer splits a stream into delimiter separated packets.
// The format has no fixed stride, so the stream is scanned byte by byte; a
// delimiter-sized run of data that merely starts like the delimiter is kept.
type Packetizer struct {
	r         *bufio.Reader
	delimiter []byte
	offset    int64
}

var _ gopacket.PacketDataSource = &Packetizer{}

// ParseDelimiter converts a hexadecimal delimiter description like "ffffffff",
// "0xff 0xff 0xff 0xff" or "ff:ff:ff:ff" into bytes.
func ParseDelimiter(s string) ([]byte, error) {
	cleaned := strings.NewReplacer("0x", "", "0X", "", " ", "", ":", "").Replace(strings.TrimSpace(s))
	delimiter, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, ErrInvalidArgument{What: "delimiter " + s + " is not a byte sequence"}
	}
	return delimiter, nil
}

// NewPacketizer prepares a packetizer. An empty delimiter is accepted with a
// warning; every packet read is then the whole remaining stream.
func NewPacketizer(s io.Reader, delimiter []byte, d *diag.Collector) (*Packetizer, error) {
	if s == nil {
		return nil, ErrInvalidArgument{What: "stream is nil"}
	}
	if len(delimiter) == 0 {
		d.Warn(diag.KindEmptyDelimiter, "Delimiter is empty, the remaining stream is read as one packet")
	}
	size := MinReaderSize
	if len(delimiter) > size {
		size = len(delimiter)
	}
	return &Packetizer{
		r:         bufio.NewReaderSize(s, size),
		delimiter: append([]byte(nil), delimiter...),
	}, nil
}

// ReadPacket returns the next packet. The delimiter is consumed and not part of
// the packet. A packet that ends at the end of the stream without a delimiter
// is returned as is. io.EOF is returned once nothing is left to read.
func (p *Packetizer) ReadPacket() (Packet, error) {
	if len(p.delimiter) == 0 {
		return p.readAll()
	}

	var packet Packet
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(packet) == 0 {
					return nil, io.EOF
				}
				return packet, nil
			}
			return nil, err
		}
		p.offset++

		if b == p.delimiter[0] {
			matched, err := p.matchDelimiterTail()
			if err != nil {
				return nil, err
			}
			if matched {
				if packet == nil {
					packet = Packet{}
				}
				return packet, nil
			}
		}
		packet = append(packet, b)
	}
}

// matchDelimiterTail checks whether the bytes following an already consumed
// first delimiter byte complete the delimiter, and consumes them if so.
func (p *Packetizer) matchDelimiterTail() (bool, error) {
	tail := p.delimiter[1:]
	if len(tail) == 0 {
		return true, nil
	}
	peeked, err := p.r.Peek(len(tail))
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if !bytes.Equal(peeked, tail) {
		return false, nil
	}
	discarded, err := p.r.Discard(len(tail))
	p.offset += int64(discarded)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Packetizer) readAll() (Packet, error) {
	data, err := io.ReadAll(p.r)
	if err != nil {
		return nil, err
	}
	p.offset += int64(len(data))
	if len(data) == 0 {
		return nil, io.EOF
	}
	return Packet(data), nil
}

// ReadPacketData implements gopacket.PacketDataSource. The stream offset of
// the packet is passed as ancillary data.
func (p *Packetizer) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	start := p.offset
	packet, err := p.ReadPacket()
	if err != nil {
		return nil, gopacket.CaptureInfo{}, err
	}
	ci := gopacket.CaptureInfo{
		Length:        len(packet),
		CaptureLength: len(packet),
		AncillaryData: []interface{}{start},
	}
	return packet, ci, nil
}

// Split reads all packets of the stream in order.
func Split(s io.Reader, delimiter []byte, d *diag.Collector) ([]Packet, error) {
	p, err := NewPacketizer(s, delimiter, d)
	if err != nil {
		return nil, err
	}
	var packets []Packet
	for {
		packet, err := p.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		log.Debug("Packet %d: %d bytes", len(packets), len(packet))
		packets = append(packets, packet)
	}
	return packets, nil
}

// Join is the inverse of Split for streams that do not end with a delimiter.
func Join(packets []Packet, delimiter []byte) []byte {
	parts := make([][]byte, len(packets))
	for i, p := range packets {
		parts[i] = p
	}
	return bytes.Join(parts, delimiter)
}
