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
	"time"

	"jinr.ru/greenlab/go-cpap/pkg/diag"
	"jinr.ru/greenlab/go-cpap/pkg/layers"
	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
	"jinr.ru/greenlab/go-cpap/pkg/stream"
	"jinr.ru/greenlab/go-cpap/pkg/timeconv"
)

type Options struct {
	Delimiter []byte
	Set       *schema.Set

	// DecodeBody decodes the packets after the header with the set's body
	// schema. Without it those packets are returned raw in Extraction.Pending.
	DecodeBody bool
}

// Pipeline turns one byte stream into records. It holds no per-source state
// and can be shared between goroutines.
type Pipeline struct {
	delimiter  []byte
	set        *schema.Set
	decodeBody bool
}

func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Set == nil {
		return nil, ErrNoSchemaSet{}
	}
	if err := opts.Set.Validate(); err != nil {
		return nil, err
	}
	delimiter := opts.Delimiter
	if delimiter == nil {
		delimiter = packet.DefaultDelimiter
	}
	return &Pipeline{
		delimiter:  delimiter,
		set:        opts.Set,
		decodeBody: opts.DecodeBody,
	}, nil
}

func (p *Pipeline) Set() *schema.Set {
	return p.set
}

// ExtractFile opens the file, extracts it and closes it on every path.
func (p *Pipeline) ExtractFile(path string) (*Extraction, error) {
	s, err := stream.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if size, err := stream.Size(s); err == nil {
		log.Info("Reading in %s (%d bytes)", path, size)
	}
	return p.Extract(path, s)
}

// Extract splits the stream into packets, decodes the header packet and
// normalizes its timestamps. Framing and decoding errors are fatal for the
// source; everything else ends up in Extraction.Diagnostics.
func (p *Pipeline) Extract(source string, s stream.ByteStream) (*Extraction, error) {
	started := time.Now()
	collector := diag.NewCollector(source)

	packets, err := packet.Split(s, p.delimiter, collector)
	if err != nil {
		return nil, fmt.Errorf("%s: framing: %w", source, err)
	}
	if len(packets) == 0 {
		return nil, ErrNoPackets{Source: source}
	}

	header, err := p.decode(source, 0, packets[0], p.set.Header, collector)
	if err != nil {
		return nil, err
	}

	e := &Extraction{
		Source: source,
		Set:    p.set.Name,
		Header: header,
	}

	rest := packets[1:]
	switch {
	case len(rest) == 0:
	case p.set.Body == nil:
		collector.Notice(diag.KindBodyNotDecoded,
			"%d packets after the header kept raw: schema set %s has no body schema", len(rest), p.set.Name)
		e.Pending = rest
	case !p.decodeBody:
		collector.Notice(diag.KindBodyNotDecoded,
			"%d packets after the header kept raw: body decoding is off", len(rest))
		e.Pending = rest
	default:
		for i, data := range rest {
			record, err := p.decode(source, i+1, data, p.set.Body, collector)
			if err != nil {
				return nil, err
			}
			e.Body = append(e.Body, record)
		}
	}

	e.Diagnostics = collector.Entries()
	log.WithSource(source).Debugf("Extracted %d packets in %s", len(packets), time.Since(started))
	return e, nil
}

func (p *Pipeline) decode(source string, index int, data packet.Packet, s *schema.Schema, collector *diag.Collector) (layers.Record, error) {
	recordLayer, trailing, err := layers.DecodePacket(data, s)
	if err != nil {
		return layers.Record{}, fmt.Errorf("%s: packet %d: %w", source, index, err)
	}
	if len(trailing) > 0 {
		collector.Warn(diag.KindTrailingData, "Packet %d: %d bytes left after schema %s (%d bytes)",
			index, len(trailing), s.Name, s.Width())
	}
	record := recordLayer.Record
	timeconv.NormalizeRecord(&record, collector)
	return record, nil
}
