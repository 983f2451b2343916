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

package layers

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-cpap/pkg/packet"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
)

const (
	// RecordLayerNum identifies the layer
	RecordLayerNum = 2000
)

// RecordLayer is a packet decoded with a schema. Contents are the bytes the
// schema consumed; Payload is whatever was left over.
type RecordLayer struct {
	layers.BaseLayer
	Schema *schema.Schema
	Record
}

// RecordLayerType decodes with the header schema of the default set when used
// as a plain gopacket decoder. Use SchemaDecoder to pick another schema.
var RecordLayerType = gopacket.RegisterLayerType(RecordLayerNum,
	gopacket.LayerTypeMetadata{Name: "RecordLayerType", Decoder: gopacket.DecodeFunc(decodeDefaultHeader)})

var _ gopacket.DecodingLayer = &RecordLayer{}

// LayerType returns the type of the record layer in the layer catalog
func (l *RecordLayer) LayerType() gopacket.LayerType {
	return RecordLayerType
}

func (l *RecordLayer) CanDecode() gopacket.LayerClass {
	return RecordLayerType
}

// NextLayerType is Payload when the schema did not consume the whole packet.
func (l *RecordLayer) NextLayerType() gopacket.LayerType {
	if len(l.Payload) == 0 {
		return gopacket.LayerTypeZero
	}
	return gopacket.LayerTypePayload
}

// DecodeFromBytes decodes data with l.Schema. data itself is not modified.
func (l *RecordLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if l.Schema == nil {
		return errors.New("Record layer has no schema")
	}
	rest := packet.Packet(data)
	record, err := Decode(&rest, l.Schema)
	if err != nil {
		var truncated ErrTruncatedPacket
		if errors.As(err, &truncated) {
			df.SetTruncated()
		}
		return err
	}
	consumed := len(data) - len(rest)
	l.BaseLayer = layers.BaseLayer{
		Contents: data[:consumed],
		Payload:  data[consumed:],
	}
	l.Record = record
	return nil
}

// SchemaDecoder is a gopacket.Decoder bound to one schema.
type SchemaDecoder struct {
	Schema *schema.Schema
}

func (d SchemaDecoder) Decode(data []byte, p gopacket.PacketBuilder) error {
	l := &RecordLayer{Schema: d.Schema}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	if len(l.Payload) == 0 {
		return nil
	}
	return p.NextDecoder(gopacket.LayerTypePayload)
}

func decodeDefaultHeader(data []byte, p gopacket.PacketBuilder) error {
	set, err := schema.Lookup(schema.DefaultSet)
	if err != nil {
		return err
	}
	return SchemaDecoder{Schema: set.Header}.Decode(data, p)
}

// DecodePacket runs a packet through gopacket with the given schema and
// returns the record layer and any bytes the schema did not consume.
func DecodePacket(data []byte, s *schema.Schema) (*RecordLayer, []byte, error) {
	pkt := gopacket.NewPacket(data, SchemaDecoder{Schema: s}, gopacket.DecodeOptions{NoCopy: true})
	if errLayer := pkt.ErrorLayer(); errLayer != nil {
		return nil, nil, errLayer.Error()
	}
	recordLayer, ok := pkt.Layer(RecordLayerType).(*RecordLayer)
	if !ok {
		return nil, nil, errors.New("Record layer not found in decoded packet")
	}
	var trailing []byte
	if app := pkt.ApplicationLayer(); app != nil {
		trailing = app.Payload()
	}
	return recordLayer, trailing, nil
}
