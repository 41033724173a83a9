package wsframe

import (
	"encoding/binary"
	"encoding/json"
	"math"

	eeg "github.com/go-eeg/pipeline"
)

// dataHeader is the JSON header embedded in a binary data frame (spec.md
// §4.8).
type dataHeader struct {
	MessageType string `json:"message_type"`
	Topic       string `json:"topic"`
	PacketType  string `json:"packet_type"`
	TsNs        int64  `json:"ts_ns"`
	BatchSize   uint32 `json:"batch_size"`
	NumChannels uint32 `json:"num_channels"`
	MetaRev     uint32 `json:"meta_rev"`
}

// metaUpdate is the JSON-only message emitted ahead of a data frame
// whenever SensorMeta changes (spec.md §4.8).
type metaUpdate struct {
	MessageType string          `json:"message_type"`
	Topic       string          `json:"topic"`
	Meta        *eeg.SensorMeta `json:"meta"`
}

// encodeMetaUpdate marshals a meta_update message. It carries no binary
// payload, unlike encodeDataFrame.
func encodeMetaUpdate(topic string, meta *eeg.SensorMeta) ([]byte, error) {
	return json.Marshal(metaUpdate{MessageType: "meta_update", Topic: topic, Meta: meta})
}

// encodeDataFrame lays out [u32 LE header length][JSON header][0..3 zero
// pad to 4-byte align the payload][sample payload, channel-major] exactly
// per spec.md §4.8's binary frame layout.
func encodeDataFrame(topic string, pkt *eeg.RtPacket) ([]byte, error) {
	var packetType string
	var payload []byte

	switch pkt.Kind {
	case eeg.KindRawI32:
		packetType = "RawI32"
		payload = make([]byte, 4*len(pkt.I32))
		for i, v := range pkt.I32 {
			binary.LittleEndian.PutUint32(payload[i*4:], uint32(v))
		}
	case eeg.KindVoltage:
		packetType = "Voltage"
		payload = make([]byte, 4*len(pkt.F32))
		for i, v := range pkt.F32 {
			binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(v))
		}
	default:
		return nil, eeg.NewStageError("wsframe", eeg.BadParam, "unsupported packet kind %s for websocket framing", pkt.Kind)
	}

	var metaRev uint32
	if pkt.Header.Meta != nil {
		metaRev = pkt.Header.Meta.MetaRev
	}

	hdr, err := json.Marshal(dataHeader{
		MessageType: "data_packet",
		Topic:       topic,
		PacketType:  packetType,
		TsNs:        pkt.Header.TsNs,
		BatchSize:   pkt.Header.BatchSize,
		NumChannels: pkt.Header.NumChannels,
		MetaRev:     metaRev,
	})
	if err != nil {
		return nil, eeg.WrapStageError("wsframe", eeg.Json, err)
	}

	pad := (4 - len(hdr)%4) % 4

	frame := make([]byte, 4+len(hdr)+pad+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(len(hdr)))
	copy(frame[4:], hdr)
	copy(frame[4+len(hdr)+pad:], payload)
	return frame, nil
}
