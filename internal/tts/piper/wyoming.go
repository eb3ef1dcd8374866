package piper

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrEventTooLarge is returned for events announcing more bytes than allowed.
var ErrEventTooLarge = errors.New("wyoming event too large")

// event is one Wyoming protocol message.
//
// On the wire every event is a JSON header line, optionally followed by
// data_length bytes of JSON data and payload_length bytes of binary payload:
//
//	{"type":"audio-chunk","data_length":42,"payload_length":2048}\n
//	{"rate":22050,"width":2,"channels":1}
//	<2048 bytes of PCM>
type event struct {
	Type    string
	Data    map[string]any
	Payload []byte
}

// Upper bounds on the lengths a server may announce. Event data is a small
// JSON object; a payload is one audio chunk.
const (
	maxDataLength    = 1 << 20
	maxPayloadLength = 16 << 20
)

type header struct {
	Type          string         `json:"type"`
	Data          map[string]any `json:"data,omitempty"`
	DataLength    int            `json:"data_length,omitempty"`
	PayloadLength int            `json:"payload_length,omitempty"`
}

// writeEvent sends evt with its data inlined in the header line.
func writeEvent(w io.Writer, evt event) error {
	h := header{Type: evt.Type, Data: evt.Data, PayloadLength: len(evt.Payload)}
	line, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", evt.Type, err)
	}
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		return err
	}
	if len(evt.Payload) > 0 {
		if _, err := w.Write(evt.Payload); err != nil {
			return err
		}
	}
	return nil
}

// readEvent reads the next event. Data sent after the header is merged over
// any data inlined in it.
func readEvent(r *bufio.Reader) (*event, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("invalid wyoming header %q: %w", line, err)
	}
	if h.DataLength < 0 || h.PayloadLength < 0 {
		return nil, fmt.Errorf("invalid wyoming lengths in %q", line)
	}
	if h.DataLength > maxDataLength || h.PayloadLength > maxPayloadLength {
		return nil, fmt.Errorf("%w: %s data_length=%d payload_length=%d", ErrEventTooLarge, h.Type, h.DataLength, h.PayloadLength)
	}

	evt := &event{Type: h.Type, Data: h.Data}
	if h.DataLength > 0 {
		raw := make([]byte, h.DataLength)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("reading %s data: %w", h.Type, err)
		}
		var extra map[string]any
		if err := json.Unmarshal(raw, &extra); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", h.Type, err)
		}
		if evt.Data == nil {
			evt.Data = extra
		} else {
			for k, v := range extra {
				evt.Data[k] = v
			}
		}
	}
	if h.PayloadLength > 0 {
		evt.Payload = make([]byte, h.PayloadLength)
		if _, err := io.ReadFull(r, evt.Payload); err != nil {
			return nil, fmt.Errorf("reading %s payload: %w", h.Type, err)
		}
	}
	return evt, nil
}

func intField(data map[string]any, key string, def int) int {
	if v, ok := data[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}
