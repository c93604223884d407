package decoder

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/mr-tron/base58"
)

const (
	instructionPrefix = "Program log: Instruction: "
	dataPrefix        = "Program data: "
	logPrefix         = "Program log: "

	pubkeyLen = 32
)

// Event is a decoded payload: field name to typed value. Values are
// string (also for pubkeys, base58-encoded), uint8, or uint64.
type Event map[string]interface{}

func (e Event) String(key string) (string, bool) {
	v, ok := e[key].(string)
	return v, ok
}

func (e Event) Uint8(key string) (uint8, bool) {
	v, ok := e[key].(uint8)
	return v, ok
}

func (e Event) Uint64(key string) (uint64, bool) {
	v, ok := e[key].(uint64)
	return v, ok
}

// Decoder deserializes one event schema from a program log line.
type Decoder struct {
	schema Schema
}

func New(schema Schema) *Decoder {
	return &Decoder{schema: schema}
}

// Decode extracts the payload from a log line and walks the schema's
// fields sequentially. Returns nil when the line carries no decodable
// payload for this schema; callers try the next line.
func (d *Decoder) Decode(line string) Event {
	payload, ok := extractPayload(line)
	if !ok {
		return nil
	}

	buf, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}

	event := make(Event, len(d.schema.Fields))
	offset := 0

	for _, field := range d.schema.Fields {
		switch field.Type {
		case TypeString:
			if offset+4 > len(buf) {
				return nil
			}
			strLen := int(binary.LittleEndian.Uint32(buf[offset:]))
			offset += 4
			if offset+strLen > len(buf) {
				return nil
			}
			s := string(buf[offset : offset+strLen])
			if !utf8.ValidString(s) {
				return nil
			}
			event[field.Name] = s
			offset += strLen

		case TypeU8:
			if offset+1 > len(buf) {
				return nil
			}
			event[field.Name] = buf[offset]
			offset++

		case TypeU64:
			if offset+8 > len(buf) {
				return nil
			}
			event[field.Name] = binary.LittleEndian.Uint64(buf[offset:])
			offset += 8

		case TypePubkey:
			if offset+pubkeyLen > len(buf) {
				return nil
			}
			event[field.Name] = base58.Encode(buf[offset : offset+pubkeyLen])
			offset += pubkeyLen

		default:
			return nil
		}
	}

	return event
}

// extractPayload strips the payload marker. Anchor-style programs emit
// "Program data: <base64>"; older ones log the payload behind the plain
// log prefix. Instruction marker lines never carry a payload.
func extractPayload(line string) (string, bool) {
	if strings.HasPrefix(line, instructionPrefix) {
		return "", false
	}
	if rest, ok := strings.CutPrefix(line, dataPrefix); ok {
		return rest, rest != ""
	}
	if rest, ok := strings.CutPrefix(line, logPrefix); ok {
		return rest, rest != ""
	}
	return "", false
}
