package decoder

import "strings"

// Router maps instruction names found in transaction logs to the decoder
// for that instruction's event payload.
type Router struct {
	decoders map[string]*Decoder
}

func NewRouter() *Router {
	return &Router{decoders: make(map[string]*Decoder)}
}

// Register binds an instruction name to a payload schema. Several
// instructions may share one schema.
func (r *Router) Register(instruction string, schema Schema) {
	r.decoders[instruction] = New(schema)
}

// LocateInstruction scans log lines in order for the first instruction
// marker and returns its name and index. ok is false when the transaction
// touched the program without firing a known-format instruction.
func LocateInstruction(logs []string) (name string, index int, ok bool) {
	for i, line := range logs {
		if rest, found := strings.CutPrefix(line, instructionPrefix); found {
			return rest, i, true
		}
	}
	return "", 0, false
}

// Dispatch locates the instruction, then tries each subsequent log line
// until one decodes under the registered schema. The first successful
// decode wins. Returns ok=false for unknown instructions or when no line
// carries a decodable payload; neither case is an error.
func (r *Router) Dispatch(logs []string) (instruction string, event Event, ok bool) {
	name, idx, found := LocateInstruction(logs)
	if !found {
		return "", nil, false
	}

	dec, registered := r.decoders[name]
	if !registered {
		return "", nil, false
	}

	for _, line := range logs[idx:] {
		if ev := dec.Decode(line); ev != nil {
			return name, ev, true
		}
	}
	return "", nil, false
}
