package solana

import "encoding/json"

// Commitment levels accepted by the RPC node. Pass-through strings; the
// client does not interpret them.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// RawLogEvent is one transaction's log lines plus its signature, normalized
// out of whatever notification shape the node delivered.
type RawLogEvent struct {
	Signature string
	Logs      []string
}

// WebSocket JSON-RPC message types.

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *wsError        `json:"error"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext  `json:"context"`
	Value   wsLogsValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsLogsValue struct {
	Signature string      `json:"signature"`
	Logs      []string    `json:"logs"`
	Err       interface{} `json:"err"`
}

// NormalizeMessage reduces the observed notification shapes to a single
// (signature, logs) pair. Nodes deliver either a full logsNotification
// object, a bare value mapping, or a list containing either; subscription
// acks carry no method field and are discarded (ok=false).
func NormalizeMessage(raw []byte) (*RawLogEvent, bool) {
	// List variant: first normalizable element wins.
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		for _, item := range items {
			if ev, ok := normalizeObject(item); ok {
				return ev, true
			}
		}
		return nil, false
	}

	return normalizeObject(raw)
}

func normalizeObject(raw []byte) (*RawLogEvent, bool) {
	var notif wsNotification
	if err := json.Unmarshal(raw, &notif); err == nil &&
		notif.Method == "logsNotification" && notif.Params != nil {
		v := notif.Params.Result.Value
		if v.Signature != "" {
			return &RawLogEvent{Signature: v.Signature, Logs: v.Logs}, true
		}
		return nil, false
	}

	// Bare value mapping without a method wrapper.
	var value wsLogsValue
	if err := json.Unmarshal(raw, &value); err == nil && value.Signature != "" {
		return &RawLogEvent{Signature: value.Signature, Logs: value.Logs}, true
	}

	return nil, false
}
