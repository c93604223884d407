package solana

import (
	"reflect"
	"testing"
)

func TestNormalizeMessageNotificationObject(t *testing.T) {
	raw := []byte(`{
		"jsonrpc": "2.0",
		"method": "logsNotification",
		"params": {
			"subscription": 42,
			"result": {
				"context": {"slot": 1234},
				"value": {
					"signature": "5xAbC",
					"logs": ["Program log: Instruction: CreateCoin", "Program data: aGVsbG8="]
				}
			}
		}
	}`)

	ev, ok := NormalizeMessage(raw)
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Signature != "5xAbC" {
		t.Errorf("signature = %q", ev.Signature)
	}
	if len(ev.Logs) != 2 {
		t.Errorf("logs = %v", ev.Logs)
	}
}

func TestNormalizeMessageBareValue(t *testing.T) {
	raw := []byte(`{"signature": "sig1", "logs": ["Program log: x"], "err": null}`)

	ev, ok := NormalizeMessage(raw)
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Signature != "sig1" {
		t.Errorf("signature = %q", ev.Signature)
	}
	if !reflect.DeepEqual(ev.Logs, []string{"Program log: x"}) {
		t.Errorf("logs = %v", ev.Logs)
	}
}

func TestNormalizeMessageList(t *testing.T) {
	raw := []byte(`[
		{"jsonrpc": "2.0", "id": 1, "result": 99},
		{"signature": "sig2", "logs": []}
	]`)

	ev, ok := NormalizeMessage(raw)
	if !ok {
		t.Fatal("expected event from list")
	}
	if ev.Signature != "sig2" {
		t.Errorf("signature = %q", ev.Signature)
	}
}

func TestNormalizeMessageAckDiscarded(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"jsonrpc": "2.0", "id": 1, "result": 23784}`),
		[]byte(`{"jsonrpc": "2.0", "method": "logsNotification"}`),
		[]byte(`[]`),
		[]byte(`not json`),
	}
	for _, raw := range cases {
		if _, ok := NormalizeMessage(raw); ok {
			t.Errorf("expected no event for %s", raw)
		}
	}
}
