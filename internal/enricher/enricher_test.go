package enricher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCID(t *testing.T) {
	cases := []struct {
		uri  string
		want string
		ok   bool
	}{
		{"https://ipfs.io/ipfs/QmXyz123", "QmXyz123", true},
		{"ipfs://QmAbc456", "QmAbc456", true},
		{"https://gateway.pinata.cloud/ipfs/QmDef789/", "QmDef789", true},
		{"QmBare", "QmBare", true},
		{"", "", false},
		{"///", "", false},
	}
	for _, tc := range cases {
		got, ok := CID(tc.uri)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("CID(%q) = %q, %v; want %q, %v", tc.uri, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEnrich_GatewayFallback(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/QmTest" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"image":"https://img.example/x.png","description":"a coin","name":"Spoofed"}`))
	}))
	defer working.Close()

	f := NewFetcher(zap.NewNop(), WithGateways([]string{
		failing.URL + "/ipfs/",
		working.URL + "/ipfs/",
	}))

	base := map[string]interface{}{"name": "Real Coin", "ticker": "RC"}
	got := f.Enrich(context.Background(), "ipfs://QmTest", base)

	if got["image"] != "https://img.example/x.png" {
		t.Fatalf("image = %v", got["image"])
	}
	if got["description"] != "a coin" {
		t.Fatalf("description = %v", got["description"])
	}
	// On-chain name stays authoritative.
	if got["name"] != "Real Coin" {
		t.Fatalf("name = %v", got["name"])
	}
}

func TestEnrich_AllGatewaysFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failing.Close()

	f := NewFetcher(zap.NewNop(), WithGateways([]string{failing.URL + "/ipfs/"}))

	base := map[string]interface{}{"name": "Real Coin"}
	got := f.Enrich(context.Background(), "ipfs://QmTest", base)
	if len(got) != 1 || got["name"] != "Real Coin" {
		t.Fatalf("base fields changed: %v", got)
	}
}

func TestEnrich_SlowGatewayTimesOut(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer slow.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"image":"x"}`))
	}))
	defer working.Close()

	f := NewFetcher(zap.NewNop(),
		WithGateways([]string{slow.URL + "/ipfs/", working.URL + "/ipfs/"}),
		WithGatewayTimeout(100*time.Millisecond))

	got := f.Enrich(context.Background(), "ipfs://QmTest", map[string]interface{}{})
	if got["image"] != "x" {
		t.Fatalf("expected fallback to the second gateway, got %v", got)
	}
}

func TestEnrich_DefaultTimeoutLeavesRoomForFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the default gateway timeout")
	}

	hung := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer hung.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"image":"x"}`))
	}))
	defer working.Close()

	// The default per-gateway timeout must leave enough of a 10s overall
	// enrichment budget for the fallback gateway to be attempted.
	f := NewFetcher(zap.NewNop(), WithGateways([]string{
		hung.URL + "/ipfs/",
		working.URL + "/ipfs/",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := f.Enrich(ctx, "ipfs://QmTest", map[string]interface{}{})
	if got["image"] != "x" {
		t.Fatalf("fallback gateway never reached, got %v", got)
	}
}

func TestEnrich_InvalidURI(t *testing.T) {
	f := NewFetcher(zap.NewNop(), WithGateways(nil))

	base := map[string]interface{}{"name": "Real Coin"}
	got := f.Enrich(context.Background(), "", base)
	if len(got) != 1 || got["name"] != "Real Coin" {
		t.Fatalf("base fields changed: %v", got)
	}
}

func TestEnrich_NonJSONBody(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer bad.Close()

	f := NewFetcher(zap.NewNop(), WithGateways([]string{bad.URL + "/ipfs/"}))

	base := map[string]interface{}{"ticker": "RC"}
	got := f.Enrich(context.Background(), "ipfs://QmTest", base)
	if len(got) != 1 || got["ticker"] != "RC" {
		t.Fatalf("base fields changed: %v", got)
	}
}
