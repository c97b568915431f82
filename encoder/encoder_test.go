package encoder_test

import (
	"bufio"
	"bytes"
	"sync"
	"testing"

	"github.com/ailidani/bus1/encoder"
	"github.com/ailidani/bus1/monitor"
)

// unregisteredEvent stands in for a caller-defined type that was never
// passed to encoder.Register, exercising the "unregistered type" error path.
type unregisteredEvent struct {
	Note string
}

func encodeDecode(t *testing.T, ev monitor.Event) monitor.Event {
	t.Helper()

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := encoder.Encode(w, ev); err != nil {
		t.Fatalf("Encode(%+v) = %v", ev, err)
	}

	r := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	var got interface{}
	if err := encoder.Decode(r, &got); err != nil {
		t.Fatalf("Decode() = %v", err)
	}

	decoded, ok := got.(monitor.Event)
	if !ok {
		t.Fatalf("Decode() produced %T, want monitor.Event", got)
	}
	return decoded
}

func TestEncodeDecodeMonitorEvent(t *testing.T) {
	ev := monitor.Event{PeerID: "01F8MECHZX3TBDSZ7ANF4WAX3T", Kind: "CUSTOM", Data: []byte("hello")}

	decoded := encodeDecode(t, ev)
	if decoded.PeerID != ev.PeerID || decoded.Kind != ev.Kind || !bytes.Equal(decoded.Data, ev.Data) {
		t.Errorf("round-tripped event = %+v, want %+v", decoded, ev)
	}
}

func TestEncodeDecodeMonitorEventNoData(t *testing.T) {
	ev := monitor.Event{PeerID: "01F8MECHZX3TBDSZ7ANF4WAX3T", Kind: "OBJECT_RELEASE"}

	decoded := encodeDecode(t, ev)
	if decoded.PeerID != ev.PeerID || decoded.Kind != ev.Kind || len(decoded.Data) != 0 {
		t.Errorf("round-tripped event = %+v, want %+v", decoded, ev)
	}
}

func TestEncodeUnregisteredType(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := encoder.Encode(w, unregisteredEvent{Note: "never registered"}); err == nil {
		t.Fatal("Encode() of an unregistered type = nil error, want one")
	}
}

func TestEncodeDecodeMonitorEventConcurrent(t *testing.T) {
	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ev := monitor.Event{PeerID: "peer", Kind: "CUSTOM", Data: []byte{byte(i)}}
			decoded := encodeDecode(t, ev)
			if !bytes.Equal(decoded.Data, ev.Data) {
				t.Errorf("goroutine %d: round-tripped data = %v, want %v", i, decoded.Data, ev.Data)
			}
		}(i)
	}
	wg.Wait()
}
