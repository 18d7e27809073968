package forwarder

import (
	"encoding/json"
	"testing"
	"time"
)

func TestReportURL(t *testing.T) {
	if got := ReportURL("http://h", "p", "n"); got != "http://h/reporter/p/n/" {
		t.Fatalf("unexpected report url %q", got)
	}
}

func TestReportWireFormat(t *testing.T) {
	report := NewReport("r1", 30*time.Second, 0.5, 0.75)
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("decode wire: %v", err)
	}
	if wire["replica"] != "r1" || wire["interval"] != float64(30) {
		t.Fatalf("unexpected wire body: %s", data)
	}
	load, ok := wire["load"].(map[string]any)
	if !ok || load["cpu"] != 0.5 || load["ram"] != 0.75 {
		t.Fatalf("unexpected load object: %s", data)
	}

	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != report {
		t.Fatalf("round trip mismatch: %+v != %+v", back, report)
	}
}

func TestNewReportTruncatesInterval(t *testing.T) {
	if got := NewReport("r", 1500*time.Millisecond, 0, 0).Interval; got != 1 {
		t.Fatalf("expected 1 second, got %d", got)
	}
}
