package events

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDurationFieldsSerializeAsMilliseconds(t *testing.T) {
	event := &StageCompleted{
		Duration: Millis(1500 * time.Millisecond),
		Status:   "ok",
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"duration_ms":1500`) {
		t.Errorf("duration_ms not in milliseconds: %s", data)
	}

	fetch := &SourceFetchCompleted{Name: "repo", Duration: Millis(250 * time.Millisecond)}
	data, err = json.Marshal(fetch)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"duration_ms":250`) {
		t.Errorf("duration_ms not in milliseconds: %s", data)
	}
}
