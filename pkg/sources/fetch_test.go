package sources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opactx/opactx/pkg/config"
)

// slowConnector completes after a configured delay, for exercising the
// ordered join against out-of-order completion.
type slowConnector struct {
	delay time.Duration
	value any
	err   error
}

func (c *slowConnector) Fetch(context.Context) (any, error) {
	time.Sleep(c.delay)
	return c.value, c.err
}

func slowFactory(delay time.Duration, value any, err error) Factory {
	return func(string, map[string]any) (Connector, error) {
		return &slowConnector{delay: delay, value: value, err: err}, nil
	}
}

func TestFetchAllJoinsInDeclaredOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register("slow", slowFactory(50*time.Millisecond, "slow-value", nil))
	registry.Register("fast", slowFactory(0, "fast-value", nil))

	specs := []config.Source{
		{Name: "first", Type: "slow"},
		{Name: "second", Type: "fast"},
	}
	var dispatched []string
	results := FetchAll(context.Background(), registry, "", specs, func(r Result) {
		dispatched = append(dispatched, r.Name)
	})
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Name != "first" || results[0].Value != "slow-value" {
		t.Errorf("results[0] = %+v; declared order not preserved", results[0])
	}
	if results[1].Name != "second" || results[1].Value != "fast-value" {
		t.Errorf("results[1] = %+v", results[1])
	}
	if len(dispatched) != 2 || dispatched[0] != "first" || dispatched[1] != "second" {
		t.Errorf("dispatch notifications = %v, want declared order", dispatched)
	}
}

type connectorFunc func(context.Context) (any, error)

func (f connectorFunc) Fetch(ctx context.Context) (any, error) { return f(ctx) }

func TestFetchAllNotifiesDispatchBeforeFetch(t *testing.T) {
	registry := NewRegistry()
	var fetchBegan atomic.Bool
	registry.Register("flagged", func(string, map[string]any) (Connector, error) {
		return connectorFunc(func(context.Context) (any, error) {
			fetchBegan.Store(true)
			return "v", nil
		}), nil
	})

	notified := false
	lateNotification := false
	FetchAll(context.Background(), registry, "", []config.Source{{Name: "only", Type: "flagged"}}, func(Result) {
		notified = true
		lateNotification = fetchBegan.Load()
	})
	if !notified {
		t.Fatal("dispatch notification never fired")
	}
	if lateNotification {
		t.Error("dispatch notification fired after the fetch began")
	}
}

func TestFetchAllReportsFailuresInPlace(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ok", slowFactory(0, map[string]any{"k": "v"}, nil))
	registry.Register("broken", slowFactory(0, nil, errors.New("connection refused")))

	specs := []config.Source{
		{Name: "good", Type: "ok"},
		{Name: "bad", Type: "broken"},
		{Name: "unknown", Type: "nope"},
	}
	results := FetchAll(context.Background(), registry, "", specs, nil)
	if results[0].Err != nil {
		t.Errorf("good source failed: %v", results[0].Err)
	}
	if results[0].SizeBytes == 0 {
		t.Error("successful fetch has no payload size")
	}
	if results[1].Err == nil {
		t.Error("broken source reported no error")
	}
	if results[2].Err == nil {
		t.Error("unknown source type reported no error")
	}
}

func TestFetchAllRejectsNonSerializablePayload(t *testing.T) {
	registry := NewRegistry()
	registry.Register("bad", slowFactory(0, func() {}, nil))
	results := FetchAll(context.Background(), registry, "", []config.Source{{Name: "x", Type: "bad"}}, nil)
	if results[0].Err == nil {
		t.Error("non-serializable payload accepted")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "repo.json"), []byte(`{"name":"api"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	connector, err := NewFileSource(dir, map[string]any{"path": "repo.json"})
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	value, err := connector.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !reflect.DeepEqual(value, map[string]any{"name": "api"}) {
		t.Errorf("value = %v", value)
	}

	if _, err := NewFileSource(dir, map[string]any{}); err == nil {
		t.Error("file source without a path accepted")
	}
}
