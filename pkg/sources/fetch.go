package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/opactx/opactx/pkg/config"
)

// Result is the outcome of one connector fetch.
type Result struct {
	// Name is the configured source name.
	Name string

	// TypeKey is the connector type.
	TypeKey string

	// Note is the connector's target summary, when available.
	Note string

	// Value is the fetched payload on success.
	Value any

	// Err is the fetch failure, if any.
	Err error

	// Duration is how long the individual fetch took.
	Duration time.Duration

	// SizeBytes is the serialized payload size on success.
	SizeBytes int
}

// StartFunc is notified as each fetch is dispatched, in declared
// configuration order, before the connector runs. The Result carries only
// the identifying fields at that point.
type StartFunc func(Result)

// FetchAll runs every configured fetch concurrently for latency, then
// joins the buffered results in declared configuration order. Determinism
// is a property of configured order, never of completion timing: callers
// always observe results in the order sources were declared, and apply
// them to the context in that order. onStart may be nil.
func FetchAll(ctx context.Context, registry *Registry, projectDir string, specs []config.Source, onStart StartFunc) []Result {
	results := make([]Result, len(specs))
	var wg sync.WaitGroup
	for i, spec := range specs {
		results[i] = Result{Name: spec.Name, TypeKey: spec.Type}
		connector, err := registry.New(spec.Type, projectDir, spec.With)
		if err != nil {
			results[i].Err = err
			if onStart != nil {
				onStart(Result{Name: results[i].Name, TypeKey: results[i].TypeKey})
			}
			continue
		}
		if describer, ok := connector.(Describer); ok {
			results[i].Note = describer.Describe()
		}
		if onStart != nil {
			onStart(Result{Name: results[i].Name, TypeKey: results[i].TypeKey, Note: results[i].Note})
		}
		wg.Add(1)
		go func(i int, connector Connector) {
			defer wg.Done()
			started := time.Now()
			value, err := connector.Fetch(ctx)
			results[i].Duration = time.Since(started)
			if err != nil {
				results[i].Err = err
				return
			}
			payload, err := json.Marshal(value)
			if err != nil {
				results[i].Err = fmt.Errorf("source returned non-JSON-serializable data: %w", err)
				return
			}
			results[i].Value = value
			results[i].SizeBytes = len(payload)
		}(i, connector)
	}
	wg.Wait()
	return results
}
