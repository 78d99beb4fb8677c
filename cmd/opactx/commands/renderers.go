package commands

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/opactx/opactx/pkg/events"
)

// newTextRenderer returns an observer that prints a human-readable line
// per interesting event. Stage noise stays quiet; failures and outcomes
// are loud.
func newTextRenderer() events.Observer {
	out := os.Stdout
	return events.ObserverFunc(func(event events.Event) {
		switch e := event.(type) {
		case *events.StageStarted:
			fmt.Fprintf(out, "==> %s\n", e.Label)
		case *events.StageFailed:
			fmt.Fprintf(out, "    FAILED [%s]: %s\n", e.ErrorCode, e.Message)
		case *events.SchemaLoaded:
			if e.Compiled {
				fmt.Fprintf(out, "    compiled schema from %s\n", e.Path)
			} else {
				fmt.Fprintf(out, "    loaded schema %s\n", e.Path)
			}
		case *events.SourceFetchCompleted:
			fmt.Fprintf(out, "    fetched %s (%d bytes in %s)\n", e.Name, e.SizeBytes, e.Duration)
		case *events.SourceFetchFailed:
			fmt.Fprintf(out, "    fetch %s failed: %s\n", e.Name, e.Message)
		case *events.TransformApplied:
			fmt.Fprintf(out, "    applied %s\n", e.Name)
		case *events.SchemaValidationFailed:
			for _, issue := range e.Errors {
				fmt.Fprintf(out, "    %s: %s\n", issue.Path, issue.Message)
			}
		case *events.Warning:
			fmt.Fprintf(out, "    warning [%s]: %s\n", e.Code, e.Message)
		case *events.BundleWritten:
			fmt.Fprintf(out, "    wrote %s (revision %s)\n", e.OutDir, e.Revision)
		case *events.CommandCompleted:
			if e.OK {
				fmt.Fprintln(out, "done")
			}
		}
	})
}

// jsonEvent is the envelope each event is serialized into: a stable type
// name next to the event's own fields.
type jsonEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// newJSONRenderer returns an observer that writes one JSON line per
// event, suitable for machine consumption.
func newJSONRenderer() events.Observer {
	encoder := json.NewEncoder(os.Stdout)
	return events.ObserverFunc(func(event events.Event) {
		// Encoding failures are swallowed: event payloads are fixed
		// structs and always serializable.
		_ = encoder.Encode(jsonEvent{Type: event.Type(), Data: event})
	})
}
