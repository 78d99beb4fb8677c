// Package events defines the typed build events and the synchronous,
// ordered bus the pipeline publishes them on. The orchestrator is the
// sole publisher; renderers and other collaborators observe. Payloads are
// fixed structs per event type, never free-form attribute bags.
package events

import (
	"strconv"
	"time"
)

// Millis is a duration that serializes as integer milliseconds, matching
// the *_ms json tags it appears under.
type Millis time.Duration

// Duration returns the underlying duration.
func (m Millis) Duration() time.Duration { return time.Duration(m) }

// String formats like time.Duration for text renderers.
func (m Millis) String() string { return time.Duration(m).String() }

// MarshalJSON implements json.Marshaler.
func (m Millis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Duration(m).Milliseconds(), 10), nil
}

// Event is implemented by every event struct via the embedded Base.
type Event interface {
	// Meta returns the shared event metadata.
	Meta() *Base
	// Type is the stable event type name used by JSON renderers.
	Type() string
}

// Base carries the metadata shared by all events. Seq is assigned by the
// bus at publish time, dense and starting at 1 for each run.
type Base struct {
	Seq     uint64    `json:"seq"`
	RunID   string    `json:"run_id"`
	Command string    `json:"command"`
	Stage   string    `json:"stage,omitempty"`
	Time    time.Time `json:"time"`
}

// Meta implements Event.
func (b *Base) Meta() *Base { return b }

// CommandStarted opens a run's event stream.
type CommandStarted struct {
	Base
	ProjectDir string `json:"project_dir"`
	ConfigPath string `json:"config_path"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

func (*CommandStarted) Type() string { return "CommandStarted" }

// CommandCompleted closes a run's event stream.
type CommandCompleted struct {
	Base
	OK       bool `json:"ok"`
	ExitCode int  `json:"exit_code"`
}

func (*CommandCompleted) Type() string { return "CommandCompleted" }

// StageStarted is emitted exactly once on entering a stage.
type StageStarted struct {
	Base
	Label string `json:"label"`
}

func (*StageStarted) Type() string { return "StageStarted" }

// StageProgress reports per-item progress within a stage.
type StageProgress struct {
	Base
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Note    string `json:"note,omitempty"`
}

func (*StageProgress) Type() string { return "StageProgress" }

// StageCompleted is the success outcome of a stage. Exactly one of
// StageCompleted or StageFailed follows each StageStarted.
type StageCompleted struct {
	Base
	Duration Millis `json:"duration_ms"`
	Status   string `json:"status"`
}

func (*StageCompleted) Type() string { return "StageCompleted" }

// StageFailed is the failure outcome of a stage; the pipeline halts and
// no later stage emits anything.
type StageFailed struct {
	Base
	Duration  Millis `json:"duration_ms"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
}

func (*StageFailed) Type() string { return "StageFailed" }

// SourceFetchStarted marks one connector fetch beginning, in declared
// configuration order.
type SourceFetchStarted struct {
	Base
	Name    string `json:"name"`
	TypeKey string `json:"type_key"`
	Note    string `json:"note,omitempty"`
}

func (*SourceFetchStarted) Type() string { return "SourceFetchStarted" }

// SourceFetchCompleted reports one successful connector fetch.
type SourceFetchCompleted struct {
	Base
	Name      string `json:"name"`
	Duration  Millis `json:"duration_ms"`
	SizeBytes int    `json:"size_bytes"`
}

func (*SourceFetchCompleted) Type() string { return "SourceFetchCompleted" }

// SourceFetchFailed reports one failed connector fetch.
type SourceFetchFailed struct {
	Base
	Name     string `json:"name"`
	TypeKey  string `json:"type_key"`
	Duration Millis `json:"duration_ms"`
	Message  string `json:"message"`
}

func (*SourceFetchFailed) Type() string { return "SourceFetchFailed" }

// SchemaLoaded reports the schema input was resolved, naming the compiled
// artifact when the DSL path ran.
type SchemaLoaded struct {
	Base
	Path         string `json:"path"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	Compiled     bool   `json:"compiled"`
}

func (*SchemaLoaded) Type() string { return "SchemaLoaded" }

// SchemaInvalid reports a schema input that failed to load, compile or
// self-check.
type SchemaInvalid struct {
	Base
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (*SchemaInvalid) Type() string { return "SchemaInvalid" }

// SchemaValidationPassed reports the context validated cleanly.
type SchemaValidationPassed struct {
	Base
	SchemaPath string `json:"schema_path"`
}

func (*SchemaValidationPassed) Type() string { return "SchemaValidationPassed" }

// SchemaValidationFailed carries every validation error found.
type SchemaValidationFailed struct {
	Base
	SchemaPath string            `json:"schema_path"`
	Errors     []ValidationIssue `json:"errors"`
}

func (*SchemaValidationFailed) Type() string { return "SchemaValidationFailed" }

// ValidationIssue is one data validation failure with its pointer path.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// TransformApplied reports one transform finishing.
type TransformApplied struct {
	Base
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Duration Millis `json:"duration_ms"`
}

func (*TransformApplied) Type() string { return "TransformApplied" }

// BundleWriteStarted marks bundle emission beginning.
type BundleWriteStarted struct {
	Base
	OutDir string `json:"out_dir"`
}

func (*BundleWriteStarted) Type() string { return "BundleWriteStarted" }

// BundleWritten reports the bundle landed, with its revision and files.
type BundleWritten struct {
	Base
	OutDir   string   `json:"out_dir"`
	Revision string   `json:"revision"`
	Files    []string `json:"files"`
}

func (*BundleWritten) Type() string { return "BundleWritten" }

// BundleWriteFailed reports bundle emission failing.
type BundleWriteFailed struct {
	Base
	OutDir  string `json:"out_dir"`
	Message string `json:"message"`
}

func (*BundleWriteFailed) Type() string { return "BundleWriteFailed" }

// Warning is advisory; it never fails a stage.
type Warning struct {
	Base
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (*Warning) Type() string { return "Warning" }
