// Package pipeline drives the build: a fixed, strictly sequential stage
// machine over configuration, intent, source payloads, transforms,
// validation and bundle emission. Each stage's postconditions are a
// precondition of the next, so the pipeline halts on the first failing
// stage and later stages never run and never emit events.
package pipeline

// Stage identifies one step of the build for event attribution.
type Stage string

const (
	StageLoadConfig      Stage = "load_config"
	StageLoadIntent      Stage = "load_intent"
	StageFetchSources    Stage = "fetch_sources"
	StageApplyTransforms Stage = "apply_transforms"
	StageValidateContext Stage = "validate_context"
	StageEmitBundle      Stage = "emit_bundle"
)

// stageLabels are the human-readable stage names used in start events.
var stageLabels = map[Stage]string{
	StageLoadConfig:      "Loading configuration",
	StageLoadIntent:      "Loading intent documents",
	StageFetchSources:    "Fetching sources",
	StageApplyTransforms: "Applying transforms",
	StageValidateContext: "Validating context",
	StageEmitBundle:      "Emitting bundle",
}

// Label returns the display label for a stage.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}
