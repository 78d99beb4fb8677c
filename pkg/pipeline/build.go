package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/opactx/opactx/pkg/config"
	"github.com/opactx/opactx/pkg/ctxobj"
	"github.com/opactx/opactx/pkg/events"
	"github.com/opactx/opactx/pkg/schema"
	"github.com/opactx/opactx/pkg/sources"
	"github.com/opactx/opactx/pkg/telemetry"
	"github.com/opactx/opactx/pkg/transform"
)

// Intent filenames looked up under the configured context directory.
const (
	StandardsFileName  = "standards.yaml"
	ExceptionsFileName = "exceptions.yaml"
)

// Options configures one build run.
type Options struct {
	// ProjectDir is the project root all relative paths resolve against.
	ProjectDir string

	// ConfigPath overrides the default configuration filename.
	ConfigPath string

	// DryRun executes everything except bundle emission.
	DryRun bool
}

// Outcome is the result of a successful build.
type Outcome struct {
	// Revision is the bundle revision, a hash of the canonical data document.
	Revision string

	// OutDir is the directory the bundle was written to, empty on dry runs.
	OutDir string

	// Files lists the bundle contents relative to OutDir.
	Files []string

	// Context is the final validated context payload.
	Context map[string]any
}

// Builder runs the build pipeline. Construct one per invocation; the
// bus, registries and logger are injected by the CLI layer.
type Builder struct {
	bus        *events.Bus
	log        *telemetry.Logger
	sources    *sources.Registry
	transforms *transform.Registry
}

// NewBuilder wires a builder from its collaborators. A nil logger is
// replaced with a no-op one.
func NewBuilder(bus *events.Bus, log *telemetry.Logger, src *sources.Registry, tr *transform.Registry) *Builder {
	if log == nil {
		log = telemetry.Nop()
	}
	return &Builder{bus: bus, log: log, sources: src, transforms: tr}
}

// NewRunID returns a fresh build run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run executes the full stage sequence. The returned error is always a
// *StageError naming the stage that failed.
func (b *Builder) Run(ctx context.Context, opts Options) (*Outcome, error) {
	b.bus.Publish(&events.CommandStarted{
		ProjectDir: opts.ProjectDir,
		ConfigPath: opts.ConfigPath,
		DryRun:     opts.DryRun,
	})

	outcome, err := b.run(ctx, opts)

	completed := &events.CommandCompleted{OK: err == nil}
	if err != nil {
		completed.ExitCode = 1
	}
	b.bus.Publish(completed)
	return outcome, err
}

func (b *Builder) run(ctx context.Context, opts Options) (*Outcome, error) {
	var (
		cfg        *config.Config
		loaded     *schema.LoadResult
		transforms []transform.Transform
	)
	err := b.stage(StageLoadConfig, func() error {
		var err error
		cfg, err = config.Load(opts.ProjectDir, opts.ConfigPath)
		if err != nil {
			return err
		}
		loaded, err = schema.LoadCompiled(opts.ProjectDir, cfg.SchemaPath, !opts.DryRun)
		if err != nil {
			b.bus.Publish(&events.SchemaInvalid{
				Base:    events.Base{Stage: string(StageLoadConfig)},
				Path:    cfg.SchemaPath,
				Message: err.Error(),
			})
			return err
		}
		b.bus.Publish(&events.SchemaLoaded{
			Base:         events.Base{Stage: string(StageLoadConfig)},
			Path:         loaded.Path,
			ArtifactPath: loaded.ArtifactPath,
			Compiled:     loaded.CompiledFromDSL,
		})
		transforms, err = b.transforms.BuildAll(opts.ProjectDir, effectiveTransforms(cfg))
		return err
	})
	if err != nil {
		return nil, err
	}

	var standards, exceptions map[string]any
	err = b.stage(StageLoadIntent, func() error {
		contextDir := filepath.Join(opts.ProjectDir, cfg.ContextDir)
		var err error
		standards, err = config.LoadYAMLMapping(filepath.Join(contextDir, StandardsFileName), true)
		if err != nil {
			return err
		}
		exceptions, err = config.LoadYAMLMapping(filepath.Join(contextDir, ExceptionsFileName), false)
		return err
	})
	if err != nil {
		return nil, err
	}

	fetched := map[string]any{}
	err = b.stage(StageFetchSources, func() error {
		results := sources.FetchAll(ctx, b.sources, opts.ProjectDir, cfg.Sources, func(r sources.Result) {
			b.bus.Publish(&events.SourceFetchStarted{
				Base:    events.Base{Stage: string(StageFetchSources)},
				Name:    r.Name,
				TypeKey: r.TypeKey,
				Note:    r.Note,
			})
		})
		var failures []error
		for i, result := range results {
			b.bus.Publish(&events.StageProgress{
				Base:    events.Base{Stage: string(StageFetchSources)},
				Current: i + 1,
				Total:   len(results),
				Note:    result.Name,
			})
			if result.Err != nil {
				b.bus.Publish(&events.SourceFetchFailed{
					Base:     events.Base{Stage: string(StageFetchSources)},
					Name:     result.Name,
					TypeKey:  result.TypeKey,
					Duration: events.Millis(result.Duration),
					Message:  result.Err.Error(),
				})
				failures = append(failures, errorf("source %s: %v", result.Name, result.Err))
				continue
			}
			b.bus.Publish(&events.SourceFetchCompleted{
				Base:      events.Base{Stage: string(StageFetchSources)},
				Name:      result.Name,
				Duration:  events.Millis(result.Duration),
				SizeBytes: result.SizeBytes,
			})
			fetched[result.Name] = result.Value
		}
		return errors.Join(failures...)
	})
	if err != nil {
		return nil, err
	}

	obj := ctxobj.FromValue(map[string]any{
		"intent": map[string]any{
			"standards":  standards,
			"exceptions": exceptions,
		},
		"sources": fetched,
	})
	env := &transform.Env{
		ProjectDir: opts.ProjectDir,
		Intent:     map[string]any{"standards": standards, "exceptions": exceptions},
		Sources:    fetched,
		Schema:     loaded.Schema,
	}
	err = b.stage(StageApplyTransforms, func() error {
		for _, t := range transforms {
			started := time.Now()
			if err := t.Apply(obj, env); err != nil {
				return err
			}
			b.bus.Publish(&events.TransformApplied{
				Base:     events.Base{Stage: string(StageApplyTransforms)},
				Name:     t.Name(),
				Kind:     transform.Kind(t),
				Duration: events.Millis(time.Since(started)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = b.stage(StageValidateContext, func() error {
		errs := schema.ValidateData(loaded.Schema, obj.Value())
		if len(errs) > 0 {
			b.bus.Publish(&events.SchemaValidationFailed{
				Base:       events.Base{Stage: string(StageValidateContext)},
				SchemaPath: loaded.Path,
				Errors:     validationIssues(errs),
			})
			return schema.ErrorList(errs)
		}
		b.bus.Publish(&events.SchemaValidationPassed{
			Base:       events.Base{Stage: string(StageValidateContext)},
			SchemaPath: loaded.Path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Context: obj.Value()}
	err = b.stage(StageEmitBundle, func() error {
		if opts.DryRun {
			revision, err := bundleRevision(obj.Value())
			if err != nil {
				return err
			}
			outcome.Revision = revision
			return nil
		}
		outDir := cfg.Output.Dir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(opts.ProjectDir, outDir)
		}
		b.bus.Publish(&events.BundleWriteStarted{
			Base:   events.Base{Stage: string(StageEmitBundle)},
			OutDir: outDir,
		})
		info, err := writeBundle(opts.ProjectDir, outDir, obj.Value(), cfg.Output)
		if err != nil {
			b.bus.Publish(&events.BundleWriteFailed{
				Base:    events.Base{Stage: string(StageEmitBundle)},
				OutDir:  outDir,
				Message: err.Error(),
			})
			return err
		}
		b.bus.Publish(&events.BundleWritten{
			Base:     events.Base{Stage: string(StageEmitBundle)},
			OutDir:   outDir,
			Revision: info.Revision,
			Files:    info.Files,
		})
		outcome.Revision = info.Revision
		outcome.OutDir = outDir
		outcome.Files = info.Files
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// stage runs one step with its start and outcome events. Exactly one of
// StageCompleted or StageFailed follows each StageStarted.
func (b *Builder) stage(stage Stage, fn func() error) error {
	log := b.log.WithStage(string(stage))
	log.Debug("stage started")
	b.bus.Publish(&events.StageStarted{
		Base:  events.Base{Stage: string(stage)},
		Label: stage.Label(),
	})
	started := time.Now()
	if err := fn(); err != nil {
		log.WithError(err).Error("stage failed")
		b.bus.Publish(&events.StageFailed{
			Base:      events.Base{Stage: string(stage)},
			Duration:  events.Millis(time.Since(started)),
			ErrorCode: errorCode(err),
			Message:   err.Error(),
		})
		return stageFailure(stage, err)
	}
	log.Debug("stage completed")
	b.bus.Publish(&events.StageCompleted{
		Base:     events.Base{Stage: string(stage)},
		Duration: events.Millis(time.Since(started)),
		Status:   "ok",
	})
	return nil
}

// effectiveTransforms applies the default transform list: a build with no
// configured transforms canonicalizes the context.
func effectiveTransforms(cfg *config.Config) []config.Transform {
	if len(cfg.Transforms) == 0 {
		return []config.Transform{{Name: "canonicalize"}}
	}
	return cfg.Transforms
}

func validationIssues(errs []error) []events.ValidationIssue {
	issues := make([]events.ValidationIssue, 0, len(errs))
	for _, err := range errs {
		var validation *schema.ValidationError
		if errors.As(err, &validation) {
			issues = append(issues, events.ValidationIssue{Path: validation.Path, Message: validation.Message})
			continue
		}
		issues = append(issues, events.ValidationIssue{Message: err.Error()})
	}
	return issues
}

// errorCode classifies an error for the failure event.
func errorCode(err error) string {
	var (
		configErr     *config.Error
		structural    *schema.StructuralError
		semantic      *schema.SemanticError
		validation    *schema.ValidationError
		transformFail *transform.Error
		list          schema.ErrorList
	)
	switch {
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &transformFail):
		return "transform"
	case errors.As(err, &list):
		if len(list) > 0 {
			return errorCode(list[0])
		}
		return "internal"
	case errors.As(err, &structural):
		return "structural"
	case errors.As(err, &semantic):
		return "semantic"
	case errors.As(err, &validation):
		return "validation"
	default:
		return "internal"
	}
}
