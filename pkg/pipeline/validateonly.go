package pipeline

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/opactx/opactx/pkg/config"
	"github.com/opactx/opactx/pkg/events"
	"github.com/opactx/opactx/pkg/schema"
)

// ValidateOptions configures a preflight run.
type ValidateOptions struct {
	// ProjectDir is the project root.
	ProjectDir string

	// ConfigPath overrides the default configuration filename.
	ConfigPath string

	// Strict also fails on issues under the sources subtree, which a
	// preflight cannot populate because it never fetches.
	Strict bool
}

// Validate runs the fast preflight: structural validation, compilation,
// the compiled-schema self-check, and validation of an intent-only
// candidate context. No source is fetched and no bundle is written.
//
// Because the candidate's sources subtree is empty by construction,
// validation issues under it are reported as warnings unless Strict.
func (b *Builder) Validate(opts ValidateOptions) error {
	b.bus.Publish(&events.CommandStarted{
		ProjectDir: opts.ProjectDir,
		ConfigPath: opts.ConfigPath,
	})

	err := b.validate(opts)

	completed := &events.CommandCompleted{OK: err == nil}
	if err != nil {
		completed.ExitCode = 1
	}
	b.bus.Publish(completed)
	return err
}

func (b *Builder) validate(opts ValidateOptions) error {
	var (
		cfg    *config.Config
		loaded *schema.LoadResult
	)
	err := b.stage(StageLoadConfig, func() error {
		var err error
		cfg, err = config.Load(opts.ProjectDir, opts.ConfigPath)
		if err != nil {
			return err
		}
		loaded, err = schema.LoadCompiled(opts.ProjectDir, cfg.SchemaPath, false)
		if err != nil {
			b.bus.Publish(&events.SchemaInvalid{
				Base:    events.Base{Stage: string(StageLoadConfig)},
				Path:    cfg.SchemaPath,
				Message: err.Error(),
			})
			return err
		}
		b.bus.Publish(&events.SchemaLoaded{
			Base:     events.Base{Stage: string(StageLoadConfig)},
			Path:     loaded.Path,
			Compiled: loaded.CompiledFromDSL,
		})
		if _, err := b.transforms.BuildAll(opts.ProjectDir, effectiveTransforms(cfg)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
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
		return err
	}

	return b.stage(StageValidateContext, func() error {
		candidate := map[string]any{
			"standards":  standards,
			"exceptions": exceptions,
			"sources":    map[string]any{},
		}
		errs := schema.ValidateData(loaded.Schema, candidate)
		var hard []error
		for _, err := range errs {
			if !opts.Strict && isSourcesIssue(err) {
				b.bus.Publish(&events.Warning{
					Base:    events.Base{Stage: string(StageValidateContext)},
					Code:    "sources_not_fetched",
					Message: err.Error(),
				})
				continue
			}
			hard = append(hard, err)
		}
		if len(hard) > 0 {
			b.bus.Publish(&events.SchemaValidationFailed{
				Base:       events.Base{Stage: string(StageValidateContext)},
				SchemaPath: loaded.Path,
				Errors:     validationIssues(hard),
			})
			return errors.Join(hard...)
		}
		b.bus.Publish(&events.SchemaValidationPassed{
			Base:       events.Base{Stage: string(StageValidateContext)},
			SchemaPath: loaded.Path,
		})
		return nil
	})
}

// isSourcesIssue reports whether a validation error points into the
// sources subtree, which a preflight never populates.
func isSourcesIssue(err error) bool {
	var validation *schema.ValidationError
	if !errors.As(err, &validation) {
		return false
	}
	return validation.Path == "/sources" || strings.HasPrefix(validation.Path, "/sources/")
}
