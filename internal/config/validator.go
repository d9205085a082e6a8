package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if def.Err() != nil {
		return nil, fmt.Errorf("looking up #Config: %w", def.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: def,
	}, nil
}

// Validate checks cfg. Any failure is reported as a configuration error
// listing every offending field.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	val := v.ctx.Encode(cfg)
	if err := v.schema.Unify(val).Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			errs = append(errs, ValidationError{
				Field:   fieldPath(e.Path()),
				Message: fmt.Sprintf(format, args...),
			})
		}
	}

	if cfg.Cron.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Cron.Timezone); err != nil {
			errs = append(errs, ValidationError{
				Field:   "cron.timezone",
				Message: "unknown time zone " + cfg.Cron.Timezone,
			})
		}
	}

	for field, dir := range map[string]string{"templatesDir": cfg.TemplatesDir, "mappingsDir": cfg.MappingsDir} {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "not a readable directory: " + dir,
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	ctx := make(map[string]string, len(errs))
	for _, e := range errs {
		ctx[e.Field] = e.Message
	}
	return &oerrors.DetailError{
		Type:    "configuration invalid",
		Message: fmt.Sprintf("%d configuration value(s) rejected", len(errs)),
		Field:   errs[0].Field,
		Context: ctx,
		Hint:    "Run 'ckan2csw config vet' to check a configuration file.",
		Cause:   errors.Join(oerrors.ErrConfig, errs),
	}
}

// fieldPath joins a CUE error path, dropping definition selectors.
func fieldPath(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if !strings.HasPrefix(p, "#") {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "(root)"
	}
	return strings.Join(parts, ".")
}

// ValidateFile validates a configuration file at the given path.
func (v *Validator) ValidateFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return oerrors.NewNotFoundError("config file not found", path, "Run 'ckan2csw config init' to create one.")
	}

	loader := NewLoader()
	cfg, err := loader.LoadWithDefaults(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	return v.Validate(cfg)
}
