package mcf

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Validator checks models against the embedded #MCF definition.
// A Validator is safe for concurrent use.
type Validator struct {
	mu  sync.Mutex
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling model schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#MCF"))
	if !def.Exists() {
		return nil, fmt.Errorf("model schema has no #MCF definition")
	}

	return &Validator{ctx: ctx, def: def}, nil
}

var (
	defaultValidator     *Validator
	defaultValidatorErr  error
	defaultValidatorOnce sync.Once
)

// Validate checks m against the embedded schema with a shared Validator.
func (m Model) Validate() error {
	defaultValidatorOnce.Do(func() {
		defaultValidator, defaultValidatorErr = NewValidator()
	})
	if defaultValidatorErr != nil {
		return defaultValidatorErr
	}
	return defaultValidator.Validate(m)
}

// Validate reports every structural problem in m as a single validation
// error. Required fields that are missing surface as incomplete values.
func (v *Validator) Validate(m Model) error {
	// cue.Context is not safe for concurrent use.
	v.mu.Lock()
	defer v.mu.Unlock()

	val := v.ctx.Encode(map[string]any(m))
	if val.Err() != nil {
		return fmt.Errorf("encoding model: %w", val.Err())
	}

	err := v.def.Unify(val).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	return toValidationError(m.Identifier(), err)
}

func toValidationError(identifier string, err error) error {
	errs := cueerrors.Errors(err)
	ctx := make(map[string]string, len(errs))
	var first string
	for _, e := range errs {
		path := strings.Join(e.Path(), ".")
		if path == "" {
			path = "(root)"
		}
		if first == "" {
			first = path
		}
		format, args := e.Msg()
		ctx[path] = fmt.Sprintf(format, args...)
	}

	location := identifier
	if location == "" {
		location = "(unidentified record)"
	}

	return &oerrors.DetailError{
		Type:     "validation failed",
		Message:  fmt.Sprintf("canonical model has %d schema violation(s)", len(ctx)),
		Location: location,
		Field:    first,
		Context:  ctx,
		Hint:     "Check the source-to-canonical template for the listed fields.",
		Cause:    oerrors.ErrValidation,
	}
}
