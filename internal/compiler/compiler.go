package compiler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Compiler is the entry point of the external spinachlang compiler. The code
// and language are handed over verbatim, whatever the compiler produced is
// returned as the artifact.
type Compiler interface {
	Compile(ctx context.Context, code string, language string) ([]byte, error)
}

// ErrCompilationFailed is matched by every error returned from Adapter.Compile.
var ErrCompilationFailed = errors.New("compilation failed")

// Error is returned when the external compiler failed for the given target, the
// underlying compiler failure is kept as the cause.
type Error struct {
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to compile into '%s': %s", e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrCompilationFailed }

// Options are handed to the compiler constructors registered in Compilers.
type Options struct {
	// The path (or name on PATH) of the spinachlang executable.
	Path string
	// Additional arguments passed before the language selection.
	Args []string
}

// Compilers is the mapping between the configured compiler name and the
// constructor of the external compiler implementation.
var Compilers = map[string]func(opts Options) Compiler{
	"exec": func(opts Options) Compiler {
		return ExecCompiler{Path: opts.Path, Args: opts.Args}
	},
	"noop": func(_ Options) Compiler {
		return NoopCompiler{}
	},
}

// Names returns the sorted names of all registered compilers.
func Names() []string {
	names := make([]string, 0, len(Compilers))

	for name := range Compilers {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func New(name string, opts Options) (Compiler, error) {
	constructor, ok := Compilers[name]

	if !ok {
		return nil, errors.Errorf("compiler `%s` does not exist", name)
	}

	return constructor(opts), nil
}

// Adapter forwards compile requests to the external compiler and produces the
// confirmation returned to the API caller.
type Adapter struct {
	compiler Compiler
	// The upper bound of a single compiler invocation, zero means the
	// invocation is only bound by the callers context.
	timeout time.Duration
}

func NewAdapter(compiler Compiler, timeout time.Duration) *Adapter {
	return &Adapter{compiler: compiler, timeout: timeout}
}

// Compile invokes the external compiler with the source and target and returns
// the confirmation for the pair. The compiler artifact is discarded.
func (a *Adapter) Compile(ctx context.Context, source, target string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if _, err := a.compiler.Compile(ctx, source, target); err != nil {
		return "", &Error{Target: target, Err: err}
	}

	return Confirmation(source, target), nil
}

// Confirmation is the output reported for a successfully compiled pair. The
// source and target are embedded verbatim between single quotes, quotes and
// newlines inside them are not escaped.
func Confirmation(source, target string) string {
	return fmt.Sprintf("Compiled '%s' into '%s'", source, target)
}
