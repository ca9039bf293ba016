package compiler

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	code     string
	language string
}

type recordingCompiler struct {
	calls    []call
	failOn   string
	deadline bool
}

func (r *recordingCompiler) Compile(ctx context.Context, code string, language string) ([]byte, error) {
	r.calls = append(r.calls, call{code: code, language: language})
	_, r.deadline = ctx.Deadline()

	if r.failOn != "" && language == r.failOn {
		return nil, errors.Errorf("unsupported language %s", language)
	}

	return []byte("artifact"), nil
}

func TestAdapterCompile(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		want   string
	}{{
		name:   "should confirm the source and target",
		source: "let x = 1",
		target: "c",
		want:   "Compiled 'let x = 1' into 'c'",
	}, {
		name:   "should embed multi line sources verbatim",
		source: "a\nb",
		target: "go",
		want:   "Compiled 'a\nb' into 'go'",
	}, {
		name:   "should not escape quotes",
		source: "print('hi')",
		target: "c",
		want:   "Compiled 'print('hi')' into 'c'",
	}, {
		name:   "should accept empty values",
		source: "",
		target: "",
		want:   "Compiled '' into ''",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &recordingCompiler{}
			adapter := NewAdapter(fake, 0)

			got, err := adapter.Compile(context.Background(), tt.source, tt.target)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []call{{code: tt.source, language: tt.target}}, fake.calls)
		})
	}
}

func TestAdapterCompileFailure(t *testing.T) {
	fake := &recordingCompiler{failOn: "rust"}
	adapter := NewAdapter(fake, 0)

	got, err := adapter.Compile(context.Background(), "let x = 1", "rust")

	assert.Empty(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompilationFailed))
	assert.Contains(t, err.Error(), "'rust'")
	assert.Contains(t, err.Error(), "unsupported language rust")

	var compileErr *Error
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "rust", compileErr.Target)
}

func TestAdapterTimeout(t *testing.T) {
	fake := &recordingCompiler{}

	_, err := NewAdapter(fake, time.Second).Compile(context.Background(), "x", "c")
	require.NoError(t, err)
	assert.True(t, fake.deadline)

	_, err = NewAdapter(fake, 0).Compile(context.Background(), "x", "c")
	require.NoError(t, err)
	assert.False(t, fake.deadline)
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"exec", "noop"}, Names())

	c, err := New("noop", Options{})
	require.NoError(t, err)
	assert.IsType(t, NoopCompiler{}, c)

	c, err = New("exec", Options{Path: "spinachlang", Args: []string{"compile"}})
	require.NoError(t, err)
	assert.Equal(t, ExecCompiler{Path: "spinachlang", Args: []string{"compile"}}, c)

	_, err = New("missing", Options{})
	assert.Error(t, err)
}

func TestExecCompiler(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh is required")
	}

	// $1 and $2 are the appended language selection.
	script := `input=$(cat); test "$1" = "--language" || exit 3; ` +
		`if [ "$2" = "rust" ]; then echo "unsupported target" >&2; exit 1; fi; ` +
		`printf '%s|%s' "$2" "$input"`

	compiler := ExecCompiler{Path: sh, Args: []string{"-c", script, "sh"}}

	t.Run("should feed the source on stdin", func(t *testing.T) {
		out, err := compiler.Compile(context.Background(), "let x = 1", "c")

		require.NoError(t, err)
		assert.Equal(t, "c|let x = 1", string(out))
	})

	t.Run("should return stderr when the compiler fails", func(t *testing.T) {
		_, err := compiler.Compile(context.Background(), "let x = 1", "rust")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported target")

		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "exit error should be kept as the cause")
		assert.Equal(t, 1, exitErr.ExitCode())
	})

	t.Run("should fail when the executable does not exist", func(t *testing.T) {
		_, err := ExecCompiler{Path: "/does/not/exist/spinachlang"}.
			Compile(context.Background(), "let x = 1", "c")

		assert.Error(t, err)
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := ExecCompiler{Path: sh, Args: []string{"-c", "sleep 5", "sh"}}.
			Compile(ctx, "", "c")

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
