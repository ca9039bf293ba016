package compiler

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ExecCompiler runs the spinachlang executable for every compilation. The
// source is written to the standard input of the process and the selected
// language is appended as `--language <target>`.
type ExecCompiler struct {
	Path string
	Args []string
}

func (e ExecCompiler) Compile(ctx context.Context, code string, language string) ([]byte, error) {
	args := make([]string, 0, len(e.Args)+2)
	args = append(args, e.Args...)
	args = append(args, "--language", language)

	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Stdin = strings.NewReader(code)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("path", e.Path).Strs("args", args).Msg("running compiler")

	err := cmd.Run()

	// We want to check the context error to see if the timeout was executed.
	// The error returned by cmd.Run() will be OS specific based on what
	// happens when a process is killed.
	if ctx.Err() != nil {
		return nil, errors.Wrapf(ctx.Err(), "%s did not complete", e.Path)
	}

	if err != nil {
		if output := strings.TrimSpace(stderr.String()); output != "" {
			return nil, errors.Wrapf(err, "%s", output)
		}

		return nil, errors.Wrapf(err, "failed to run %s", e.Path)
	}

	return stdout.Bytes(), nil
}

// NoopCompiler accepts every source and language without producing an
// artifact.
type NoopCompiler struct{}

func (NoopCompiler) Compile(_ context.Context, _ string, _ string) ([]byte, error) {
	return nil, nil
}
