package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/cli"
	"github.com/rshade/ghgfreight/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "ghgfreight", root.Use)
		assert.Equal(t, version.GetVersion(), root.Version)
	})
}

func TestExtractExitCode(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantExitCode int
		wantIsExit   bool
	}{
		{
			name:         "ExitError with exit code 2",
			err:          &cli.ExitError{ExitCode: 2, Reason: "malformed rows"},
			wantExitCode: 2,
			wantIsExit:   true,
		},
		{
			name:         "wrapped ExitError",
			err:          errors.Join(errors.New("outer"), &cli.ExitError{ExitCode: 3, Reason: "wrapped"}),
			wantExitCode: 3,
			wantIsExit:   true,
		},
		{
			name:         "generic error falls through",
			err:          errors.New("generic error"),
			wantExitCode: 1,
		},
		{
			name:         "nil error returns 0",
			err:          nil,
			wantExitCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExitCode, extractExitCode(tt.err))

			var exitErr *cli.ExitError
			assert.Equal(t, tt.wantIsExit, errors.As(tt.err, &exitErr))
		})
	}
}
