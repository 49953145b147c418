package main

import (
	"flag"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDemoFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want demoOptions
	}{
		{"Defaults", nil, demoOptions{steps: 200}},
		{"Steps", []string{"-steps", "3"}, demoOptions{steps: 3}},
		{"All", []string{"-steps=5", "-lazy", "-save", "out.safetensors"}, demoOptions{steps: 5, lazy: true, savePath: "out.safetensors"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDemoFlags(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDemoFlags_Errors(t *testing.T) {
	_, err := parseDemoFlags([]string{"-steps", "0"})
	assert.Error(t, err)

	_, err = parseDemoFlags([]string{"-steps", "3", "extra"})
	assert.Error(t, err)

	_, err = parseDemoFlags([]string{"-unknown"})
	assert.Error(t, err)

	_, err = parseDemoFlags([]string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

// Flags after the command name reach the demo, as in "minima demo -steps 3".
func TestDemoFlagsAfterCommand(t *testing.T) {
	top := flag.NewFlagSet("minima", flag.ContinueOnError)
	top.Int("v", 0, "log verbosity")
	require.NoError(t, top.Parse([]string{"-v", "1", "demo", "-steps", "3", "-lazy"}))
	require.Equal(t, "demo", top.Arg(0))

	got, err := parseDemoFlags(top.Args()[1:])
	require.NoError(t, err)
	assert.Equal(t, demoOptions{steps: 3, lazy: true}, got)
}

func TestDemo_Short(t *testing.T) {
	path := t.TempDir() + "/demo.safetensors"
	require.NoError(t, demo(3, false, path))
	require.NoError(t, demo(2, true, ""))
}
