package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", GetVersion())

	out := &bytes.Buffer{}
	cmd := newVersionCmd()
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "griddle version 1.2.3\n", out.String())
}

func TestRootRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"serve", "station", "order", "history", "simulate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
