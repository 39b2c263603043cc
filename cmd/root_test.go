package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})

	err := rootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), Version)
}

func TestAttachCmd_RequiresURL(t *testing.T) {
	assert.Error(t, attachCmd.Args(attachCmd, nil))
	assert.Error(t, attachCmd.Args(attachCmd, []string{"a", "b"}))
	assert.NoError(t, attachCmd.Args(attachCmd, []string{"https://example.com"}))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "flag", firstNonEmpty("flag", "config"))
	assert.Equal(t, "config", firstNonEmpty("", "config"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
