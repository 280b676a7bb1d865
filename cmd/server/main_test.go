package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasServe(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	flag := serve.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
}

func TestServeCmd_BadConfigPath(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"serve", "--config", t.TempDir() + "/missing.yaml"})

	assert.Error(t, root.Execute())
}
