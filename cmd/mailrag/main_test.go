package main

import (
	"bytes"
	"io"
	"testing"
)

// newTestCLI returns a cli using an in-memory store without embedder and
// without any config file.
func newTestCLI(t *testing.T) *cli {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("MAILRAG_CONFIG_DIR", dir)
	t.Setenv("MAILRAG_STORE", "memory")
	t.Setenv("MAILRAG_EMBEDDER_ENABLED", "false")
	t.Setenv("MAILRAG_LOG_LEVEL", "error")

	c := newCLI()
	c.logOut = io.Discard
	t.Cleanup(c.close)
	return c
}

func run(c *cli, args ...string) (string, error) {
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
