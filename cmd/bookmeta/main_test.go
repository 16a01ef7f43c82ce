package main

import (
	"bytes"
	"context"
	"testing"
)

func TestRootCmd_ErrorsPrintedOnce(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--no-such-flag"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
	// main prints the returned error; cobra itself must stay quiet.
	if out.Len() != 0 {
		t.Errorf("cobra wrote %q, want nothing", out.String())
	}
}
