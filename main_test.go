package main

import (
	"testing"

	"linearproxy/cmd"
)

func TestVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}

	original := cmd.GetVersion()
	defer cmd.SetVersion(original)

	cmd.SetVersion(version)
	if cmd.GetVersion() != "dev" {
		t.Errorf("Expected cmd version to be 'dev', got %s", cmd.GetVersion())
	}
}
