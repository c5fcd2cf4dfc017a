package artifacts

import (
	"testing"

	"gopkg.in/yaml.v3"

	"fusekit/internal/memfs"
	"fusekit/internal/transport"
)

// The embedded defaults must stay loadable; a bad edit to the YAML
// should fail here, not at serve time.

func TestDefaultMountConfig(t *testing.T) {
	var cfg transport.MountConfig
	if err := yaml.Unmarshal(DefaultMountConfig, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.MaxWrite == 0 {
		t.Error("default max-write should not be 0")
	}
	if cfg.FSName == "" {
		t.Error("default fs-name should not be empty")
	}
}

func TestExampleManifest(t *testing.T) {
	m, err := memfs.ParseManifest(ExampleManifest)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := memfs.Build(m); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(m.Root.Files) == 0 {
		t.Error("example manifest should contain files")
	}
}
