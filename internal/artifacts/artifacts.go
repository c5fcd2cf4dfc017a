package artifacts

import _ "embed"

// Built-in defaults

//go:embed defaults/mount_config.yaml
var DefaultMountConfig []byte

//go:embed defaults/manifest.yaml
var ExampleManifest []byte
