// Copyright 2026 FuseKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fusekit/internal/artifacts"
	"fusekit/internal/cache"
	"fusekit/internal/memfs"
	"fusekit/internal/runner"
	"fusekit/internal/transport"
	"fusekit/internal/vfs"
)

// NewMounter provides the kernel transport for serve. It is nil in
// builds without one; platform transports set it from their init.
var NewMounter func() transport.Mounter

var serveCmd = &cobra.Command{
	Use:   "serve <mount-point>",
	Short: "Serve a manifest tree at a mount point",
	Long: `Builds an in-memory filesystem from a YAML manifest and serves it at
the given mount point until the kernel unmounts it.

Examples:
  fusekit serve ./mnt -m tree.yaml
  fusekit serve /mnt/demo -m tree.yaml --ignore-file .fusekitignore`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

var (
	serveManifest     string
	serveIgnoreFile   string
	serveMountConfig  string
	serveAttrCacheTTL time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveManifest, "manifest", "m", "", "Path to the YAML tree manifest (required)")
	serveCmd.Flags().StringVar(&serveIgnoreFile, "ignore-file", "", "Gitignore-style pattern file; matching names are hidden from the mount")
	serveCmd.Flags().StringVar(&serveMountConfig, "mount-config", "", "YAML file with mount options (max-write, fs-name, ...)")
	serveCmd.Flags().DurationVar(&serveAttrCacheTTL, "attr-cache-ttl", 0, "Attribute cache TTL in front of the backend (0 disables)")
	serveCmd.MarkFlagRequired("manifest")
}

func runServe(cmd *cobra.Command, args []string) error {
	if NewMounter == nil {
		return fmt.Errorf("no kernel transport is compiled into this build")
	}

	mountPoint, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve mount point: %w", err)
	}

	fs, err := buildServeFS()
	if err != nil {
		return err
	}

	cfg, err := resolveMountConfig()
	if err != nil {
		return err
	}

	r := runner.New(fs, mountPoint, NewMounter())
	r.SetMountConfig(cfg)
	return r.RunBlock()
}

// buildServeFS assembles the served filesystem: manifest tree, the
// optional ignore filter, and the optional attribute cache in front.
func buildServeFS() (vfs.Filesystem, error) {
	manifest, err := memfs.LoadManifest(serveManifest)
	if err != nil {
		return nil, err
	}

	var fs vfs.Filesystem
	fs, err = memfs.Build(manifest)
	if err != nil {
		return nil, fmt.Errorf("build manifest tree: %w", err)
	}

	if serveIgnoreFile != "" {
		data, err := os.ReadFile(serveIgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("read ignore file: %w", err)
		}
		fs = vfs.NewFilterFS(fs, strings.Split(string(data), "\n"))
	}

	if serveAttrCacheTTL > 0 {
		fs = cache.NewCachedFS(fs, serveAttrCacheTTL)
	}

	return fs, nil
}

// resolveMountConfig loads --mount-config, or falls back to the
// embedded defaults.
func resolveMountConfig() (transport.MountConfig, error) {
	var cfg transport.MountConfig

	data := artifacts.DefaultMountConfig
	if serveMountConfig != "" {
		var err error
		data, err = os.ReadFile(serveMountConfig)
		if err != nil {
			return cfg, fmt.Errorf("read mount config: %w", err)
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse mount config: %w", err)
	}
	return cfg, nil
}
