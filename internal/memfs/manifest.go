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

package memfs

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"fusekit/internal/vfs"
)

// Manifest describes an initial in-memory tree, loaded from YAML by
// the demo CLI.
type Manifest struct {
	Root ManifestDir `yaml:"root"`
}

// ManifestDir is one directory level: nested directories plus files.
type ManifestDir struct {
	Dirs  map[string]*ManifestDir `yaml:"dirs"`
	Files map[string]ManifestFile `yaml:"files"`
}

// ManifestFile is one file: content, an optional mode override, and
// extended attributes.
type ManifestFile struct {
	Content string            `yaml:"content"`
	Mode    *uint32           `yaml:"mode"`
	Xattrs  map[string]string `yaml:"xattrs"`
}

// LoadManifest reads and parses a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses YAML manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Build constructs a MemFS holding the manifest's tree. Names are
// inserted in sorted order so inode numbering is deterministic for a
// given manifest.
func Build(m *Manifest) (*MemFS, error) {
	fs := New()
	if err := buildDir(fs, vfs.RootIno, &m.Root); err != nil {
		return nil, err
	}
	return fs, nil
}

func buildDir(fs *MemFS, parent vfs.Ino, dir *ManifestDir) error {
	for _, name := range sortedKeys(dir.Files) {
		spec := dir.Files[name]

		ino, err := fs.AddFile(parent, name, []byte(spec.Content))
		if err != nil {
			return fmt.Errorf("add file %q: %w", name, err)
		}
		if spec.Mode != nil {
			if _, err := fs.Setattr(ino, vfs.SetFileAttributes{Mode: spec.Mode}); err != nil {
				return fmt.Errorf("set mode on %q: %w", name, err)
			}
		}
		for _, attr := range sortedKeys(spec.Xattrs) {
			if err := fs.Setxattr(ino, attr, []byte(spec.Xattrs[attr]), vfs.XattrCreate); err != nil {
				return fmt.Errorf("set xattr %q on %q: %w", attr, name, err)
			}
		}
	}

	for _, name := range sortedKeys(dir.Dirs) {
		ino, err := fs.AddDir(parent, name)
		if err != nil {
			return fmt.Errorf("add dir %q: %w", name, err)
		}
		if err := buildDir(fs, ino, dir.Dirs[name]); err != nil {
			return err
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
