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
	"strings"

	"github.com/spf13/cobra"

	"fusekit/internal/memfs"
	"fusekit/internal/vfs"
)

var checkCmd = &cobra.Command{
	Use:   "check <manifest>",
	Short: "Validate a tree manifest",
	Long: `Parses a YAML tree manifest, builds the in-memory filesystem it
describes, and prints the resulting tree. Returns non-zero if the
manifest does not build.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var checkQuiet bool

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Suppress output, only set exit code")
}

func runCheck(cmd *cobra.Command, args []string) error {
	manifest, err := memfs.LoadManifest(args[0])
	if err != nil {
		return err
	}
	fs, err := memfs.Build(manifest)
	if err != nil {
		return fmt.Errorf("build manifest tree: %w", err)
	}

	if checkQuiet {
		return nil
	}

	fmt.Println("/")
	return printTree(fs, vfs.RootIno, 1)
}

// printTree walks the built tree through the same operations a mount
// would use, so a passing check means the tree actually serves.
func printTree(fs *memfs.MemFS, dir vfs.Ino, depth int) error {
	entries, err := fs.Readdir(dir, 0)
	if err != nil {
		return err
	}

	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}

		if e.Type == vfs.FileTypeDirectory {
			fmt.Printf("%s%s/\n", indent, e.Name)
			if err := printTree(fs, e.Ino, depth+1); err != nil {
				return err
			}
			continue
		}

		attrs, err := fs.Getattr(e.Ino)
		if err != nil {
			return err
		}
		fmt.Printf("%s%s (%d bytes, mode %04o)\n", indent, e.Name, attrs.Size, attrs.Mode&0o7777)
	}
	return nil
}
