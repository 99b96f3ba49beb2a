// Copyright 2025 walteh LLC
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

package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// Options controls how input paths expand to files.
type Options struct {
	// Recursive walks into nested directories instead of taking only a
	// directory's direct file children.
	Recursive bool

	// Ignore holds doublestar glob patterns matched against each file's
	// base name and its full path; a match drops the file.
	Ignore []string
}

// Files resolves a list of file or directory paths into a flat, ordered
// list of file paths. Files pass through as-is, directories expand to
// their children (sorted by name). Paths that cannot be read are skipped
// silently; discovery never fails.
func Files(paths []string, opts Options) []string {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Debug().Str("path", p).Err(err).Msg("skipping unreadable path")
			continue
		}

		if !info.IsDir() {
			if !ignored(p, opts.Ignore) {
				files = append(files, p)
			}
			continue
		}

		if opts.Recursive {
			files = append(files, walkDir(p, opts.Ignore)...)
		} else {
			files = append(files, listDir(p, opts.Ignore)...)
		}
	}

	return files
}

// listDir returns a directory's direct file children, sorted by name.
func listDir(dir string, ignore []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug().Str("path", dir).Err(err).Msg("skipping unreadable directory")
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !ignored(path, ignore) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files
}

// walkDir returns every file under dir, sorted by WalkDir's lexical order.
func walkDir(dir string, ignore []string) []string {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !ignored(path, ignore) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		log.Debug().Str("path", dir).Err(err).Msg("walk aborted")
	}
	return files
}

func ignored(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}
