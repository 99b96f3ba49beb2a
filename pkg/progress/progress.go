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

package progress

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gitlab.com/tozd/go/errors"
)

// 📊 Snapshot is the persisted progress record: how many files have been
// submitted for processing out of the total discovered.
type Snapshot struct {
	Completed uint `json:"completed"`
	Total     uint `json:"total"`
}

// 💾 Store persists progress snapshots to a single JSON file, overwriting
// it wholesale on every write.
type Store struct {
	path string
}

// NewStore creates a store writing to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// Write replaces the progress file with the given counts. The write goes
// through a temp file and rename so readers never observe a torn file.
func (s *Store) Write(completed, total uint) error {
	data, err := json.Marshal(Snapshot{Completed: completed, Total: total})
	if err != nil {
		return errors.Errorf("marshaling progress: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".progress-*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("replacing progress file: %w", err)
	}

	log.Debug().Str("path", s.path).Uint("completed", completed).Uint("total", total).Msg("progress persisted")
	return nil
}

// Load reads the current snapshot from disk.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Errorf("reading progress file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Errorf("parsing progress file: %w", err)
	}
	return &snap, nil
}
