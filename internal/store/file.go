package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"actionskit/internal/types"
)

// FileTurnLog appends turn records to a JSONL file. It is the audit-log
// fallback when no database is configured.
type FileTurnLog struct {
	mu   sync.Mutex
	path string
}

func NewFileTurnLog(path string) *FileTurnLog {
	return &FileTurnLog{path: path}
}

// Append writes one record as a JSON line, creating the directory on first
// use.
func (f *FileTurnLog) Append(rec types.TurnRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = file.Write(line)
	return err
}

// ReadAll returns every record in the log, oldest first. Corrupt lines are
// skipped.
func (f *FileTurnLog) ReadAll() ([]types.TurnRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var out []types.TurnRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec types.TurnRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}
