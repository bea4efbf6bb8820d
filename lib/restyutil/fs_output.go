package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FilesystemOutput writes each exchange to "<Session>/<id>.http".
type FilesystemOutput struct {
	Session string
}

// NewFilesystemOutput opens a fresh session directory under dir. Earlier
// sessions are kept, all but the newest keep are removed.
func NewFilesystemOutput(dir string, keep int) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return FilesystemOutput{}, err
	}
	session, err := os.MkdirTemp(dir, time.Now().Format("20060102-150405")+"-")
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = pruneSessions(dir, keep)
	if err != nil {
		slog.Warn("failed to prune http dump sessions", "dir", dir, "err", err)
	}
	return FilesystemOutput{Session: session}, nil
}

// pruneSessions relies on session names sorting by creation time.
func pruneSessions(dir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var sessions []string
	for _, e := range entries {
		if e.IsDir() {
			sessions = append(sessions, e.Name())
		}
	}
	for len(sessions) > keep {
		err = os.RemoveAll(filepath.Join(dir, sessions[0]))
		if err != nil {
			return fmt.Errorf("remove session %s: %w", sessions[0], err)
		}
		sessions = sessions[1:]
	}
	return nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.Session, id+".http"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "id", id, "err", err)
	}
}
