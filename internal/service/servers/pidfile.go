package servers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/servo-mc/servo/internal/config"
)

func (s *Service) pidPath(name string) string {
	return filepath.Join(s.dirs.ServerData(name), pidFilename)
}

// processState reads the pid file and checks whether the process is alive.
func (s *Service) processState(name string) (int, bool, error) {
	contents, err := os.ReadFile(s.pidPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("read pid of %s: %w", name, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		// A garbled pid file cannot name a live server.
		return 0, false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return pid, false, fmt.Errorf("look up pid %d: %w", pid, err)
	}

	return pid, process != nil, nil
}

func (s *Service) writePID(name string, pid int) error {
	err := os.WriteFile(s.pidPath(name), []byte(strconv.Itoa(pid)+"\n"), config.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("write pid of %s: %w", name, err)
	}

	return nil
}

func (s *Service) clearPID(name string, pid int) {
	current, _, err := s.processState(name)
	if err == nil && current == pid {
		_ = os.Remove(s.pidPath(name))
	}
}
