package server

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	paperName = "paper"

	eulaFilename = "eula.txt"
	eulaContents = "eula=true\n"
	eulaFileMode = 0o644
)

func init() { //nolint:gochecknoinits // Kinds register themselves once.
	register(paper{})
}

// paper is the PaperMC server.
type paper struct{}

func (paper) Name() string {
	return paperName
}

func (paper) Project() string {
	return paperName
}

func (paper) Initialize(paths Paths, opts InitOptions) error {
	if !opts.AcceptEULA {
		return nil
	}

	eula := filepath.Join(paths.Configs, eulaFilename)
	if err := os.WriteFile(eula, []byte(eulaContents), eulaFileMode); err != nil {
		return fmt.Errorf("paper: write eula: %w", err)
	}

	return nil
}

func (paper) Args(paths Paths) []string {
	return []string{
		// No GUI on a headless launch.
		"--nogui",
		"--paper-settings", filepath.Join(paths.Configs, "paper.yml"),
		"--spigot-settings", filepath.Join(paths.Configs, "spigot.yml"),
		"--bukkit-settings", filepath.Join(paths.Configs, "bukkit.yml"),
		"--config", filepath.Join(paths.Configs, "server.properties"),
		"--commands-settings", filepath.Join(paths.Configs, "commands.yml"),
		"--universe", paths.Worlds,
		"--plugins", paths.Plugins,
	}
}
