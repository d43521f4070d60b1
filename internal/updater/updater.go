// Package updater replaces the running binary with the latest GitHub
// release.
package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/xstream-util/xstream/internal/logging"
	"github.com/xstream-util/xstream/internal/version"
)

// Repository is the GitHub slug releases are fetched from.
const Repository = "xstream-util/xstream"

// Service checks for and applies released updates.
type Service struct {
	updater    *selfupdate.Updater
	repository selfupdate.Repository
	logger     logging.Logger
}

// New creates an update service. It fails when the current executable
// location is not writable, since an update could never be applied.
func New(prerelease bool) (*Service, error) {
	if err := checkWritePermission(); err != nil {
		return nil, err
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	u, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return &Service{
		updater:    u,
		repository: selfupdate.ParseSlug(Repository),
		logger:     logging.GetLogger("updater"),
	}, nil
}

// Check queries GitHub for the latest release. It returns nil when the
// running build is already current.
func (s *Service) Check(ctx context.Context) (*selfupdate.Release, error) {
	release, found, err := s.updater.DetectLatest(ctx, s.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repository %s has no releases", Repository)
	}

	// A dev build is always considered outdated.
	current := version.String()
	if current != "dev" && !release.GreaterThan(current) {
		return nil, nil
	}
	return release, nil
}

// Apply downloads the release and installs it over the current
// executable.
func (s *Service) Apply(ctx context.Context, release *selfupdate.Release) error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	s.logger.Info("applying update", "version", release.Version(), "path", exe)
	if err := s.updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}
	return nil
}

// checkWritePermission verifies the executable's directory accepts new
// files, which is what replacing the binary requires.
func checkWritePermission() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("failed to resolve symlinks: %w", err)
	}

	dir := filepath.Dir(exe)
	tmp := filepath.Join(dir, ".xstream.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("no write permission to %s: %w", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return nil
}
