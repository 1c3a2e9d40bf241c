// Package security enforces a file access policy for the PDF tools. The
// policy lives in ~/.mcp-pdf-tools/access.yaml and is reloaded automatically
// when edited, so access rules can be tightened without restarting a running
// server. With no policy file present all paths are allowed.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// PolicyConfig is the on-disk shape of the access policy.
type PolicyConfig struct {
	// AllowedPaths restricts access to files under these directory prefixes.
	// Empty means no restriction.
	AllowedPaths []string `yaml:"allowed_paths"`

	// DeniedPaths blocks access to files under these directory prefixes.
	// Deny rules win over allow rules.
	DeniedPaths []string `yaml:"denied_paths"`
}

// ErrAccessDenied indicates the access policy blocked a path.
var ErrAccessDenied = fmt.Errorf("access denied by policy")

// Policy is a loaded access policy with live reload.
type Policy struct {
	mu      sync.RWMutex
	config  PolicyConfig
	path    string
	watcher *fsnotify.Watcher
	logger  *logrus.Logger
	done    chan struct{}
}

var (
	globalPolicy *Policy
	policyOnce   sync.Once
)

// PolicyFilePath returns the expected location of the access policy file.
func PolicyFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mcp-pdf-tools", "access.yaml"), nil
}

// InitGlobalPolicy loads the access policy and starts watching it for
// changes. Safe to call once at startup; a missing policy file is not an
// error and results in an allow-all policy.
func InitGlobalPolicy(logger *logrus.Logger) error {
	var initErr error
	policyOnce.Do(func() {
		path, err := PolicyFilePath()
		if err != nil {
			initErr = err
			return
		}

		p := &Policy{
			path:   path,
			logger: logger,
			done:   make(chan struct{}),
		}

		if err := p.reload(); err != nil {
			initErr = err
			return
		}

		if err := p.watch(); err != nil {
			// Reload-on-change is best effort; the loaded policy still applies.
			logger.WithError(err).Warn("Access policy file watching unavailable")
		}

		globalPolicy = p
	})
	return initErr
}

// StopGlobalPolicy stops the policy file watcher.
func StopGlobalPolicy() {
	if globalPolicy != nil {
		globalPolicy.stop()
	}
}

// CheckFileAccess validates a path against the global policy. A nil policy
// (not initialised, e.g. in tests) allows everything.
func CheckFileAccess(path string) error {
	if globalPolicy == nil {
		return nil
	}
	return globalPolicy.Check(path)
}

// Check validates a path against this policy.
func (p *Policy) Check(path string) error {
	p.mu.RLock()
	config := p.config
	p.mu.RUnlock()

	cleaned := filepath.Clean(path)

	for _, denied := range config.DeniedPaths {
		if underPrefix(cleaned, denied) {
			return fmt.Errorf("%w: %s matches denied path %s", ErrAccessDenied, cleaned, denied)
		}
	}

	if len(config.AllowedPaths) == 0 {
		return nil
	}
	for _, allowed := range config.AllowedPaths {
		if underPrefix(cleaned, allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is outside the allowed paths", ErrAccessDenied, cleaned)
}

// underPrefix reports whether path is prefix itself or a file below it.
// Prefixes may start with ~/ to refer to the user's home directory.
func underPrefix(path, prefix string) bool {
	prefix = expandHome(strings.TrimSpace(prefix))
	if prefix == "" {
		return false
	}
	prefix = filepath.Clean(prefix)

	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// reload reads the policy file from disk. A missing file resets to allow-all.
func (p *Policy) reload() error {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		p.mu.Lock()
		p.config = PolicyConfig{}
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read access policy %s: %w", p.path, err)
	}

	var config PolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse access policy %s: %w", p.path, err)
	}

	p.mu.Lock()
	p.config = config
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"allowed_paths": len(config.AllowedPaths),
			"denied_paths":  len(config.DeniedPaths),
		}).Debug("Access policy loaded")
	}
	return nil
}

// watch reloads the policy whenever the file (or its directory) changes.
// Watching the directory rather than the file survives editors that replace
// the file on save.
func (p *Policy) watch() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create policy directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create policy watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch policy directory: %w", err)
	}

	p.watcher = watcher
	go p.watchLoop()
	return nil
}

func (p *Policy) watchLoop() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := p.reload(); err != nil {
				if p.logger != nil {
					p.logger.WithError(err).Warn("Failed to reload access policy; previous policy remains active")
				}
				continue
			}
			if p.logger != nil {
				p.logger.Info("Access policy reloaded")
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			if p.logger != nil {
				p.logger.WithError(err).Warn("Access policy watcher error")
			}
		case <-p.done:
			return
		}
	}
}

// stop shuts down the watcher goroutine.
func (p *Policy) stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	if p.watcher != nil {
		_ = p.watcher.Close()
	}
}
