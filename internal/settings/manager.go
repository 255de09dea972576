package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/adamkadaban/hotfix-tui/internal/config"
)

// Manager persists user-facing settings changed from inside the dashboard.
type Manager struct {
	path string
	mu   sync.Mutex
	cfg  config.Config
}

// NewManager returns a manager initialized with the current configuration snapshot.
func NewManager(path string, cfg config.Config) *Manager {
	return &Manager{path: path, cfg: cfg}
}

// SetTheme stores the normalized theme name and writes it to disk.
func (m *Manager) SetTheme(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case config.ThemeAuto, config.ThemeDark, config.ThemeLight:
	default:
		return "", fmt.Errorf("unknown theme %q", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.Theme = normalized
	if err := config.Save(m.path, m.cfg); err != nil {
		return "", err
	}
	return normalized, nil
}

// Config returns a copy of the managed config.
func (m *Manager) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}
