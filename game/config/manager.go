package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigID is the puzzle used when a session names none
const DefaultConfigID = "classic"

// puzzle file extensions, in lookup order
var extensions = []string{".json", ".txt"}

// Manager handles puzzle loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.PuzzleConfig
	defaultID     string
	configs       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a puzzle by identifier: the file name with or without
// its .json or .txt extension.
func (m *Manager) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	id := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	config, err := readPuzzle(path, id)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// findFile resolves a puzzle identifier to a file in the config directory
func (m *Manager) findFile(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", ErrConfigNotFound
	}
	if ext := filepath.Ext(name); ext == ".json" || ext == ".txt" {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

func readPuzzle(path, id string) (*engine.PuzzleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config *engine.PuzzleConfig
	if filepath.Ext(path) == ".txt" {
		config, err = engine.ParseTestCase(id, strings.Split(string(data), "\n"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return config, nil
	}

	config = &engine.PuzzleConfig{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Name == "" {
		config.Name = id
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// ListConfigs returns information about all available puzzles, sorted by
// identifier. Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".json" && ext != ".txt") {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
			Dominoes:    config.Width * config.Height / 2,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default puzzle
func (m *Manager) GetDefault() *engine.PuzzleConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// DefaultID returns the identifier of the default puzzle
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default puzzle by identifier
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	m.defaultID = configID(name)
	return nil
}

// RefreshCache drops every cached puzzle and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, else the first valid puzzle, else a
// built-in minimal one
func (m *Manager) loadDefaultConfig() error {
	id := DefaultConfigID
	config, err := m.LoadConfig(id)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config, id = createMinimalConfig(), "default"
		} else {
			id = configs[0].ConfigID
			if config, err = m.LoadConfig(configs[0].Filename); err != nil {
				config, id = createMinimalConfig(), "default"
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.defaultID = id
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a puzzle and writes it as JSON
func (m *Manager) SaveConfig(name string, config *engine.PuzzleConfig) error {
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad puzzle name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// configID strips a puzzle file extension
func configID(name string) string {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// createMinimalConfig creates a minimal valid puzzle
func createMinimalConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:          "default",
		Description:   "Default minimal puzzle",
		Width:         2,
		Height:        2,
		LeftMarkers:   []int{1, 1},
		TopMarkers:    []int{1, 1},
		RightMarkers:  []int{1, 1},
		BottomMarkers: []int{1, 1},
		Plan:          []string{"aa", "bb"},
	}
}
