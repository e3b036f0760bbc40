// Package alerts keeps the volume alert rules file in sync and detects
// threshold crossings.
package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

const rulesFileVersion = 1

var (
	// ErrRuleExists is returned when adding a rule with a known key.
	ErrRuleExists = errors.New("alert rule already exists")
	// ErrRuleNotFound is returned when deleting an unknown rule.
	ErrRuleNotFound = errors.New("alert rule not found")
	// ErrInvalidRule is returned for rules without a pair or a positive threshold.
	ErrInvalidRule = errors.New("invalid alert rule")
)

// RulesFile is the on-disk layout of the alerts file.
type RulesFile struct {
	Rules   []models.AlertRule `json:"rules"`
	Version int                `json:"version"`
}

// EventType defines the type of alerts event.
type EventType int

const (
	// EventRulesLoaded indicates that the rules file was read at startup.
	EventRulesLoaded EventType = iota
	// EventRulesChanged indicates that the rules were edited or reloaded.
	EventRulesChanged
	// EventError indicates that reloading or watching the rules file failed.
	EventError
)

// Event represents an alerts service event.
type Event struct {
	Error error
	Type  EventType
}

// Service owns the rule list and reloads it when the file changes on disk.
type Service struct {
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	filePath      string
	rules         []models.AlertRule
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// New loads the rules file, creating an empty one if needed, and starts
// watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("alerts file path is empty")
	}

	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create alerts directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load alert rules: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create alerts file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventRulesLoaded})
	return s, nil
}

// Events returns the event channel for rule changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the rules file location.
func (s *Service) Path() string {
	return s.filePath
}

// GetRules returns a copy of the current rules.
func (s *Service) GetRules() []models.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rules)
}

// AddRule validates and persists a new rule.
func (s *Service) AddRule(rule models.AlertRule) error {
	rule.Pair = strings.TrimSpace(rule.Pair)
	if err := validateRule(rule); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rules {
		if r.Key() == rule.Key() {
			return fmt.Errorf("%w: %s", ErrRuleExists, rule.Key())
		}
	}

	s.rules = append(s.rules, rule)
	if err := s.saveLocked(); err != nil {
		s.rules = s.rules[:len(s.rules)-1]
		return fmt.Errorf("failed to save alert rules: %w", err)
	}

	s.sendEvent(Event{Type: EventRulesChanged})
	return nil
}

// DeleteRule removes the rule with the given key.
func (s *Service) DeleteRule(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.rules, func(r models.AlertRule) bool { return r.Key() == key })
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, key)
	}

	removed := s.rules[idx]
	s.rules = slices.Delete(s.rules, idx, idx+1)
	if err := s.saveLocked(); err != nil {
		s.rules = slices.Insert(s.rules, idx, removed)
		return fmt.Errorf("failed to save alert rules: %w", err)
	}

	s.sendEvent(Event{Type: EventRulesChanged})
	return nil
}

func validateRule(rule models.AlertRule) error {
	if rule.Pair == "" {
		return fmt.Errorf("%w: pair is required", ErrInvalidRule)
	}
	if rule.Pair != models.AllPairs && !strings.Contains(rule.Pair, "/") {
		return fmt.Errorf("%w: pair %q must look like TOKEN0/TOKEN1", ErrInvalidRule, rule.Pair)
	}
	if !rule.ThresholdUSD.IsPositive() {
		return fmt.Errorf("%w: threshold must be positive", ErrInvalidRule)
	}
	return nil
}

// parseRules decodes the rules file. Invalid rules are dropped with a warning
// so one typo does not disable every alert.
func parseRules(data []byte) ([]models.AlertRule, error) {
	var file RulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse alerts file: %w", err)
	}

	rules := make([]models.AlertRule, 0, len(file.Rules))
	for _, r := range file.Rules {
		r.Pair = strings.TrimSpace(r.Pair)
		if err := validateRule(r); err != nil {
			logger.Warn("Skipping alert rule", "pair", r.Pair, "error", err)
			continue
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	rules, err := parseRules(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the rules atomically. Caller must hold the lock.
func (s *Service) saveLocked() error {
	rules := s.rules
	if rules == nil {
		rules = []models.AlertRule{}
	}

	data, err := json.MarshalIndent(RulesFile{Rules: rules, Version: rulesFileVersion}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alert rules: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Editors replace files on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	select {
	case <-s.stopChan:
		return
	default:
	}

	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventRulesChanged})
}

// sendEvent never blocks; when the buffer is full the oldest event is dropped.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the watcher.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
