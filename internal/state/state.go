package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/user/docker-version-fetcher/pkg/errors"
)

// TagState tracks the notification history of a single (repository, tag) pair.
type TagState struct {
	Notified     bool      `json:"notified"`
	LastNotified time.Time `json:"last_notified"`
	LatestTag    string    `json:"latest_tag,omitempty"`
}

// RepositoryState tracks the last known remote version of a repository and
// the per-tag notification history. Entries are created on first observation
// and never deleted.
type RepositoryState struct {
	LatestDigest string              `json:"latest_digest"`
	LatestTag    string              `json:"latest_tag"`
	Notified     bool                `json:"notified"`
	LastNotified time.Time           `json:"last_notified"`
	CurrentTags  map[string]TagState `json:"current_tags"`
}

// Settings holds run-level persisted settings.
type Settings struct {
	NotificationFrequencyDays int       `json:"notification_frequency"`
	LastCheck                 time.Time `json:"last_check"`
}

// State is the full persisted notification state. It is read once at process
// start, mutated in memory across the run, and written once at the end.
type State struct {
	Images   map[string]*RepositoryState `json:"images"`
	Settings Settings                    `json:"settings"`
}

// Manager loads, queries and persists the notification state file.
type Manager struct {
	path          string
	frequencyDays int
	logger        *slog.Logger
}

// NewManager creates a state manager for the given file path. frequencyDays
// is the default reminder interval used when the persisted settings carry none.
func NewManager(path string, frequencyDays int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		path:          path,
		frequencyDays: frequencyDays,
		logger:        logger,
	}
}

// Load reads the state file. A missing file yields fresh defaults; an
// unreadable or invalid file also degrades to defaults with a warning,
// never a fatal error.
func (m *Manager) Load() *State {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Info("State file not found, starting with empty state", "path", m.path)
		} else {
			m.logger.Warn("State file unreadable, starting with empty state",
				"path", m.path, "error", errors.Wrap("state.Load", err))
		}
		return m.defaultState()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		m.logger.Warn("State file corrupted, starting with empty state",
			"path", m.path, "error", errors.Wrapf("state.Load", errors.ErrStateCorrupted, "%v", err))
		return m.defaultState()
	}

	if st.Images == nil {
		st.Images = make(map[string]*RepositoryState)
	}
	if st.Settings.NotificationFrequencyDays <= 0 {
		st.Settings.NotificationFrequencyDays = m.frequencyDays
	}

	m.logger.Info("State loaded", "path", m.path, "repositories", len(st.Images))
	return &st
}

// Save refreshes the last-check timestamp and writes the state file,
// creating the parent directory when needed.
func (m *Manager) Save(st *State) error {
	st.Settings.LastCheck = time.Now()

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrapf("state.Save", err, "creating state directory %s", dir)
		}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap("state.Save", err)
	}

	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return errors.Wrapf("state.Save", err, "writing state file %s", m.path)
	}

	m.logger.Info("State saved", "path", m.path, "repositories", len(st.Images))
	return nil
}

// ShouldNotify decides whether a detected update for (repository, tag) should
// fire a notification now. Decision order:
//  1. unknown repository: notify (first sighting)
//  2. remote digest changed since the last notification: notify
//  3. tag previously notified: notify once the reminder interval elapsed
//  4. tag without history but repository notified: repository-level reminder window
//  5. otherwise the tag is new for a never-notified repository: notify
func (m *Manager) ShouldNotify(st *State, repository, tag, latestDigest string, now time.Time) bool {
	repo, ok := st.Images[repository]
	if !ok {
		m.logger.Info("New repository, notification required", "repository", repository)
		return true
	}

	if repo.LatestDigest != latestDigest {
		m.logger.Info("New remote version detected, notification required",
			"repository", repository, "tag", tag)
		return true
	}

	interval := m.reminderInterval(st)

	if tagState, ok := repo.CurrentTags[tag]; ok && tagState.Notified {
		next := tagState.LastNotified.Add(interval)
		if now.Before(next) {
			m.logger.Info("Notification suppressed, already notified recently",
				"repository", repository, "tag", tag, "next_reminder", next)
			return false
		}
		m.logger.Info("Reminder due", "repository", repository, "tag", tag,
			"last_notified", tagState.LastNotified)
		return true
	}

	if repo.Notified {
		next := repo.LastNotified.Add(interval)
		if now.Before(next) {
			m.logger.Info("Notification suppressed by repository reminder window",
				"repository", repository, "tag", tag, "next_reminder", next)
			return false
		}
		return true
	}

	return true
}

// UpdateImageState records an accepted notification for (repository, tag).
// It is applied unconditionally whenever ShouldNotify returned true and the
// caller proceeded, regardless of delivery success.
func (m *Manager) UpdateImageState(st *State, repository, tag, latestDigest, latestTag string, now time.Time) {
	repo, ok := st.Images[repository]
	if !ok {
		repo = &RepositoryState{}
		st.Images[repository] = repo
	}

	repo.LatestDigest = latestDigest
	repo.LatestTag = latestTag
	repo.Notified = true
	repo.LastNotified = now

	if repo.CurrentTags == nil {
		repo.CurrentTags = make(map[string]TagState)
	}
	repo.CurrentTags[tag] = TagState{
		Notified:     true,
		LastNotified: now,
		LatestTag:    latestTag,
	}

	m.logger.Debug("State updated", "repository", repository, "tag", tag, "latest_tag", latestTag)
}

func (m *Manager) reminderInterval(st *State) time.Duration {
	days := st.Settings.NotificationFrequencyDays
	if days <= 0 {
		days = m.frequencyDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (m *Manager) defaultState() *State {
	return &State{
		Images: make(map[string]*RepositoryState),
		Settings: Settings{
			NotificationFrequencyDays: m.frequencyDays,
		},
	}
}
