package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewManager(path, 7, nil)
}

func TestLoadMissingFile(t *testing.T) {
	m := newTestManager(t)

	st := m.Load()

	if st == nil {
		t.Fatal("Load() returned nil state")
	}
	if len(st.Images) != 0 {
		t.Errorf("expected empty images map, got %d entries", len(st.Images))
	}
	if st.Settings.NotificationFrequencyDays != 7 {
		t.Errorf("expected default frequency 7, got %d", st.Settings.NotificationFrequencyDays)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path, 7, nil)
	st := m.Load()

	// Un fichero corrupto nunca es fatal, se parte de cero
	if st == nil || len(st.Images) != 0 {
		t.Fatalf("expected fresh state from corrupt file, got %+v", st)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	m := NewManager(path, 7, nil)

	st := m.Load()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.UpdateImageState(st, "library/nginx", "1.20", "sha256:abc", "1.21", now)

	if err := m.Save(st); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded := m.Load()
	repo, ok := loaded.Images["library/nginx"]
	if !ok {
		t.Fatal("expected library/nginx in reloaded state")
	}
	if repo.LatestDigest != "sha256:abc" || repo.LatestTag != "1.21" {
		t.Errorf("reloaded repository state = %+v", repo)
	}
	tag, ok := repo.CurrentTags["1.20"]
	if !ok || !tag.Notified {
		t.Errorf("expected notified tag state for 1.20, got %+v", tag)
	}
	if loaded.Settings.LastCheck.IsZero() {
		t.Error("expected last_check to be refreshed on save")
	}
}

func TestShouldNotify(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown repository notifies", func(t *testing.T) {
		st := m.Load()
		if !m.ShouldNotify(st, "library/nginx", "1.20", "sha256:a", base) {
			t.Error("expected notification for unknown repository")
		}
	})

	t.Run("reminder window suppresses and then expires", func(t *testing.T) {
		st := m.Load()
		m.UpdateImageState(st, "library/nginx", "1.20", "sha256:a", "1.21", base)

		if m.ShouldNotify(st, "library/nginx", "1.20", "sha256:a", base.Add(24*time.Hour)) {
			t.Error("expected suppression one day after notification")
		}
		if !m.ShouldNotify(st, "library/nginx", "1.20", "sha256:a", base.Add(8*24*time.Hour)) {
			t.Error("expected reminder after the window elapsed")
		}
	})

	t.Run("new remote digest bypasses the window", func(t *testing.T) {
		st := m.Load()
		m.UpdateImageState(st, "library/nginx", "1.20", "sha256:a", "1.21", base)

		if !m.ShouldNotify(st, "library/nginx", "1.20", "sha256:b", base.Add(time.Hour)) {
			t.Error("expected immediate notification for a new remote version")
		}
	})

	t.Run("unnotified tag falls back to repository window", func(t *testing.T) {
		st := m.Load()
		m.UpdateImageState(st, "library/nginx", "1.20", "sha256:a", "1.21", base)

		// Otro tag del mismo repositorio, sin historial propio
		if m.ShouldNotify(st, "library/nginx", "1.19", "sha256:a", base.Add(24*time.Hour)) {
			t.Error("expected repository-level suppression for sibling tag")
		}
		if !m.ShouldNotify(st, "library/nginx", "1.19", "sha256:a", base.Add(8*24*time.Hour)) {
			t.Error("expected repository-level reminder after the window")
		}
	})

	t.Run("persisted frequency overrides the default", func(t *testing.T) {
		st := m.Load()
		st.Settings.NotificationFrequencyDays = 1
		m.UpdateImageState(st, "library/nginx", "1.20", "sha256:a", "1.21", base)

		if !m.ShouldNotify(st, "library/nginx", "1.20", "sha256:a", base.Add(2*24*time.Hour)) {
			t.Error("expected reminder after the persisted one-day window")
		}
	})
}
