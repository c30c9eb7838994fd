package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/docker-version-fetcher/internal/notifier"
	"github.com/user/docker-version-fetcher/internal/resolver"
	"github.com/user/docker-version-fetcher/internal/state"
	"github.com/user/docker-version-fetcher/pkg/types"
)

type fakeInventory struct {
	images []types.LocalImageRef
	err    error
}

func (f *fakeInventory) ListRunning(ctx context.Context) ([]types.LocalImageRef, error) {
	return f.images, f.err
}

type fakeRegistry struct {
	tags     map[string][]types.TagRecord
	failing  map[string]bool
	missing  map[string]bool
}

func (f *fakeRegistry) Name() string { return "fake" }

func (f *fakeRegistry) RepositoryExists(ctx context.Context, repository string) (bool, error) {
	if f.failing[repository] {
		return false, fmt.Errorf("registry unreachable")
	}
	if f.missing[repository] {
		return false, nil
	}
	return true, nil
}

func (f *fakeRegistry) ListTags(ctx context.Context, repository string) ([]types.TagRecord, error) {
	if f.failing[repository] {
		return nil, fmt.Errorf("registry unreachable")
	}
	return f.tags[repository], nil
}

type fakeNotifier struct {
	sent     int
	fail     bool
	title    string
	message  string
	priority int
}

func (f *fakeNotifier) Name() string { return "fake-notifier" }

func (f *fakeNotifier) Send(ctx context.Context, title, message string, priority int) error {
	if f.fail {
		return fmt.Errorf("delivery failed")
	}
	f.sent++
	f.title = title
	f.message = message
	f.priority = priority
	return nil
}

func amd64Record(name, digest string) types.TagRecord {
	return types.TagRecord{
		Name:            name,
		PlatformDigests: map[string]string{types.PlatformLinuxAMD64: digest},
	}
}

func newTestService(t *testing.T, inventory *fakeInventory, reg *fakeRegistry, sink *fakeNotifier) (*Service, string) {
	t.Helper()
	statePath := filepath.Join(t.TempDir(), "state.json")
	states := state.NewManager(statePath, 7, nil)
	svc := NewService(inventory, reg, resolver.New(nil), states, notifier.NewService(sink), nil)
	return svc, statePath
}

func TestRunNotifiesOnUpdate(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "library/nginx", Tag: "1.20", Digest: "sha256:old", ContainerName: "web"},
	}}
	reg := &fakeRegistry{tags: map[string][]types.TagRecord{
		"library/nginx": {
			amd64Record("1.20", "sha256:old"),
			amd64Record("1.21", "sha256:new"),
			amd64Record("latest", "sha256:float"),
		},
	}}
	sink := &fakeNotifier{}

	svc, statePath := newTestService(t, inventory, reg, sink)

	result, err := svc.Run(context.Background(), Options{Priority: 5})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(result.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(result.Updates))
	}
	update := result.Updates[0]
	if update.LatestTag != "1.21" || update.Status != types.StatusUpdateAvailable {
		t.Errorf("unexpected update: %+v", update)
	}
	if update.Kind != types.UpdateKindMinor {
		t.Errorf("expected minor update kind, got %v", update.Kind)
	}

	if sink.sent != 1 {
		t.Errorf("expected 1 notification, got %d", sink.sent)
	}
	if sink.priority != 5 {
		t.Errorf("expected priority 5, got %d", sink.priority)
	}
	if !result.NotificationOK {
		t.Error("expected NotificationOK after successful delivery")
	}

	if _, err := os.Stat(statePath); err != nil {
		t.Errorf("expected state file to be written: %v", err)
	}
}

func TestRunSuppressesRepeatedNotification(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "library/nginx", Tag: "1.20", Digest: "sha256:old"},
	}}
	reg := &fakeRegistry{tags: map[string][]types.TagRecord{
		"library/nginx": {
			amd64Record("1.20", "sha256:old"),
			amd64Record("1.21", "sha256:new"),
		},
	}}
	sink := &fakeNotifier{}

	svc, _ := newTestService(t, inventory, reg, sink)

	if _, err := svc.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}

	result, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}

	if len(result.Updates) != 0 {
		t.Errorf("expected second run to suppress the update, got %d", len(result.Updates))
	}
	if len(result.Suppressed) != 1 {
		t.Errorf("expected 1 suppressed image, got %d", len(result.Suppressed))
	}
	if sink.sent != 1 {
		t.Errorf("expected no second notification, got %d sends", sink.sent)
	}
}

func TestRunSkipsSelfImageAndFloatingTags(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "user/docker-version-fetcher", Tag: "1.0", ContainerName: "fetcher"},
		{Repository: "library/redis", Tag: "latest", ContainerName: "cache"},
	}}
	reg := &fakeRegistry{}
	sink := &fakeNotifier{}

	svc, _ := newTestService(t, inventory, reg, sink)

	result, err := svc.Run(context.Background(), Options{SelfImage: "docker-version-fetcher"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.ImagesChecked != 0 {
		t.Errorf("expected 0 eligible images, got %d", result.ImagesChecked)
	}
	if len(result.Skipped) != 2 {
		t.Errorf("expected 2 skipped images, got %v", result.Skipped)
	}
	if sink.sent != 0 {
		t.Errorf("expected no notifications, got %d", sink.sent)
	}
}

func TestRunRecordsPerRepositoryErrors(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "library/broken", Tag: "1.0", Digest: "sha256:a"},
		{Repository: "library/ghost", Tag: "2.0", Digest: "sha256:b"},
		{Repository: "library/nginx", Tag: "1.20", Digest: "sha256:old"},
	}}
	reg := &fakeRegistry{
		failing: map[string]bool{"library/broken": true},
		missing: map[string]bool{"library/ghost": true},
		tags: map[string][]types.TagRecord{
			"library/nginx": {
				amd64Record("1.21", "sha256:new"),
			},
		},
	}
	sink := &fakeNotifier{}

	svc, _ := newTestService(t, inventory, reg, sink)

	result, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Los fallos por repositorio no abortan la pasada
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 per-repository errors, got %v", result.Errors)
	}
	if len(result.Updates) != 1 {
		t.Errorf("expected the healthy repository to still resolve, got %d updates", len(result.Updates))
	}
}

func TestRunDigestDrift(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "library/nginx", Tag: "1.21", Digest: "sha256:old"},
	}}
	reg := &fakeRegistry{tags: map[string][]types.TagRecord{
		"library/nginx": {
			amd64Record("1.21", "sha256:rebuilt"),
		},
	}}
	sink := &fakeNotifier{}

	svc, _ := newTestService(t, inventory, reg, sink)

	result, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(result.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(result.Updates))
	}
	if result.Updates[0].Status != types.StatusDigestDrift {
		t.Errorf("expected digest drift, got %v", result.Updates[0].Status)
	}
	if result.Updates[0].Kind != types.UpdateKindDigest {
		t.Errorf("expected digest update kind, got %v", result.Updates[0].Kind)
	}
}

func TestRunDryRun(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "library/nginx", Tag: "1.20", Digest: "sha256:old"},
	}}
	reg := &fakeRegistry{tags: map[string][]types.TagRecord{
		"library/nginx": {
			amd64Record("1.21", "sha256:new"),
		},
	}}
	sink := &fakeNotifier{}

	svc, statePath := newTestService(t, inventory, reg, sink)

	result, err := svc.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(result.Updates) != 1 {
		t.Errorf("expected dry run to report the update, got %d", len(result.Updates))
	}
	if sink.sent != 0 {
		t.Errorf("expected no notifications in dry run, got %d", sink.sent)
	}
	if _, err := os.Stat(statePath); !os.IsNotExist(err) {
		t.Error("expected no state file after dry run")
	}
}

func TestRunDeliveryFailureStillPersistsState(t *testing.T) {
	inventory := &fakeInventory{images: []types.LocalImageRef{
		{Repository: "library/nginx", Tag: "1.20", Digest: "sha256:old"},
	}}
	reg := &fakeRegistry{tags: map[string][]types.TagRecord{
		"library/nginx": {
			amd64Record("1.21", "sha256:new"),
		},
	}}
	sink := &fakeNotifier{fail: true}

	svc, statePath := newTestService(t, inventory, reg, sink)

	result, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.NotificationOK {
		t.Error("expected NotificationOK false after delivery failure")
	}
	// El estado se persiste igualmente; el recordatorio reintenta más tarde
	if _, err := os.Stat(statePath); err != nil {
		t.Errorf("expected state file despite delivery failure: %v", err)
	}
}

func TestRunInventoryFailureIsFatal(t *testing.T) {
	inventory := &fakeInventory{err: fmt.Errorf("docker daemon unreachable")}

	svc, _ := newTestService(t, inventory, &fakeRegistry{}, &fakeNotifier{})

	if _, err := svc.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected fatal error when inventory fails")
	}
}
