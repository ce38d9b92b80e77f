package doses

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/config"
	"github.com/julianstephens/droptime/internal/models"
	"github.com/julianstephens/droptime/internal/notifier"
	"github.com/julianstephens/droptime/internal/storage/sqlite"
	"github.com/julianstephens/droptime/internal/tracker"
)

func setupTestContext(t *testing.T, now *time.Time) *cli.Context {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{Database: dbPath, Timezone: "UTC", Locale: "en", TimerMinutes: 5}
	ctx, err := cli.NewContext(store, cfg, tracker.WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatal(err)
	}
	ctx.Notifier = notifier.New(false)
	if _, err := ctx.Tracker.LoadAll(); err != nil {
		t.Fatal(err)
	}
	return ctx
}

func takenCell(t *testing.T, ctx *cli.Context, dropID string, slot models.TimeSlot) tracker.Cell {
	t.Helper()
	view, err := ctx.Tracker.TodayView()
	if err != nil {
		t.Fatal(err)
	}
	for _, row := range view.Rows {
		if row.DropID == dropID {
			return row.Cells[slot.Index()]
		}
	}
	t.Fatalf("no row for %s", dropID)
	return tracker.Cell{}
}

func TestTakeAndUndo(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 5, 0, 0, time.UTC)
	ctx := setupTestContext(t, &now)

	if err := (&TakeCmd{Drop: "a", Slot: "Morning"}).Run(ctx); err != nil {
		t.Fatalf("take failed: %v", err)
	}
	cell := takenCell(t, ctx, "A", models.SlotMorning)
	if !cell.Taken() || !cell.TakenAt.Equal(now) {
		t.Errorf("cell after take = %+v", cell)
	}

	if err := (&UndoCmd{Drop: "A", Slot: "morning", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if takenCell(t, ctx, "A", models.SlotMorning).Taken() {
		t.Error("dose still taken after undo")
	}
}

func TestTakeErrors(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := setupTestContext(t, &now)

	tests := []struct {
		name string
		cmd  TakeCmd
		want string
	}{
		{"unknown drop", TakeCmd{Drop: "Z", Slot: "noon"}, "not found"},
		{"unknown slot", TakeCmd{Drop: "A", Slot: "midnight"}, "unknown time slot"},
		{"not scheduled", TakeCmd{Drop: "C", Slot: "noon"}, "not scheduled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRunTimer(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := setupTestContext(t, &now)

	done := make(chan error, 1)
	go func() { done <- runTimer(ctx, 30*time.Millisecond, 5*time.Millisecond) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runTimer() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer never expired")
	}
}

func TestRenderToday(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 5, 0, 0, time.UTC)
	ctx := setupTestContext(t, &now)
	if _, err := ctx.Tracker.MarkTaken("A", models.SlotMorning); err != nil {
		t.Fatal(err)
	}
	view, _ := ctx.Tracker.TodayView()
	out := renderToday(view, time.UTC)

	for _, want := range []string{"Monday, January 1, 2024", "Progress: 1/10 (10%)", "Morning", "07:00", "✓ 07:05"} {
		if !strings.Contains(out, want) {
			t.Errorf("today output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	var cRow string
	for _, l := range lines {
		if strings.HasPrefix(l, "C ") {
			cRow = l
		}
	}
	if strings.Count(cRow, "-") != 2 {
		t.Errorf("drop C should show two unscheduled slots: %q", cRow)
	}
}

func TestRenderTodayEmpty(t *testing.T) {
	out := renderToday(tracker.TodayView{DisplayDate: "x"}, time.UTC)
	if !strings.Contains(out, "No eye drops configured") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRenderHistory(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 5, 0, 0, time.UTC)
	ctx := setupTestContext(t, &now)
	if _, err := ctx.Tracker.MarkTaken("B", models.SlotMorning); err != nil {
		t.Fatal(err)
	}
	now = now.Add(24 * time.Hour)
	if _, err := ctx.Tracker.TodayView(); err != nil {
		t.Fatal(err)
	}
	// Past days keep doses of removed drops.
	if err := ctx.Tracker.RemoveEyeDrop("B"); err != nil {
		t.Fatal(err)
	}

	entries := ctx.Tracker.History()
	out := renderHistory(entries, "en", 0, false, time.UTC)
	if first := strings.Index(out, "2024-01-02"); first < 0 || first > strings.Index(out, "2024-01-01") {
		t.Errorf("history not newest first:\n%s", out)
	}

	limited := renderHistory(entries, "en", 1, false, time.UTC)
	if strings.Contains(limited, "2024-01-01") {
		t.Errorf("--days 1 still shows older days:\n%s", limited)
	}

	detail := renderHistory(entries[1:], "en", 0, true, time.UTC)
	for _, want := range []string{"07:05", "pending", "B "} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail missing %q:\n%s", want, detail)
		}
	}

	if got := renderHistory(nil, "en", 0, false, time.UTC); got != "No history yet.\n" {
		t.Errorf("empty history = %q", got)
	}
}
