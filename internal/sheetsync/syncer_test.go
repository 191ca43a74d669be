package sheetsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybrella/cybrella-api/internal/models"
)

// fakeLedger is an in-memory grid with the same 1-based row/column contract
// as the spreadsheet backend.
type fakeLedger struct {
	order []string
	tabs  map[string][][]string

	failAppend     bool
	failCreate     bool
	appendRowCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{tabs: map[string][][]string{}}
}

func (l *fakeLedger) GetTabs(context.Context) ([]string, error) {
	return append([]string(nil), l.order...), nil
}

func (l *fakeLedger) CreateTab(_ context.Context, name string) error {
	if l.failCreate {
		return errors.New("create failed")
	}
	if _, ok := l.tabs[name]; !ok {
		l.tabs[name] = [][]string{}
		l.order = append(l.order, name)
	}
	return nil
}

func (l *fakeLedger) WriteHeader(_ context.Context, tab string, header []string) error {
	rows := l.tabs[tab]
	row := append([]string(nil), header...)
	if len(rows) == 0 {
		l.tabs[tab] = [][]string{row}
	} else {
		rows[0] = row
	}
	return nil
}

func (l *fakeLedger) ReadColumn(_ context.Context, tab string, column int) ([]string, error) {
	var out []string
	for _, row := range l.tabs[tab] {
		if column <= len(row) {
			out = append(out, row[column-1])
		} else {
			out = append(out, "")
		}
	}
	return out, nil
}

func (l *fakeLedger) AppendRow(_ context.Context, tab string, row []string) error {
	if l.failAppend {
		return errors.New("append failed")
	}
	l.appendRowCalls++
	l.tabs[tab] = append(l.tabs[tab], append([]string(nil), row...))
	return nil
}

func (l *fakeLedger) UpdateCell(_ context.Context, tab string, row, column int, value string) error {
	l.tabs[tab][row-1][column-1] = value
	return nil
}

func (l *fakeLedger) UpdateRange(_ context.Context, tab string, startRow int, rows [][]string) error {
	grid := l.tabs[tab]
	for i, row := range rows {
		idx := startRow - 1 + i
		for len(grid) <= idx {
			grid = append(grid, nil)
		}
		grid[idx] = append([]string(nil), row...)
	}
	l.tabs[tab] = grid
	return nil
}

func (l *fakeLedger) DeleteRow(_ context.Context, tab string, row int) error {
	grid := l.tabs[tab]
	l.tabs[tab] = append(grid[:row-1], grid[row:]...)
	return nil
}

func (l *fakeLedger) ClearRange(_ context.Context, tab string, _ string) error {
	l.tabs[tab] = [][]string{}
	return nil
}

type recorderStub struct {
	operations []string
	failures   int
	notFound   map[string]int
}

func (r *recorderStub) ObserveSyncOperation(operation string, err error, _ time.Duration) {
	r.operations = append(r.operations, operation)
	if err != nil {
		r.failures++
	}
}

func (r *recorderStub) RecordRowNotFound(operation, tab string) {
	if r.notFound == nil {
		r.notFound = map[string]int{}
	}
	r.notFound[operation+"/"+tab]++
}

func makeRegistration(id, name, event string) models.Registration {
	return models.Registration{
		ID:         id,
		Name:       name,
		Email:      name + "@example.com",
		EventTitle: event,
		Status:     models.StatusPendingVerification,
		EnlistedAt: models.NewFlexTime(time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)),
	}
}

func TestAppendCreatesTabsWithHeader(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)

	require.NoError(t, syncer.Append(context.Background(), makeRegistration("r1", "one", "Game Jam")))

	require.Contains(t, ledger.tabs, MasterTab)
	require.Contains(t, ledger.tabs, "GAME_JAM")
	assert.Equal(t, Header(), ledger.tabs[MasterTab][0])
	assert.Equal(t, Header(), ledger.tabs["GAME_JAM"][0])
	assert.Equal(t, "r1", ledger.tabs[MasterTab][1][1])
	assert.Equal(t, "1", ledger.tabs["GAME_JAM"][1][0])
}

func TestAppendSerialsArePerTab(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("r1", "one", "Game Jam")))
	require.NoError(t, syncer.Append(ctx, makeRegistration("r2", "two", "Robo Wars")))
	require.NoError(t, syncer.Append(ctx, makeRegistration("r3", "three", "Game Jam")))

	// Master mirrors all three, each event tab counts only its own.
	assert.Equal(t, "3", ledger.tabs[MasterTab][3][0])
	assert.Equal(t, "2", ledger.tabs["GAME_JAM"][2][0])
	assert.Equal(t, "1", ledger.tabs["ROBO_WARS"][1][0])
}

func TestAppendRewritesDamagedHeader(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("r1", "one", "Game Jam")))
	ledger.tabs[MasterTab][0][0] = "SCRIBBLE"

	require.NoError(t, syncer.Append(ctx, makeRegistration("r2", "two", "Game Jam")))
	assert.Equal(t, "SERIAL NO", ledger.tabs[MasterTab][0][0])
}

func TestAppendEventMatchingMasterWritesOnce(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)

	require.NoError(t, syncer.Append(context.Background(), makeRegistration("r1", "one", "master log")))

	assert.Equal(t, []string{MasterTab}, ledger.order)
	assert.Len(t, ledger.tabs[MasterTab], 2)
}

func TestAppendCreateTabFailureSurfacesError(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failCreate = true
	syncer := NewSyncer(ledger, nil, nil)

	err := syncer.Append(context.Background(), makeRegistration("r1", "one", "Game Jam"))
	require.Error(t, err)
	assert.Zero(t, ledger.appendRowCalls)
}

func TestAppendFailureSurfacesError(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failAppend = true
	recorder := &recorderStub{}
	syncer := NewSyncer(ledger, nil, recorder)

	err := syncer.Append(context.Background(), makeRegistration("r1", "one", "Game Jam"))
	require.Error(t, err)
	assert.Equal(t, 1, recorder.failures)
}

func TestUpdateStatusPatchesOnlyStatusCell(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("r1", "one", "Game Jam")))
	require.NoError(t, syncer.Append(ctx, makeRegistration("r2", "two", "Game Jam")))
	before := append([]string(nil), ledger.tabs["GAME_JAM"][2]...)

	require.NoError(t, syncer.UpdateStatus(ctx, "r2", models.StatusVerified, "Game Jam"))

	after := ledger.tabs["GAME_JAM"][2]
	assert.Equal(t, "VERIFIED", after[statusColumn-1])
	for i := range after {
		if i == statusColumn-1 {
			continue
		}
		assert.Equal(t, before[i], after[i], "column %d must be untouched", i+1)
	}
	assert.Equal(t, "VERIFIED", ledger.tabs[MasterTab][2][statusColumn-1])
}

func TestUpdateStatusMissingTabIsSkipped(t *testing.T) {
	ledger := newFakeLedger()
	recorder := &recorderStub{}
	syncer := NewSyncer(ledger, nil, recorder)

	require.NoError(t, syncer.UpdateStatus(context.Background(), "ghost", models.StatusVerified, "Never Held"))
	assert.Equal(t, 1, recorder.notFound["update_status/MASTER_LOG"])
	assert.Equal(t, 1, recorder.notFound["update_status/NEVER_HELD"])
}

func TestUpdateStatusMissingRowIsSkipped(t *testing.T) {
	ledger := newFakeLedger()
	recorder := &recorderStub{}
	syncer := NewSyncer(ledger, nil, recorder)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("r1", "one", "Game Jam")))
	require.NoError(t, syncer.UpdateStatus(ctx, "ghost", models.StatusRejected, "Game Jam"))

	assert.Equal(t, 1, recorder.notFound["update_status/MASTER_LOG"])
	assert.Equal(t, 1, recorder.notFound["update_status/GAME_JAM"])
	assert.Equal(t, "PENDING_VERIFICATION", ledger.tabs["GAME_JAM"][1][statusColumn-1])
}

func TestDeleteRemovesExactlyOneRow(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("r1", "one", "Game Jam")))
	require.NoError(t, syncer.Append(ctx, makeRegistration("r2", "two", "Game Jam")))
	require.NoError(t, syncer.Append(ctx, makeRegistration("r3", "three", "Game Jam")))

	require.NoError(t, syncer.Delete(ctx, "r2", "Game Jam"))

	ids, err := ledger.ReadColumn(ctx, "GAME_JAM", idColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "r1", "r3"}, ids)
	assert.Len(t, ledger.tabs[MasterTab], 3)
}

func TestRebuildPartitionsAndRenumbers(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	regs := []models.Registration{
		makeRegistration("r1", "one", "Game Jam"),
		makeRegistration("r2", "two", "Robo Wars"),
		makeRegistration("r3", "three", "Game Jam"),
	}
	require.NoError(t, syncer.Rebuild(ctx, regs))

	master := ledger.tabs[MasterTab]
	require.Len(t, master, 4)
	assert.Equal(t, "1", master[1][0])
	assert.Equal(t, "3", master[3][0])

	gameJam := ledger.tabs["GAME_JAM"]
	require.Len(t, gameJam, 3)
	assert.Equal(t, "r1", gameJam[1][1])
	assert.Equal(t, "r3", gameJam[2][1])
	assert.Equal(t, "2", gameJam[2][0])

	roboWars := ledger.tabs["ROBO_WARS"]
	require.Len(t, roboWars, 2)
	assert.Equal(t, "1", roboWars[1][0])
}

func TestRebuildIsIdempotent(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	regs := []models.Registration{
		makeRegistration("r1", "one", "Game Jam"),
		makeRegistration("r2", "two", "Robo Wars"),
	}
	require.NoError(t, syncer.Rebuild(ctx, regs))
	first := map[string][][]string{}
	for tab, rows := range ledger.tabs {
		first[tab] = append([][]string(nil), rows...)
	}

	require.NoError(t, syncer.Rebuild(ctx, regs))
	assert.Equal(t, first, ledger.tabs)
}

func TestRebuildClearsStaleRows(t *testing.T) {
	ledger := newFakeLedger()
	syncer := NewSyncer(ledger, nil, nil)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("stale", "old", "Game Jam")))
	require.NoError(t, syncer.Rebuild(ctx, []models.Registration{
		makeRegistration("fresh", "new", "Game Jam"),
	}))

	ids, err := ledger.ReadColumn(ctx, "GAME_JAM", idColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "fresh"}, ids)
	ids, err = ledger.ReadColumn(ctx, MasterTab, idColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "fresh"}, ids)
}

func TestObserveRecordsOperations(t *testing.T) {
	ledger := newFakeLedger()
	recorder := &recorderStub{}
	syncer := NewSyncer(ledger, nil, recorder)
	ctx := context.Background()

	require.NoError(t, syncer.Append(ctx, makeRegistration("r1", "one", "Game Jam")))
	require.NoError(t, syncer.Rebuild(ctx, []models.Registration{makeRegistration("r1", "one", "Game Jam")}))

	assert.Equal(t, []string{"append", "rebuild"}, recorder.operations)
	assert.Zero(t, recorder.failures)
}
