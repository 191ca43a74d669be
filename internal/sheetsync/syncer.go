package sheetsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cybrella/cybrella-api/internal/models"
)

// Ledger is the tabular backend the syncer drives. Implementations expose a
// spreadsheet-like grid: named tabs, 1-based rows and columns, row 1 reserved
// for the header.
type Ledger interface {
	GetTabs(ctx context.Context) ([]string, error)
	CreateTab(ctx context.Context, name string) error
	WriteHeader(ctx context.Context, tab string, header []string) error
	ReadColumn(ctx context.Context, tab string, column int) ([]string, error)
	AppendRow(ctx context.Context, tab string, row []string) error
	UpdateCell(ctx context.Context, tab string, row, column int, value string) error
	UpdateRange(ctx context.Context, tab string, startRow int, rows [][]string) error
	DeleteRow(ctx context.Context, tab string, row int) error
	ClearRange(ctx context.Context, tab string, rng string) error
}

// Recorder receives sync observability signals. Row lookups that miss are
// legitimate (the tab may simply never have held the id) but still worth
// counting, so a drifting ledger does not go unnoticed.
type Recorder interface {
	ObserveSyncOperation(operation string, err error, duration time.Duration)
	RecordRowNotFound(operation, tab string)
}

const (
	idColumn     = 2
	statusColumn = 8

	// clearBound is the generous range wiped per tab during a rebuild;
	// the header is restored afterwards by ensureTab.
	clearBound = "A1:Z1000"
)

// Syncer converges ledger tabs with the registration store. Operations are
// idempotent at the row level but deliberately non-atomic across tabs and
// across the two stores: a partial failure leaves earlier tab writes in
// place, and Rebuild is the repair path.
type Syncer struct {
	ledger  Ledger
	logger  *zap.Logger
	metrics Recorder

	mu       sync.Mutex
	tabLocks map[string]*sync.Mutex
}

// NewSyncer constructs a Syncer. metrics may be nil.
func NewSyncer(ledger Ledger, logger *zap.Logger, metrics Recorder) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		ledger:   ledger,
		logger:   logger,
		metrics:  metrics,
		tabLocks: make(map[string]*sync.Mutex),
	}
}

// Append mirrors a freshly created registration into the master tab and its
// event tab. Serial numbers are computed from the live row count, so appends
// to the same tab are serialized by a per-tab lock for the read-then-write
// window; duplicate serials would otherwise appear under concurrency.
func (s *Syncer) Append(ctx context.Context, reg models.Registration) (err error) {
	defer s.observe("append", time.Now(), &err)

	for _, tab := range targetTabs(reg.EventTitle) {
		if err = s.appendToTab(ctx, tab, reg); err != nil {
			// Tabs already written stay written; no rollback.
			return fmt.Errorf("append to tab %s: %w", tab, err)
		}
	}
	return nil
}

func (s *Syncer) appendToTab(ctx context.Context, tab string, reg models.Registration) error {
	unlock := s.lockTab(tab)
	defer unlock()

	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	ids, err := s.ledger.ReadColumn(ctx, tab, idColumn)
	if err != nil {
		return fmt.Errorf("read id column: %w", err)
	}
	// Row 1 is the header, so the count including it is the next 1-based
	// data serial: header only -> serial 1, header+N rows -> serial N+1.
	serial := len(ids)
	if serial < 1 {
		serial = 1
	}

	return s.ledger.AppendRow(ctx, tab, MapRow(reg, serial))
}

// UpdateStatus patches the status cell of the row holding id in each target
// tab. A tab that does not exist or does not hold the id is skipped: that can
// legitimately mean the tab was never populated, so it is not an error, but
// it is counted and logged so desync stays observable.
func (s *Syncer) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, eventTitle string) (err error) {
	defer s.observe("update_status", time.Now(), &err)

	var tabs []string
	tabs, err = s.ledger.GetTabs(ctx)
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	existing := make(map[string]struct{}, len(tabs))
	for _, tab := range tabs {
		existing[tab] = struct{}{}
	}

	for _, tab := range targetTabs(eventTitle) {
		if _, ok := existing[tab]; !ok {
			s.skipRow("update_status", tab, id)
			continue
		}
		if err = s.updateStatusInTab(ctx, tab, id, status); err != nil {
			return fmt.Errorf("update status in tab %s: %w", tab, err)
		}
	}
	return nil
}

func (s *Syncer) updateStatusInTab(ctx context.Context, tab, id string, status models.RegistrationStatus) error {
	unlock := s.lockTab(tab)
	defer unlock()

	row, err := s.findRow(ctx, tab, id)
	if err != nil {
		return err
	}
	if row == 0 {
		s.skipRow("update_status", tab, id)
		return nil
	}
	return s.ledger.UpdateCell(ctx, tab, row, statusColumn, string(status))
}

// Delete removes the row holding id from each target tab. The registration
// itself is deleted from the document store by the caller beforehand, so a
// ledger failure leaves a stale-but-harmless row rather than a dangling id.
func (s *Syncer) Delete(ctx context.Context, id, eventTitle string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	for _, tab := range targetTabs(eventTitle) {
		if err = s.deleteFromTab(ctx, tab, id); err != nil {
			return fmt.Errorf("delete from tab %s: %w", tab, err)
		}
	}
	return nil
}

func (s *Syncer) deleteFromTab(ctx context.Context, tab, id string) error {
	unlock := s.lockTab(tab)
	defer unlock()

	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}
	row, err := s.findRow(ctx, tab, id)
	if err != nil {
		return err
	}
	if row == 0 {
		s.skipRow("delete", tab, id)
		return nil
	}
	// Structural deletion: later rows shift up and keep their now-stale
	// serials until the next rebuild renumbers them.
	return s.ledger.DeleteRow(ctx, tab, row)
}

// Rebuild wipes every existing tab and rewrites the master tab plus one tab
// per event from the given snapshot, which must be ordered by enlistment
// time. Serials restart at 1 per tab. One bulk write per tab keeps the call
// count proportional to tabs, not rows. Running it twice with the same input
// leaves identical tab contents.
func (s *Syncer) Rebuild(ctx context.Context, regs []models.Registration) (err error) {
	defer s.observe("rebuild", time.Now(), &err)

	var tabs []string
	tabs, err = s.ledger.GetTabs(ctx)
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	for _, tab := range tabs {
		if err = s.ledger.ClearRange(ctx, tab, clearBound); err != nil {
			return fmt.Errorf("clear tab %s: %w", tab, err)
		}
	}

	masterRows := make([][]string, 0, len(regs)+1)
	masterRows = append(masterRows, Header())

	eventRows := make(map[string][][]string)
	eventOrder := make([]string, 0)
	serials := make(map[string]int)

	for i, reg := range regs {
		masterRows = append(masterRows, MapRow(reg, i+1))

		tab := TabName(reg.EventTitle)
		if _, ok := eventRows[tab]; !ok {
			eventRows[tab] = [][]string{Header()}
			eventOrder = append(eventOrder, tab)
		}
		serials[tab]++
		eventRows[tab] = append(eventRows[tab], MapRow(reg, serials[tab]))
	}

	if err = s.writeTab(ctx, MasterTab, masterRows); err != nil {
		return err
	}
	for _, tab := range eventOrder {
		if tab == MasterTab {
			// Already rewritten with the full snapshot above.
			continue
		}
		if err = s.writeTab(ctx, tab, eventRows[tab]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) writeTab(ctx context.Context, tab string, rows [][]string) error {
	unlock := s.lockTab(tab)
	defer unlock()

	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}
	if err := s.ledger.UpdateRange(ctx, tab, 1, rows); err != nil {
		return fmt.Errorf("rewrite tab %s: %w", tab, err)
	}
	return nil
}

// ensureTab creates the tab when absent and unconditionally rewrites the
// header row, so a manually damaged header heals on the next sync.
func (s *Syncer) ensureTab(ctx context.Context, tab string) error {
	tabs, err := s.ledger.GetTabs(ctx)
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}
	exists := false
	for _, name := range tabs {
		if name == tab {
			exists = true
			break
		}
	}
	if !exists {
		if err := s.ledger.CreateTab(ctx, tab); err != nil {
			return fmt.Errorf("create tab %s: %w", tab, err)
		}
	}
	if err := s.ledger.WriteHeader(ctx, tab, headerRow); err != nil {
		return fmt.Errorf("write header for %s: %w", tab, err)
	}
	return nil
}

// findRow returns the 1-based row index holding id, or 0 when absent.
func (s *Syncer) findRow(ctx context.Context, tab, id string) (int, error) {
	ids, err := s.ledger.ReadColumn(ctx, tab, idColumn)
	if err != nil {
		return 0, fmt.Errorf("read id column: %w", err)
	}
	for i, cell := range ids {
		if cell == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// targetTabs resolves the tabs affected by a single-registration operation.
// The master tab and the event tab are deduplicated: an event title that
// sanitizes to the master name collapses to a single write.
func targetTabs(eventTitle string) []string {
	eventTab := TabName(eventTitle)
	if eventTab == MasterTab {
		return []string{MasterTab}
	}
	return []string{MasterTab, eventTab}
}

func (s *Syncer) lockTab(tab string) func() {
	s.mu.Lock()
	lock, ok := s.tabLocks[tab]
	if !ok {
		lock = &sync.Mutex{}
		s.tabLocks[tab] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Syncer) skipRow(operation, tab, id string) {
	s.logger.Debug("ledger row not found, skipping",
		zap.String("operation", operation),
		zap.String("tab", tab),
		zap.String("registration_id", id),
	)
	if s.metrics != nil {
		s.metrics.RecordRowNotFound(operation, tab)
	}
}

func (s *Syncer) observe(operation string, start time.Time, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSyncOperation(operation, *err, time.Since(start))
}
