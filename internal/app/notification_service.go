// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kavita_notification_bot/internal/domain/catalog"
	"kavita_notification_bot/internal/domain/messaging"
	"kavita_notification_bot/internal/domain/notified"

	"github.com/sirupsen/logrus"
)

// CycleKind labels one detect-then-dispatch execution for diagnostics.
type CycleKind string

const (
	CycleInitial   CycleKind = "initial"
	CycleScheduled CycleKind = "scheduled"
	CycleManual    CycleKind = "manual"
)

// pageSize is the number of items announced per chat message.
const pageSize = 10

// NotificationService runs one library-change cycle: detect items newer than
// the lookback window that have not been announced yet, deliver them to the
// chat channel in pages, and record them in the notified set.
type NotificationService interface {
	// RunCycle executes one cycle against the given notified set and returns
	// the items that were both delivered and marked notified. The caller owns
	// the set and must not run two cycles against it concurrently.
	RunCycle(ctx context.Context, kind CycleKind, set *notified.Set) []catalog.Item
}

// NotificationServiceImpl implements NotificationService.
type NotificationServiceImpl struct {
	catalogClient catalog.Client
	messenger     messaging.Client
	store         notified.Store
	lookback      time.Duration
	logger        *logrus.Logger
	now           func() time.Time // Injected for deterministic lookback tests
}

func NewNotificationService(
	cc catalog.Client,
	mc messaging.Client,
	store notified.Store,
	lookback time.Duration,
	logger *logrus.Logger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		catalogClient: cc,
		messenger:     mc,
		store:         store,
		lookback:      lookback,
		logger:        logger,
		now:           time.Now,
	}
}

// RunCycle never returns an error: every failure inside a cycle is logged and
// converted into "this unit of work contributed nothing".
func (s *NotificationServiceImpl) RunCycle(ctx context.Context, kind CycleKind, set *notified.Set) []catalog.Item {
	s.logger.Infof("Starting %s notification cycle", kind)

	newItems := s.detectNewItems(ctx, set)
	if len(newItems) == 0 {
		s.logger.Infof("Cycle %s found nothing new to announce", kind)
		return nil
	}
	s.logger.Infof("Cycle %s detected %d new item(s)", kind, len(newItems))

	announced := s.dispatch(ctx, set, newItems)
	s.logger.Infof("Cycle %s announced %d of %d detected item(s)", kind, len(announced), len(newItems))
	return announced
}

// detectNewItems walks every collection and keeps items that are inside the
// lookback window and not yet in the notified set. A failing collection is
// skipped so the others still get checked; a failing collection list simply
// yields an empty cycle.
func (s *NotificationServiceImpl) detectNewItems(ctx context.Context, set *notified.Set) []catalog.Item {
	collections, err := s.catalogClient.ListCollections(ctx)
	if err != nil {
		s.logger.Warnf("Failed to list collections, skipping cycle: %v", err)
		return nil
	}

	cutoff := s.now().Add(-s.lookback)
	var result []catalog.Item
	for _, col := range collections {
		items, err := s.catalogClient.ListItems(ctx, col.ID)
		if err != nil {
			s.logger.Warnf("Failed to list items in collection %q (%s), skipping it: %v", col.Name, col.ID, err)
			continue
		}
		for _, item := range items {
			// Items created exactly at the cutoff are still "new".
			if item.CreatedAt.Before(cutoff) {
				continue
			}
			if set.Contains(item.ID) {
				continue
			}
			item.CollectionName = col.Name
			result = append(result, item)
		}
	}

	// Newest first; presentation order only.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// dispatch sends the detected items to the chat channel in sequential pages.
// Items on a page are marked notified only after that page was delivered, so
// a failed page stays eligible for the next cycle. The updated set is
// persisted once at the end, and only when something was newly marked.
func (s *NotificationServiceImpl) dispatch(ctx context.Context, set *notified.Set, items []catalog.Item) []catalog.Item {
	var announced []catalog.Item
	for start := 0; start < len(items); start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		page := items[start:end]

		if err := s.messenger.SendPage(renderPage(page)); err != nil {
			s.logger.Errorf("Failed to send announcement page with %d item(s): %v", len(page), err)
			continue
		}
		for _, item := range page {
			if set.Add(item.ID) {
				announced = append(announced, item)
			}
		}
	}

	if len(announced) > 0 {
		if !s.store.Save(ctx, set) {
			s.logger.Warnf("Notified set not persisted this cycle; %d in-memory mark(s) will be retried on the next save", len(announced))
		}
	}
	return announced
}

// renderPage formats one page of announcements as a Telegram HTML message.
func renderPage(page []catalog.Item) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📚 <b>New in the library</b> (%d):\n", len(page)))
	for _, item := range page {
		b.WriteString(fmt.Sprintf("• <b>%s</b> — %s (added %s)\n",
			item.Name, item.CollectionName, item.CreatedAt.Format("02 Jan 2006")))
	}
	return b.String()
}
