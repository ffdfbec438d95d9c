package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/repository"
)

// fakeNotificationStore mirrors the SQL semantics of the real
// repository in memory: owner-scoped lookups, idempotent read marking,
// age-and-read cleanup.
type fakeNotificationStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{rows: make(map[int64]*model.Notification)}
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	cp := *n
	f.rows[n.ID] = &cp
	return nil
}

func (f *fakeNotificationStore) List(ctx context.Context, userID int64, limit, offset int, category string) ([]*model.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*model.Notification
	for _, n := range f.rows {
		if n.UserID != userID {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := make([]*model.Notification, 0, end-offset)
	for _, n := range matched[offset:end] {
		cp := *n
		page = append(page, &cp)
	}
	return page, total, nil
}

func (f *fakeNotificationStore) UnreadCount(ctx context.Context, userID int64, category string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.Read {
			if category != "" && n.Category != category {
				continue
			}
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.rows[notificationID]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllAsRead(ctx context.Context, userID int64, category string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var affected int64
	now := time.Now()
	for _, n := range f.rows {
		if n.UserID != userID || n.Read {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		n.Read = true
		n.ReadAt = &now
		affected++
	}
	return affected, nil
}

func (f *fakeNotificationStore) Delete(ctx context.Context, userID, notificationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.rows[notificationID]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.rows, notificationID)
	return nil
}

func (f *fakeNotificationStore) DeleteOldRead(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for id, n := range f.rows {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(f.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

type badgeEvent struct {
	UserID int64
	Event  string
	Unread int64
}

type fakeBadgeNotifier struct {
	mu     sync.Mutex
	events []badgeEvent
}

func (f *fakeBadgeNotifier) PublishBadge(ctx context.Context, userID int64, event string, unread int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, badgeEvent{UserID: userID, Event: event, Unread: unread})
}

func (f *fakeBadgeNotifier) last() (badgeEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return badgeEvent{}, false
	}
	return f.events[len(f.events)-1], true
}

type publishedEvent struct {
	RoutingKey string
	Payload    any
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEventPublisher) Publish(routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{RoutingKey: routingKey, Payload: payload})
	return nil
}

func newTestService() (*NotificationService, *fakeNotificationStore, *fakeBadgeNotifier, *fakeEventPublisher) {
	store := newFakeNotificationStore()
	notifier := &fakeBadgeNotifier{}
	publisher := &fakeEventPublisher{}
	svc := NewNotificationService(store, notifier, publisher, zap.NewNop())
	return svc, store, notifier, publisher
}

func mustCreate(t *testing.T, svc *NotificationService, userID int64, title, category string) *model.Notification {
	t.Helper()
	n, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID:   userID,
		Type:     model.NotificationTypeInfo,
		Title:    title,
		Message:  "body of " + title,
		Category: category,
	}, "api")
	require.NoError(t, err)
	return n
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name     string
		input    CreateNotificationInput
		wantKind apperr.Kind
		wantCode string
	}{
		{
			name:     "missing user",
			input:    CreateNotificationInput{Type: model.NotificationTypeInfo, Title: "t", Message: "m"},
			wantKind: apperr.KindAuthorization,
			wantCode: "missing_user",
		},
		{
			name:     "unknown type",
			input:    CreateNotificationInput{UserID: 1, Type: "bogus", Title: "t", Message: "m"},
			wantKind: apperr.KindValidation,
			wantCode: "invalid_type",
		},
		{
			name:     "unknown priority",
			input:    CreateNotificationInput{UserID: 1, Type: model.NotificationTypeInfo, Priority: "asap", Title: "t", Message: "m"},
			wantKind: apperr.KindValidation,
			wantCode: "invalid_priority",
		},
		{
			name:     "empty title",
			input:    CreateNotificationInput{UserID: 1, Type: model.NotificationTypeInfo, Message: "m"},
			wantKind: apperr.KindValidation,
			wantCode: "missing_content",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input, "api")
			require.Error(t, err)
			appErr := apperr.As(err)
			assert.Equal(t, tc.wantKind, appErr.Kind)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}
}

func TestCreateExpiryMustBeFuture(t *testing.T) {
	svc, _, _, _ := newTestService()

	past := time.Now().Add(-time.Hour)
	_, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID:    1,
		Type:      model.NotificationTypeInfo,
		Title:     "t",
		Message:   "m",
		ExpiresAt: &past,
	}, "api")
	require.Error(t, err)
	assert.Equal(t, "invalid_expiry", apperr.As(err).Code)
}

func TestCreateDefaultsPriorityToMedium(t *testing.T) {
	svc, _, notifier, _ := newTestService()

	n := mustCreate(t, svc, 1, "hello", "")
	assert.Equal(t, model.NotificationPriorityMedium, n.Priority)
	assert.False(t, n.Read)
	assert.Nil(t, n.ReadAt)

	ev, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, "created", ev.Event)
	assert.Equal(t, int64(1), ev.Unread)
}

func TestListPagination(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		mustCreate(t, svc, 1, "n", "")
	}

	page, err := svc.List(ctx, 1, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Len(t, page.Notifications, 20)

	page2, err := svc.List(ctx, 1, ListOptions{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Notifications, 5)

	empty, err := svc.List(ctx, 1, ListOptions{Page: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.Notifications)
	assert.Equal(t, int64(25), empty.Total)
}

func TestListValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.List(ctx, 0, ListOptions{})
	assert.Equal(t, "missing_user", apperr.As(err).Code)

	_, err = svc.List(ctx, 1, ListOptions{Page: -1})
	assert.Equal(t, "invalid_page", apperr.As(err).Code)

	_, err = svc.List(ctx, 1, ListOptions{Limit: 101})
	assert.Equal(t, "invalid_limit", apperr.As(err).Code)

	_, err = svc.List(ctx, 1, ListOptions{Limit: -5})
	assert.Equal(t, "invalid_limit", apperr.As(err).Code)
}

func TestListCategoryFilterAndOwnerScope(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, 1, "a", "contracts")
	mustCreate(t, svc, 1, "b", "licenses")
	mustCreate(t, svc, 2, "c", "contracts")

	page, err := svc.List(ctx, 1, ListOptions{Category: "contracts"})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "a", page.Notifications[0].Title)

	all, err := svc.List(ctx, 1, ListOptions{})
	require.NoError(t, err)
	for _, n := range all.Notifications {
		assert.Equal(t, int64(1), n.UserID)
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	n := mustCreate(t, svc, 1, "once", "")

	require.NoError(t, svc.MarkAsRead(ctx, 1, n.ID))
	first := store.rows[n.ID].ReadAt
	require.NotNil(t, first)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.MarkAsRead(ctx, 1, n.ID))

	assert.True(t, store.rows[n.ID].Read)
	assert.Equal(t, first, store.rows[n.ID].ReadAt, "read_at must keep the first-read timestamp")
}

func TestMarkAsReadCrossOwnerIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	n := mustCreate(t, svc, 1, "mine", "")

	err := svc.MarkAsRead(ctx, 2, n.ID)
	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, apperr.KindNotFound, appErr.Kind)
	assert.Equal(t, "notification_not_found", appErr.Code)

	err = svc.MarkAsRead(ctx, 1, 99999)
	assert.Equal(t, "notification_not_found", apperr.As(err).Code)
}

func TestMarkAllAsReadZeroesUnreadCount(t *testing.T) {
	svc, _, notifier, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreate(t, svc, 1, "n", "")
	}
	mustCreate(t, svc, 2, "other", "")

	affected, err := svc.MarkAllAsRead(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	unread, err := svc.UnreadCount(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// The other user's notifications are untouched.
	unread2, err := svc.UnreadCount(ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread2)

	ev, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, "read_all", ev.Event)
	assert.Equal(t, int64(0), ev.Unread)

	// Running again affects nothing.
	affected, err = svc.MarkAllAsRead(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestDeleteCrossOwnerLeavesRow(t *testing.T) {
	svc, store, _, _ := newTestService()
	ctx := context.Background()

	n := mustCreate(t, svc, 1, "keep", "")

	err := svc.Delete(ctx, 2, n.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.As(err).Kind)
	assert.Contains(t, store.rows, n.ID, "cross-owner delete must not remove the row")

	require.NoError(t, svc.Delete(ctx, 1, n.ID))
	assert.NotContains(t, store.rows, n.ID)
}

func TestCleanupOldSparesUnreadAndRecent(t *testing.T) {
	svc, store, _, publisher := newTestService()
	ctx := context.Background()

	oldRead := mustCreate(t, svc, 1, "old read", "")
	oldUnread := mustCreate(t, svc, 1, "old unread", "")
	recentRead := mustCreate(t, svc, 1, "recent read", "")

	require.NoError(t, svc.MarkAsRead(ctx, 1, oldRead.ID))
	require.NoError(t, svc.MarkAsRead(ctx, 1, recentRead.ID))

	// Age two of them past the threshold.
	store.rows[oldRead.ID].CreatedAt = time.Now().AddDate(0, 0, -40)
	store.rows[oldUnread.ID].CreatedAt = time.Now().AddDate(0, 0, -40)

	deleted, err := svc.CleanupOld(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	assert.NotContains(t, store.rows, oldRead.ID)
	assert.Contains(t, store.rows, oldUnread.ID, "unread rows survive cleanup regardless of age")
	assert.Contains(t, store.rows, recentRead.ID, "recent rows survive cleanup")

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "notification.cleanup", publisher.events[0].RoutingKey)
}

func TestCleanupOldRejectsBadThreshold(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CleanupOld(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, "invalid_threshold", apperr.As(err).Code)
}

func TestReadLifecycleScenario(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first := mustCreate(t, svc, 7, "first", "contracts")
	mustCreate(t, svc, 7, "second", "contracts")

	unread, err := svc.UnreadCount(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkAsRead(ctx, 7, first.ID))

	unread, err = svc.UnreadCount(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	page, err := svc.List(ctx, 7, ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	for _, n := range page.Notifications {
		if n.ID == first.ID {
			assert.True(t, n.Read)
			assert.NotNil(t, n.ReadAt)
		} else {
			assert.False(t, n.Read)
			assert.Nil(t, n.ReadAt)
		}
	}
}
