package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop-app/greenloop-backend/pkg/db/models"
	pkgerrors "github.com/greenloop-app/greenloop-backend/pkg/errors"
	"github.com/greenloop-app/greenloop-backend/pkg/pagination"
)

type stubRepo struct {
	listRows    []models.Notification
	listCursor  *pagination.Cursor
	listParams  listNotificationsParams
	unread      int64
	markResult  notificationMarkResult
	markAllN    int64
	markReadErr error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(context.Context, *models.Notification) error { return nil }

func (s *stubRepo) List(_ context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	s.listParams = params
	return s.listRows, s.listCursor, nil
}

func (s *stubRepo) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return s.unread, nil
}

func (s *stubRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID, time.Time) (notificationMarkResult, error) {
	return s.markResult, s.markReadErr
}

func (s *stubRepo) MarkAllRead(context.Context, uuid.UUID, time.Time) (int64, error) {
	return s.markAllN, nil
}

func (s *stubRepo) DeleteReadBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestListRequiresUserID(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.List(context.Background(), ListParams{})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&stubRepo{})

	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-base64!"})
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestListReturnsCursorAndUnread(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &stubRepo{
		listRows:   []models.Notification{{ID: uuid.New()}},
		listCursor: next,
		unread:     4,
	}
	svc, _ := NewService(repo)

	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), UnreadOnly: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Cursor == "" {
		t.Fatalf("expected next cursor")
	}
	if result.UnreadCount != 4 {
		t.Fatalf("expected unread count 4, got %d", result.UnreadCount)
	}
	if !repo.listParams.UnreadOnly {
		t.Fatalf("unread filter not forwarded")
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc, _ := NewService(&stubRepo{markResult: notificationMarkResult{Found: false}})

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestMarkReadAlreadyReadIsIdempotent(t *testing.T) {
	svc, _ := NewService(&stubRepo{markResult: notificationMarkResult{Found: true, Updated: false}})

	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("marking an already-read notification should succeed: %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := NewService(&stubRepo{markAllN: 3})

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows updated, got %d", count)
	}
}
