package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"tubeshelf/internal/models"
)

var videoRowColumns = []string{"host_id", "db_id", "host_service", "title", "url", "user_id"}

func TestCreateVideoDefaultsHostService(t *testing.T) {
	s, mock := newMock(t)
	owner := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO videos (host_id, db_id, host_service, title, url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)).
		WithArgs("abc123", sqlmock.AnyArg(), "youtube", "Talk", "https://youtu.be/abc123", owner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := s.CreateVideo(context.Background(), &models.Video{
		HostID: "abc123", Title: "Talk", URL: "https://youtu.be/abc123", UserID: owner,
	})
	if err != nil {
		t.Fatalf("CreateVideo error: %v", err)
	}
	if v.HostService != models.DefaultHostService || v.DBID == uuid.Nil {
		t.Fatalf("unexpected video %+v", v)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateVideoDuplicate(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO videos`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreateVideo(context.Background(), &models.Video{HostID: "abc123"})
	if !errors.Is(err, ErrVideoExists) {
		t.Fatalf("expected ErrVideoExists, got %v", err)
	}
}

func TestInsertVideoIfAbsent(t *testing.T) {
	owner := uuid.New()
	existingID := uuid.New()
	insert := regexp.QuoteMeta(`ON CONFLICT (host_service, host_id) DO NOTHING`)

	t.Run("inserted", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(insert).
			WillReturnRows(sqlmock.NewRows([]string{"db_id"}).AddRow(uuid.NewString()))

		v, created, err := s.InsertVideoIfAbsent(context.Background(), &models.Video{HostID: "abc123", UserID: owner})
		if err != nil {
			t.Fatalf("InsertVideoIfAbsent error: %v", err)
		}
		if !created || v.HostID != "abc123" {
			t.Fatalf("expected created video, got created=%v %+v", created, v)
		}
	})

	t.Run("already present", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(insert).WillReturnRows(sqlmock.NewRows([]string{"db_id"}))
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE host_service = $1 AND host_id = $2`)).
			WithArgs("youtube", "abc123").
			WillReturnRows(sqlmock.NewRows(videoRowColumns).
				AddRow("abc123", existingID.String(), "youtube", "Original", "https://youtu.be/abc123", owner.String()))

		v, created, err := s.InsertVideoIfAbsent(context.Background(), &models.Video{HostID: "abc123", Title: "New"})
		if err != nil {
			t.Fatalf("InsertVideoIfAbsent error: %v", err)
		}
		if created {
			t.Fatal("expected created=false")
		}
		if v.DBID != existingID || v.Title != "Original" {
			t.Fatalf("expected stored video, got %+v", v)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

func TestVideosByHostIDsSingleQuery(t *testing.T) {
	s, mock := newMock(t)
	owner := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE host_id = ANY($1)`)).
		WithArgs(pq.Array([]string{"a", "b", "missing"})).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow("b", uuid.NewString(), "youtube", "B", "https://youtu.be/b", owner.String()).
			AddRow("a", uuid.NewString(), "youtube", "A", "https://youtu.be/a", owner.String()))

	videos, err := s.VideosByHostIDs(context.Background(), []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("VideosByHostIDs error: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVideosByHostIDsEmpty(t *testing.T) {
	s, mock := newMock(t)

	videos, err := s.VideosByHostIDs(context.Background(), nil)
	if err != nil || len(videos) != 0 {
		t.Fatalf("expected empty result, got %v %v", videos, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestUpdateAndDeleteVideoNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE videos`)).
		WithArgs("Title", "https://youtu.be/x", "x").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos`)).
		WithArgs("x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateVideo(context.Background(), &models.Video{HostID: "x", Title: "Title", URL: "https://youtu.be/x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from update, got %v", err)
	}
	if err := s.DeleteVideo(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from delete, got %v", err)
	}
}
