package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/repos/testutil"
	"github.com/wolverine5550/lexsona-backend/internal/types"
)

func TestPodcastFeedbackRepoQueue(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPodcastFeedbackRepo(db, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	podcastID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	rows := []*types.PodcastFeedback{
		{UserID: userID, PodcastID: podcastID, FeedbackType: types.FeedbackLike, CreatedAt: base},
		{UserID: userID, PodcastID: podcastID, FeedbackType: types.FeedbackSave, CreatedAt: base.Add(time.Minute)},
		{UserID: uuid.New(), PodcastID: uuid.New(), FeedbackType: types.FeedbackListen, CreatedAt: base.Add(2 * time.Minute)},
	}
	created, err := repo.Create(ctx, tx, rows)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, row := range created {
		if row.ID == uuid.Nil {
			t.Fatalf("create should assign an id")
		}
	}

	unprocessed, err := repo.GetUnprocessed(ctx, tx, 10)
	if err != nil {
		t.Fatalf("get unprocessed: %v", err)
	}
	if len(unprocessed) != 3 {
		t.Fatalf("expected 3 unprocessed rows, got %d", len(unprocessed))
	}
	// Oldest first.
	if !unprocessed[0].CreatedAt.Equal(rows[0].CreatedAt) {
		t.Fatalf("unprocessed rows should be ordered oldest first")
	}

	limited, err := repo.GetUnprocessed(ctx, tx, 2)
	if err != nil {
		t.Fatalf("get unprocessed limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit not applied, got %d rows", len(limited))
	}

	byUser, err := repo.GetByUserID(ctx, tx, userID)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(byUser) != 2 {
		t.Fatalf("expected 2 rows for user, got %d", len(byUser))
	}

	byPodcast, err := repo.GetByPodcastID(ctx, tx, podcastID)
	if err != nil {
		t.Fatalf("get by podcast: %v", err)
	}
	if len(byPodcast) != 2 {
		t.Fatalf("expected 2 rows for podcast, got %d", len(byPodcast))
	}
}

func TestPodcastFeedbackRepoMarkProcessedClaimsOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPodcastFeedbackRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.PodcastFeedback{
		{UserID: uuid.New(), PodcastID: uuid.New(), FeedbackType: types.FeedbackLike},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created[0].ID

	claimed, err := repo.MarkProcessed(ctx, tx, id)
	if err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	if !claimed {
		t.Fatalf("first mark should claim the row")
	}

	claimed, err = repo.MarkProcessed(ctx, tx, id)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if claimed {
		t.Fatalf("a processed row must not be claimable again")
	}

	unprocessed, err := repo.GetUnprocessed(ctx, tx, 10)
	if err != nil {
		t.Fatalf("get unprocessed: %v", err)
	}
	for _, row := range unprocessed {
		if row.ID == id {
			t.Fatalf("processed row still in the queue")
		}
	}
}
