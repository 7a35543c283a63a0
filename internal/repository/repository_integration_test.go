//go:build integration

package repository

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"omegavideos/internal/database"
	"omegavideos/internal/model"
	"omegavideos/internal/ranking"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "omega",
			"POSTGRES_PASSWORD": "omega",
			"POSTGRES_DB":       "omega",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=omega password=omega dbname=omega sslmode=disable", host, port.Port())
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func seedUser(t *testing.T, repo UserRepository, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", PasswordHashed: "x"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedVideo(t *testing.T, repo VideoRepository, owner int64, title string) *model.Video {
	t.Helper()
	v := &model.Video{UserID: owner, Title: title, MediaURL: "/uploads/videos/" + title + ".mp4"}
	require.NoError(t, repo.Create(context.Background(), nil, v))
	return v
}

func TestRepositories_Postgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	videos := NewVideoRepository(db)
	likes := NewLikeRepository(db)
	bookmarks := NewBookmarkRepository(db)
	follows := NewFollowRepository(db)
	comments := NewCommentRepository(db)
	commentLikes := NewCommentLikeRepository(db)
	notifications := NewNotificationRepository(db)
	signals := NewSignalRepository(db)

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	carol := seedUser(t, users, "carol")

	t.Run("duplicate user", func(t *testing.T) {
		err := users.Create(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHashed: "x"})
		assert.ErrorIs(t, err, model.ErrUserExists)
	})

	t.Run("relation insert is unique per pair", func(t *testing.T) {
		v := seedVideo(t, videos, alice.ID, "unique")

		require.NoError(t, likes.Insert(ctx, nil, bob.ID, v.ID))
		assert.ErrorIs(t, likes.Insert(ctx, nil, bob.ID, v.ID), model.ErrDuplicateRelation)
		require.NoError(t, likes.Insert(ctx, nil, carol.ID, v.ID))

		count, err := likes.Count(ctx, nil, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, likes.Delete(ctx, nil, bob.ID, v.ID))
		exists, err := likes.Exists(ctx, bob.ID, v.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("read model counts and viewer flags", func(t *testing.T) {
		v := seedVideo(t, videos, bob.ID, "counted")
		require.NoError(t, likes.Insert(ctx, nil, alice.ID, v.ID))
		require.NoError(t, bookmarks.Insert(ctx, nil, alice.ID, v.ID))
		require.NoError(t, comments.Create(ctx, nil, &model.Comment{VideoID: v.ID, UserID: carol.ID, Text: "hi"}))
		require.NoError(t, follows.Insert(ctx, nil, alice.ID, bob.ID))

		counts, err := signals.Counts(ctx, []int64{v.ID})
		require.NoError(t, err)
		assert.Equal(t, model.VideoCounts{Likes: 1, Comments: 1}, counts[v.ID])

		flags, err := signals.ViewerFlags(ctx, alice.ID, []int64{v.ID})
		require.NoError(t, err)
		assert.Equal(t, model.ViewerFlags{Liked: true, Bookmarked: true}, flags[v.ID])

		cands, err := signals.FeedCandidates(ctx, alice.ID, time.Now(), 0, 1000)
		require.NoError(t, err)
		var found bool
		for _, c := range cands {
			if c.VideoID == v.ID {
				found = true
				assert.True(t, c.ViewerFollowsOwner)
				assert.Equal(t, 1, c.Likes)
				assert.Equal(t, 1, c.Comments)
			}
		}
		assert.True(t, found)

		anon, err := signals.FeedCandidates(ctx, model.AnonymousViewerID, time.Now(), 0, 1000)
		require.NoError(t, err)
		for _, c := range anon {
			assert.False(t, c.ViewerFollowsOwner)
		}

		stats, err := users.Stats(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Followers)
		assert.GreaterOrEqual(t, stats.TotalLikes, 1)
	})

	t.Run("search is literal", func(t *testing.T) {
		seedVideo(t, videos, carol.ID, "100% real")
		seedVideo(t, videos, carol.ID, "1000 real")

		ids, err := videos.SearchIDs(ctx, "100%", 50)
		require.NoError(t, err)
		require.Len(t, ids, 1)

		cards, err := videos.GetCards(ctx, ids)
		require.NoError(t, err)
		assert.Equal(t, "100% real", cards[0].Title)

		byHandle, err := videos.SearchIDs(ctx, "CAROL", 50)
		require.NoError(t, err)
		assert.Len(t, byHandle, 2)
	})

	t.Run("delete thread removes likes before rows", func(t *testing.T) {
		v := seedVideo(t, videos, alice.ID, "thread")
		root := &model.Comment{VideoID: v.ID, UserID: bob.ID, Text: "root"}
		require.NoError(t, comments.Create(ctx, nil, root))
		reply := &model.Comment{VideoID: v.ID, UserID: carol.ID, ParentID: &root.ID, Text: "reply"}
		require.NoError(t, comments.Create(ctx, nil, reply))
		require.NoError(t, commentLikes.Insert(ctx, nil, alice.ID, reply.ID))
		require.NoError(t, commentLikes.Insert(ctx, nil, alice.ID, root.ID))
		require.NoError(t, notifications.Create(ctx, model.NotificationIntent{
			RecipientID: bob.ID, ActorID: carol.ID, Type: model.NotificationTypeReply, VideoID: &v.ID, CommentID: &reply.ID,
		}))

		tx, err := db.BeginTxx(ctx, nil)
		require.NoError(t, err)
		removed, err := comments.DeleteThread(ctx, tx, root.ID)
		require.NoError(t, err)
		require.NoError(t, notifications.DeleteByComments(ctx, tx, removed))
		require.NoError(t, tx.Commit())

		assert.ElementsMatch(t, []int64{root.ID, reply.ID}, removed)

		_, err = comments.GetByID(ctx, nil, reply.ID)
		assert.ErrorIs(t, err, model.ErrCommentNotFound)

		count, err := commentLikes.Count(ctx, nil, root.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		list, err := notifications.List(ctx, bob.ID, 50)
		require.NoError(t, err)
		for _, n := range list {
			if n.CommentID != nil {
				assert.NotEqual(t, reply.ID, *n.CommentID)
			}
		}
	})

	t.Run("mark read is scoped to owner", func(t *testing.T) {
		require.NoError(t, notifications.Create(ctx, model.NotificationIntent{RecipientID: carol.ID, ActorID: alice.ID, Type: model.NotificationTypeFollow}))
		require.NoError(t, notifications.Create(ctx, model.NotificationIntent{RecipientID: alice.ID, ActorID: carol.ID, Type: model.NotificationTypeFollow}))

		carolList, err := notifications.List(ctx, carol.ID, 50)
		require.NoError(t, err)
		require.NotEmpty(t, carolList)
		aliceList, err := notifications.List(ctx, alice.ID, 50)
		require.NoError(t, err)
		require.NotEmpty(t, aliceList)

		// alice tries to mark carol's notification
		require.NoError(t, notifications.MarkRead(ctx, alice.ID, []int64{carolList[0].ID}))
		unread, err := notifications.UnreadCount(ctx, carol.ID)
		require.NoError(t, err)
		assert.Equal(t, len(carolList), unread)

		require.NoError(t, notifications.MarkAllRead(ctx, carol.ID))
		unread, err = notifications.UnreadCount(ctx, carol.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)
	})

	t.Run("video delete cascades", func(t *testing.T) {
		v := seedVideo(t, videos, alice.ID, "cascade")
		require.NoError(t, likes.Insert(ctx, nil, bob.ID, v.ID))
		require.NoError(t, comments.Create(ctx, nil, &model.Comment{VideoID: v.ID, UserID: bob.ID, Text: "x"}))

		require.NoError(t, notifications.DeleteByVideo(ctx, nil, v.ID))
		require.NoError(t, videos.Delete(ctx, nil, v.ID))

		count, err := likes.Count(ctx, nil, v.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
		_, err = videos.GetByID(ctx, v.ID)
		assert.ErrorIs(t, err, model.ErrVideoNotFound)
	})

	t.Run("feed pages follow the scoring engine", func(t *testing.T) {
		dave := seedUser(t, users, "dave")
		require.NoError(t, follows.Insert(ctx, nil, dave.ID, carol.ID))
		for i := 0; i < 7; i++ {
			v := seedVideo(t, videos, []int64{alice.ID, bob.ID, carol.ID}[i%3], fmt.Sprintf("ranked %d", i))
			for j := 0; j < i%4; j++ {
				require.NoError(t, videos.IncrementViews(ctx, v.ID))
			}
			if i%2 == 0 {
				require.NoError(t, likes.Insert(ctx, nil, dave.ID, v.ID))
			}
		}

		now := time.Now()
		all, err := signals.FeedCandidates(ctx, dave.ID, now, 0, 1000)
		require.NoError(t, err)
		want := ranking.IDs(ranking.RankPersonalized(all, now))
		assert.Equal(t, want, ranking.IDs(all), "the query order is the scoring order")

		var paged []int64
		for offset := 0; ; offset += 3 {
			page, err := signals.FeedCandidates(ctx, dave.ID, now, offset, 3)
			require.NoError(t, err)
			paged = append(paged, ranking.IDs(page)...)
			if len(page) < 3 {
				break
			}
		}
		assert.Equal(t, want, paged)
	})
}
