package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"omegavideos/internal/fanout"
	"omegavideos/internal/model"
)

// =============================================================================
// TRANSACTIONS AND FAN-OUT
// =============================================================================

type fakeTx struct {
	calls     int
	err       error // returned instead of running fn
	commitErr error // returned after fn succeeds
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if err := fn(nil); err != nil {
		return err
	}
	return f.commitErr
}

// memNotifications records what the Direct dispatcher writes.
type memNotifications struct {
	mu      sync.Mutex
	written []model.NotificationIntent
}

func (m *memNotifications) Create(ctx context.Context, in model.NotificationIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, in)
	return nil
}

func (m *memNotifications) types() []string {
	out := make([]string, len(m.written))
	for i, n := range m.written {
		out[i] = n.Type
	}
	return out
}

func newDirect() (*fanout.Direct, *memNotifications) {
	w := &memNotifications{}
	return fanout.NewDirect(w), w
}

// =============================================================================
// RELATIONS
// =============================================================================

type memRelation struct {
	pairs map[[2]int64]time.Time
	seq   int
}

func newMemRelation() *memRelation {
	return &memRelation{pairs: map[[2]int64]time.Time{}}
}

func (m *memRelation) Insert(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error {
	key := [2]int64{actorID, targetID}
	if _, ok := m.pairs[key]; ok {
		return model.ErrDuplicateRelation
	}
	m.seq++
	m.pairs[key] = time.Unix(int64(m.seq), 0)
	return nil
}

func (m *memRelation) Delete(ctx context.Context, tx *sqlx.Tx, actorID, targetID int64) error {
	delete(m.pairs, [2]int64{actorID, targetID})
	return nil
}

func (m *memRelation) Count(ctx context.Context, tx *sqlx.Tx, targetID int64) (int, error) {
	n := 0
	for k := range m.pairs {
		if k[1] == targetID {
			n++
		}
	}
	return n, nil
}

func (m *memRelation) Exists(ctx context.Context, actorID, targetID int64) (bool, error) {
	_, ok := m.pairs[[2]int64{actorID, targetID}]
	return ok, nil
}

type memFollows struct {
	*memRelation
}

func newMemFollows() *memFollows {
	return &memFollows{memRelation: newMemRelation()}
}

func (m *memFollows) FollowerIDs(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error) {
	var ids []int64
	for k := range m.pairs {
		if k[1] == userID {
			ids = append(ids, k[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memFollows) Followers(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error) {
	ids, _ := m.FollowerIDs(ctx, nil, userID)
	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.UserSummary{ID: id})
	}
	return out, nil
}

func (m *memFollows) Following(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error) {
	var out []model.UserSummary
	for k := range m.pairs {
		if k[0] == userID {
			out = append(out, model.UserSummary{ID: k[1]})
		}
	}
	return out, nil
}

// =============================================================================
// REPOSITORY MOCKS
// =============================================================================

type mockVideoRepository struct {
	createFn         func(ctx context.Context, video *model.Video) error
	getByIDFn        func(ctx context.Context, id int64) (*model.Video, error)
	ownerIDFn        func(ctx context.Context, id int64) (int64, error)
	deleteFn         func(ctx context.Context, id int64) error
	incrementViewsFn func(ctx context.Context, id int64) error
	getCardsFn       func(ctx context.Context, ids []int64) ([]model.VideoCard, error)
	listIDsFn        func(ctx context.Context, userID int64) ([]int64, error)
	searchIDsFn      func(ctx context.Context, query string, limit int) ([]int64, error)

	calls []string
}

func (m *mockVideoRepository) Create(ctx context.Context, tx *sqlx.Tx, video *model.Video) error {
	m.calls = append(m.calls, "create")
	if m.createFn != nil {
		return m.createFn(ctx, video)
	}
	video.ID = 1
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrVideoNotFound
}

func (m *mockVideoRepository) OwnerID(ctx context.Context, tx *sqlx.Tx, id int64) (int64, error) {
	if m.ownerIDFn != nil {
		return m.ownerIDFn(ctx, id)
	}
	return 0, model.ErrVideoNotFound
}

func (m *mockVideoRepository) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	m.calls = append(m.calls, "delete")
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockVideoRepository) IncrementViews(ctx context.Context, id int64) error {
	m.calls = append(m.calls, "views")
	if m.incrementViewsFn != nil {
		return m.incrementViewsFn(ctx, id)
	}
	return nil
}

func (m *mockVideoRepository) GetCards(ctx context.Context, ids []int64) ([]model.VideoCard, error) {
	if m.getCardsFn != nil {
		return m.getCardsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockVideoRepository) ListIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	return m.listIDs(ctx, ownerID)
}

func (m *mockVideoRepository) ListIDsLikedBy(ctx context.Context, userID int64) ([]int64, error) {
	return m.listIDs(ctx, userID)
}

func (m *mockVideoRepository) ListIDsBookmarkedBy(ctx context.Context, userID int64) ([]int64, error) {
	return m.listIDs(ctx, userID)
}

func (m *mockVideoRepository) listIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.listIDsFn != nil {
		return m.listIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockVideoRepository) SearchIDs(ctx context.Context, query string, limit int) ([]int64, error) {
	if m.searchIDsFn != nil {
		return m.searchIDsFn(ctx, query, limit)
	}
	return nil, nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, c *model.Comment) error
	getByIDFn      func(ctx context.Context, id int64) (*model.Comment, error)
	listTopLevelFn func(ctx context.Context, videoID, viewerID int64) ([]model.Comment, error)
	listRepliesFn  func(ctx context.Context, parentID, viewerID int64) ([]model.Comment, error)
	deleteThreadFn func(ctx context.Context, id int64) ([]int64, error)

	created []*model.Comment
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.Comment) error {
	m.created = append(m.created, c)
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = 100
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListTopLevel(ctx context.Context, videoID, viewerID int64) ([]model.Comment, error) {
	if m.listTopLevelFn != nil {
		return m.listTopLevelFn(ctx, videoID, viewerID)
	}
	return []model.Comment{}, nil
}

func (m *mockCommentRepository) ListReplies(ctx context.Context, parentID, viewerID int64) ([]model.Comment, error) {
	if m.listRepliesFn != nil {
		return m.listRepliesFn(ctx, parentID, viewerID)
	}
	return []model.Comment{}, nil
}

func (m *mockCommentRepository) DeleteThread(ctx context.Context, tx *sqlx.Tx, id int64) ([]int64, error) {
	if m.deleteThreadFn != nil {
		return m.deleteThreadFn(ctx, id)
	}
	return []int64{id}, nil
}

type mockNotificationRepository struct {
	listFn        func(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	unreadCountFn func(ctx context.Context, userID int64) (int, error)

	calls          []string
	markedIDs      []int64
	purgedComments []int64
	purgedVideo    int64
}

func (m *mockNotificationRepository) Create(ctx context.Context, in model.NotificationIntent) error {
	m.calls = append(m.calls, "create")
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit)
	}
	return []model.Notification{}, nil
}

func (m *mockNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if m.unreadCountFn != nil {
		return m.unreadCountFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, userID int64, ids []int64) error {
	m.calls = append(m.calls, "mark_read")
	m.markedIDs = ids
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	m.calls = append(m.calls, "mark_all_read")
	return nil
}

func (m *mockNotificationRepository) Delete(ctx context.Context, userID, id int64) error {
	m.calls = append(m.calls, "delete")
	return nil
}

func (m *mockNotificationRepository) DeleteAll(ctx context.Context, userID int64) error {
	m.calls = append(m.calls, "delete_all")
	return nil
}

func (m *mockNotificationRepository) DeleteByVideo(ctx context.Context, tx *sqlx.Tx, videoID int64) error {
	m.calls = append(m.calls, "delete_by_video")
	m.purgedVideo = videoID
	return nil
}

func (m *mockNotificationRepository) DeleteByComments(ctx context.Context, tx *sqlx.Tx, ids []int64) error {
	m.calls = append(m.calls, "delete_by_comments")
	m.purgedComments = ids
	return nil
}

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	existsFn        func(ctx context.Context, id int64) (bool, error)
	updateProfileFn func(ctx context.Context, userID int64, bio string, avatarURL, avatarKey *string) error
	statsFn         func(ctx context.Context, userID int64) (*model.ProfileStats, error)
	searchFn        func(ctx context.Context, query string, viewerID int64, limit int) ([]model.UserSummary, error)

	language string
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Exists(ctx context.Context, tx *sqlx.Tx, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID int64, bio string, avatarURL, avatarKey *string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, bio, avatarURL, avatarKey)
	}
	return nil
}

func (m *mockUserRepository) UpdateLanguage(ctx context.Context, userID int64, language string) error {
	m.language = language
	return nil
}

func (m *mockUserRepository) Stats(ctx context.Context, userID int64) (*model.ProfileStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, userID)
	}
	return &model.ProfileStats{}, nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, viewerID int64, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, viewerID, limit)
	}
	return []model.UserSummary{}, nil
}

type mockSignalRepository struct {
	feedFn     func(ctx context.Context, viewerID int64, now time.Time, offset, limit int) ([]model.VideoSignals, error)
	trendingFn func(ctx context.Context, since time.Time) ([]model.VideoSignals, error)
	counts     map[int64]model.VideoCounts
	flags      map[int64]model.ViewerFlags
}

func (m *mockSignalRepository) FeedCandidates(ctx context.Context, viewerID int64, now time.Time, offset, limit int) ([]model.VideoSignals, error) {
	if m.feedFn != nil {
		return m.feedFn(ctx, viewerID, now, offset, limit)
	}
	return nil, nil
}

func (m *mockSignalRepository) TrendingCandidates(ctx context.Context, since time.Time) ([]model.VideoSignals, error) {
	if m.trendingFn != nil {
		return m.trendingFn(ctx, since)
	}
	return nil, nil
}

func (m *mockSignalRepository) Counts(ctx context.Context, ids []int64) (map[int64]model.VideoCounts, error) {
	return m.counts, nil
}

func (m *mockSignalRepository) ViewerFlags(ctx context.Context, viewerID int64, ids []int64) (map[int64]model.ViewerFlags, error) {
	return m.flags, nil
}

// =============================================================================
// MEDIA AND READ MODEL
// =============================================================================

type mockMedia struct {
	uploadErr error
	deleted   []string
	uploads   int
}

func (m *mockMedia) UploadVideo(ctx context.Context, file *model.MediaFile) (*model.UploadResult, error) {
	return m.upload("videos")
}

func (m *mockMedia) UploadAvatar(ctx context.Context, file *model.MediaFile) (*model.UploadResult, error) {
	return m.upload("avatars")
}

func (m *mockMedia) upload(folder string) (*model.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads++
	key := folder + "/new.bin"
	return &model.UploadResult{URL: "/uploads/" + key, Key: key}, nil
}

func (m *mockMedia) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockMedia) DefaultAvatarURL() *string {
	url := "/static/default-avatar.png"
	return &url
}

// stubReader returns one bare card per id, in order.
type stubReader struct {
	requested [][]int64
}

func (r *stubReader) Cards(ctx context.Context, viewerID int64, ids []int64) ([]model.VideoCard, error) {
	r.requested = append(r.requested, ids)
	out := make([]model.VideoCard, len(ids))
	for i, id := range ids {
		out[i].ID = id
	}
	return out, nil
}

var errBoom = errors.New("boom")
