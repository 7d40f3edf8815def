package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/client/store"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/dmitrijs2005/artwall/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeClient struct {
	calls atomic.Int32

	ListRet []models.Work
	ListErr error

	CreateErr  error
	LastCreate models.UploadRequest

	DeleteWorkErr error

	LikeFn    func(workID, userID string) (*models.LikeResult, error)
	LikeCtxFn func(ctx context.Context, workID, userID string) (*models.LikeResult, error)

	PinRet *models.PinResult
	PinErr error

	AddCommentErr  error
	LastNewComment models.NewComment

	DeleteCommentErr  error
	LastDeleteComment [3]string

	PingErr error
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Ping(context.Context) error {
	f.calls.Add(1)
	return f.PingErr
}

func (f *fakeClient) ListWorks(context.Context) ([]models.Work, error) {
	f.calls.Add(1)
	return f.ListRet, f.ListErr
}

func (f *fakeClient) CreateWork(_ context.Context, r models.UploadRequest) (*models.Work, error) {
	f.calls.Add(1)
	f.LastCreate = r
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Work{ID: "new", Title: r.Title, AuthorName: r.AuthorName, Images: []string{"/api/uploads/new_0.png"}}, nil
}

func (f *fakeClient) DeleteWork(context.Context, string) error {
	f.calls.Add(1)
	return f.DeleteWorkErr
}

func (f *fakeClient) ToggleLike(ctx context.Context, workID, userID string) (*models.LikeResult, error) {
	f.calls.Add(1)
	if f.LikeCtxFn != nil {
		return f.LikeCtxFn(ctx, workID, userID)
	}
	return f.LikeFn(workID, userID)
}

func (f *fakeClient) TogglePin(context.Context, string) (*models.PinResult, error) {
	f.calls.Add(1)
	return f.PinRet, f.PinErr
}

func (f *fakeClient) AddComment(_ context.Context, workID string, c models.NewComment) (*models.Comment, error) {
	f.calls.Add(1)
	f.LastNewComment = c
	if f.AddCommentErr != nil {
		return nil, f.AddCommentErr
	}
	return &models.Comment{ID: "srv-c1", WorkID: workID, Content: c.Content, AuthorUserID: c.UserID, AuthorDisplayName: c.DisplayName}, nil
}

func (f *fakeClient) DeleteComment(_ context.Context, workID, commentID, userID string) error {
	f.calls.Add(1)
	f.LastDeleteComment = [3]string{workID, commentID, userID}
	return f.DeleteCommentErr
}

func (f *fakeClient) AdminLogin(context.Context, []byte) (string, error) { return "", nil }

type fakeIdentity struct{}

func (fakeIdentity) ResolveUserID(context.Context) (string, error)      { return "user_1", nil }
func (fakeIdentity) ResolveDisplayName(context.Context) (string, error) { return "Ann", nil }
func (fakeIdentity) RealName(context.Context) (string, error)           { return "Anna K", nil }

type fakeAuth struct {
	privileged bool
	downgrades int
	lastReason error
}

func (a *fakeAuth) IsPrivileged() bool { return a.privileged }
func (a *fakeAuth) Downgrade(_ context.Context, reason error) {
	a.downgrades++
	a.lastReason = reason
	a.privileged = false
}

// ---- helpers ----

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func setup(t *testing.T, works ...models.Work) (*galleryService, *fakeClient, *store.Store, *fakeAuth) {
	t.Helper()
	fc := &fakeClient{}
	st := store.New()
	st.LoadAll(works)
	auth := &fakeAuth{}
	svc := NewGalleryService(fc, st, fakeIdentity{}, auth, logging.Nop()).(*galleryService)
	return svc, fc, st, auth
}

func apiErr(kind error) error { return fmt.Errorf("%w: test", kind) }

// ---- tests ----

func TestRefresh(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "old"})
	fc.ListRet = []models.Work{{ID: "a"}, {ID: "b"}}

	require.NoError(t, svc.Refresh(context.Background()))
	require.Equal(t, 2, st.Len())
	_, ok := st.Get("old")
	require.False(t, ok)

	fc.ListErr = apiErr(common.ErrServer)
	require.ErrorIs(t, svc.Refresh(context.Background()), common.ErrServer)
	require.Equal(t, 2, st.Len(), "failed refresh leaves the store alone")
}

func TestToggleLike_AppliesServerAnswer(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a", LikeCount: 3})
	fc.LikeFn = func(workID, userID string) (*models.LikeResult, error) {
		require.Equal(t, "user_1", userID)
		return &models.LikeResult{Likes: 7, Liked: true}, nil
	}

	res, err := svc.ToggleLike(context.Background(), "a")
	require.NoError(t, err)
	require.Equal(t, 7, res.Likes)

	a, _ := st.Get("a")
	require.Equal(t, 7, a.LikeCount)
	require.True(t, a.LikedByUser("user_1"))
}

func TestToggleLike_FinalStateIsLastResponse(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a"})
	answers := []models.LikeResult{{Likes: 1, Liked: true}, {Likes: 0, Liked: false}, {Likes: 5, Liked: true}}
	i := 0
	fc.LikeFn = func(string, string) (*models.LikeResult, error) {
		r := answers[i]
		i++
		return &r, nil
	}

	for range answers {
		_, err := svc.ToggleLike(context.Background(), "a")
		require.NoError(t, err)
	}
	a, _ := st.Get("a")
	require.Equal(t, 5, a.LikeCount)
	require.True(t, a.LikedByUser("user_1"))
}

func TestToggleLike_FailureLeavesStore(t *testing.T) {
	for _, kind := range []error{common.ErrNetwork, common.ErrNotFound, common.ErrServer} {
		svc, fc, st, _ := setup(t, models.Work{ID: "a", LikeCount: 2})
		fc.LikeFn = func(string, string) (*models.LikeResult, error) { return nil, apiErr(kind) }
		v := st.Version()

		_, err := svc.ToggleLike(context.Background(), "a")
		require.ErrorIs(t, err, kind)
		require.Equal(t, v, st.Version())
		a, _ := st.Get("a")
		require.Equal(t, 2, a.LikeCount)
	}
}

func TestToggleLike_AbsentLocallyIsNotAnError(t *testing.T) {
	svc, fc, _, _ := setup(t)
	fc.LikeFn = func(string, string) (*models.LikeResult, error) { return &models.LikeResult{Likes: 1, Liked: true}, nil }

	res, err := svc.ToggleLike(context.Background(), "ghost")
	require.NoError(t, err)
	require.True(t, res.Liked)
}

func TestToggleLike_DuplicateInFlightSuppressed(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a"})
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	fc.LikeFn = func(string, string) (*models.LikeResult, error) {
		started <- struct{}{}
		<-release
		return &models.LikeResult{Likes: 1, Liked: true}, nil
	}

	var wg sync.WaitGroup
	results := make([]*models.LikeResult, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.ToggleLike(context.Background(), "a")
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = svc.ToggleLike(context.Background(), "a")
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), fc.calls.Load())
	require.Equal(t, results[0], results[1])
	require.NotSame(t, results[0], results[1])
	a, _ := st.Get("a")
	require.Equal(t, 1, a.LikeCount)
}

func TestToggleLike_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a"})
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	fc.LikeCtxFn = func(ctx context.Context, _, _ string) (*models.LikeResult, error) {
		started <- struct{}{}
		select {
		case <-release:
			return &models.LikeResult{Likes: 2, Liked: true}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	var firstErr error
	var second *models.LikeResult
	var secondErr error

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.ToggleLike(firstCtx, "a")
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondErr = svc.ToggleLike(context.Background(), "a")
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.ErrorIs(t, firstErr, context.Canceled)
	require.NoError(t, secondErr)
	require.Equal(t, &models.LikeResult{Likes: 2, Liked: true}, second)
	require.Equal(t, int32(1), fc.calls.Load())
	a, _ := st.Get("a")
	require.Equal(t, 2, a.LikeCount)
}

func TestPostComment(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a"})

	_, err := svc.PostComment(context.Background(), "a", "")
	require.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.PostComment(context.Background(), "a", "   ")
	require.ErrorIs(t, err, common.ErrValidation)
	require.Zero(t, fc.calls.Load())

	c, err := svc.PostComment(context.Background(), "a", "  hello ")
	require.NoError(t, err)
	require.Equal(t, "hello", c.Content)
	require.Equal(t, models.NewComment{Content: "hello", UserID: "user_1", DisplayName: "Ann"}, fc.LastNewComment)

	a, _ := st.Get("a")
	require.Equal(t, 1, a.CommentCount())
	require.Equal(t, "hello", a.Comments[0].Content)
	require.Equal(t, "srv-c1", a.Comments[0].ID)
}

func TestPostComment_TooLong(t *testing.T) {
	svc, fc, _, _ := setup(t, models.Work{ID: "a"})
	long := make([]rune, models.MaxCommentRunes+1)
	for i := range long {
		long[i] = 'ж'
	}
	_, err := svc.PostComment(context.Background(), "a", string(long))
	require.ErrorIs(t, err, common.ErrValidation)
	require.Zero(t, fc.calls.Load())

	_, err = svc.PostComment(context.Background(), "a", string(long[:models.MaxCommentRunes]))
	require.NoError(t, err)
}

func TestPostComment_FailureLeavesStore(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a"})
	fc.AddCommentErr = apiErr(common.ErrNotFound)

	_, err := svc.PostComment(context.Background(), "a", "hi")
	require.ErrorIs(t, err, common.ErrNotFound)
	a, ok := st.Get("a")
	require.True(t, ok, "one 404 does not drop the work")
	require.Zero(t, a.CommentCount())
}

func TestDeleteComment(t *testing.T) {
	svc, fc, st, auth := setup(t, models.Work{ID: "a", Comments: []models.Comment{{ID: "c1", AuthorUserID: "user_1"}}})

	require.NoError(t, svc.DeleteComment(context.Background(), "a", "c1"))
	require.Equal(t, [3]string{"a", "c1", "user_1"}, fc.LastDeleteComment)
	a, _ := st.Get("a")
	require.Zero(t, a.CommentCount())

	st.AppendComment("a", models.Comment{ID: "c2"})
	auth.privileged = true
	fc.DeleteCommentErr = apiErr(common.ErrUnauthorized)
	err := svc.DeleteComment(context.Background(), "a", "c2")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.Equal(t, 1, auth.downgrades)
	_, ok := st.Comment("a", "c2")
	require.True(t, ok)
}

func TestDeleteWork_RequiresPrivilege(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "a"})

	err := svc.DeleteWork(context.Background(), "a")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.Zero(t, fc.calls.Load())
	require.Equal(t, 1, st.Len())
}

func TestDeleteWork_ExpiredTokenDowngrades(t *testing.T) {
	svc, fc, st, auth := setup(t, models.Work{ID: "a"})
	auth.privileged = true
	fc.DeleteWorkErr = apiErr(common.ErrUnauthorized)

	err := svc.DeleteWork(context.Background(), "a")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.False(t, auth.privileged)
	require.True(t, errors.Is(auth.lastReason, common.ErrUnauthorized))
	_, ok := st.Get("a")
	require.True(t, ok)
}

func TestDeleteWork_Success(t *testing.T) {
	svc, _, st, auth := setup(t, models.Work{ID: "a"}, models.Work{ID: "b"})
	auth.privileged = true

	require.NoError(t, svc.DeleteWork(context.Background(), "a"))
	_, ok := st.Get("a")
	require.False(t, ok)
	require.Equal(t, 1, st.Len())
}

func TestTogglePin_RefetchesList(t *testing.T) {
	svc, fc, st, auth := setup(t, models.Work{ID: "a"}, models.Work{ID: "b"})
	auth.privileged = true
	fc.PinRet = &models.PinResult{Pinned: true}
	fc.ListRet = []models.Work{{ID: "b", IsPinned: true}, {ID: "a"}}

	pinned, err := svc.TogglePin(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, pinned)
	require.Equal(t, int32(2), fc.calls.Load(), "pin plus one list call")

	snap := st.Snapshot()
	require.Equal(t, "b", snap[0].ID)
	require.True(t, snap[0].IsPinned)
}

func TestTogglePin_RefetchFailureKeepsLocalFlag(t *testing.T) {
	svc, fc, st, auth := setup(t, models.Work{ID: "a"}, models.Work{ID: "b"})
	auth.privileged = true
	fc.PinRet = &models.PinResult{Pinned: true}
	fc.ListErr = apiErr(common.ErrNetwork)

	pinned, err := svc.TogglePin(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, pinned)
	b, _ := st.Get("b")
	require.True(t, b.IsPinned)
	require.Equal(t, "a", st.Snapshot()[0].ID, "order stays stale until a refresh succeeds")
}

func TestTogglePin_Forbidden(t *testing.T) {
	svc, fc, st, auth := setup(t, models.Work{ID: "a"})
	auth.privileged = true
	fc.PinErr = apiErr(common.ErrUnauthorized)

	_, err := svc.TogglePin(context.Background(), "a")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.False(t, auth.privileged)
	a, _ := st.Get("a")
	require.False(t, a.IsPinned)
}

func TestUploadWork_SixImagesNoNetwork(t *testing.T) {
	svc, fc, st, _ := setup(t)
	req := models.UploadRequest{Title: "t"}
	for i := 0; i < 6; i++ {
		req.Images = append(req.Images, models.Image{Filename: "a.png", Content: pngHeader})
	}

	_, err := svc.UploadWork(context.Background(), req)
	require.ErrorIs(t, err, common.ErrValidation)
	require.Zero(t, fc.calls.Load())
	require.Zero(t, st.Len())
}

func TestUploadWork_Success(t *testing.T) {
	svc, fc, st, _ := setup(t, models.Work{ID: "old"})
	req := models.UploadRequest{
		Title:  "  Sunset ",
		Images: []models.Image{{Filename: "photo", Content: pngHeader}},
	}

	w, err := svc.UploadWork(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "new", w.ID)
	require.Equal(t, "Sunset", fc.LastCreate.Title)
	require.Equal(t, "Ann", fc.LastCreate.AuthorName)
	require.Equal(t, "Anna K", fc.LastCreate.AuthorRealName)
	require.Equal(t, "photo.png", fc.LastCreate.Images[0].Filename)
	require.Equal(t, "new", st.Snapshot()[0].ID)
}

func TestUploadWork_ServerFailure(t *testing.T) {
	svc, fc, st, _ := setup(t)
	fc.CreateErr = apiErr(common.ErrServer)

	_, err := svc.UploadWork(context.Background(), models.UploadRequest{
		Title:  "t",
		Images: []models.Image{{Filename: "a.png", Content: pngHeader}},
	})
	require.ErrorIs(t, err, common.ErrServer)
	require.Zero(t, st.Len())
}

func TestCanDeleteComment(t *testing.T) {
	c := models.Comment{AuthorUserID: "user_1"}
	require.True(t, CanDeleteComment(&fakeAuth{}, "user_1", c))
	require.False(t, CanDeleteComment(&fakeAuth{}, "user_2", c))
	require.True(t, CanDeleteComment(&fakeAuth{privileged: true}, "user_2", c))
	require.False(t, CanDeleteComment(nil, "", models.Comment{}))
}
