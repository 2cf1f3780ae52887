package content_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/review-aggregator/internal/lib/apperr"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
	"github.com/magabrotheeeer/review-aggregator/internal/services/content"
)

var (
	admin     = policy.Caller{ID: "uid-admin", Username: "admin", Role: policy.RoleAdmin, Authenticated: true}
	moderator = policy.Caller{ID: "uid-mod", Username: "mod", Role: policy.RoleModerator, Authenticated: true}
	alice     = policy.Caller{ID: "uid-alice", Username: "alice", Role: policy.RoleUser, Authenticated: true}
	bob       = policy.Caller{ID: "uid-bob", Username: "bob", Role: policy.RoleUser, Authenticated: true}
)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newService(t *testing.T) (*content.Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	for _, c := range []policy.Caller{admin, moderator, alice, bob} {
		store.users[c.ID] = c.Username
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return content.New(log, store, content.WithClock(fixedClock)), store
}

func createTitle(t *testing.T, svc *content.Service) *models.Title {
	t.Helper()
	title, err := svc.CreateTitle(context.Background(), admin, models.TitleInput{
		Name: "Solaris", Year: 1961, CategorySlug: "books", GenreSlugs: []string{"sci-fi"},
	})
	require.NoError(t, err)
	return title
}

func TestCreateTitle(t *testing.T) {
	tests := []struct {
		name    string
		caller  policy.Caller
		year    int
		wantErr error
	}{
		{name: "admin", caller: admin, year: 2025},
		{name: "future year", caller: admin, year: 2026, wantErr: models.ErrInvalidYear},
		{name: "moderator", caller: moderator, year: 2000, wantErr: policy.ErrPermissionDenied},
		{name: "anonymous", caller: policy.Anonymous, year: 2000, wantErr: policy.ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)
			title, err := svc.CreateTitle(context.Background(), tt.caller, models.TitleInput{Name: "Dune", Year: tt.year})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, store.called("CreateTitle"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Dune", title.Name)
			assert.Nil(t, title.Rating)
		})
	}
}

func TestUpdateTitle_RevalidatesYear(t *testing.T) {
	svc, _ := newService(t)
	title := createTitle(t, svc)

	future := 2030
	_, err := svc.UpdateTitle(context.Background(), admin, title.ID, models.TitlePatch{Year: &future})
	assert.True(t, errors.Is(err, models.ErrInvalidYear))

	name := "Solaris (reissue)"
	updated, err := svc.UpdateTitle(context.Background(), admin, title.ID, models.TitlePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 1961, updated.Year)
}

func TestGetTitle_Rating(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	title := createTitle(t, svc)

	got, err := svc.GetTitle(ctx, policy.Anonymous, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)

	_, err = svc.CreateReview(ctx, alice, title.ID, "great", 8)
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, bob, title.ID, "masterpiece", 10)
	require.NoError(t, err)

	got, err = svc.GetTitle(ctx, policy.Anonymous, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 9.0, *got.Rating, 1e-9)
}

func TestCreateReview(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	title := createTitle(t, svc)

	for _, score := range []int{0, 11, -1} {
		_, err := svc.CreateReview(ctx, alice, title.ID, "text", score)
		assert.True(t, errors.Is(err, models.ErrInvalidScore), "score %d", score)
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	}
	assert.False(t, store.called("CreateReview"))

	_, err := svc.CreateReview(ctx, policy.Anonymous, title.ID, "text", 5)
	assert.True(t, errors.Is(err, policy.ErrNotAuthenticated))

	_, err = svc.CreateReview(ctx, alice, 999, "text", 5)
	assert.True(t, errors.Is(err, models.ErrTitleNotFound))

	review, err := svc.CreateReview(ctx, alice, title.ID, "text", 1)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, review.AuthorUID)
	assert.Equal(t, "alice", review.Author)

	_, err = svc.CreateReview(ctx, alice, title.ID, "again", 10)
	assert.True(t, errors.Is(err, models.ErrDuplicateReview))
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestCreateReview_ConcurrentDuplicate(t *testing.T) {
	svc, _ := newService(t)
	title := createTitle(t, svc)

	const attempts = 2
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	start := make(chan struct{})
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CreateReview(context.Background(), alice, title.ID, "same pair", 7)
		}()
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrDuplicateReview):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestUpdateReview(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	title := createTitle(t, svc)
	review, err := svc.CreateReview(ctx, alice, title.ID, "ok", 6)
	require.NoError(t, err)

	bad := 11
	_, err = svc.UpdateReview(ctx, alice, title.ID, review.ID, nil, &bad)
	assert.True(t, errors.Is(err, models.ErrInvalidScore))

	text := "changed"
	_, err = svc.UpdateReview(ctx, bob, title.ID, review.ID, &text, nil)
	assert.True(t, errors.Is(err, policy.ErrPermissionDenied))
	assert.False(t, store.called("UpdateReview"))

	score := 9
	updated, err := svc.UpdateReview(ctx, alice, title.ID, review.ID, &text, &score)
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Text)
	assert.Equal(t, 9, updated.Score)

	_, err = svc.UpdateReview(ctx, alice, title.ID+100, review.ID, &text, nil)
	assert.True(t, errors.Is(err, models.ErrReviewNotFound))

	empty := " "
	_, err = svc.UpdateReview(ctx, alice, title.ID, review.ID, &empty, nil)
	assert.True(t, errors.Is(err, models.ErrEmptyText))
}

func TestUpdateReview_PermissionBeforeValues(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	title := createTitle(t, svc)
	review, err := svc.CreateReview(ctx, alice, title.ID, "ok", 6)
	require.NoError(t, err)

	bad, empty := 42, ""
	_, err = svc.UpdateReview(ctx, bob, title.ID, review.ID, &empty, &bad)
	assert.True(t, errors.Is(err, policy.ErrPermissionDenied), "got %v", err)
	assert.False(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.UpdateReview(ctx, policy.Anonymous, title.ID, review.ID, nil, &bad)
	assert.True(t, errors.Is(err, policy.ErrNotAuthenticated), "got %v", err)
	assert.False(t, store.called("UpdateReview"))
}

func TestDeleteReview_Permissions(t *testing.T) {
	tests := []struct {
		name    string
		caller  policy.Caller
		wantErr error
	}{
		{name: "author", caller: alice},
		{name: "moderator", caller: moderator},
		{name: "admin", caller: admin},
		{name: "other user", caller: bob, wantErr: policy.ErrPermissionDenied},
		{name: "anonymous", caller: policy.Anonymous, wantErr: policy.ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)
			ctx := context.Background()
			title := createTitle(t, svc)
			review, err := svc.CreateReview(ctx, alice, title.ID, "mine", 5)
			require.NoError(t, err)

			err = svc.DeleteReview(ctx, tt.caller, title.ID, review.ID)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.False(t, store.called("DeleteReview"))
				return
			}
			require.NoError(t, err)
			_, err = svc.GetReview(ctx, policy.Anonymous, title.ID, review.ID)
			assert.True(t, errors.Is(err, models.ErrReviewNotFound))
		})
	}
}

func TestListReviews_UnknownTitle(t *testing.T) {
	svc, _ := newService(t)
	_, _, err := svc.ListReviews(context.Background(), policy.Anonymous, 42, models.Page{})
	assert.True(t, errors.Is(err, models.ErrTitleNotFound))
}

func TestComments(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	title := createTitle(t, svc)
	other := createTitle(t, svc)
	review, err := svc.CreateReview(ctx, alice, title.ID, "review", 7)
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, bob, other.ID, review.ID, "wrong title")
	assert.True(t, errors.Is(err, models.ErrReviewNotFound))

	_, err = svc.CreateComment(ctx, policy.Anonymous, title.ID, review.ID, "hi")
	assert.True(t, errors.Is(err, policy.ErrNotAuthenticated))

	comment, err := svc.CreateComment(ctx, bob, title.ID, review.ID, "agree")
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Author)

	comments, total, err := svc.ListComments(ctx, policy.Anonymous, title.ID, review.ID, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, comments, 1)

	_, _, err = svc.ListComments(ctx, policy.Anonymous, other.ID, review.ID, models.Page{})
	assert.True(t, errors.Is(err, models.ErrReviewNotFound))

	_, err = svc.UpdateComment(ctx, alice, title.ID, review.ID, comment.ID, "hijack")
	assert.True(t, errors.Is(err, policy.ErrPermissionDenied))
	_, err = svc.UpdateComment(ctx, alice, title.ID, review.ID, comment.ID, "")
	assert.True(t, errors.Is(err, policy.ErrPermissionDenied), "got %v", err)
	assert.False(t, store.called("UpdateComment"))

	_, err = svc.UpdateComment(ctx, bob, title.ID, review.ID, comment.ID, "  ")
	assert.True(t, errors.Is(err, models.ErrEmptyText))

	updated, err := svc.UpdateComment(ctx, bob, title.ID, review.ID, comment.ID, "strongly agree")
	require.NoError(t, err)
	assert.Equal(t, "strongly agree", updated.Text)

	got, err := svc.GetComment(ctx, policy.Anonymous, title.ID, review.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "strongly agree", got.Text)

	require.NoError(t, svc.DeleteComment(ctx, moderator, title.ID, review.ID, comment.ID))
	_, err = svc.GetComment(ctx, policy.Anonymous, title.ID, review.ID, comment.ID)
	assert.True(t, errors.Is(err, models.ErrCommentNotFound))
}
