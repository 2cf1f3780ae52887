package content_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/magabrotheeeer/review-aggregator/internal/models"
)

type reviewKey struct {
	titleID   int64
	authorUID string
}

// fakeStore хранилище в памяти. Уникальность отзыва проверяется под мьютексом,
// так же атомарно, как это делает ограничение в базе данных.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	titles   map[int64]*models.Title
	reviews  map[int64]*models.Review
	unique   map[reviewKey]int64
	comments map[int64]*models.Comment
	users    map[string]string
	calls    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		titles:   map[int64]*models.Title{},
		reviews:  map[int64]*models.Review{},
		unique:   map[reviewKey]int64{},
		comments: map[int64]*models.Comment{},
		users:    map[string]string{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeStore) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, call)
}

func (f *fakeStore) CreateTitle(_ context.Context, in models.TitleInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTitle")
	id := f.id()
	t := &models.Title{ID: id, Name: in.Name, Year: in.Year, Genres: []models.Genre{}}
	if in.CategorySlug != "" {
		t.Category = &models.Category{Name: in.CategorySlug, Slug: in.CategorySlug}
	}
	for _, g := range in.GenreSlugs {
		t.Genres = append(t.Genres, models.Genre{Name: g, Slug: g})
	}
	f.titles[id] = t
	return id, nil
}

func (f *fakeStore) UpdateTitle(_ context.Context, id int64, patch models.TitlePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTitle")
	t, ok := f.titles[id]
	if !ok {
		return models.ErrTitleNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Year != nil {
		t.Year = *patch.Year
	}
	return nil
}

func (f *fakeStore) DeleteTitle(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTitle")
	if _, ok := f.titles[id]; !ok {
		return models.ErrTitleNotFound
	}
	delete(f.titles, id)
	return nil
}

func (f *fakeStore) GetTitle(_ context.Context, id int64) (*models.Title, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.titles[id]
	if !ok {
		return nil, models.ErrTitleNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) TitleExists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.titles[id]
	return ok, nil
}

func (f *fakeStore) ListTitles(_ context.Context, _ models.TitleFilter, _ models.Page) ([]*models.Title, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := make([]*models.Title, 0, len(f.titles))
	for _, t := range f.titles {
		res = append(res, t)
	}
	return res, len(res), nil
}

func (f *fakeStore) CreateReview(_ context.Context, r models.Review) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateReview")
	key := reviewKey{titleID: r.TitleID, authorUID: r.AuthorUID}
	if _, ok := f.unique[key]; ok {
		return nil, models.ErrDuplicateReview
	}
	r.ID = f.id()
	r.Author = f.users[r.AuthorUID]
	r.CreatedAt = time.Now()
	f.reviews[r.ID] = &r
	f.unique[key] = r.ID
	cp := r
	return &cp, nil
}

func (f *fakeStore) GetReview(_ context.Context, titleID, reviewID int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return nil, models.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListReviews(_ context.Context, titleID int64, _ models.Page) ([]*models.Review, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*models.Review
	for _, r := range f.reviews {
		if r.TitleID == titleID {
			res = append(res, r)
		}
	}
	return res, len(res), nil
}

func (f *fakeStore) UpdateReview(_ context.Context, reviewID int64, text *string, score *int) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateReview")
	r, ok := f.reviews[reviewID]
	if !ok {
		return nil, models.ErrReviewNotFound
	}
	if text != nil {
		r.Text = *text
	}
	if score != nil {
		r.Score = *score
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) DeleteReview(_ context.Context, reviewID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteReview")
	r, ok := f.reviews[reviewID]
	if !ok {
		return models.ErrReviewNotFound
	}
	delete(f.reviews, reviewID)
	delete(f.unique, reviewKey{titleID: r.TitleID, authorUID: r.AuthorUID})
	return nil
}

func (f *fakeStore) CreateComment(_ context.Context, titleID int64, c models.Comment) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateComment")
	r, ok := f.reviews[c.ReviewID]
	if !ok || r.TitleID != titleID {
		return nil, models.ErrReviewNotFound
	}
	c.ID = f.id()
	c.Author = f.users[c.AuthorUID]
	f.comments[c.ID] = &c
	cp := c
	return &cp, nil
}

func (f *fakeStore) GetComment(_ context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, models.ErrCommentNotFound
	}
	if r, ok := f.reviews[reviewID]; !ok || r.TitleID != titleID {
		return nil, models.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListComments(_ context.Context, _, reviewID int64, _ models.Page) ([]*models.Comment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*models.Comment
	for _, c := range f.comments {
		if c.ReviewID == reviewID {
			res = append(res, c)
		}
	}
	return res, len(res), nil
}

func (f *fakeStore) UpdateComment(_ context.Context, commentID int64, text string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateComment")
	c, ok := f.comments[commentID]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	c.Text = text
	cp := *c
	return &cp, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, commentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteComment")
	if _, ok := f.comments[commentID]; !ok {
		return models.ErrCommentNotFound
	}
	delete(f.comments, commentID)
	return nil
}

func (f *fakeStore) ScoreStats(_ context.Context, titleID int64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, count int64
	for _, r := range f.reviews {
		if r.TitleID == titleID {
			sum += int64(r.Score)
			count++
		}
	}
	return sum, count, nil
}
