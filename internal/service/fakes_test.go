package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/minutes"
	"github.com/sakif/my-applications/internal/model"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	nextID  int
	lookups int

	// set to simulate database failures
	getErr    error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return apperror.Conflict("Email already registered")
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	stored := *u
	f.byID[u.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.byID, id)
	return nil
}

// fakeActivityRepo records the arguments it was called with.
type fakeActivityRepo struct {
	recent     model.RecentActivity
	usageTab   string
	favourite  model.Favourite
	suggestion model.Suggestion
	keep       int
	limit      int
	cleared    []string
	err        error
}

func (f *fakeActivityRepo) TouchRecent(_ context.Context, entry model.RecentActivity, keep int) ([]model.RecentActivity, error) {
	f.recent, f.keep = entry, keep
	return []model.RecentActivity{entry}, f.err
}

func (f *fakeActivityRepo) ListRecent(_ context.Context, _ string, limit int) ([]model.RecentActivity, error) {
	f.limit = limit
	return []model.RecentActivity{}, f.err
}

func (f *fakeActivityRepo) ClearRecent(context.Context, string) error {
	f.cleared = append(f.cleared, "recent")
	return f.err
}

func (f *fakeActivityRepo) IncrementUsage(_ context.Context, _ string, tab string, limit int) ([]model.ToolUsage, error) {
	f.usageTab, f.limit = tab, limit
	return []model.ToolUsage{{Tab: tab, Count: 1}}, f.err
}

func (f *fakeActivityRepo) ListUsage(_ context.Context, _ string, limit int) ([]model.ToolUsage, error) {
	f.limit = limit
	return []model.ToolUsage{}, f.err
}

func (f *fakeActivityRepo) ClearUsage(context.Context, string) error {
	f.cleared = append(f.cleared, "usage")
	return f.err
}

func (f *fakeActivityRepo) ToggleFavourite(_ context.Context, fav model.Favourite) ([]model.Favourite, error) {
	f.favourite = fav
	return []model.Favourite{fav}, f.err
}

func (f *fakeActivityRepo) ListFavourites(context.Context, string) ([]model.Favourite, error) {
	return []model.Favourite{}, f.err
}

func (f *fakeActivityRepo) ClearFavourites(context.Context, string) error {
	f.cleared = append(f.cleared, "favourites")
	return f.err
}

func (f *fakeActivityRepo) AddSuggestion(_ context.Context, s model.Suggestion, keep int) ([]model.Suggestion, error) {
	f.suggestion, f.keep = s, keep
	return []model.Suggestion{s}, f.err
}

func (f *fakeActivityRepo) ListSuggestions(_ context.Context, _ string, limit int) ([]model.Suggestion, error) {
	f.limit = limit
	return []model.Suggestion{}, f.err
}

func (f *fakeActivityRepo) ClearSuggestions(context.Context, string) error {
	f.cleared = append(f.cleared, "suggestions")
	return f.err
}

// fakeSummarizer returns text after delay, or blocks until the context ends
// when block is set.
type fakeSummarizer struct {
	mu    sync.Mutex
	got   minutes.Request
	text  string
	err   error
	block bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req minutes.Request) (string, error) {
	f.mu.Lock()
	f.got = req
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeSummarizer) request() minutes.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}

type listingSummarizer struct {
	fakeSummarizer
	models []string
}

func (l *listingSummarizer) ListModels(context.Context) ([]string, error) {
	return l.models, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, minutes.Audio) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeMinutesRepo struct {
	mu    sync.Mutex
	saved []model.MinutesRecord
	err   error
}

func (f *fakeMinutesRepo) SaveMinutes(_ context.Context, rec *model.MinutesRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *rec)
	return nil
}

type fakeArtifacts struct {
	files map[string]string
	err   error
}

func (f *fakeArtifacts) WritePDF(name, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.files == nil {
		f.files = make(map[string]string)
	}
	f.files[name] = content
	return "/output/" + name, nil
}
