package service

import (
	"context"
	"strings"

	"github.com/sakif/my-applications/internal/model"
	"github.com/sakif/my-applications/internal/repository"
)

// TabInput is the body of POST /user/recent and POST /user/usage. Usage
// ignores Name.
type TabInput struct {
	Tab  string `json:"tab"  validate:"required,max=80"`
	Name string `json:"name" validate:"max=120"`
}

type FavouriteInput struct {
	Tab  string  `json:"tab"  validate:"required,max=80"`
	Name string  `json:"name" validate:"required,max=120"`
	Icon *string `json:"icon" validate:"omitempty,max=255"`
}

type SuggestionInput struct {
	ToolIdea string  `json:"toolIdea" validate:"required,max=255"`
	Note     *string `json:"note"     validate:"omitempty,max=1000"`
}

// ActivityService owns the four bounded per-user collections: recent tools,
// usage counters, favourites and the suggestion box.
type ActivityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// TouchRecent moves tab to the top of the user's recent list.
func (s *ActivityService) TouchRecent(ctx context.Context, userID string, in TabInput) ([]model.RecentActivity, error) {
	in.Tab = strings.TrimSpace(in.Tab)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		in.Name = in.Tab
	}

	return s.repo.TouchRecent(ctx, model.RecentActivity{
		UserID: userID,
		Tab:    in.Tab,
		Name:   in.Name,
	}, model.RecentLimit)
}

func (s *ActivityService) Recent(ctx context.Context, userID string) ([]model.RecentActivity, error) {
	return s.repo.ListRecent(ctx, userID, model.RecentLimit)
}

func (s *ActivityService) ClearRecent(ctx context.Context, userID string) ([]model.RecentActivity, error) {
	if err := s.repo.ClearRecent(ctx, userID); err != nil {
		return nil, err
	}
	return []model.RecentActivity{}, nil
}

// RecordUsage increments the counter for tab by one.
func (s *ActivityService) RecordUsage(ctx context.Context, userID string, in TabInput) ([]model.ToolUsage, error) {
	in.Tab = strings.TrimSpace(in.Tab)
	in.Name = ""
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return s.repo.IncrementUsage(ctx, userID, in.Tab, model.UsageListLimit)
}

func (s *ActivityService) Usage(ctx context.Context, userID string) ([]model.ToolUsage, error) {
	return s.repo.ListUsage(ctx, userID, model.UsageListLimit)
}

func (s *ActivityService) ClearUsage(ctx context.Context, userID string) ([]model.ToolUsage, error) {
	if err := s.repo.ClearUsage(ctx, userID); err != nil {
		return nil, err
	}
	return []model.ToolUsage{}, nil
}

// ToggleFavourite adds tab to the favourites or removes it if present.
func (s *ActivityService) ToggleFavourite(ctx context.Context, userID string, in FavouriteInput) ([]model.Favourite, error) {
	in.Tab = strings.TrimSpace(in.Tab)
	in.Name = strings.TrimSpace(in.Name)
	in.Icon = trimOptional(in.Icon)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return s.repo.ToggleFavourite(ctx, model.Favourite{
		UserID: userID,
		Tab:    in.Tab,
		Name:   in.Name,
		Icon:   in.Icon,
	})
}

func (s *ActivityService) Favourites(ctx context.Context, userID string) ([]model.Favourite, error) {
	return s.repo.ListFavourites(ctx, userID)
}

func (s *ActivityService) ClearFavourites(ctx context.Context, userID string) ([]model.Favourite, error) {
	if err := s.repo.ClearFavourites(ctx, userID); err != nil {
		return nil, err
	}
	return []model.Favourite{}, nil
}

// AddSuggestion appends to the suggestion box, keeping the newest
// model.SuggestionLimit entries.
func (s *ActivityService) AddSuggestion(ctx context.Context, userID string, in SuggestionInput) ([]model.Suggestion, error) {
	in.ToolIdea = strings.TrimSpace(in.ToolIdea)
	in.Note = trimOptional(in.Note)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return s.repo.AddSuggestion(ctx, model.Suggestion{
		UserID:   userID,
		ToolIdea: in.ToolIdea,
		Note:     in.Note,
	}, model.SuggestionLimit)
}

func (s *ActivityService) Suggestions(ctx context.Context, userID string) ([]model.Suggestion, error) {
	return s.repo.ListSuggestions(ctx, userID, model.SuggestionLimit)
}

func (s *ActivityService) ClearSuggestions(ctx context.Context, userID string) ([]model.Suggestion, error) {
	if err := s.repo.ClearSuggestions(ctx, userID); err != nil {
		return nil, err
	}
	return []model.Suggestion{}, nil
}
