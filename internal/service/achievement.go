package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/coachflow/internal/metrics"
	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/repository"
	"github.com/templui/coachflow/internal/validation"
)

// EvaluationResult is what a single evaluation pass produced for a client.
type EvaluationResult struct {
	NewAchievements []model.AwardedAchievement   `json:"newAchievements"`
	UpdatedProgress []*model.AchievementProgress `json:"updatedProgress"`
}

type AchievementService struct {
	achievements repository.AchievementRepository
	progress     repository.ProgressRepository
	awards       repository.AwardRepository
	clients      repository.ClientRepository
	evaluator    *CriteriaEvaluator
	clock        clock
}

func NewAchievementService(
	achievements repository.AchievementRepository,
	progress repository.ProgressRepository,
	awards repository.AwardRepository,
	clients repository.ClientRepository,
	activity repository.ActivityRepository,
	loc *time.Location,
) *AchievementService {
	return &AchievementService{
		achievements: achievements,
		progress:     progress,
		awards:       awards,
		clients:      clients,
		evaluator:    NewCriteriaEvaluator(activity),
		clock:        newClock(loc),
	}
}

// Evaluate recomputes progress for every active achievement the client has
// not yet earned and awards those whose target is met. The first store error
// aborts the pass; rows already written stay written.
func (s *AchievementService) Evaluate(ctx context.Context, clientID, actionHint string) (*EvaluationResult, error) {
	result, err := s.evaluate(ctx, clientID, actionHint)
	metrics.RecordEvaluation(err)
	return result, err
}

func (s *AchievementService) evaluate(ctx context.Context, clientID, actionHint string) (*EvaluationResult, error) {
	err := validation.Required("client_id", clientID)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.ByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	defs, err := s.achievements.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	earned, err := s.awards.EarnedIDs(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}

	today := s.clock.today()
	now := s.clock.stamp()

	// Several definitions usually share a criteria type; measure each once.
	values := make(map[model.CriteriaType]int)

	result := &EvaluationResult{
		NewAchievements: []model.AwardedAchievement{},
		UpdatedProgress: []*model.AchievementProgress{},
	}

	for _, def := range defs {
		if earned[def.ID] {
			continue
		}

		if !def.CriteriaType.Valid() {
			slog.Warn("skipping achievement with unknown criteria type",
				"achievement_id", def.ID,
				"criteria_type", def.CriteriaType,
			)
			continue
		}

		value, ok := values[def.CriteriaType]
		if !ok {
			value, err = s.evaluator.Value(ctx, client, def.CriteriaType, today)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate %s: %w", def.CriteriaType, err)
			}
			values[def.CriteriaType] = value
		}

		progress := &model.AchievementProgress{
			ID:            uuid.New().String(),
			ClientID:      clientID,
			AchievementID: def.ID,
			CurrentValue:  value,
			TargetValue:   def.CriteriaValue,
			LastUpdated:   now,
		}

		err = s.progress.Upsert(ctx, progress)
		if err != nil {
			return nil, fmt.Errorf("failed to save progress for %s: %w", def.ID, err)
		}
		result.UpdatedProgress = append(result.UpdatedProgress, progress)

		if value < def.CriteriaValue {
			continue
		}

		inserted, err := s.awards.Award(ctx, &model.EarnedAchievement{
			ID:            uuid.New().String(),
			ClientID:      clientID,
			AchievementID: def.ID,
			ProgressValue: value,
			EarnedAt:      now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to award %s: %w", def.ID, err)
		}

		// A concurrent evaluation already recorded it.
		if !inserted {
			continue
		}

		metrics.RecordAward(string(def.CriteriaType))
		result.NewAchievements = append(result.NewAchievements, model.AwardedAchievement{
			AchievementDefinition: *def,
			EarnedAt:              now,
		})
	}

	slog.Info("achievements evaluated",
		"client_id", clientID,
		"action_type", actionHint,
		"evaluated", len(result.UpdatedProgress),
		"awarded", len(result.NewAchievements),
	)

	return result, nil
}

// ProgressReport is a client's stored progress alongside what they have
// already earned.
type ProgressReport struct {
	Progress []*model.AchievementProgress `json:"progress"`
	Earned   []model.AwardedAchievement   `json:"earned"`
}

// Progress lists the stored progress snapshots and earned achievements for a
// client. Awards whose definition has since been removed are left out.
func (s *AchievementService) Progress(ctx context.Context, clientID string) (*ProgressReport, error) {
	err := validation.Required("client_id", clientID)
	if err != nil {
		return nil, err
	}

	progress, err := s.progress.ByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	awards, err := s.awards.ByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned achievements: %w", err)
	}

	report := &ProgressReport{
		Progress: []*model.AchievementProgress{},
		Earned:   []model.AwardedAchievement{},
	}
	report.Progress = append(report.Progress, progress...)

	for _, award := range awards {
		def, err := s.achievements.ByID(ctx, award.AchievementID)
		if errors.Is(err, repository.ErrAchievementNotFound) {
			slog.Warn("earned achievement has no definition",
				"client_id", clientID,
				"achievement_id", award.AchievementID,
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load achievement %s: %w", award.AchievementID, err)
		}

		report.Earned = append(report.Earned, model.AwardedAchievement{
			AchievementDefinition: *def,
			EarnedAt:              award.EarnedAt,
		})
	}

	return report, nil
}
