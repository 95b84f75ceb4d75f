package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/coachflow/internal/markdown"
	"github.com/templui/coachflow/internal/metrics"
	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/repository"
	"github.com/templui/coachflow/internal/storage"
	"github.com/templui/coachflow/internal/validation"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type FinalizeResult struct {
	Message string `json:"message"`
}

type CardService struct {
	cards       repository.CardRepository
	clients     repository.ClientRepository
	messages    repository.MessageRepository
	workflows   repository.WorkflowRepository
	assessments repository.AssessmentRepository
	renderer    *markdown.Renderer
	notifier    Notifier
	archive     storage.Archive
	clock       clock
}

func NewCardService(
	cards repository.CardRepository,
	clients repository.ClientRepository,
	messages repository.MessageRepository,
	workflows repository.WorkflowRepository,
	assessments repository.AssessmentRepository,
	renderer *markdown.Renderer,
	notifier Notifier,
	archive storage.Archive,
	loc *time.Location,
) *CardService {
	return &CardService{
		cards:       cards,
		clients:     clients,
		messages:    messages,
		workflows:   workflows,
		assessments: assessments,
		renderer:    renderer,
		notifier:    notifier,
		archive:     archive,
		clock:       newClock(loc),
	}
}

// Finalize releases a reviewed card to its client. The writes are separate:
// a failure part way through leaves the earlier writes in place.
func (s *CardService) Finalize(ctx context.Context, cardID, displayName, reviewer string) (*FinalizeResult, error) {
	err := validation.Required("card_id", cardID)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	card, err := s.cards.ByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.IsSent() {
		return nil, repository.ErrCardAlreadySent
	}

	client, err := s.clients.ByID(ctx, card.ClientID)
	if err != nil {
		return nil, err
	}

	now := s.clock.stamp()
	title := CardTitle(card.CardType)

	err = s.cards.MarkSent(ctx, card.ID, reviewer, now)
	if err != nil {
		if errors.Is(err, repository.ErrCardAlreadySent) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to mark card sent: %w", err)
	}

	content := cardSentMessage(client.FirstName(), title)
	cardType := card.CardType
	err = s.messages.Create(ctx, &model.Message{
		ID:          uuid.New().String(),
		ClientID:    client.ID,
		SenderType:  model.MessageSenderSystem,
		MessageType: model.MessageTypeAutomated,
		Content:     content,
		CardType:    &cardType,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	err = s.syncStage(ctx, card, now)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.Render(card.GeneratedContent)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = doc.Title
	}
	if name == "" {
		name = fmt.Sprintf("%s - %s (%s)", title, client.Name, now.In(s.clock.loc).Format("Jan 2, 2006"))
	}

	sourceID := card.ID
	assessment := &model.Assessment{
		ID:             uuid.New().String(),
		ClientID:       client.ID,
		Name:           name,
		AssessmentType: card.CardType,
		Content:        card.GeneratedContent,
		ContentHTML:    doc.HTML,
		SourceCardID:   &sourceID,
		CreatedAt:      now,
	}
	err = s.assessments.Create(ctx, assessment)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	metrics.RecordCardFinalized(card.CardType)
	slog.Info("card finalized", "card_id", card.ID, "client_id", client.ID, "card_type", card.CardType, "reviewed_by", reviewer)

	notifyBestEffort(ctx, s.notifier, client, title, content)
	s.archiveSnapshot(ctx, assessment)

	return &FinalizeResult{Message: fmt.Sprintf("%s sent to %s", title, client.Name)}, nil
}

// syncStage moves the client's workflow to the stage recorded on the card.
// Clients outside the automated program have no workflow row.
func (s *CardService) syncStage(ctx context.Context, card *model.PendingReviewCard, now time.Time) error {
	if card.WorkflowStage == "" {
		slog.Warn("card has no workflow stage, skipping stage sync", "card_id", card.ID)
		return nil
	}

	err := s.workflows.SetStage(ctx, card.ClientID, card.WorkflowStage, now)
	if errors.Is(err, repository.ErrWorkflowNotFound) {
		slog.Warn("client has no workflow, skipping stage sync", "card_id", card.ID, "client_id", card.ClientID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update workflow stage: %w", err)
	}

	return nil
}

func (s *CardService) archiveSnapshot(ctx context.Context, a *model.Assessment) {
	if s.archive == nil {
		return
	}

	body, err := json.Marshal(a)
	if err != nil {
		slog.Warn("failed to encode card snapshot", "error", err, "assessment_id", a.ID)
		return
	}

	path := fmt.Sprintf("cards/%s/%s.json", a.ClientID, a.ID)
	err = s.archive.Save(ctx, path, bytes.NewReader(body))
	if err != nil {
		slog.Warn("failed to archive card snapshot", "error", err, "path", path)
	}
}

// CardTitle turns a card type such as "stress_card" into "Stress Card".
func CardTitle(cardType string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(cardType, "_", " "))
}
