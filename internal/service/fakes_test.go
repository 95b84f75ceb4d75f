package service

import (
	"context"
	"io"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/repository"
)

// In-memory stand-ins for the repositories. Each carries an err field that,
// when set, fails every call.

type fakeAchievements struct {
	defs []*model.AchievementDefinition
	err  error
}

func (f *fakeAchievements) Active(ctx context.Context) ([]*model.AchievementDefinition, error) {
	if f.err != nil {
		return nil, f.err
	}
	var active []*model.AchievementDefinition
	for _, d := range f.defs {
		if d.Active {
			active = append(active, d)
		}
	}
	return active, nil
}

func (f *fakeAchievements) ByID(ctx context.Context, id string) (*model.AchievementDefinition, error) {
	for _, d := range f.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repository.ErrAchievementNotFound
}

type fakeProgress struct {
	mu   sync.Mutex
	rows map[string]*model.AchievementProgress
	err  error
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{rows: make(map[string]*model.AchievementProgress)}
}

func (f *fakeProgress) Upsert(ctx context.Context, p *model.AchievementProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := p.ClientID + "|" + p.AchievementID
	if existing, ok := f.rows[key]; ok {
		p.ID = existing.ID
	}
	row := *p
	f.rows[key] = &row
	return nil
}

func (f *fakeProgress) ByClient(ctx context.Context, clientID string) ([]*model.AchievementProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.AchievementProgress
	for _, p := range f.rows {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgress) get(clientID, achievementID string) *model.AchievementProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[clientID+"|"+achievementID]
}

type fakeAwards struct {
	mu     sync.Mutex
	earned map[string]*model.EarnedAchievement
	// hideEarned makes EarnedIDs report nothing, as when a concurrent
	// evaluation awards between the read and the insert.
	hideEarned bool
	err        error
}

func newFakeAwards() *fakeAwards {
	return &fakeAwards{earned: make(map[string]*model.EarnedAchievement)}
}

func (f *fakeAwards) EarnedIDs(ctx context.Context, clientID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ids := make(map[string]bool)
	if f.hideEarned {
		return ids, nil
	}
	for _, e := range f.earned {
		if e.ClientID == clientID {
			ids[e.AchievementID] = true
		}
	}
	return ids, nil
}

func (f *fakeAwards) Award(ctx context.Context, earned *model.EarnedAchievement) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	key := earned.ClientID + "|" + earned.AchievementID
	if _, ok := f.earned[key]; ok {
		return false, nil
	}
	row := *earned
	f.earned[key] = &row
	return true, nil
}

func (f *fakeAwards) ByClient(ctx context.Context, clientID string) ([]*model.EarnedAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.EarnedAchievement
	for _, e := range f.earned {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeActivity struct {
	mealTimes []time.Time
	dailyLogs []*model.DailyLog
	err       error
}

func (f *fakeActivity) CountMealLogs(ctx context.Context, clientID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.mealTimes), nil
}

func (f *fakeActivity) RecentMealLogTimes(ctx context.Context, clientID string, limit int) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	times := append([]time.Time(nil), f.mealTimes...)
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })
	if len(times) > limit {
		times = times[:limit]
	}
	return times, nil
}

func (f *fakeActivity) RecentWeighInDates(ctx context.Context, clientID string, limit int) ([]time.Time, error) {
	logs, err := f.RecentDailyLogs(ctx, clientID, len(f.dailyLogs))
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for _, l := range logs {
		if l.Weight != nil && len(dates) < limit {
			dates = append(dates, l.LogDate)
		}
	}
	return dates, nil
}

func (f *fakeActivity) RecentDailyLogs(ctx context.Context, clientID string, limit int) ([]*model.DailyLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	logs := append([]*model.DailyLog(nil), f.dailyLogs...)
	sort.Slice(logs, func(i, j int) bool { return logs[i].LogDate.After(logs[j].LogDate) })
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (f *fakeActivity) FirstAndLatestWeight(ctx context.Context, clientID string) (*float64, *float64, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	logs, _ := f.RecentDailyLogs(ctx, clientID, len(f.dailyLogs))
	var first, latest *float64
	for _, l := range logs {
		if l.Weight == nil {
			continue
		}
		if latest == nil {
			latest = l.Weight
		}
		first = l.Weight
	}
	return first, latest, nil
}

type fakeClients struct {
	clients map[string]*model.Client
	err     error
}

func newFakeClients(clients ...*model.Client) *fakeClients {
	f := &fakeClients{clients: make(map[string]*model.Client)}
	for _, c := range clients {
		f.clients[c.ID] = c
	}
	return f
}

func (f *fakeClients) ByID(ctx context.Context, clientID string) (*model.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.clients[clientID]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	return c, nil
}

type fakeWorkflows struct {
	mu     sync.Mutex
	states map[string]*model.WorkflowState
	// beforeClaim runs just before a claim is checked, to simulate another
	// sweep getting there first.
	beforeClaim func(clientID string)
	setStageErr error
}

func newFakeWorkflows(states ...*model.WorkflowState) *fakeWorkflows {
	f := &fakeWorkflows{states: make(map[string]*model.WorkflowState)}
	for _, s := range states {
		f.states[s.ClientID] = s
	}
	return f
}

func (f *fakeWorkflows) Create(ctx context.Context, state *model.WorkflowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[state.ClientID]; ok {
		return repository.ErrWorkflowExists
	}
	row := *state
	f.states[state.ClientID] = &row
	return nil
}

func (f *fakeWorkflows) ByClientID(ctx context.Context, clientID string) (*model.WorkflowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[clientID]
	if !ok {
		return nil, repository.ErrWorkflowNotFound
	}
	row := *s
	return &row, nil
}

func (f *fakeWorkflows) Due(ctx context.Context, now time.Time, actions []model.WorkflowAction) ([]*model.WorkflowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []*model.WorkflowState
	for _, s := range f.states {
		if s.Due(now) && slices.Contains(actions, *s.NextAction) {
			row := *s
			due = append(due, &row)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextActionDueAt.Before(*due[j].NextActionDueAt) })
	return due, nil
}

func (f *fakeWorkflows) Claim(ctx context.Context, observed *model.WorkflowState, advance repository.WorkflowAdvance) (bool, error) {
	if f.beforeClaim != nil {
		f.beforeClaim(observed.ClientID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[observed.ClientID]
	if !ok || s.NextAction == nil || s.NextActionDueAt == nil {
		return false, nil
	}
	if *s.NextAction != *observed.NextAction || !s.NextActionDueAt.Equal(*observed.NextActionDueAt) {
		return false, nil
	}
	apply(s, advance)
	return true, nil
}

func (f *fakeWorkflows) Release(ctx context.Context, observed *model.WorkflowState, claimed repository.WorkflowAdvance) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[observed.ClientID]
	if !ok || s.WorkflowStage == nil || *s.WorkflowStage != claimed.Stage || !s.UpdatedAt.Equal(claimed.At) {
		return false, nil
	}
	if !sameAction(s.NextAction, claimed.NextAction) || !sameTime(s.NextActionDueAt, claimed.NextActionDueAt) {
		return false, nil
	}
	s.WorkflowStage = observed.WorkflowStage
	s.StageCompletedAt = observed.StageCompletedAt
	s.NextAction = observed.NextAction
	s.NextActionDueAt = observed.NextActionDueAt
	s.UpdatedAt = observed.UpdatedAt
	return true, nil
}

func sameAction(a, b *model.WorkflowAction) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (f *fakeWorkflows) Advance(ctx context.Context, clientID string, advance repository.WorkflowAdvance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[clientID]
	if !ok {
		return repository.ErrWorkflowNotFound
	}
	apply(s, advance)
	return nil
}

func (f *fakeWorkflows) SetStage(ctx context.Context, clientID string, stage model.WorkflowStage, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setStageErr != nil {
		return f.setStageErr
	}
	s, ok := f.states[clientID]
	if !ok {
		return repository.ErrWorkflowNotFound
	}
	s.WorkflowStage = &stage
	s.StageCompletedAt = &at
	s.UpdatedAt = at
	return nil
}

func (f *fakeWorkflows) get(clientID string) *model.WorkflowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[clientID]
}

func apply(s *model.WorkflowState, advance repository.WorkflowAdvance) {
	stage := advance.Stage
	at := advance.At
	s.WorkflowStage = &stage
	s.StageCompletedAt = &at
	s.NextAction = advance.NextAction
	s.NextActionDueAt = advance.NextActionDueAt
	s.UpdatedAt = at
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []*model.WorkflowHistoryEntry
	err     error
}

func (f *fakeHistory) Append(ctx context.Context, entry *model.WorkflowHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) ByClient(ctx context.Context, clientID string) ([]*model.WorkflowHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.WorkflowHistoryEntry
	for _, e := range f.entries {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs []*model.Message
	// failFor fails message creation for the listed clients.
	failFor map[string]error
	// beforeCreate runs ahead of every create, outside the lock.
	beforeCreate func()
}

func (f *fakeMessages) Create(ctx context.Context, msg *model.Message) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[msg.ClientID]; err != nil {
		return err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeMessages) forClient(clientID string) []*model.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Message
	for _, m := range f.msgs {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	return out
}

type fakeCards struct {
	cards map[string]*model.PendingReviewCard
}

func newFakeCards(cards ...*model.PendingReviewCard) *fakeCards {
	f := &fakeCards{cards: make(map[string]*model.PendingReviewCard)}
	for _, c := range cards {
		f.cards[c.ID] = c
	}
	return f
}

func (f *fakeCards) ByID(ctx context.Context, cardID string) (*model.PendingReviewCard, error) {
	c, ok := f.cards[cardID]
	if !ok {
		return nil, repository.ErrCardNotFound
	}
	row := *c
	return &row, nil
}

func (f *fakeCards) MarkSent(ctx context.Context, cardID, reviewer string, at time.Time) error {
	c, ok := f.cards[cardID]
	if !ok || c.IsSent() {
		return repository.ErrCardAlreadySent
	}
	c.Status = model.CardStatusSent
	c.SentAt = &at
	c.ReviewedBy = &reviewer
	c.UpdatedAt = at
	return nil
}

type fakeAssessments struct {
	rows []*model.Assessment
	err  error
}

func (f *fakeAssessments) Create(ctx context.Context, a *model.Assessment) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, a)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (f *fakeNotifier) Notify(ctx context.Context, client *model.Client, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	return f.err
}

type fakeArchive struct {
	paths []string
	err   error
}

func (f *fakeArchive) Save(ctx context.Context, path string, body io.Reader) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.paths = append(f.paths, path)
	return nil
}

func fixedClock(loc *time.Location, at time.Time) clock {
	c := newClock(loc)
	c.now = func() time.Time { return at }
	return c
}

func ptr[T any](v T) *T {
	return &v
}
