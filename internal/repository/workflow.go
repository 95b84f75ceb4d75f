package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

var (
	ErrWorkflowNotFound = errors.New("workflow state not found")
	ErrWorkflowExists   = errors.New("workflow state already exists")
)

// WorkflowAdvance is the row mutation applied when a client moves one hop.
type WorkflowAdvance struct {
	Stage           model.WorkflowStage
	NextAction      *model.WorkflowAction
	NextActionDueAt *time.Time
	At              time.Time
}

type WorkflowRepository interface {
	Create(ctx context.Context, state *model.WorkflowState) error
	ByClientID(ctx context.Context, clientID string) (*model.WorkflowState, error)
	// Due returns the rows whose next action is one of actions and is due at
	// or before now, oldest first.
	Due(ctx context.Context, now time.Time, actions []model.WorkflowAction) ([]*model.WorkflowState, error)
	// Claim applies the advance only if the row still holds the observed next
	// action and due time. It reports false when another writer got there first.
	Claim(ctx context.Context, observed *model.WorkflowState, advance WorkflowAdvance) (bool, error)
	// Release undoes a claim whose follow-up writes failed, putting back the
	// observed schedule so the row is due again. It only touches the row while
	// it still holds exactly what the claim wrote, and reports whether it did.
	Release(ctx context.Context, observed *model.WorkflowState, claimed WorkflowAdvance) (bool, error)
	// Advance applies the mutation unconditionally.
	Advance(ctx context.Context, clientID string, advance WorkflowAdvance) error
	// SetStage updates only the stage and its completion time.
	SetStage(ctx context.Context, clientID string, stage model.WorkflowStage, at time.Time) error
}

type workflowRepository struct {
	db *sqlx.DB
}

func NewWorkflowRepository(db *sqlx.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, state *model.WorkflowState) error {
	_, err := r.ByClientID(ctx, state.ClientID)
	if err == nil {
		return ErrWorkflowExists
	}
	if !errors.Is(err, ErrWorkflowNotFound) {
		return err
	}

	query := `INSERT INTO client_workflow_state (id, client_id, service_type, workflow_stage, stage_completed_at, next_action, next_action_due_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		state.ID,
		state.ClientID,
		string(state.ServiceType),
		stringPtr(state.WorkflowStage),
		state.StageCompletedAt,
		stringPtr(state.NextAction),
		state.NextActionDueAt,
		state.CreatedAt,
		state.UpdatedAt,
	)

	return err
}

func (r *workflowRepository) ByClientID(ctx context.Context, clientID string) (*model.WorkflowState, error) {
	state := &model.WorkflowState{}
	query := `SELECT * FROM client_workflow_state WHERE client_id = $1`

	err := r.db.GetContext(ctx, state, query, clientID)
	if err == sql.ErrNoRows {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (r *workflowRepository) Due(ctx context.Context, now time.Time, actions []model.WorkflowAction) ([]*model.WorkflowState, error) {
	if len(actions) == 0 {
		return nil, nil
	}

	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}

	query, args, err := sqlx.In(`SELECT * FROM client_workflow_state
	          WHERE next_action IN (?) AND next_action_due_at IS NOT NULL AND next_action_due_at <= ?
	          ORDER BY next_action_due_at ASC`, names, now)
	if err != nil {
		return nil, err
	}

	var states []*model.WorkflowState
	err = r.db.SelectContext(ctx, &states, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return states, nil
}

func (r *workflowRepository) Claim(ctx context.Context, observed *model.WorkflowState, advance WorkflowAdvance) (bool, error) {
	if observed.NextAction == nil || observed.NextActionDueAt == nil {
		return false, nil
	}

	query := `UPDATE client_workflow_state
	          SET workflow_stage = $1, stage_completed_at = $2, next_action = $3, next_action_due_at = $4, updated_at = $5
	          WHERE client_id = $6 AND next_action = $7 AND next_action_due_at = $8`

	result, err := r.db.ExecContext(ctx, query,
		string(advance.Stage),
		advance.At,
		stringPtr(advance.NextAction),
		advance.NextActionDueAt,
		advance.At,
		observed.ClientID,
		string(*observed.NextAction),
		*observed.NextActionDueAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *workflowRepository) Release(ctx context.Context, observed *model.WorkflowState, claimed WorkflowAdvance) (bool, error) {
	query := `UPDATE client_workflow_state
	          SET workflow_stage = $1, stage_completed_at = $2, next_action = $3, next_action_due_at = $4, updated_at = $5
	          WHERE client_id = $6 AND workflow_stage = $7 AND updated_at = $8
	            AND next_action IS NOT DISTINCT FROM $9 AND next_action_due_at IS NOT DISTINCT FROM $10`

	result, err := r.db.ExecContext(ctx, query,
		stringPtr(observed.WorkflowStage),
		observed.StageCompletedAt,
		stringPtr(observed.NextAction),
		observed.NextActionDueAt,
		observed.UpdatedAt,
		observed.ClientID,
		string(claimed.Stage),
		claimed.At,
		stringPtr(claimed.NextAction),
		claimed.NextActionDueAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *workflowRepository) Advance(ctx context.Context, clientID string, advance WorkflowAdvance) error {
	query := `UPDATE client_workflow_state
	          SET workflow_stage = $1, stage_completed_at = $2, next_action = $3, next_action_due_at = $4, updated_at = $5
	          WHERE client_id = $6`

	result, err := r.db.ExecContext(ctx, query,
		string(advance.Stage),
		advance.At,
		stringPtr(advance.NextAction),
		advance.NextActionDueAt,
		advance.At,
		clientID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrWorkflowNotFound)
}

func (r *workflowRepository) SetStage(ctx context.Context, clientID string, stage model.WorkflowStage, at time.Time) error {
	query := `UPDATE client_workflow_state
	          SET workflow_stage = $1, stage_completed_at = $2, updated_at = $3
	          WHERE client_id = $4`

	result, err := r.db.ExecContext(ctx, query, string(stage), at, at, clientID)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrWorkflowNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}

// stringPtr converts nullable enum values to plain strings for the driver.
func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
