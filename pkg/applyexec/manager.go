package applyexec

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"ai-organizer-be/internal/constant"
	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/logger"
	"ai-organizer-be/pkg/telemetry"

	"github.com/google/uuid"
)

// MoveInput is one approved proposal resolved to concrete paths.
type MoveInput struct {
	ProposalId uuid.UUID
	SourcePath string
	DestDir    string
	DestName   string
}

// GroupOutcome is the per-group result of a committed apply.
type GroupOutcome struct {
	Group     *entity.ActionGroup
	Applied   bool
	Performed []*entity.FileMoveAction // moves that stuck (applied groups only)
}

// Manager executes grouped, rollback-capable file moves. Groups are
// independent: a mid-group failure reverses that group's performed moves in
// reverse order and leaves every other group alone.
type Manager struct {
	storage Storage
	sink    telemetry.Sink
	logger  logger.ILogger
}

func NewManager(storage Storage, sink telemetry.Sink, log logger.ILogger) *Manager {
	if sink == nil {
		sink = telemetry.Noop{}
	}
	return &Manager{
		storage: storage,
		sink:    sink,
		logger:  log,
	}
}

// Plan groups inputs by destination directory and assigns a stable order.
// The same approved set always yields the same plan, so dry_run is
// idempotent with respect to filesystem state.
func (m *Manager) Plan(jobId uuid.UUID, mode string, inputs []MoveInput) []*entity.ActionGroup {
	byDir := make(map[string][]MoveInput)
	for _, in := range inputs {
		byDir[in.DestDir] = append(byDir[in.DestDir], in)
	}

	keys := make([]string, 0, len(byDir))
	for k := range byDir {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var groups []*entity.ActionGroup
	for _, key := range keys {
		members := byDir[key]
		sort.Slice(members, func(i, j int) bool {
			return members[i].SourcePath < members[j].SourcePath
		})

		group := &entity.ActionGroup{
			Id:        uuid.New(),
			JobId:     jobId,
			GroupKey:  key,
			ApplyMode: mode,
			Status:    constant.GroupPlanned,
		}
		for pos, in := range members {
			group.Actions = append(group.Actions, &entity.FileMoveAction{
				Id:         uuid.New(),
				GroupId:    group.Id,
				Position:   pos,
				ProposalId: in.ProposalId,
				SourcePath: in.SourcePath,
				DestPath:   filepath.Join(in.DestDir, in.DestName),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// Commit performs each group's moves sequentially. The returned error is
// non-nil only for ApplyRollbackFailure: an ordinary group failure is
// reported in its outcome after a successful rollback.
func (m *Manager) Commit(ctx context.Context, groups []*entity.ActionGroup) ([]*GroupOutcome, error) {
	outcomes := make([]*GroupOutcome, 0, len(groups))

	for _, group := range groups {
		outcome, err := m.commitGroup(ctx, group)
		outcomes = append(outcomes, outcome)
		if err != nil {
			// Rollback itself failed. Filesystem state is inconsistent;
			// stop immediately and surface the fatal error.
			return outcomes, err
		}
	}
	return outcomes, nil
}

func (m *Manager) commitGroup(ctx context.Context, group *entity.ActionGroup) (*GroupOutcome, error) {
	outcome := &GroupOutcome{Group: group}

	for i, action := range group.Actions {
		if err := m.storage.Move(ctx, action.SourcePath, action.DestPath); err != nil {
			action.Error = err.Error()
			if m.logger != nil {
				m.logger.Warn("applyexec", "move failed, rolling back group", map[string]interface{}{
					"group_key": group.GroupKey,
					"source":    action.SourcePath,
					"error":     err.Error(),
				})
			}
			if rbErr := m.rollback(ctx, group.Actions[:i]); rbErr != nil {
				group.Status = constant.GroupFailed
				group.Error = rbErr.Error()
				m.sink.RecordApplyOutcome(ctx, group.JobId.String(), group.GroupKey, 0, false)
				return outcome, apperrors.ApplyRollbackFailure(
					"rollback failed for group "+group.GroupKey, rbErr)
			}
			group.Status = constant.GroupRolledBack
			group.Error = err.Error()
			m.sink.RecordApplyOutcome(ctx, group.JobId.String(), group.GroupKey, 0, false)
			return outcome, nil
		}

		action.Performed = true
		action.RollbackPath = action.SourcePath
	}

	group.Status = constant.GroupApplied
	outcome.Applied = true
	outcome.Performed = group.Actions
	m.sink.RecordApplyOutcome(ctx, group.JobId.String(), group.GroupKey, len(group.Actions), true)
	return outcome, nil
}

// rollback reverses performed moves newest-first using the captured
// original path.
func (m *Manager) rollback(ctx context.Context, performed []*entity.FileMoveAction) error {
	for i := len(performed) - 1; i >= 0; i-- {
		action := performed[i]
		if !action.Performed {
			continue
		}
		if err := m.storage.Move(ctx, action.DestPath, action.RollbackPath); err != nil {
			return err
		}
		action.Performed = false
	}
	return nil
}

// AuditRecords converts an applied outcome into persistable audit rows.
func AuditRecords(jobId uuid.UUID, outcome *GroupOutcome, at time.Time) []*entity.AuditAction {
	if !outcome.Applied {
		return nil
	}
	records := make([]*entity.AuditAction, 0, len(outcome.Performed))
	for _, action := range outcome.Performed {
		records = append(records, &entity.AuditAction{
			Id:          uuid.New(),
			JobId:       jobId,
			ProposalId:  action.ProposalId,
			GroupId:     action.GroupId,
			SourcePath:  action.SourcePath,
			DestPath:    action.DestPath,
			PerformedAt: at,
		})
	}
	return records
}
