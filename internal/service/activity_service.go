package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/chibuike2003/palgunn/internal/dto"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
)

// ActivityService staff audit trail.
type ActivityService interface {
	// Record appends an entry. Failures are logged and never surface to the
	// operation being audited.
	Record(ctx context.Context, actorID, action, targetType, targetID string, details map[string]interface{})
	List(ctx context.Context, req *dto.ActivityLogListRequest) ([]dto.ActivityLogResponse, int64, error)
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActivityService creates an ActivityService.
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

func (s *activityService) Record(ctx context.Context, actorID, action, targetType, targetID string, details map[string]interface{}) {
	entry := &model.ActivityLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("encode activity details", zap.String("action", action), zap.Error(err))
		} else {
			entry.Details = datatypes.JSON(raw)
		}
	}

	if err := s.repo.ActivityLog.Create(ctx, entry); err != nil {
		s.logger.Warn("record activity",
			zap.String("actor_id", actorID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *activityService) List(ctx context.Context, req *dto.ActivityLogListRequest) ([]dto.ActivityLogResponse, int64, error) {
	logs, total, err := s.repo.ActivityLog.List(ctx, req.ActorID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list activity logs", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ActivityLogResponse, 0, len(logs))
	for i := range logs {
		list = append(list, toActivityLogResponse(&logs[i]))
	}
	return list, total, nil
}

func toActivityLogResponse(l *model.ActivityLog) dto.ActivityLogResponse {
	resp := dto.ActivityLogResponse{
		ID:         l.LogID,
		ActorID:    l.ActorID,
		Action:     l.Action,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.Actor != nil {
		resp.ActorName = l.Actor.Name
	}
	if len(l.Details) > 0 {
		_ = json.Unmarshal(l.Details, &resp.Details)
	}
	return resp
}
