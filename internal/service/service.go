package service

import (
	"go.uber.org/zap"

	"github.com/chibuike2003/palgunn/config"
	"github.com/chibuike2003/palgunn/internal/repository"
	"github.com/chibuike2003/palgunn/pkg/clock"
	"github.com/chibuike2003/palgunn/pkg/jwt"
)

// Service aggregates every service.
type Service struct {
	Auth          AuthService
	Course        CourseService
	Result        ResultService
	Export        ExportService
	Publication   PublicationService
	StudentResult StudentResultService
	Activity      ActivityService
}

// NewService wires the services. blacklist may be nil when Redis is
// unavailable.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	activity := NewActivityService(repo, logger)
	return &Service{
		Auth:          NewAuthService(repo, jwtMgr, blacklist, logger),
		Course:        NewCourseService(repo, logger),
		Result:        NewResultService(&cfg.Results, repo, activity, logger),
		Export:        NewExportService(repo, logger),
		Publication:   NewPublicationService(repo, clk, activity, logger),
		StudentResult: NewStudentResultService(repo, clk, logger),
		Activity:      activity,
	}
}
