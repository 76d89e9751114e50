package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dashboardCacheTTL = 5 * time.Minute

// DashboardService 聚合统计的下游消费者：测试完成后更新
// TopicSummary/OverallSummary，并对外提供看板查询。
type DashboardService struct {
	SummaryRepo *repository.SummaryRepository
	AttemptRepo *repository.TestAttemptRepository
	AnswerRepo  *repository.TestAnswerRepository
	Redis       *redis.Client
	DB          *gorm.DB
}

func NewDashboardService(
	summaryRepo *repository.SummaryRepository,
	attemptRepo *repository.TestAttemptRepository,
	answerRepo *repository.TestAnswerRepository,
	rdb *redis.Client,
	db *gorm.DB,
) *DashboardService {
	return &DashboardService{
		SummaryRepo: summaryRepo,
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		Redis:       rdb,
		DB:          db,
	}
}

// OnAttemptCompleted 实现聚合通知接口。通知方是 fire-and-forget，
// 这里失败只记日志，聚合数据允许短暂滞后。
func (s *DashboardService) OnAttemptCompleted(attemptID string) {
	if err := s.aggregate(attemptID); err != nil {
		logger.Log.Error("failed to aggregate completed attempt",
			zap.String("attempt_id", attemptID), zap.Error(err))
		return
	}
	logger.Log.Info("aggregated completed attempt", zap.String("attempt_id", attemptID))
}

func (s *DashboardService) aggregate(attemptID string) error {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.Status != model.AttemptCompleted {
		return fmt.Errorf("attempt %s is not completed", attemptID)
	}

	answers, err := s.AnswerRepo.FindByAttempt(attemptID)
	if err != nil {
		return err
	}
	var attemptedCount, correctCount int
	for _, a := range answers {
		if !a.Attempted() {
			continue
		}
		attemptedCount++
		if a.IsCorrect {
			correctCount++
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var sectionID uint
		if attempt.SectionID != nil {
			sectionID = *attempt.SectionID
		}
		topic, err := s.SummaryRepo.GetOrCreateTopic(tx, attempt.UserID, attempt.PaperID, sectionID)
		if err != nil {
			return err
		}
		topic.AvgScore = runningAvg(topic.AvgScore, topic.Attempts, attempt.Score)
		topic.Attempts++
		topic.TotalQuestions += attemptedCount
		topic.CorrectAnswers += correctCount
		topic.LastAttemptAt = attempt.CompletedAt
		if err := s.SummaryRepo.SaveTopic(tx, topic); err != nil {
			return err
		}

		overall, err := s.SummaryRepo.GetOrCreateOverall(tx, attempt.UserID)
		if err != nil {
			return err
		}
		overall.AvgScore = runningAvg(overall.AvgScore, overall.TotalAttempts, attempt.Score)
		overall.TotalAttempts++
		overall.TotalQuestions += attemptedCount
		overall.TotalCorrect += correctCount
		if attempt.Score > overall.BestScore {
			overall.BestScore = attempt.Score
		}
		overall.LastAttemptAt = attempt.CompletedAt
		return s.SummaryRepo.SaveOverall(tx, overall)
	})
	if err != nil {
		return err
	}

	s.invalidateCache(attempt.UserID)
	return nil
}

// runningAvg 增量均值，prior 为已计入的次数
func runningAvg(avg float64, prior int, next float64) float64 {
	return (avg*float64(prior) + next) / float64(prior+1)
}

type Dashboard struct {
	Overall *model.OverallSummary `json:"overall"`
	Topics  []model.TopicSummary  `json:"topics"`
}

// GetDashboard 读路径带 redis 缓存，聚合写入后主动失效
func (s *DashboardService) GetDashboard(userID uint) (*Dashboard, error) {
	if cached := s.cachedDashboard(userID); cached != nil {
		return cached, nil
	}

	overall, err := s.SummaryRepo.FindOverallByUser(userID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if overall == nil {
		overall = &model.OverallSummary{UserID: userID}
	}
	topics, err := s.SummaryRepo.FindTopicsByUser(userID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{Overall: overall, Topics: topics}
	s.cacheDashboard(userID, dashboard)
	return dashboard, nil
}

func dashboardKey(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

func (s *DashboardService) cachedDashboard(userID uint) *Dashboard {
	if s.Redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	raw, err := s.Redis.Get(ctx, dashboardKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var dashboard Dashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		return nil
	}
	return &dashboard
}

func (s *DashboardService) cacheDashboard(userID uint, dashboard *Dashboard) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Redis.Set(ctx, dashboardKey(userID), raw, dashboardCacheTTL).Err(); err != nil {
		logger.Log.Debug("failed to cache dashboard", zap.Error(err))
	}
}

func (s *DashboardService) invalidateCache(userID uint) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Redis.Del(ctx, dashboardKey(userID))
}
