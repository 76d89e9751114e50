package service

import (
	"strings"
	"time"

	"exam_prep_backend/internal/engine"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 行锁竞争时的有界重试，不把瞬时冲突抛给调用方
const (
	lockRetryAttempts = 3
	lockRetryBackoff  = 50 * time.Millisecond
)

// CalibrationService 维护用户-题目难度校准记录。
// 同一 (user, question) 键上的写入通过行锁串行化。
type CalibrationService struct {
	DifficultyRepo *repository.DifficultyRepository
	QuestionRepo   *repository.QuestionRepository
	DB             *gorm.DB
}

func NewCalibrationService(difficultyRepo *repository.DifficultyRepository, questionRepo *repository.QuestionRepository, db *gorm.DB) *CalibrationService {
	return &CalibrationService{
		DifficultyRepo: difficultyRepo,
		QuestionRepo:   questionRepo,
		DB:             db,
	}
}

// RecordAnswer 把一次作答并入校准记录。记录不存在时惰性创建，
// 初始难度取题目全局难度。每道已作答的题目恰好调用一次——
// 自适应会话在逐题流程里调用，其余测试类型在交卷时批量调用，
// 两条路径互斥，不会对同一次作答重复计数。
func (s *CalibrationService) RecordAnswer(userID, questionID uint, correct bool, timeTakenSeconds int) (*model.UserQuestionDifficulty, error) {
	var result *model.UserQuestionDifficulty

	var err error
	for attempt := 0; attempt < lockRetryAttempts; attempt++ {
		result, err = s.recordAnswerOnce(userID, questionID, correct, timeTakenSeconds)
		if err == nil || !isLockError(err) {
			break
		}
		logger.Log.Warn("difficulty record lock contention, retrying",
			zap.Uint("user_id", userID),
			zap.Uint("question_id", questionID),
			zap.Error(err))
		time.Sleep(lockRetryBackoff << attempt)
	}
	if err != nil {
		return nil, err
	}

	monitoring.CalibrationUpdates.Inc()
	return result, nil
}

func (s *CalibrationService) recordAnswerOnce(userID, questionID uint, correct bool, timeTakenSeconds int) (*model.UserQuestionDifficulty, error) {
	var result *model.UserQuestionDifficulty

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		rec, err := s.DifficultyRepo.FindForUpdate(tx, userID, questionID)
		if err == gorm.ErrRecordNotFound {
			var question model.Question
			if qErr := tx.First(&question, questionID).Error; qErr != nil {
				return qErr
			}
			rec = engine.NewRecord(userID, questionID, question.NumericDifficulty)
			nudge := engine.ApplyAnswer(rec, correct, float64(timeTakenSeconds), now)
			if err := s.DifficultyRepo.Create(tx, rec); err != nil {
				return err
			}
			s.applyGlobalNudge(tx, questionID, nudge)
			result = rec
			return nil
		}
		if err != nil {
			return err
		}

		nudge := engine.ApplyAnswer(rec, correct, float64(timeTakenSeconds), now)
		if err := s.DifficultyRepo.Save(tx, rec); err != nil {
			return err
		}
		s.applyGlobalNudge(tx, questionID, nudge)
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyGlobalNudge 跨用户共识的慢漂移。非关键路径：失败只记日志，
// 不回滚用户自己的校准更新。
func (s *CalibrationService) applyGlobalNudge(tx *gorm.DB, questionID uint, nudge float64) {
	if nudge == 0 {
		return
	}
	if err := s.QuestionRepo.AdjustGlobalDifficulty(tx, questionID, nudge); err != nil {
		logger.Log.Warn("failed to adjust global question difficulty",
			zap.Uint("question_id", questionID),
			zap.Float64("nudge", nudge),
			zap.Error(err))
	}
}

// ResetCalibration 用户主动重置：全部记录回到校准态，计数器保留
func (s *CalibrationService) ResetCalibration(userID uint) error {
	return s.DifficultyRepo.ResetCalibration(userID)
}

// UserInCalibration 用户级校准期判定（记录总数不足时仍在热身）
func (s *CalibrationService) UserInCalibration(userID uint) (bool, error) {
	count, err := s.DifficultyRepo.CountByUser(userID)
	if err != nil {
		return false, err
	}
	return engine.UserInCalibration(count), nil
}

func (s *CalibrationService) RecordsForQuestions(userID uint, questionIDs []uint) (map[uint]*model.UserQuestionDifficulty, error) {
	return s.DifficultyRepo.FindByUserAndQuestions(userID, questionIDs)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Deadlock") || strings.Contains(msg, "Lock wait timeout")
}
