package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/engine"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"
	"exam_prep_backend/pkg/logger"
	"exam_prep_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AggregationNotifier 测试完成后的聚合统计通知。每次 Completed
// 迁移恰好触发一次；失败只记日志，绝不影响交卷结果。
type AggregationNotifier interface {
	OnAttemptCompleted(attemptID string)
}

// TestService 考试会话的全部生命周期：开考、作答、自适应逐题、
// 交卷计分。状态迁移只发生在这里。
type TestService struct {
	AttemptRepo  *repository.TestAttemptRepository
	AnswerRepo   *repository.TestAnswerRepository
	QuestionRepo *repository.QuestionRepository
	Selection    *SelectionService
	Calibration  *CalibrationService
	Notifier     AggregationNotifier
	Redis        *redis.Client
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewTestService(
	attemptRepo *repository.TestAttemptRepository,
	answerRepo *repository.TestAnswerRepository,
	questionRepo *repository.QuestionRepository,
	selection *SelectionService,
	calibration *CalibrationService,
	notifier AggregationNotifier,
	rdb *redis.Client,
	cfg *config.Config,
	db *gorm.DB,
) *TestService {
	return &TestService{
		AttemptRepo:  attemptRepo,
		AnswerRepo:   answerRepo,
		QuestionRepo: questionRepo,
		Selection:    selection,
		Calibration:  calibration,
		Notifier:     notifier,
		Redis:        rdb,
		Cfg:          cfg,
		DB:           db,
	}
}

type StartTestRequest struct {
	PaperID       uint   `json:"paperId" binding:"required"`
	SectionID     *uint  `json:"sectionId"`
	SubsectionID  *uint  `json:"subsectionId"`
	TestType      string `json:"testType" binding:"required"`
	QuestionCount int    `json:"questionCount"`
	Strategy      string `json:"strategy"`
	MaxQuestions  int    `json:"maxQuestions"`
}

type StartTestResponse struct {
	Attempt   *model.TestAttempt `json:"attempt"`
	Questions []model.Question   `json:"questions"`
}

func (s *TestService) StartTest(userID uint, req StartTestRequest) (*StartTestResponse, error) {
	testType := model.TestType(req.TestType)
	switch testType {
	case model.TestMock, model.TestPractice, model.TestRegular, model.TestAdaptive:
	default:
		return nil, fmt.Errorf("unknown test type: %s", req.TestType)
	}

	attempt := &model.TestAttempt{
		UserID:       userID,
		PaperID:      req.PaperID,
		SectionID:    req.SectionID,
		SubsectionID: req.SubsectionID,
		TestType:     testType,
		Status:       model.AttemptInProgress,
		StartedAt:    time.Now(),
	}

	if testType == model.TestAdaptive {
		attempt.MaxQuestions = req.MaxQuestions
		if attempt.MaxQuestions <= 0 {
			attempt.MaxQuestions = s.Cfg.Engine.DefaultMaxQuestions
		}
		strat := s.Selection.ParseStrategy(req.Strategy)
		if req.Strategy == "" {
			strat = engine.StrategyAdaptive
		}
		attempt.AdaptiveStrategy = strat.String()

		if err := s.AttemptRepo.Create(attempt); err != nil {
			return nil, err
		}
		// 首题走逐题状态机
		next, err := s.NextQuestion(userID, attempt.ID, nil)
		if err != nil {
			return nil, err
		}
		resp := &StartTestResponse{Attempt: attempt}
		if next.Question != nil {
			resp.Questions = []model.Question{*next.Question}
		}
		return resp, nil
	}

	count := req.QuestionCount
	if count <= 0 {
		count = s.Cfg.Engine.DefaultMockCount
	}

	var questions []model.Question
	var err error
	if testType == model.TestMock {
		strat := s.Selection.ParseStrategy(req.Strategy)
		questions, err = s.Selection.SelectQuestions(userID, req.PaperID, req.SectionID, req.SubsectionID, count, strat)
	} else {
		questions, err = s.Selection.PickRandom(req.PaperID, req.SectionID, req.SubsectionID, count)
	}
	if err != nil {
		return nil, err
	}
	// 候选集完全为空是硬失败；不足但非零已由重复补齐消化
	if len(questions) == 0 {
		return nil, util.ErrNoActiveQuestions
	}

	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	// 出题即建占位作答记录。补齐产生的重复题在会话里只占一条
	// （每题每会话恰好一条作答）。
	seen := make(map[uint]bool, len(questions))
	var placeholders []model.TestAnswer
	for _, q := range questions {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		placeholders = append(placeholders, model.TestAnswer{
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
			Marks:      1,
		})
	}
	if err := s.AnswerRepo.CreateBatch(nil, placeholders); err != nil {
		return nil, err
	}

	monitoring.QuestionsServed.WithLabelValues(string(testType)).Add(float64(len(questions)))

	return &StartTestResponse{Attempt: attempt, Questions: questions}, nil
}

type SubmitAnswerRequest struct {
	QuestionID       uint `json:"questionId" binding:"required"`
	SelectedOption   *int `json:"selectedOption"`
	TimeTakenSeconds int  `json:"timeTakenSeconds"`
}

// SubmitAnswer 非自适应测试的作答提交。重复提交幂等覆盖。
// 只接受本次会话出过的题目；自适应会话的作答必须走逐题接口，
// 否则会绕开逐题校准。校准更新留到交卷时批量执行。
func (s *TestService) SubmitAnswer(userID uint, attemptID string, req SubmitAnswerRequest) (*model.TestAnswer, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptNotInProgress
	}
	if attempt.TestType == model.TestAdaptive {
		return nil, util.ErrAdaptiveAnswerFlow
	}

	question, err := s.QuestionRepo.FindByID(req.QuestionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	// 出题时已建占位记录：没有占位说明题目不属于本次会话，
	// 不允许客户端自带题目灌入作答
	if _, err := s.AnswerRepo.FindByAttemptAndQuestion(attemptID, question.ID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotServed
		}
		return nil, err
	}

	answer := s.buildAnswer(attempt.ID, question, req.SelectedOption, req.TimeTakenSeconds)
	if err := s.AnswerRepo.Upsert(nil, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// buildAnswer 越界的选项下标按答错处理而不是拒绝，避免客户端
// 异常输入让考试永远交不了卷
func (s *TestService) buildAnswer(attemptID string, question *model.Question, selected *int, timeTaken int) *model.TestAnswer {
	answer := &model.TestAnswer{
		AttemptID:        attemptID,
		QuestionID:       question.ID,
		SelectedOption:   selected,
		TimeTakenSeconds: timeTaken,
		Marks:            1,
	}
	if selected != nil && *selected >= 0 && *selected < optionCount(question) {
		answer.IsCorrect = *selected == question.CorrectOption
	}
	return answer
}

func optionCount(q *model.Question) int {
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return 0
	}
	return len(options)
}

type LastAnswer struct {
	QuestionID       uint `json:"questionId" binding:"required"`
	SelectedOption   *int `json:"selectedOption"`
	TimeTakenSeconds int  `json:"timeTakenSeconds"`
}

type NextQuestionResponse struct {
	Question           *model.Question `json:"question"`
	QuestionsAnswered  int             `json:"questionsAnswered"`
	MaxQuestions       int             `json:"maxQuestions"`
	ProgressPercentage float64         `json:"progressPercentage"`
	Completed          bool            `json:"completed"`
	Score              *float64        `json:"score,omitempty"`
}

// NextQuestion 自适应会话的逐题状态机。上一题的作答（如有）先落库
// 并同步更新校准记录，然后重算游标、判完成、定目标难度档、
// 过滤候选并均匀抽一道。
func (s *TestService) NextQuestion(userID uint, attemptID string, last *LastAnswer) (*NextQuestionResponse, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.TestType != model.TestAdaptive {
		return nil, util.ErrNotAdaptiveAttempt
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptNotInProgress
	}

	// 1. 上一题作答落库 + 同步校准（每题每会话至多一次，重复提交
	// 覆盖作答但校准只在首次提交时计入）
	var lastCorrect bool
	var lastQuestion *model.Question
	if last != nil {
		lastQuestion, err = s.QuestionRepo.FindByID(last.QuestionID)
		if err != nil {
			return nil, util.ErrQuestionNotFound
		}

		// 占位记录是"这道题出给过这个会话"的唯一凭证，缺失即拒绝
		existing, findErr := s.AnswerRepo.FindByAttemptAndQuestion(attemptID, last.QuestionID)
		if findErr != nil {
			if findErr == gorm.ErrRecordNotFound {
				return nil, util.ErrQuestionNotServed
			}
			return nil, findErr
		}
		alreadyAnswered := existing.Attempted()

		answer := s.buildAnswer(attemptID, lastQuestion, last.SelectedOption, last.TimeTakenSeconds)
		if err := s.AnswerRepo.Upsert(nil, answer); err != nil {
			return nil, err
		}
		lastCorrect = answer.IsCorrect

		if !alreadyAnswered {
			if _, err := s.Calibration.RecordAnswer(userID, last.QuestionID, lastCorrect, last.TimeTakenSeconds); err != nil {
				return nil, err
			}
		}
	}

	// 2–3. 行锁下重算游标并判完成。上限命中是无条件覆盖：就算客户端
	// 多问一次也直接收卷。
	var resp *NextQuestionResponse
	var completedNow bool
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.AttemptRepo.FindForUpdate(tx, attemptID)
		if err != nil {
			return err
		}
		if locked.Status != model.AttemptInProgress {
			return util.ErrAttemptNotInProgress
		}

		answered, err := s.recountAnswered(tx, locked)
		if err != nil {
			return err
		}
		locked.QuestionsAnswered = answered

		if attemptComplete(answered, locked.MaxQuestions) {
			if err := s.completeLocked(tx, locked); err != nil {
				return err
			}
			completedNow = true
			score := locked.Score
			resp = &NextQuestionResponse{
				QuestionsAnswered:  answered,
				MaxQuestions:       locked.MaxQuestions,
				ProgressPercentage: 100,
				Completed:          true,
				Score:              &score,
			}
			*attempt = *locked
			return nil
		}

		if err := s.AttemptRepo.Update(tx, locked); err != nil {
			return err
		}
		*attempt = *locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		s.afterCompletion(attempt)
		return resp, nil
	}

	s.cacheCursor(attemptID, attempt.QuestionsAnswered)

	// 4. 目标难度档
	targetBand, err := s.targetBand(attempt, last, lastQuestion, lastCorrect)
	if err != nil {
		return nil, err
	}

	// 5. 候选池：范围内未出过的题，按 用户档 → 全局档 → 任意 降级过滤
	candidate, err := s.pickCandidate(userID, attempt, targetBand)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		// 题目耗尽不是错误也不是完成：会话保持进行中，由调用方
		// 决定是否显式交卷
		return &NextQuestionResponse{
			Question:           nil,
			QuestionsAnswered:  attempt.QuestionsAnswered,
			MaxQuestions:       attempt.MaxQuestions,
			ProgressPercentage: progressPct(attempt.QuestionsAnswered, attempt.MaxQuestions),
			Completed:          false,
		}, nil
	}

	// 6. 出题即建占位作答记录
	placeholder := &model.TestAnswer{
		AttemptID:  attemptID,
		QuestionID: candidate.ID,
		Marks:      1,
	}
	if err := s.AnswerRepo.Upsert(nil, placeholder); err != nil {
		return nil, err
	}

	monitoring.QuestionsServed.WithLabelValues(string(model.TestAdaptive)).Inc()

	return &NextQuestionResponse{
		Question:           candidate,
		QuestionsAnswered:  attempt.QuestionsAnswered,
		MaxQuestions:       attempt.MaxQuestions,
		ProgressPercentage: progressPct(attempt.QuestionsAnswered, attempt.MaxQuestions),
		Completed:          false,
	}, nil
}

// recountAnswered 以库内重算为准纠偏游标：客户端崩溃重试可能导致
// 计数偏低，取三个来源的较大值做幂等恢复
func (s *TestService) recountAnswered(tx *gorm.DB, attempt *model.TestAttempt) (int, error) {
	count, err := s.AnswerRepo.CountAnswered(tx, attempt.ID)
	if err != nil {
		return 0, err
	}
	return reconcileCursor(attempt.QuestionsAnswered, int(count), s.cachedCursor(attempt.ID)), nil
}

// reconcileCursor 游标纠偏：库内跟踪值、重算值、redis 镜像取最大
func reconcileCursor(tracked, recounted, cached int) int {
	answered := recounted
	if tracked > answered {
		answered = tracked
	}
	if cached > answered {
		answered = cached
	}
	return answered
}

// attemptComplete 题目上限命中判定，上限未设置时永不自动收卷
func attemptComplete(answered, maxQuestions int) bool {
	return maxQuestions > 0 && answered >= maxQuestions
}

func (s *TestService) targetBand(attempt *model.TestAttempt, last *LastAnswer, lastQuestion *model.Question, lastCorrect bool) (model.DifficultyLevel, error) {
	inCalibration, err := s.Calibration.UserInCalibration(attempt.UserID)
	if err != nil {
		return "", err
	}

	strat, _ := engine.ParseStrategy(attempt.AdaptiveStrategy)

	hasLast := last != nil && lastQuestion != nil
	var lastBand model.DifficultyLevel
	if hasLast {
		lastBand = lastQuestion.DifficultyLevel
		// 上一题的用户档优先，仍在校准的记录不作数
		if rec, err := s.Calibration.DifficultyRepo.FindByUserAndQuestion(attempt.UserID, lastQuestion.ID); err == nil && !rec.IsCalibrating {
			lastBand = rec.DifficultyLevel
		}
	}

	return engine.NextBand(strat, inCalibration, attempt.QuestionsAnswered, attempt.MaxQuestions, lastBand, hasLast, lastCorrect), nil
}

// pickCandidate 按目标档过滤候选并均匀抽一道。过滤降级链：
// 用户专属档 → 题目全局档 → 放弃档位要求。
func (s *TestService) pickCandidate(userID uint, attempt *model.TestAttempt, targetBand model.DifficultyLevel) (*model.Question, error) {
	candidates, err := s.QuestionRepo.FindValid(attempt.PaperID, attempt.SectionID, attempt.SubsectionID, time.Now())
	if err != nil {
		return nil, err
	}

	servedIDs, err := s.AnswerRepo.AnsweredQuestionIDs(attempt.ID)
	if err != nil {
		return nil, err
	}
	served := make(map[uint]bool, len(servedIDs))
	for _, id := range servedIDs {
		served[id] = true
	}

	var unanswered []model.Question
	for _, q := range candidates {
		if !served[q.ID] {
			unanswered = append(unanswered, q)
		}
	}
	if len(unanswered) == 0 {
		return nil, nil
	}
	if targetBand == "" {
		return s.Selection.PickUniform(unanswered), nil
	}

	ids := make([]uint, len(unanswered))
	for i, q := range unanswered {
		ids[i] = q.ID
	}
	records, err := s.Calibration.RecordsForQuestions(userID, ids)
	if err != nil {
		return nil, err
	}

	return s.Selection.PickUniform(engine.FilterByBand(unanswered, records, targetBand)), nil
}

// FinishAttempt 交卷计分。幂等：已完成的会话直接返回原得分。
func (s *TestService) FinishAttempt(userID uint, attemptID string) (float64, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return 0, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return 0, util.ErrPermissionDenied
	}
	if attempt.Status == model.AttemptCompleted {
		return attempt.Score, nil
	}
	if attempt.Status == model.AttemptAbandoned {
		return 0, util.ErrAttemptNotInProgress
	}

	var completedNow bool
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.AttemptRepo.FindForUpdate(tx, attemptID)
		if err != nil {
			return err
		}
		// 并发交卷：谁先拿到锁谁收卷，后来者幂等返回
		if locked.Status == model.AttemptCompleted {
			*attempt = *locked
			return nil
		}
		if locked.Status != model.AttemptInProgress {
			return util.ErrAttemptNotInProgress
		}

		answered, err := s.recountAnswered(tx, locked)
		if err != nil {
			return err
		}
		locked.QuestionsAnswered = answered

		if err := s.completeLocked(tx, locked); err != nil {
			return err
		}
		completedNow = true
		*attempt = *locked
		return nil
	})
	if err != nil {
		return 0, err
	}

	if completedNow {
		// 非自适应测试的校准在这里批量执行（自适应已逐题更新过，
		// 不再重复计入）
		if attempt.TestType != model.TestAdaptive {
			s.runBatchCalibration(attempt)
		}
		s.afterCompletion(attempt)
	}
	return attempt.Score, nil
}

// completeLocked 在持有会话行锁的事务内计分并迁移到 Completed
func (s *TestService) completeLocked(tx *gorm.DB, attempt *model.TestAttempt) error {
	var answers []model.TestAnswer
	if err := tx.Where("attempt_id = ?", attempt.ID).Find(&answers).Error; err != nil {
		return err
	}

	observations, err := s.buildObservations(tx, answers)
	if err != nil {
		return err
	}

	score, known := engine.Score(attempt.TestType, observations)
	if !known {
		logger.Log.Warn("scoring unrecognized test type, defaulting to attempted denominator",
			zap.String("attempt_id", attempt.ID),
			zap.String("test_type", string(attempt.TestType)))
	}

	now := time.Now()
	attempt.Score = score
	attempt.Status = model.AttemptCompleted
	attempt.CompletedAt = &now
	return s.AttemptRepo.Update(tx, attempt)
}

func (s *TestService) buildObservations(tx *gorm.DB, answers []model.TestAnswer) ([]engine.AnswerObservation, error) {
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	var questions []model.Question
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&questions).Error; err != nil {
			return nil, err
		}
	}
	correctByID := make(map[uint]int, len(questions))
	for _, q := range questions {
		correctByID[q.ID] = q.CorrectOption
	}

	observations := make([]engine.AnswerObservation, 0, len(answers))
	for _, a := range answers {
		observations = append(observations, engine.AnswerObservation{
			Selected:      a.SelectedOption,
			CorrectOption: correctByID[a.QuestionID],
			Marks:         a.Marks,
		})
	}
	return observations, nil
}

// runBatchCalibration 交卷时对所有已作答题目各执行一次校准更新。
// 单条失败只记日志，不影响交卷。
func (s *TestService) runBatchCalibration(attempt *model.TestAttempt) {
	answers, err := s.AnswerRepo.FindByAttempt(attempt.ID)
	if err != nil {
		logger.Log.Error("failed to load answers for batch calibration",
			zap.String("attempt_id", attempt.ID), zap.Error(err))
		return
	}
	for _, a := range answers {
		if !a.Attempted() {
			continue
		}
		if _, err := s.Calibration.RecordAnswer(attempt.UserID, a.QuestionID, a.IsCorrect, a.TimeTakenSeconds); err != nil {
			logger.Log.Warn("batch calibration update failed",
				zap.String("attempt_id", attempt.ID),
				zap.Uint("question_id", a.QuestionID),
				zap.Error(err))
		}
	}
}

// afterCompletion Completed 迁移的一次性收尾：指标 + 聚合通知。
// 通知异步发出，失败不回传。
func (s *TestService) afterCompletion(attempt *model.TestAttempt) {
	monitoring.AttemptsCompleted.WithLabelValues(string(attempt.TestType)).Inc()
	s.clearCursor(attempt.ID)

	if s.Notifier == nil {
		return
	}
	go func(attemptID string) {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("aggregation notifier panicked",
					zap.String("attempt_id", attemptID), zap.Any("panic", r))
			}
		}()
		s.Notifier.OnAttemptCompleted(attemptID)
	}(attempt.ID)
}

func (s *TestService) GetAttempt(userID uint, attemptID string) (*model.TestAttempt, []model.TestAnswer, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, nil, util.ErrPermissionDenied
	}
	answers, err := s.AnswerRepo.FindByAttempt(attemptID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, answers, nil
}

func (s *TestService) ListAttempts(userID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.AttemptRepo.ListByUser(userID, page, limit)
}

// AbandonStale 后台定时任务：超时未交卷的会话标记为放弃
func (s *TestService) AbandonStale() error {
	cutoff := time.Now().Add(-time.Duration(s.Cfg.Engine.StaleAttemptHours) * time.Hour)
	n, err := s.AttemptRepo.AbandonStale(cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Log.Info("abandoned stale attempts", zap.Int64("count", n))
	}
	return nil
}

func progressPct(answered, max int) float64 {
	if max <= 0 {
		return 0
	}
	pct := 100 * float64(answered) / float64(max)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func cursorKey(attemptID string) string {
	return fmt.Sprintf("attempt:cursor:%s", attemptID)
}

// cacheCursor redis 里镜像一份游标，崩溃重试时与库内重算取大者
func (s *TestService) cacheCursor(attemptID string, answered int) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Redis.Set(ctx, cursorKey(attemptID), answered, 24*time.Hour).Err(); err != nil {
		logger.Log.Debug("failed to cache attempt cursor", zap.Error(err))
	}
}

func (s *TestService) cachedCursor(attemptID string) int {
	if s.Redis == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := s.Redis.Get(ctx, cursorKey(attemptID)).Int()
	if err != nil {
		return 0
	}
	return n
}

func (s *TestService) clearCursor(attemptID string) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Redis.Del(ctx, cursorKey(attemptID))
}
