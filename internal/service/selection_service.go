package service

import (
	"math/rand"
	"sync"
	"time"

	"exam_prep_backend/internal/engine"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/pkg/logger"

	"go.uber.org/zap"
)

// SelectionService 模考出卷：分桶 + 策略排序 + 不足补齐。
type SelectionService struct {
	QuestionRepo   *repository.QuestionRepository
	DifficultyRepo *repository.DifficultyRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelectionService(questionRepo *repository.QuestionRepository, difficultyRepo *repository.DifficultyRepository) *SelectionService {
	return &SelectionService{
		QuestionRepo:   questionRepo,
		DifficultyRepo: difficultyRepo,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ParseStrategy 解析策略名，未知名字回退默认策略并记告警
func (s *SelectionService) ParseStrategy(name string) engine.Strategy {
	strat, known := engine.ParseStrategy(name)
	if !known && name != "" {
		logger.Log.Warn("unknown selection strategy, falling back to balanced",
			zap.String("strategy", name))
	}
	return strat
}

// SelectQuestions 为一次测试挑选 count 道题。候选集为空时返回空
// 列表，由开考流程决定这是硬失败（必考章节无有效题目）还是
// 通过重复补齐消化的软性不足。
func (s *SelectionService) SelectQuestions(userID, paperID uint, sectionID, subsectionID *uint, count int, strategy engine.Strategy) ([]model.Question, error) {
	candidates, err := s.QuestionRepo.FindValid(paperID, sectionID, subsectionID, time.Now())
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(candidates))
	for i, q := range candidates {
		ids[i] = q.ID
	}
	records, err := s.DifficultyRepo.FindByUserAndQuestions(userID, ids)
	if err != nil {
		return nil, err
	}

	buckets := engine.Categorize(candidates, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	return engine.Select(buckets, candidates, count, strategy, s.rng), nil
}

// PickRandom 普通测试的朴素随机抽题（不走难度分桶）
func (s *SelectionService) PickRandom(paperID uint, sectionID, subsectionID *uint, count int) ([]model.Question, error) {
	candidates, err := s.QuestionRepo.FindValid(paperID, sectionID, subsectionID, time.Now())
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return engine.Select(engine.Buckets{}, candidates, count, engine.StrategyRandom, s.rng), nil
}

// PickUniform 从给定候选里均匀挑一道（自适应逐题流程使用）
func (s *SelectionService) PickUniform(candidates []model.Question) *model.Question {
	if len(candidates) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	q := candidates[s.rng.Intn(len(candidates))]
	return &q
}
