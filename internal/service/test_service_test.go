package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"exam_prep_backend/internal/engine"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func intPtr(v int) *int {
	return &v
}

func fourOptionQuestion(correct int) *model.Question {
	q := &model.Question{
		Options:       `["A","B","C","D"]`,
		CorrectOption: correct,
	}
	q.ID = 7
	return q
}

func TestBuildAnswerCorrectness(t *testing.T) {
	s := &TestService{}
	q := fourOptionQuestion(2)

	answer := s.buildAnswer("attempt-1", q, intPtr(2), 40)
	assert.True(t, answer.IsCorrect)
	assert.Equal(t, 40, answer.TimeTakenSeconds)

	answer = s.buildAnswer("attempt-1", q, intPtr(1), 40)
	assert.False(t, answer.IsCorrect)
}

func TestBuildAnswerOutOfRangeOptionIsIncorrect(t *testing.T) {
	// 越界下标按答错处理而不是报错
	s := &TestService{}
	q := fourOptionQuestion(2)

	for _, selected := range []int{-1, 4, 99} {
		answer := s.buildAnswer("attempt-1", q, intPtr(selected), 10)
		assert.False(t, answer.IsCorrect, "selected=%d", selected)
		assert.Equal(t, selected, *answer.SelectedOption)
	}
}

func TestBuildAnswerUnanswered(t *testing.T) {
	s := &TestService{}
	answer := s.buildAnswer("attempt-1", fourOptionQuestion(0), nil, 0)
	assert.False(t, answer.Attempted())
	assert.False(t, answer.IsCorrect)
}

func TestBuildAnswerMalformedOptions(t *testing.T) {
	s := &TestService{}
	q := &model.Question{Options: "not-json", CorrectOption: 0}
	answer := s.buildAnswer("attempt-1", q, intPtr(0), 5)
	assert.False(t, answer.IsCorrect)
}

func TestProgressPct(t *testing.T) {
	assert.Equal(t, 0.0, progressPct(5, 0))
	assert.Equal(t, 50.0, progressPct(10, 20))
	assert.Equal(t, 100.0, progressPct(25, 20))
}

func TestOptionCount(t *testing.T) {
	assert.Equal(t, 4, optionCount(fourOptionQuestion(0)))
	assert.Equal(t, 0, optionCount(&model.Question{Options: "oops"}))
}

func TestAttemptComplete(t *testing.T) {
	assert.False(t, attemptComplete(9, 10))
	assert.True(t, attemptComplete(10, 10))
	assert.True(t, attemptComplete(11, 10))
	// 上限未设置时永不自动收卷
	assert.False(t, attemptComplete(100, 0))
}

func TestReconcileCursor(t *testing.T) {
	// 三个来源取最大，崩溃重试导致的偏低计数被纠正
	assert.Equal(t, 5, reconcileCursor(5, 3, 0))
	assert.Equal(t, 7, reconcileCursor(5, 7, 0))
	assert.Equal(t, 9, reconcileCursor(5, 7, 9))
	assert.Equal(t, 0, reconcileCursor(0, 0, 0))
}

func TestAnswerJSONOmitsCorrectness(t *testing.T) {
	// 过程接口不回传对错，否则客户端可以反复改答案试出正确选项
	answer := &model.TestAnswer{
		AttemptID:      "attempt-1",
		QuestionID:     7,
		SelectedOption: intPtr(2),
		IsCorrect:      true,
	}
	raw, err := json.Marshal(answer)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isCorrect")
	assert.NotContains(t, string(raw), "IsCorrect")
}

func TestAdaptiveScoreAtQuestionCap(t *testing.T) {
	// 上限命中才收卷，得分按已作答题数计
	const maxQuestions = 10
	observations := make([]engine.AnswerObservation, 0, maxQuestions)
	for i := 0; i < maxQuestions; i++ {
		selected := 0
		if i < 7 {
			selected = 1 // 前 7 题答对
		}
		observations = append(observations, engine.AnswerObservation{
			Selected:      intPtr(selected),
			CorrectOption: 1,
			Marks:         1,
		})
		answered := i + 1
		if answered < maxQuestions {
			assert.False(t, attemptComplete(answered, maxQuestions), "answered=%d", answered)
		}
	}
	assert.True(t, attemptComplete(maxQuestions, maxQuestions))

	score, known := engine.Score(model.TestAdaptive, observations)
	assert.True(t, known)
	assert.InDelta(t, 70.0, score, 1e-9)
}

func openSubmitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.TestAttempt{}, &model.Question{}, &model.TestAnswer{}))
	return db
}

func newSubmitService(t *testing.T) (*TestService, *gorm.DB) {
	t.Helper()
	db := openSubmitTestDB(t)
	return &TestService{
		AttemptRepo:  repository.NewTestAttemptRepository(db),
		AnswerRepo:   repository.NewTestAnswerRepository(db),
		QuestionRepo: repository.NewQuestionRepository(db),
	}, db
}

func seedAttempt(t *testing.T, db *gorm.DB, userID uint, testType model.TestType) *model.TestAttempt {
	t.Helper()
	attempt := &model.TestAttempt{
		UserID:    userID,
		PaperID:   1,
		TestType:  testType,
		Status:    model.AttemptInProgress,
		StartedAt: time.Now(),
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func seedQuestion(t *testing.T, db *gorm.DB, correct int) *model.Question {
	t.Helper()
	q := &model.Question{
		PaperID:       1,
		SectionID:     1,
		Text:          "pick one",
		Options:       `["A","B","C","D"]`,
		CorrectOption: correct,
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func TestSubmitAnswerRejectsUnservedQuestion(t *testing.T) {
	s, db := newSubmitService(t)
	attempt := seedAttempt(t, db, 1, model.TestMock)
	q := seedQuestion(t, db, 2)

	// 该题存在但从未出给这次会话
	_, err := s.SubmitAnswer(1, attempt.ID, SubmitAnswerRequest{
		QuestionID:     q.ID,
		SelectedOption: intPtr(2),
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotServed)

	// 灌入失败后不留任何作答记录
	var count int64
	require.NoError(t, db.Model(&model.TestAnswer{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSubmitAnswerRejectsAdaptiveAttempt(t *testing.T) {
	s, db := newSubmitService(t)
	attempt := seedAttempt(t, db, 1, model.TestAdaptive)
	q := seedQuestion(t, db, 2)
	require.NoError(t, db.Create(&model.TestAnswer{
		AttemptID: attempt.ID, QuestionID: q.ID, Marks: 1,
	}).Error)

	// 自适应会话必须走逐题接口，直接提交会绕开校准
	_, err := s.SubmitAnswer(1, attempt.ID, SubmitAnswerRequest{
		QuestionID:     q.ID,
		SelectedOption: intPtr(2),
	})
	assert.ErrorIs(t, err, util.ErrAdaptiveAnswerFlow)
}

func TestSubmitAnswerOverwritesServedQuestion(t *testing.T) {
	s, db := newSubmitService(t)
	attempt := seedAttempt(t, db, 1, model.TestMock)
	q := seedQuestion(t, db, 2)
	require.NoError(t, db.Create(&model.TestAnswer{
		AttemptID: attempt.ID, QuestionID: q.ID, Marks: 1,
	}).Error)

	answer, err := s.SubmitAnswer(1, attempt.ID, SubmitAnswerRequest{
		QuestionID:     q.ID,
		SelectedOption: intPtr(1),
	})
	require.NoError(t, err)
	assert.False(t, answer.IsCorrect)

	// 重复提交幂等覆盖，不产生第二条记录
	answer, err = s.SubmitAnswer(1, attempt.ID, SubmitAnswerRequest{
		QuestionID:     q.ID,
		SelectedOption: intPtr(2),
	})
	require.NoError(t, err)
	assert.True(t, answer.IsCorrect)

	var count int64
	require.NoError(t, db.Model(&model.TestAnswer{}).Where("attempt_id = ?", attempt.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
