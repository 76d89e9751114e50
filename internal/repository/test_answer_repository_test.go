package repository

import (
	"fmt"
	"testing"
	"time"

	"exam_prep_backend/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openAnswerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.TestAnswer{}))
	return db
}

func answerIntPtr(v int) *int {
	return &v
}

func TestUpsertCreatesThenOverwrites(t *testing.T) {
	repo := NewTestAnswerRepository(openAnswerTestDB(t))

	// 出题时的占位记录
	placeholder := &model.TestAnswer{AttemptID: "attempt-1", QuestionID: 5, Marks: 1}
	require.NoError(t, repo.Upsert(nil, placeholder))
	firstID := placeholder.ID

	// 作答覆盖同一条记录
	answered := &model.TestAnswer{
		AttemptID:        "attempt-1",
		QuestionID:       5,
		SelectedOption:   answerIntPtr(2),
		TimeTakenSeconds: 30,
		Marks:            1,
		IsCorrect:        true,
	}
	require.NoError(t, repo.Upsert(nil, answered))
	assert.Equal(t, firstID, answered.ID)

	var count int64
	require.NoError(t, repo.DB.Model(&model.TestAnswer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindByAttemptAndQuestion("attempt-1", 5)
	require.NoError(t, err)
	assert.True(t, stored.IsCorrect)
	assert.Equal(t, 2, *stored.SelectedOption)
}

func TestUpsertSurvivesConcurrentInsert(t *testing.T) {
	db := openAnswerTestDB(t)
	repo := NewTestAnswerRepository(db)

	// 在查与插之间让并发请求抢先插入同一条 (attempt, question)，
	// Upsert 撞唯一索引后必须改走更新而不是把错误抛给调用方
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		now := time.Now()
		db.Exec(
			"INSERT INTO test_answers (attempt_id, question_id, time_taken_seconds, marks, is_correct, created_at, updated_at) VALUES (?, ?, 0, 1, 0, ?, ?)",
			"attempt-1", uint(5), now, now)
	}))

	answer := &model.TestAnswer{
		AttemptID:      "attempt-1",
		QuestionID:     5,
		SelectedOption: answerIntPtr(3),
		Marks:          1,
	}
	require.NoError(t, repo.Upsert(nil, answer))
	assert.True(t, raced)

	var count int64
	require.NoError(t, db.Model(&model.TestAnswer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindByAttemptAndQuestion("attempt-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, *stored.SelectedOption)
}

func TestCountAnsweredIgnoresPlaceholders(t *testing.T) {
	repo := NewTestAnswerRepository(openAnswerTestDB(t))

	require.NoError(t, repo.Upsert(nil, &model.TestAnswer{AttemptID: "attempt-1", QuestionID: 1, Marks: 1}))
	require.NoError(t, repo.Upsert(nil, &model.TestAnswer{
		AttemptID: "attempt-1", QuestionID: 2, SelectedOption: answerIntPtr(0), Marks: 1,
	}))

	count, err := repo.CountAnswered(nil, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 已出题列表包含未作答的占位
	ids, err := repo.AnsweredQuestionIDs("attempt-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, ids)
}
