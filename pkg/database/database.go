package database

import (
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 唯一键冲突翻译成 gorm.ErrDuplicatedKey，白名单等处按冲突处理
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.WhitelistEmail{},
		&model.Paper{},
		&model.Section{},
		&model.Subsection{},
		&model.Question{},
		&model.UserQuestionDifficulty{},
		&model.TestAttempt{},
		&model.TestAnswer{},
		&model.TopicSummary{},
		&model.OverallSummary{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认管理员白名单（首次部署时允许注册管理员账号）
	var wlCount int64
	db.Model(&model.WhitelistEmail{}).Count(&wlCount)
	if wlCount == 0 {
		db.Create(&model.WhitelistEmail{
			Email: "admin@exam-prep.local",
			Note:  "默认管理员邮箱，部署后请替换",
		})
	}

	return db, nil
}
