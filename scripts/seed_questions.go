// 题库导入脚本
//
// 从 JSON 文件批量导入试卷/章节/题目，用于首次部署或大规模补充题库。
// 数值难度会按固定区间换算成难度档位。
//
// 用法: go run scripts/seed_questions.go <questions.json>

package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/engine"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/pkg/database"
	"exam_prep_backend/pkg/logger"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedFile struct {
	Papers []seedPaper `json:"papers"`
}

type seedPaper struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Sections    []seedSection `json:"sections"`
}

type seedSection struct {
	Name        string           `json:"name"`
	Subsections []seedSubsection `json:"subsections"`
	Questions   []seedQuestion   `json:"questions"`
}

type seedSubsection struct {
	Name      string         `json:"name"`
	Questions []seedQuestion `json:"questions"`
}

type seedQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
	Explanation   string   `json:"explanation"`
	Difficulty    *float64 `json:"difficulty"`
	ValidUntil    *string  `json:"validUntil"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("用法: go run scripts/seed_questions.go <questions.json>")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("无法读取题库文件: %v", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("解析题库文件失败: %v", err)
	}

	total := 0
	for _, p := range seed.Papers {
		paper := &model.Paper{Name: p.Name, Description: p.Description}
		if err := db.Create(paper).Error; err != nil {
			log.Fatalf("创建试卷失败 %q: %v", p.Name, err)
		}

		for _, sec := range p.Sections {
			section := &model.Section{PaperID: paper.ID, Name: sec.Name}
			if err := db.Create(section).Error; err != nil {
				log.Fatalf("创建章节失败 %q: %v", sec.Name, err)
			}

			total += insertQuestions(db, paper.ID, section.ID, nil, sec.Questions)

			for _, sub := range sec.Subsections {
				subsection := &model.Subsection{SectionID: section.ID, Name: sub.Name}
				if err := db.Create(subsection).Error; err != nil {
					log.Fatalf("创建小节失败 %q: %v", sub.Name, err)
				}
				total += insertQuestions(db, paper.ID, section.ID, &subsection.ID, sub.Questions)
			}
		}
	}

	log.Printf("导入完成，共 %d 道题", total)
}

func insertQuestions(db *gorm.DB, paperID, sectionID uint, subsectionID *uint, questions []seedQuestion) int {
	count := 0
	for _, q := range questions {
		if len(q.Options) < 2 {
			log.Printf("跳过选项不足的题目: %q", q.Text)
			continue
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			log.Printf("跳过正确选项越界的题目: %q", q.Text)
			continue
		}

		optionBytes, _ := json.Marshal(q.Options)
		difficulty := 5.0
		if q.Difficulty != nil {
			difficulty = engine.ClampDifficulty(*q.Difficulty)
		}

		question := &model.Question{
			PaperID:           paperID,
			SectionID:         sectionID,
			SubsectionID:      subsectionID,
			Text:              q.Text,
			Options:           string(optionBytes),
			CorrectOption:     q.CorrectOption,
			Explanation:       q.Explanation,
			NumericDifficulty: difficulty,
			DifficultyLevel:   engine.BandFor(difficulty),
			ValidUntil:        parseValidUntil(q.ValidUntil),
		}
		if err := db.Create(question).Error; err != nil {
			log.Printf("创建题目失败 %q: %v", q.Text, err)
			continue
		}
		count++
	}
	return count
}

func parseValidUntil(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		log.Printf("忽略无法解析的有效期 %q: %v", *s, err)
		return nil
	}
	return &t
}
