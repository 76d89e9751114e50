package configwatcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"exam_prep_backend/internal/config"
	"exam_prep_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigReloader 配置热更回调，拿到的是完整重载后的配置
type ConfigReloader func(cfg *config.Config)

// WatchConfig 监听配置文件并防抖重载。编辑器保存常用
// rename+create 替换原文件，所以三种事件都要接
func WatchConfig(configPath string, reloader ConfigReloader) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal("Failed to create config watcher:", err)
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		log.Fatal("Failed to get absolute path:", err)
	}

	// 监听目录而非文件本身，rename 替换后句柄不会失效
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		log.Fatal("Failed to watch config dir:", err)
	}

	var mu sync.Mutex
	timer := time.NewTimer(0)
	<-timer.C

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// 防抖处理
				mu.Lock()
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(1 * time.Second)
				mu.Unlock()
			}
		case <-timer.C:
			// 重新加载配置
			newCfg, err := config.LoadConfig(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded",
				zap.Int("default_max_questions", newCfg.Engine.DefaultMaxQuestions),
				zap.Int("default_mock_count", newCfg.Engine.DefaultMockCount),
				zap.Int("stale_attempt_hours", newCfg.Engine.StaleAttemptHours))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
