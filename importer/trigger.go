// StagingTrigger 监听暂存文件变化并触发通知，不读取文件内容
// 使用者在回调里自行执行导入流程

package importer

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/hatlonely/skux/log"
)

type StagingTriggerOptions struct {
	// FilePath 暂存文件路径
	FilePath string `validate:"required"`
	// Debounce 事件去抖间隔，宿主连续写入时合并为一次通知
	Debounce time.Duration
	Logger   log.Logger
}

type StagingTrigger struct {
	filePath string
	debounce time.Duration

	done chan struct{}
	wg   sync.WaitGroup

	logger log.Logger
}

func NewStagingTriggerWithOptions(options *StagingTriggerOptions) (*StagingTrigger, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if options.FilePath == "" {
		return nil, errors.New("filePath is required")
	}
	debounce := options.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &StagingTrigger{
		filePath: options.FilePath,
		debounce: debounce,
		done:     make(chan struct{}, 1),
		logger:   logger.WithGroup("stagingTrigger").With("filePath", options.FilePath),
	}, nil
}

// OnChange 注册文件变化回调并开始监听。
// 监听目录而非文件本身，宿主通过 rename 原子替换时仍能收到事件。
func (t *StagingTrigger) OnChange(listener func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "fsnotify.NewWatcher failed")
	}

	err = watcher.Add(filepath.Dir(t.filePath))
	if err != nil {
		watcher.Close()
		return errors.Wrap(err, "watcher.Add failed")
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if event.Name != t.filePath {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(t.debounce)
					fire = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(t.debounce)
				}
			case <-fire:
				timer, fire = nil, nil
				if err := listener(); err != nil {
					t.logger.Warn("listener failed", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				t.logger.Warn("watcher error", "error", err)
			case <-t.done:
				return
			}
		}
	}()

	return nil
}

func (t *StagingTrigger) Close() error {
	t.done <- struct{}{}
	t.wg.Wait()
	close(t.done)
	return nil
}
