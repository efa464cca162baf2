package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"storefront/pkg/logger"
)

// Task периодическая задача воркера.
type Task interface {
	// TTL интервал между запусками, он же предел длительности одного запуска.
	TTL() time.Duration
	Do(context.Context) error
	// Info имя задачи для логов.
	Info() string
}

type handlerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Worker struct {
	log   handlerLogger
	tasks []Task
	wg    sync.WaitGroup
}

// New один раз синхронно прогоняет все задачи и, если прогрев прошел без ошибок
// и паник, запускает их по расписанию до отмены ctx.
func New(ctx context.Context, log handlerLogger, tasks []Task) (*Worker, error) {
	worker := &Worker{
		log:   log,
		tasks: tasks,
	}

	warmup, warmupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		warmup.Go(func() error {
			log.Info("Initializing", logger.NewField("task", task.Info()))
			if err := worker.runSafely(warmupCtx, task); err != nil {
				return fmt.Errorf("init %s: %w", task.Info(), err)
			}
			return nil
		})
	}
	if err := warmup.Wait(); err != nil {
		return nil, fmt.Errorf("failed to initialize tasks: %w", err)
	}

	for _, task := range tasks {
		worker.wg.Add(1)
		go func() {
			defer worker.wg.Done()
			worker.loop(ctx, task)
		}()
	}

	return worker, nil
}

// Wait блокируется до остановки всех периодических задач.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context, task Task) {
	ttl := task.TTL()
	if ttl <= 0 {
		w.log.Warn("invalid TTL, skipping periodic execution",
			logger.NewField("task", task.Info()),
			logger.NewField("TTL", ttl),
		)
		return
	}
	w.log.Info("Starting periodic execution",
		logger.NewField("task", task.Info()),
		logger.NewField("TTL", ttl),
	)

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopping task", logger.NewField("task", task.Info()))
			return
		case <-ticker.C:
			w.tick(ctx, task, ttl)
		}
	}
}

func (w *Worker) tick(ctx context.Context, task Task, ttl time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()

	started := time.Now()
	err := w.runSafely(runCtx, task)
	if err != nil && ctx.Err() == nil {
		w.log.Error("Background task failed",
			logger.NewField("task", task.Info()),
			logger.NewField("elapsed", time.Since(started).String()),
			logger.NewField("error", err),
		)
	}
}

// runSafely превращает панику задачи в ошибку.
func (w *Worker) runSafely(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			w.log.Error("Background task panic",
				logger.NewField("task", task.Info()),
				logger.NewField("recover", r),
				logger.NewField("stack", string(stack)),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return task.Do(ctx)
}
