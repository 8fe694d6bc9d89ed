package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScheduledTask - периодическая задача по cron-расписанию.
// Следующий запуск пропускается, пока не закончился предыдущий.
type ScheduledTask struct {
	name   string
	cronID cron.EntryID
	cron   *cron.Cron
	run    func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func NewScheduledTask(name, cronSpec string, taskFunc func(ctx context.Context), logger *zap.Logger) (*ScheduledTask, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)

	ctx, cancel := context.WithCancel(context.Background())
	task := &ScheduledTask{
		name:   name,
		cron:   c,
		run:    taskFunc,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(cronSpec, func() {
		if ctx.Err() != nil {
			return
		}
		taskFunc(ctx)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("неверное расписание задачи '%s' (%s): %w", name, cronSpec, err)
	}
	task.cronID = id
	return task, nil
}

func (t *ScheduledTask) Start() {
	t.cron.Start()
}

// RunNow выполняет задачу вне расписания в текущей горутине.
func (t *ScheduledTask) RunNow() {
	t.run(t.ctx)
}

func (t *ScheduledTask) Next() time.Time {
	return t.cron.Entry(t.cronID).Next
}

// Cancel останавливает расписание и ждёт завершения уже запущенной задачи.
func (t *ScheduledTask) Cancel() {
	t.once.Do(func() {
		t.cron.Remove(t.cronID)
		t.cancel()
		<-t.cron.Stop().Done()
	})
}

// cronLogger - адаптер zap под интерфейс логгера cron.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
