// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fx-sentiment-bot/pkg/logger"
)

const defaultJobTimeout = 5 * time.Minute

// Schedule определяет расписание задачи
type Schedule struct {
	// DailyAt: задача запускается раз в день в заданное UTC время
	// Every: задача запускается с заданным интервалом
	// Jittered: интервал плюс равномерное смещение в пределах ±jitter
	kind     scheduleKind
	hour     int
	minute   int
	interval time.Duration
	jitter   time.Duration

	// rnd возвращает значение в [0, n); подменяется в тестах
	rnd func(n int64) int64
}

type scheduleKind int

const (
	kindDaily    scheduleKind = iota // раз в сутки в HH:MM UTC
	kindInterval                     // каждые N единиц времени
	kindJittered                     // каждые N ± jitter
)

// DailyAt создает расписание "каждый день в HH:MM UTC"
func DailyAt(hour, minute int) Schedule {
	return Schedule{kind: kindDaily, hour: hour, minute: minute}
}

// Every создает расписание "каждые N времени"
func Every(d time.Duration) Schedule {
	return Schedule{kind: kindInterval, interval: d}
}

// Jittered создает расписание "каждые base ± jitter".
// Смещение выбирается заново перед каждым запуском.
func Jittered(base, jitter time.Duration) Schedule {
	if jitter < 0 {
		jitter = -jitter
	}
	return Schedule{kind: kindJittered, interval: base, jitter: jitter, rnd: rand.Int63n}
}

// String описание расписания для логов и /status
func (s Schedule) String() string {
	switch s.kind {
	case kindDaily:
		return fmt.Sprintf("daily at %02d:%02d UTC", s.hour, s.minute)
	case kindInterval:
		return fmt.Sprintf("every %v", s.interval)
	case kindJittered:
		return fmt.Sprintf("every %v ±%v", s.interval, s.jitter)
	default:
		return "unknown"
	}
}

// delay вычисляет задержку до следующего запуска относительно now
func (s Schedule) delay(now time.Time) time.Duration {
	switch s.kind {
	case kindDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next.Sub(now)
	case kindInterval:
		return s.interval
	case kindJittered:
		d := s.interval
		if s.jitter > 0 {
			rnd := s.rnd
			if rnd == nil {
				rnd = rand.Int63n
			}
			span := 2*int64(s.jitter) + 1
			d += time.Duration(rnd(span) - int64(s.jitter))
		}
		if d < 0 {
			d = 0
		}
		return d
	default:
		return 24 * time.Hour
	}
}

// Job описывает одну планируемую задачу
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	Handler     func(ctx context.Context) error
	RunOnStart  bool          // первый запуск сразу после Start
	Timeout     time.Duration // 0 - defaultJobTimeout

	mu      sync.Mutex
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
	running bool
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		Schedule:    j.Schedule.String(),
		NextRun:     j.nextRun,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
		Running:     j.running,
	}
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	Schedule    string
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
	Running     bool
}

// Scheduler управляет периодическими задачами приложения.
// Каждая задача крутится в своей горутине; следующий таймер
// взводится только после завершения обработчика, поэтому
// два запуска одной задачи никогда не пересекаются.
type Scheduler struct {
	jobs    []*Job
	mu      sync.RWMutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New создает новый планировщик
func New() *Scheduler {
	return &Scheduler{}
}

// Register добавляет задачу в планировщик.
// Должен вызываться до Start().
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	logger.Info("📋 [Scheduler] Зарегистрирована задача %q (%s)", job.Name, job.Schedule)
}

// Start запускает задачи в фоновых горутинах
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			s.loop(ctx, j)
		}(job)
	}
	logger.Info("✅ [Scheduler] Запущен (%d задач)", len(jobs))
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	logger.Info("🛑 [Scheduler] Остановлен")
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.RUnlock()

	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}
	return statuses
}

// loop: IDLE -> ожидание таймера -> запуск -> взвод следующего таймера
func (s *Scheduler) loop(ctx context.Context, job *Job) {
	var first time.Duration
	if !job.RunOnStart {
		first = job.Schedule.delay(time.Now().UTC())
	}
	s.arm(job, first)

	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.run(ctx, job)
			if ctx.Err() != nil {
				return
			}
			next := job.Schedule.delay(time.Now().UTC())
			s.arm(job, next)
			timer.Reset(next)
		}
	}
}

func (s *Scheduler) arm(job *Job, d time.Duration) {
	job.mu.Lock()
	job.nextRun = time.Now().UTC().Add(d)
	job.mu.Unlock()

	logger.Debug("⏱️ [Scheduler] %q: следующий запуск через %v", job.Name, d.Round(time.Second))
}

// run выполняет одну задачу и обновляет её состояние.
// Паника обработчика не останавливает цикл задачи.
func (s *Scheduler) run(parent context.Context, job *Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	job.mu.Lock()
	job.running = true
	job.mu.Unlock()

	logger.Debug("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := time.Now()

	err := safeCall(ctx, job.Handler)

	elapsed := time.Since(start)

	job.mu.Lock()
	job.running = false
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %v: %v", job.Name, elapsed, err)
	} else {
		logger.Debug("✅ [Scheduler] Задача %q выполнена за %v", job.Name, elapsed)
	}
}

func safeCall(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx)
}
