package api

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"portfolio-api/domain"
)

type visitJob struct {
	visit     domain.Visit
	dedupeKey string
}

var (
	once           sync.Once
	jobs           chan visitJob
	workerCount    int
	jobBuf         int
	enqueueTimeout time.Duration
	handoffTimeout time.Duration
	bg             = context.Background()
	globalStore    Storage
	globalDeduper  Deduper
	globalLog      *log.Logger
	workerWG       sync.WaitGroup
)

// shutdownVisitTracker stops worker goroutines and clears shared state. It is intended for tests.
func shutdownVisitTracker() {
	if jobs != nil {
		close(jobs)
		jobs = nil
	}

	workerWG.Wait()

	globalStore = nil
	globalDeduper = nil
	globalLog = nil
	workerCount = 0
	jobBuf = 0
	enqueueTimeout = 0
	handoffTimeout = 0
	once = sync.Once{}
	workerWG = sync.WaitGroup{}
}

func initVisitTracker(store Storage, deduper Deduper, log *log.Logger) {
	once.Do(func() {
		globalStore = store
		globalDeduper = deduper
		if log == nil {
			panic("Logger is not initialized")
		}
		globalLog = log

		workerCount = envInt("TRACK_WORKERS", 8)
		jobBuf = envInt("TRACK_BUFFER", 1024)
		enqueueTimeout = envDur("TRACK_TIMEOUT", 30*time.Second)
		handoffTimeout = envDur("TRACK_HANDOFF_TIMEOUT", 15*time.Millisecond)

		jobs = make(chan visitJob, jobBuf)
		for i := 0; i < workerCount; i++ {
			workerWG.Add(1)
			go worker(i, jobs)
		}
		globalLog.Infof("visit tracker started, workers: %d, buffer: %d, timeout: %v, handoff: %v", workerCount, jobBuf, enqueueTimeout, handoffTimeout)
	})
}

func worker(id int, jobCh <-chan visitJob) {
	defer workerWG.Done()
	for j := range jobCh {
		ctx, cancel := context.WithTimeout(bg, enqueueTimeout)
		err := globalStore.EnqueueVisit(ctx, j.visit)
		cancel()

		if err != nil {
			if j.dedupeKey != "" {
				if rerr := globalDeduper.Remove(bg, j.dedupeKey); rerr != nil {
					globalLog.Errorf("dedupe rollback failed, err: %v, key: %s", rerr, j.dedupeKey)
				}
			}
			globalLog.Errorf("visit enqueue failed, err: %v, ip: %s, worker: %d", err, j.visit.IP, id)
		}
	}
}

func tryEnqueueVisit(job visitJob) bool {
	if jobs == nil {
		return false
	}

	if ok, closed := trySendNonBlocking(jobs, job); closed {
		return false
	} else if ok {
		return true
	}

	if handoffTimeout <= 0 {
		return false
	}

	timer := time.NewTimer(handoffTimeout)
	defer timer.Stop()

	ok, closed := sendWithTimer(jobs, job, timer.C)
	if closed {
		return false
	}
	return ok
}

func trySendNonBlocking(ch chan visitJob, job visitJob) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- job:
		return true, false
	default:
		return false, false
	}
}

func sendWithTimer(ch chan visitJob, job visitJob, timer <-chan time.Time) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- job:
		return true, false
	case <-timer:
		return false, false
	}
}
