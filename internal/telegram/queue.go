package telegram

import "sync"

// userQueues runs jobs one at a time per user, in the order they were
// enqueued. Each user with queued work has a single draining goroutine;
// the user is forgotten once their queue runs empty.
type userQueues struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newUserQueues() *userQueues {
	return &userQueues{queues: make(map[int64][]func())}
}

// enqueue never blocks on the user's running job.
func (q *userQueues) enqueue(user int64, job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if jobs, busy := q.queues[user]; busy {
		q.queues[user] = append(jobs, job)
		return
	}
	// a present key, even with no jobs, marks the user's drainer as running
	q.queues[user] = []func(){}
	q.wg.Add(1)
	go q.drain(user, job)
}

func (q *userQueues) drain(user int64, job func()) {
	defer q.wg.Done()
	for {
		job()

		q.mu.Lock()
		jobs := q.queues[user]
		if len(jobs) == 0 {
			delete(q.queues, user)
			q.mu.Unlock()
			return
		}
		job = jobs[0]
		q.queues[user] = jobs[1:]
		q.mu.Unlock()
	}
}

// wait blocks until every enqueued job has run.
func (q *userQueues) wait() {
	q.wg.Wait()
}

func (q *userQueues) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues)
}
