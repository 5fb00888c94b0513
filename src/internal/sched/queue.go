// FILE: logfan/src/internal/sched/queue.go
package sched

// Queue is a single-threaded deferred-task queue. Tasks scheduled during
// a caller turn run after the turn's synchronous work completes and
// strictly before the next turn begins, giving a natural same-turn
// batching window. Once scheduled, a task always eventually runs; there
// is no cancellation.
//
// The queue provides no locking: all scheduling and draining must happen
// on the same logical thread as emission.
type Queue struct {
	tasks []func()
}

func NewQueue() *Queue {
	return &Queue{}
}

// Schedule appends a task to run at the end of the current turn.
func (q *Queue) Schedule(fn func()) {
	q.tasks = append(q.tasks, fn)
}

// RunPending drains scheduled tasks in FIFO order, including tasks
// scheduled by tasks already draining.
func (q *Queue) RunPending() {
	for len(q.tasks) > 0 {
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		fn()
	}
}

// Do runs one caller turn then drains everything it scheduled.
func (q *Queue) Do(turn func()) {
	turn()
	q.RunPending()
}

// Len reports the number of tasks awaiting the end of the turn.
func (q *Queue) Len() int {
	return len(q.tasks)
}
