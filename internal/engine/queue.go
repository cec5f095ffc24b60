package engine

// task is one deferred unit of work.
type task struct {
	name string
	fn   func()
	// dropped, when set, is told why the task will never run.
	dropped func(error)
}

// taskQueue is a FIFO of deferred tasks, drained when the outermost unit of
// work ends. Like the engine that owns it, it is confined to one goroutine.
type taskQueue struct {
	tasks []task
}

func newTaskQueue() *taskQueue {
	return &taskQueue{tasks: make([]task, 0, 16)}
}

// Enqueue adds t to the back of the queue.
func (q *taskQueue) Enqueue(t task) {
	q.tasks = append(q.tasks, t)
}

// TryDequeue removes and returns the front task, if any.
func (q *taskQueue) TryDequeue() (task, bool) {
	if len(q.tasks) == 0 {
		return task{}, false
	}

	t := q.tasks[0]
	// Release the closure so captured values can be collected.
	q.tasks[0] = task{}

	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}
	return t, true
}

// Len returns the number of pending tasks.
func (q *taskQueue) Len() int {
	return len(q.tasks)
}

// Drop removes and returns every pending task.
func (q *taskQueue) Drop() []task {
	dropped := append([]task(nil), q.tasks...)
	clear(q.tasks)
	q.tasks = q.tasks[:0]
	return dropped
}
