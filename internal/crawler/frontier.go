package crawler

// VisitState tracks where a URL is in its lifecycle. Transitions only
// move forward: Unvisited to InProgress at push, then to exactly one
// terminal state.
type VisitState int

// Visit states.
const (
	// Unvisited means the URL has never been seen by this run.
	Unvisited VisitState = iota

	// InProgress means the URL is on the work stack or being processed.
	InProgress

	// Completed means the URL's document was written.
	Completed

	// Failed means the URL ended in a terminal fetch failure.
	Failed

	// RecursionFailed means the URL was cut off by the depth limit.
	RecursionFailed
)

// String returns the visit state name.
func (v VisitState) String() string {
	switch v {
	case Unvisited:
		return "unvisited"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case RecursionFailed:
		return "recursion_failed"
	default:
		return "unknown"
	}
}

// frame is one unit of work: a URL and the depth it was discovered at.
type frame struct {
	url   string
	depth int
}

// Frontier is the explicit work stack driving the depth-first
// traversal. An explicit stack instead of recursion means depth is
// bounded by configuration, not by the goroutine stack, and the
// traversal can be paused and resumed at any URL boundary.
//
// URLs are marked InProgress at push time, so a URL can enter the
// stack at most once per run no matter how many pages link to it.
// Cycles terminate for the same reason.
type Frontier struct {
	stack  []frame
	visits map[string]VisitState
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		stack:  make([]frame, 0, 64),
		visits: make(map[string]VisitState),
	}
}

// Push adds a URL at the given depth. A URL already seen this run is a
// no-op; Push reports whether the URL was actually added.
func (f *Frontier) Push(url string, depth int) bool {
	if f.visits[url] != Unvisited {
		return false
	}
	f.visits[url] = InProgress
	f.stack = append(f.stack, frame{url: url, depth: depth})
	return true
}

// Pop removes and returns the most recently pushed frame, depth-first.
func (f *Frontier) Pop() (url string, depth int, ok bool) {
	if len(f.stack) == 0 {
		return "", 0, false
	}
	top := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return top.url, top.depth, true
}

// Mark records the terminal state for a URL.
func (f *Frontier) Mark(url string, state VisitState) {
	f.visits[url] = state
}

// State returns the current visit state of a URL.
func (f *Frontier) State(url string) VisitState {
	return f.visits[url]
}

// Len returns the number of frames awaiting processing.
func (f *Frontier) Len() int {
	return len(f.stack)
}

// Known returns the number of distinct URLs seen this run, in any
// state. This is the traversal's running notion of "total".
func (f *Frontier) Known() int {
	return len(f.visits)
}
