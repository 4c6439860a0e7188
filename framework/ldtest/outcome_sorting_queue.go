package ldtest

import (
	"sort"
	"sync"
)

// outcomeSortingQueue receives outcomes tagged with 1-based sequence numbers in any order, and
// delivers them in sequence order. An outcome that arrives early is held until every outcome
// before it has been delivered.
type outcomeSortingQueue struct {
	deliver     func(Outcome)
	lastCounter int
	deferred    []deferredOutcome
	lock        sync.Mutex
}

type deferredOutcome struct {
	counter int
	outcome Outcome
}

func newOutcomeSortingQueue(deliver func(Outcome)) *outcomeSortingQueue {
	return &outcomeSortingQueue{deliver: deliver}
}

func (q *outcomeSortingQueue) Accept(counter int, outcome Outcome) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if counter > q.lastCounter+1 {
		q.deferred = append(q.deferred, deferredOutcome{counter: counter, outcome: outcome})
		sort.Slice(q.deferred, func(i, j int) bool { return q.deferred[i].counter < q.deferred[j].counter })
		return
	}
	q.lastCounter = counter
	q.deliver(outcome)
	for len(q.deferred) > 0 {
		next := q.deferred[0]
		if next.counter != q.lastCounter+1 {
			break
		}
		q.deferred = q.deferred[1:]
		q.lastCounter++
		q.deliver(next.outcome)
	}
}

func (q *outcomeSortingQueue) Deferred() []Outcome {
	q.lock.Lock()
	ret := make([]Outcome, 0, len(q.deferred))
	for _, d := range q.deferred {
		ret = append(ret, d.outcome)
	}
	q.lock.Unlock()
	return ret
}
