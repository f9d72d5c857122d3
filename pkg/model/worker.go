package model

// Worker is an opaque identifier naming a compute resource. The worker set is
// fixed for one cycle.
type Worker string

func (w Worker) String() string {
	return string(w)
}

// WorkerIndex maps each worker to its position in the ordered worker list.
// Duplicate entries keep their first position.
func WorkerIndex(workers []Worker) map[Worker]int {
	idx := make(map[Worker]int, len(workers))
	for i, w := range workers {
		if _, ok := idx[w]; !ok {
			idx[w] = i
		}
	}
	return idx
}
