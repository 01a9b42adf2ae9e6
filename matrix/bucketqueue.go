package matrix

// BucketQueue is an approximate bucket-sorted priority queue keyed by
// EdgeLabel.SortCost: costs are binned into fixed-width buckets and popped
// bucket by bucket, trading exact ordering within a bucket for O(1)
// add/pop/decrease. Costs beyond the configured upper bound fall into an
// overflow bucket that is only consulted once every in-range bucket is
// empty. Mirrors Valhalla's DoubleBucketQueue, the structure the teacher's
// own generic PriorityQueue (batched/onetomany/avoid_dijkstra.go) plays the
// exact-heap role for in node-indexed searches.
type BucketQueue struct {
	labels *LabelStore

	bucketSize float32
	minCost    float32
	buckets    [][]int32
	overflow   []int32

	currentBucket int
	bucketOf      map[int32]int // label index -> bucket it currently sits in, -1 for overflow
}

func NewBucketQueue() *BucketQueue {
	return &BucketQueue{bucketOf: make(map[int32]int, 4096)}
}

// Reuse reinitializes the queue for a new search: minCost is the cheapest
// possible sort cost (0 for Dijkstra), maxCost the current threshold, and
// bucketSize the per-mode UnitSize used to size each bin.
func (q *BucketQueue) Reuse(minCost, maxCost, bucketSize float32, labels *LabelStore) {
	q.labels = labels
	q.bucketSize = bucketSize
	q.minCost = minCost
	count := int((maxCost-minCost)/bucketSize) + 2
	if count < 2 {
		count = 2
	}
	q.buckets = make([][]int32, count)
	q.overflow = q.overflow[:0]
	q.currentBucket = 0
	for k := range q.bucketOf {
		delete(q.bucketOf, k)
	}
}

func (q *BucketQueue) bucketIndex(cost float32) int {
	if cost < q.minCost {
		return 0
	}
	idx := int((cost - q.minCost) / q.bucketSize)
	if idx >= len(q.buckets) {
		return -1
	}
	return idx
}

// Add inserts a label (identified by its index in the LabelStore) using
// its current SortCost.
func (q *BucketQueue) Add(labelIdx int32) {
	cost := q.labels.Get(labelIdx).SortCost
	b := q.bucketIndex(cost)
	if b < 0 {
		q.overflow = append(q.overflow, labelIdx)
		q.bucketOf[labelIdx] = -1
		return
	}
	if b < q.currentBucket {
		b = q.currentBucket
	}
	q.buckets[b] = append(q.buckets[b], labelIdx)
	q.bucketOf[labelIdx] = b
}

// Decrease moves a label already in the queue to its new (lower) bucket
// after an in-place cost Update.
func (q *BucketQueue) Decrease(labelIdx int32, newSortCost float32) {
	oldBucket, ok := q.bucketOf[labelIdx]
	if !ok {
		return
	}
	if oldBucket >= 0 {
		q.removeFromBucket(oldBucket, labelIdx)
	} else {
		q.removeFromOverflow(labelIdx)
	}
	b := q.bucketIndex(newSortCost)
	if b < 0 {
		q.overflow = append(q.overflow, labelIdx)
		q.bucketOf[labelIdx] = -1
		return
	}
	if b < q.currentBucket {
		b = q.currentBucket
	}
	q.buckets[b] = append(q.buckets[b], labelIdx)
	q.bucketOf[labelIdx] = b
}

func (q *BucketQueue) removeFromBucket(b int, labelIdx int32) {
	bucket := q.buckets[b]
	for i, v := range bucket {
		if v == labelIdx {
			bucket[i] = bucket[len(bucket)-1]
			q.buckets[b] = bucket[:len(bucket)-1]
			return
		}
	}
}

func (q *BucketQueue) removeFromOverflow(labelIdx int32) {
	for i, v := range q.overflow {
		if v == labelIdx {
			q.overflow[i] = q.overflow[len(q.overflow)-1]
			q.overflow = q.overflow[:len(q.overflow)-1]
			return
		}
	}
}

// Pop removes and returns the label index with the (approximately) lowest
// cost, or invalidLabel if the queue is empty - meaning no further
// expansion is possible.
func (q *BucketQueue) Pop() int32 {
	for q.currentBucket < len(q.buckets) {
		bucket := q.buckets[q.currentBucket]
		if len(bucket) == 0 {
			q.currentBucket++
			continue
		}
		n := len(bucket)
		idx := bucket[n-1]
		q.buckets[q.currentBucket] = bucket[:n-1]
		delete(q.bucketOf, idx)
		return idx
	}
	if len(q.overflow) > 0 {
		// Every in-range bucket has drained; costs left in overflow are
		// all beyond the configured threshold, so a plain linear scan
		// for the minimum is cheap in practice - the caller terminates
		// the search as soon as it sees a cost past the threshold anyway.
		best := 0
		bestCost := q.labels.Get(q.overflow[0]).SortCost
		for i := 1; i < len(q.overflow); i++ {
			c := q.labels.Get(q.overflow[i]).SortCost
			if c < bestCost {
				bestCost = c
				best = i
			}
		}
		idx := q.overflow[best]
		q.overflow[best] = q.overflow[len(q.overflow)-1]
		q.overflow = q.overflow[:len(q.overflow)-1]
		delete(q.bucketOf, idx)
		return idx
	}
	return invalidLabel
}
