package estimation

// Estimate returns the wait estimate in minutes for a job entering a queue
// of the given depth: every queued job ahead costs one average service
// duration, plus one for the new job itself.
//
// The estimate is a point-in-time promise. It is computed once, from the
// queue depth observed before the new job is counted, and never recomputed
// when the queue later changes.
func Estimate(queueDepthBefore, avgMinutesForType int) int {
	return queueDepthBefore*avgMinutesForType + avgMinutesForType
}
