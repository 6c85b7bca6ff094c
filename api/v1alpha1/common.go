package v1alpha1

func StringToJobStatus(s string) JobStatus {
	switch s {
	case string(JobStatusRequested):
		return JobStatusRequested
	case string(JobStatusAccepted):
		return JobStatusAccepted
	case string(JobStatusInProgress):
		return JobStatusInProgress
	case string(JobStatusFinishedByTailor):
		return JobStatusFinishedByTailor
	case string(JobStatusAwaitingUserConfirmation):
		return JobStatusAwaitingUserConfirmation
	case string(JobStatusRiderAssigned):
		return JobStatusRiderAssigned
	case string(JobStatusDelivered):
		return JobStatusDelivered
	case string(JobStatusClosed):
		return JobStatusClosed
	case string(JobStatusCancelled):
		return JobStatusCancelled
	default:
		return ""
	}
}

func StringToWorkType(s string) WorkType {
	switch s {
	case string(WorkTypeHeavy):
		return WorkTypeHeavy
	default:
		return WorkTypeLight
	}
}
