package rider

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/stitchup/stitchup/api/v1alpha1"
)

// Dispatch books a delivery rider for a confirmed job.
type Dispatch interface {
	Assign(ctx context.Context, jobID uuid.UUID) (api.RiderInfo, error)
}

// StaticDispatch returns a fixed rider profile. It stands in for the real
// logistics integration, which is out of scope for this service.
type StaticDispatch struct{}

var _ Dispatch = (*StaticDispatch)(nil)

func NewStaticDispatch() *StaticDispatch {
	return &StaticDispatch{}
}

func (d *StaticDispatch) Assign(ctx context.Context, jobID uuid.UUID) (api.RiderInfo, error) {
	info := api.RiderInfo{
		Name:       "Rahul",
		Vehicle:    "MH12-AB-1234",
		Phone:      "+91 98765 43210",
		EtaMinutes: 12,
	}
	zap.S().Named("rider").Infow("rider assigned", "job_id", jobID, "rider", info.Name)
	return info, nil
}
