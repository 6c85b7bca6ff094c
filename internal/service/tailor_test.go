package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/lifecycle"
	"github.com/stitchup/stitchup/internal/service"
	"github.com/stitchup/stitchup/internal/store/memory"
	"github.com/stitchup/stitchup/internal/store/model"
)

func systemCtx() context.Context {
	return auth.NewUserContext(context.Background(), auth.User{ID: "reconciler", Role: auth.RoleSystem})
}

func seedTailor(t *testing.T, st *memory.Store) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := st.Tailor().Create(context.Background(), model.Tailor{
		ID: id, Name: "Meena Boutique", IsAvailable: true,
		WaitingListCount: 7, CurrentOrders: 7,
		LightAvgMins: 30, HeavyAvgMins: 120,
	})
	require.NoError(t, err)
	return id
}

func seedJob(t *testing.T, st *memory.Store, tailorID uuid.UUID, status api.JobStatus) {
	t.Helper()
	_, err := st.Job().Create(context.Background(), model.Job{
		ID: uuid.New(), CreatedAt: time.Now(), CustomerID: "asha@example.com",
		TailorID: tailorID, WorkType: string(api.WorkTypeLight), Status: string(status),
	})
	require.NoError(t, err)
}

func TestReconcileCountersRecomputesFromJobs(t *testing.T) {
	st := memory.NewStore()
	tailorID := seedTailor(t, st)

	seedJob(t, st, tailorID, api.JobStatusRequested)
	seedJob(t, st, tailorID, api.JobStatusRequested)
	seedJob(t, st, tailorID, api.JobStatusAccepted)
	seedJob(t, st, tailorID, api.JobStatusInProgress)
	// finished work has already released its slot
	seedJob(t, st, tailorID, api.JobStatusFinishedByTailor)
	seedJob(t, st, tailorID, api.JobStatusRiderAssigned)
	seedJob(t, st, tailorID, api.JobStatusClosed)
	seedJob(t, st, uuid.New(), api.JobStatusRequested)

	tailors := service.NewTailorService(st)
	tailor, err := tailors.ReconcileCounters(systemCtx(), tailorID)
	require.NoError(t, err)
	assert.Equal(t, 2, tailor.WaitingListCount)
	assert.Equal(t, 2, tailor.CurrentOrders)
}

func TestReconcileCountersIsSystemOnly(t *testing.T) {
	st := memory.NewStore()
	tailorID := seedTailor(t, st)

	tailors := service.NewTailorService(st)
	ctx := auth.NewUserContext(context.Background(), auth.User{ID: "asha@example.com", Role: auth.RoleCustomer})
	_, err := tailors.ReconcileCounters(ctx, tailorID)
	var forbidden *lifecycle.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestReconcileCountersUnknownTailor(t *testing.T) {
	tailors := service.NewTailorService(memory.NewStore())
	_, err := tailors.ReconcileCounters(systemCtx(), uuid.New())
	var notFound *lifecycle.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSetAvailabilityRoles(t *testing.T) {
	st := memory.NewStore()
	tailorID := seedTailor(t, st)
	tailors := service.NewTailorService(st)

	ctx := auth.NewUserContext(context.Background(), auth.User{ID: tailorID.String(), Role: auth.RoleTailor})
	tailor, err := tailors.SetAvailability(ctx, tailorID, false)
	require.NoError(t, err)
	assert.False(t, tailor.IsAvailable)

	ctx = auth.NewUserContext(context.Background(), auth.User{ID: "asha@example.com", Role: auth.RoleCustomer})
	_, err = tailors.SetAvailability(ctx, tailorID, true)
	var forbidden *lifecycle.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}
