package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/config"
	"github.com/stitchup/stitchup/internal/store"
	"github.com/stitchup/stitchup/internal/store/model"
)

const (
	insertJobStm = "INSERT INTO jobs (id, created_at, customer_id, tailor_id, work_type, status, estimated_minutes, needs_revision) VALUES ('%s', '%s', '%s', '%s', 'light', '%s', 60, FALSE);"
)

var _ = Describe("job store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	insertJob := func(id, customerID string, tailorID uuid.UUID, status api.JobStatus) {
		tx := gormdb.Exec(fmt.Sprintf(insertJobStm, id, time.Now().Format(time.RFC3339Nano), customerID, tailorID, status))
		Expect(tx.Error).To(BeNil())
	}

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		Expect(s.InitialMigration()).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from job_messages;")
		gormdb.Exec("DELETE from job_images;")
		gormdb.Exec("DELETE from jobs;")
	})

	Context("create and get", func() {
		It("successfully creates a job", func() {
			job := model.Job{
				ID:               uuid.New(),
				CreatedAt:        time.Now(),
				CustomerID:       "asha@example.com",
				TailorID:         uuid.New(),
				WorkType:         string(api.WorkTypeLight),
				Status:           string(api.JobStatusRequested),
				EstimatedMinutes: 120,
			}
			created, err := s.Job().Create(context.TODO(), job)
			Expect(err).To(BeNil())
			Expect(created.ID).To(Equal(job.ID))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) from jobs;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("gets a job with its images and messages", func() {
			jobID := uuid.New()
			insertJob(jobID.String(), "asha@example.com", uuid.New(), api.JobStatusInProgress)

			Expect(s.Job().AddImages(context.TODO(), jobID, []string{"http://blobs/1.jpg", "http://blobs/2.jpg"})).To(Succeed())
			_, err := s.Job().AddMessage(context.TODO(), jobID, "asha@example.com", "how is it going?")
			Expect(err).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Images).To(HaveLen(2))
			Expect(job.Images[0].URL).To(Equal("http://blobs/1.jpg"))
			Expect(job.Messages).To(HaveLen(1))
			Expect(job.Messages[0].Text).To(Equal("how is it going?"))
		})

		It("returns not found for an unknown job", func() {
			_, err := s.Job().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("filters by customer, tailor and status", func() {
			tailorID := uuid.New()
			insertJob(uuid.NewString(), "asha@example.com", tailorID, api.JobStatusRequested)
			insertJob(uuid.NewString(), "asha@example.com", tailorID, api.JobStatusAccepted)
			insertJob(uuid.NewString(), "ravi@example.com", uuid.New(), api.JobStatusRequested)

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByCustomerID("asha@example.com"))
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))

			jobs, err = s.Job().List(context.TODO(), store.NewJobQueryFilter().ByTailorID(tailorID).ByStatus(string(api.JobStatusAccepted)))
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))

			jobs, err = s.Job().List(context.TODO(), store.NewJobQueryFilter())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(3))
		})
	})

	Context("conditional status update", func() {
		It("swaps the status when the current status is allowed", func() {
			jobID := uuid.New()
			insertJob(jobID.String(), "asha@example.com", uuid.New(), api.JobStatusRequested)

			now := time.Now()
			matched, err := s.Job().UpdateStatus(context.TODO(), jobID, []api.JobStatus{api.JobStatusRequested}, model.JobPatch{
				Status:     api.JobStatusAccepted,
				AcceptedAt: &now,
			})
			Expect(err).To(BeNil())
			Expect(matched).To(BeTrue())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(string(api.JobStatusAccepted)))
			Expect(job.AcceptedAt).ToNot(BeNil())
		})

		It("records the cancellation reason with the swap", func() {
			jobID := uuid.New()
			insertJob(jobID.String(), "asha@example.com", uuid.New(), api.JobStatusRequested)

			reason := "found a closer tailor"
			matched, err := s.Job().UpdateStatus(context.TODO(), jobID, []api.JobStatus{api.JobStatusRequested}, model.JobPatch{
				Status:       api.JobStatusCancelled,
				CancelReason: &reason,
			})
			Expect(err).To(BeNil())
			Expect(matched).To(BeTrue())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.CancelReason).ToNot(BeNil())
			Expect(*job.CancelReason).To(Equal(reason))
		})

		It("matches nothing when the status moved on", func() {
			jobID := uuid.New()
			insertJob(jobID.String(), "asha@example.com", uuid.New(), api.JobStatusCancelled)

			matched, err := s.Job().UpdateStatus(context.TODO(), jobID, []api.JobStatus{api.JobStatusRequested}, model.JobPatch{
				Status: api.JobStatusAccepted,
			})
			Expect(err).To(BeNil())
			Expect(matched).To(BeFalse())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(string(api.JobStatusCancelled)))
		})

		It("matches nothing for an unknown job", func() {
			matched, err := s.Job().UpdateStatus(context.TODO(), uuid.New(), []api.JobStatus{api.JobStatusRequested}, model.JobPatch{
				Status: api.JobStatusAccepted,
			})
			Expect(err).To(BeNil())
			Expect(matched).To(BeFalse())
		})

		It("applies the rider info as part of the swap", func() {
			jobID := uuid.New()
			insertJob(jobID.String(), "asha@example.com", uuid.New(), api.JobStatusFinishedByTailor)

			info := api.RiderInfo{Name: "Rahul", Vehicle: "MH12-AB-1234", Phone: "+91 98765 43210", EtaMinutes: 12}
			matched, err := s.Job().UpdateStatus(context.TODO(), jobID, []api.JobStatus{api.JobStatusFinishedByTailor}, model.JobPatch{
				Status:    api.JobStatusRiderAssigned,
				RiderInfo: &info,
			})
			Expect(err).To(BeNil())
			Expect(matched).To(BeTrue())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.RiderInfo).ToNot(BeNil())
			Expect(job.RiderInfo.Data.Name).To(Equal("Rahul"))
		})
	})

	Context("transaction", func() {
		It("rolls back the swap together with the images", func() {
			jobID := uuid.New()
			insertJob(jobID.String(), "asha@example.com", uuid.New(), api.JobStatusInProgress)

			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			matched, err := s.Job().UpdateStatus(ctx, jobID, []api.JobStatus{api.JobStatusInProgress}, model.JobPatch{
				Status: api.JobStatusFinishedByTailor,
			})
			Expect(err).To(BeNil())
			Expect(matched).To(BeTrue())
			Expect(s.Job().AddImages(ctx, jobID, []string{"http://blobs/proof.jpg"})).To(Succeed())

			_, rerr := store.Rollback(ctx)
			Expect(rerr).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(string(api.JobStatusInProgress)))
			Expect(job.Images).To(HaveLen(0))
		})
	})

	Context("counts", func() {
		It("counts jobs per tailor and status set", func() {
			tailorID := uuid.New()
			insertJob(uuid.NewString(), "asha@example.com", tailorID, api.JobStatusRequested)
			insertJob(uuid.NewString(), "ravi@example.com", tailorID, api.JobStatusAccepted)
			insertJob(uuid.NewString(), "meera@example.com", tailorID, api.JobStatusInProgress)
			insertJob(uuid.NewString(), "asha@example.com", uuid.New(), api.JobStatusRequested)

			count, err := s.Job().CountForTailorByStatus(context.TODO(), tailorID, []api.JobStatus{api.JobStatusRequested})
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))

			count, err = s.Job().CountForTailorByStatus(context.TODO(), tailorID, []api.JobStatus{api.JobStatusAccepted, api.JobStatusInProgress})
			Expect(err).To(BeNil())
			Expect(count).To(Equal(2))
		})

		It("counts jobs grouped by status", func() {
			insertJob(uuid.NewString(), "asha@example.com", uuid.New(), api.JobStatusRequested)
			insertJob(uuid.NewString(), "ravi@example.com", uuid.New(), api.JobStatusRequested)
			insertJob(uuid.NewString(), "meera@example.com", uuid.New(), api.JobStatusDelivered)

			counts, err := s.Job().CountByStatus(context.TODO())
			Expect(err).To(BeNil())
			Expect(counts[string(api.JobStatusRequested)]).To(Equal(2))
			Expect(counts[string(api.JobStatusDelivered)]).To(Equal(1))
		})
	})
})
