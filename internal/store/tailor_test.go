package store_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/stitchup/stitchup/internal/config"
	"github.com/stitchup/stitchup/internal/store"
)

const (
	insertTailorStm = "INSERT INTO tailors (id, name, is_available, waiting_list_count, current_orders, light_avg_mins, heavy_avg_mins, rating, price_from) VALUES ('%s', '%s', TRUE, %d, %d, 30, 120, 4.5, 100);"
)

var _ = Describe("tailor store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	insertTailor := func(id uuid.UUID, name string, waiting, current int) {
		tx := gormdb.Exec(fmt.Sprintf(insertTailorStm, id, name, waiting, current))
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
		gormdb.Exec("DELETE from tailors;")
	})

	Context("get and list", func() {
		It("lists tailors ordered by name", func() {
			insertTailor(uuid.New(), "Quick Stitch", 0, 0)
			insertTailor(uuid.New(), "Noor Alterations", 0, 0)

			tailors, err := s.Tailor().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(tailors).To(HaveLen(2))
			Expect(tailors[0].Name).To(Equal("Noor Alterations"))
		})

		It("returns not found for an unknown tailor", func() {
			_, err := s.Tailor().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("availability", func() {
		It("flips the availability flag", func() {
			id := uuid.New()
			insertTailor(id, "Quick Stitch", 0, 0)

			tailor, err := s.Tailor().SetAvailability(context.TODO(), id, false)
			Expect(err).To(BeNil())
			Expect(tailor.IsAvailable).To(BeFalse())
		})
	})

	Context("counters", func() {
		It("increments and returns the new value", func() {
			id := uuid.New()
			insertTailor(id, "Quick Stitch", 2, 0)

			value, err := s.Tailor().Increment(context.TODO(), id, store.CounterWaitingList, 1)
			Expect(err).To(BeNil())
			Expect(value).To(Equal(3))

			value, err = s.Tailor().Increment(context.TODO(), id, store.CounterCurrentOrders, 1)
			Expect(err).To(BeNil())
			Expect(value).To(Equal(1))
		})

		It("floors a decrement below zero", func() {
			id := uuid.New()
			insertTailor(id, "Quick Stitch", 0, 0)

			value, err := s.Tailor().Increment(context.TODO(), id, store.CounterWaitingList, -1)
			Expect(err).To(BeNil())
			Expect(value).To(Equal(0))

			stored := -1
			Expect(gormdb.Raw("SELECT waiting_list_count from tailors WHERE id = ?;", id).Scan(&stored).Error).To(BeNil())
			Expect(stored).To(Equal(0))
		})

		It("errors for an unknown tailor", func() {
			_, err := s.Tailor().Increment(context.TODO(), uuid.New(), store.CounterWaitingList, 1)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("overwrites both counters on reconciliation", func() {
			id := uuid.New()
			insertTailor(id, "Quick Stitch", 5, 5)

			Expect(s.Tailor().SetCounters(context.TODO(), id, 1, 2)).To(Succeed())

			tailor, err := s.Tailor().Get(context.TODO(), id)
			Expect(err).To(BeNil())
			Expect(tailor.WaitingListCount).To(Equal(1))
			Expect(tailor.CurrentOrders).To(Equal(2))
		})
	})

	Context("seed", func() {
		It("creates the example tailors and preserves counters on re-seed", func() {
			Expect(s.Seed()).To(Succeed())

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) from tailors;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(3))

			tailors, err := s.Tailor().List(context.TODO())
			Expect(err).To(BeNil())

			_, err = s.Tailor().Increment(context.TODO(), tailors[0].ID, store.CounterWaitingList, 2)
			Expect(err).To(BeNil())

			Expect(s.Seed()).To(Succeed())

			tailor, err := s.Tailor().Get(context.TODO(), tailors[0].ID)
			Expect(err).To(BeNil())
			Expect(tailor.WaitingListCount).To(Equal(2))
		})
	})
})
