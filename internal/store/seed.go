package store

import (
	"github.com/google/uuid"
	"github.com/stitchup/stitchup/internal/store/model"
	"gorm.io/gorm/clause"
)

var seedTailors = []model.Tailor{
	{
		ID:           uuid.MustParse("0199aa10-0000-4000-8000-000000000001"),
		Name:         "Sharma Tailors",
		Phone:        "+91 98200 11001",
		Address:      "14 MG Road, Pune",
		LightAvgMins: 30,
		HeavyAvgMins: 120,
		IsAvailable:  true,
		Rating:       4.8,
		PriceFrom:    150,
	},
	{
		ID:           uuid.MustParse("0199aa10-0000-4000-8000-000000000002"),
		Name:         "Quick Stitch",
		Phone:        "+91 98200 11002",
		Address:      "7 FC Road, Pune",
		LightAvgMins: 20,
		HeavyAvgMins: 90,
		IsAvailable:  true,
		Rating:       4.5,
		PriceFrom:    100,
	},
	{
		ID:           uuid.MustParse("0199aa10-0000-4000-8000-000000000003"),
		Name:         "Noor Alterations",
		Phone:        "+91 98200 11003",
		Address:      "21 Camp Area, Pune",
		LightAvgMins: 40,
		HeavyAvgMins: 150,
		IsAvailable:  true,
		Rating:       4.9,
		PriceFrom:    200,
	},
}

// Seed creates or refreshes the example tailor profiles. Counters are left
// untouched on conflict so a re-seed does not clobber live state.
func (s *DataStore) Seed() error {
	tx, err := newTransaction(s.db)
	if err != nil {
		return err
	}

	for i := range seedTailors {
		tailor := seedTailors[i]
		if err := tx.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "address", "light_avg_mins", "heavy_avg_mins", "rating", "price_from"}),
		}).Create(&tailor).Error; err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
