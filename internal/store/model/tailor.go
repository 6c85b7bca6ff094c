package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	api "github.com/stitchup/stitchup/api/v1alpha1"
)

type Tailor struct {
	ID               uuid.UUID `gorm:"primaryKey;"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Name             string `gorm:"not null"`
	Phone            string
	ShopPhotoURL     string
	Address          string
	IsAvailable      bool    `gorm:"not null;default:true"`
	CurrentOrders    int     `gorm:"not null;default:0"`
	WaitingListCount int     `gorm:"not null;default:0"`
	Rating           float64 `gorm:"not null;default:5"`
	PriceFrom        float64 `gorm:"not null;default:0"`
	LightAvgMins     int     `gorm:"not null;default:30"`
	HeavyAvgMins     int     `gorm:"not null;default:120"`
}

type TailorList []Tailor

func (t Tailor) String() string {
	val, _ := json.Marshal(t)
	return string(val)
}

func NewTailorFromID(id uuid.UUID) *Tailor {
	return &Tailor{ID: id}
}

// AvgMinsFor returns the average service duration for a work type.
func (t *Tailor) AvgMinsFor(workType api.WorkType) int {
	if workType == api.WorkTypeHeavy {
		return t.HeavyAvgMins
	}
	return t.LightAvgMins
}
