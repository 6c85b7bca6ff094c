package model

import (
	api "github.com/stitchup/stitchup/api/v1alpha1"
	"github.com/stitchup/stitchup/internal/estimation"
)

func (j Job) ToApiResource() api.Job {
	images := make([]string, 0, len(j.Images))
	for _, img := range j.Images {
		images = append(images, img.URL)
	}

	messages := make([]api.Message, 0, len(j.Messages))
	for _, m := range j.Messages {
		messages = append(messages, api.Message{
			SenderID:  m.SenderID,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}

	job := api.Job{
		ID:               j.ID,
		CustomerID:       j.CustomerID,
		TailorID:         j.TailorID,
		WorkType:         api.StringToWorkType(j.WorkType),
		Status:           api.StringToJobStatus(j.Status),
		EstimatedMinutes: j.EstimatedMinutes,
		Images:           images,
		Messages:         messages,
		Price:            j.Price,
		NeedsRevision:    j.NeedsRevision,
		CancelReason:     j.CancelReason,
		DeliveryDate:     j.DeliveryDate,
		DeliveryTime:     j.DeliveryTime,
		CreatedAt:        j.CreatedAt,
		AcceptedAt:       j.AcceptedAt,
		StartedAt:        j.StartedAt,
		FinishedAt:       j.FinishedAt,
		ConfirmedAt:      j.ConfirmedAt,
		DeliveredAt:      j.DeliveredAt,
	}
	if j.RiderInfo != nil {
		rider := j.RiderInfo.Data
		job.RiderInfo = &rider
	}
	return job
}

func (jl JobList) ToApiResource() api.JobList {
	jobs := make(api.JobList, 0, len(jl))
	for _, j := range jl {
		jobs = append(jobs, j.ToApiResource())
	}
	return jobs
}

func (t Tailor) ToApiResource() api.Tailor {
	return api.Tailor{
		ID:                 t.ID,
		Name:               t.Name,
		Phone:              t.Phone,
		ShopPhotoURL:       t.ShopPhotoURL,
		Address:            t.Address,
		IsAvailable:        t.IsAvailable,
		CurrentOrders:      t.CurrentOrders,
		WaitingListCount:   t.WaitingListCount,
		Rating:             t.Rating,
		PriceFrom:          t.PriceFrom,
		LightAvgMins:       t.LightAvgMins,
		HeavyAvgMins:       t.HeavyAvgMins,
		EstimatedWaitLight: estimation.Estimate(t.WaitingListCount, t.LightAvgMins),
		EstimatedWaitHeavy: estimation.Estimate(t.WaitingListCount, t.HeavyAvgMins),
	}
}

func (tl TailorList) ToApiResource() api.TailorList {
	tailors := make(api.TailorList, 0, len(tl))
	for _, t := range tl {
		tailors = append(tailors, t.ToApiResource())
	}
	return tailors
}
