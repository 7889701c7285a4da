package httpapi

import (
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

func activeVisitViews(recs []store.ActiveVisitRecord) []types.ActiveVisitView {
	out := make([]types.ActiveVisitView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, types.ActiveVisitView{
			VisitorName:  rec.VisitorName,
			VisitorPhone: rec.VisitorPhone,
			VisitType:    rec.VisitType,
			PhotoRef:     rec.PhotoRef,
			CheckInTime:  rec.CheckInTime.Format(time.RFC3339),
		})
	}
	return out
}

func historyViews(recs []store.VisitRecord) []types.HistoryEntryView {
	out := make([]types.HistoryEntryView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, types.HistoryEntryView{
			VisitorName:  rec.VisitorName,
			VisitorPhone: rec.VisitorPhone,
			VisitType:    rec.VisitType,
			PhotoRef:     rec.PhotoRef,
			CheckInTime:  rec.CheckInTime.Format(time.RFC3339),
			CheckOutTime: rec.CheckOutTime.Format(time.RFC3339),
		})
	}
	return out
}
