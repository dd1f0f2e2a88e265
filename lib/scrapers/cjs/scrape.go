package cjs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// DateFormat is the wire format for scrape date ranges.
const DateFormat = "2006-01-02"

// GetData scrapes every hearing for the engine's entity catalog over
// [startDate, endDate] inclusive and returns the merged records in
// discovery order: date-major, entity-id-minor, portal order within one
// result page. The whole batch is accumulated before returning; a
// failure partway loses it (there is no checkpointing), so callers that
// care should persist what they get.
func (e *Engine) GetData(ctx context.Context, startDate, endDate time.Time) ([]HearingRecord, error) {
	ctx, span := tracer.Start(ctx, "GetData")
	defer span.End()

	var records []HearingRecord
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		for _, entityId := range e.ids {
			slog.InfoContext(
				ctx, "getting hearings",
				"entity", e.opts.Entity,
				"id", entityId,
				"date", date.Format(DateFormat),
			)

			hearings, err := e.SearchHearings(ctx, entityId, date)
			if err != nil {
				return nil, fmt.Errorf(
					"search %s %s on %s: %w",
					e.opts.Entity, entityId, date.Format(DateFormat), err,
				)
			}

			for _, hearing := range hearings {
				detail, err := e.FetchCaseDetail(ctx, hearing.EncryptedCaseId)
				if err != nil {
					return nil, err
				}

				records = append(records, HearingRecord{
					HearingDate:          hearing.HearingDate,
					HearingType:          hearing.HearingTypeId.Description,
					JudgeName:            hearing.JudgeParsed,
					DefendantCaseType:    hearing.CaseTypeId.Description,
					Charges:              detail.Charges,
					CaseNumber:           hearing.CaseNumber,
					DefendantName:        hearing.DefendantName,
					DefendantAddress:     detail.Address,
					DefendantHasAttorney: detail.HasAttorney,
					HearingDetails:       e.caseDetailUrl(hearing.EncryptedCaseId),
				})
			}
		}
	}

	return records, nil
}

func (e *Engine) caseDetailUrl(encryptedCaseId string) string {
	return e.opts.BaseUrl + "/Case/CaseDetail?eid=" + url.QueryEscape(encryptedCaseId)
}
