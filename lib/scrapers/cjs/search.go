package cjs

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/codes"
)

const portalDateFormat = "01/02/2006"

// SearchHearings returns the whitelisted hearings for one entity id on
// one date, in the order the portal reported them. Any HTTP failure here
// (once the client's own retries are spent) is fatal for the invocation;
// silently skipping a day would produce a hole in the delivered batch.
func (e *Engine) SearchHearings(ctx context.Context, entityId string, date time.Time) ([]HearingSummary, error) {
	client, err := e.loggedInSession(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "SearchHearings")
	defer span.End()

	formatted := date.Format(portalDateFormat)

	// the criteria post primes paging state server side; its response
	// body is irrelevant but skipping the request yields empty or stale
	// results
	res, err := client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"PortletName":                        "HearingSearch",
			"Settings.CaptchaEnabled":            "False",
			"Settings.DefaultLocation":           "All Locations",
			"SearchCriteria.SelectedCourt":       "All Locations",
			"SearchCriteria.SelectedHearingType": "All Hearing Types",
			"SearchCriteria.SearchByType":        e.cat.searchType,
			e.cat.searchKey:                      entityId,
			"SearchCriteria.DateFrom":            formatted,
			"SearchCriteria.DateTo":              formatted,
		}).
		Post("/Hearing/SearchHearings/HearingSearch")
	if err != nil {
		span.SetStatus(codes.Error, "failed to post search criteria")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "search criteria returned an error status")
		return nil, fmt.Errorf("hearing search: %s", res.Status())
	}

	res, err = client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"sort":      "",
			"group":     "",
			"filter":    "",
			"portletId": "27",
		}).
		Post("/Hearing/HearingResults/Read")
	if err != nil {
		span.SetStatus(codes.Error, "failed to read search results")
		return nil, err
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "results read returned an error status")
		return nil, fmt.Errorf("hearing results read: %s", res.Status())
	}

	var payload struct {
		Data []HearingSummary `json:"Data"`
	}
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.SetStatus(codes.Error, "failed to decode results payload")
		return nil, fmt.Errorf("decode hearing results: %w", err)
	}

	var hearings []HearingSummary
	for _, h := range payload.Data {
		if slices.Contains(hearingTypeWhitelist, h.HearingTypeId.Word) {
			hearings = append(hearings, h)
		}
	}
	return hearings, nil
}
