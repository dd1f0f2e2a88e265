package cjs

import (
	"context"
	"testing"
	"time"

	"sccjs-backend/lib/telemetry"
	"sccjs-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestGetDataEndToEnd(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{
		searchData: map[string]string{
			"1022|04/26/2023": `{"Data":[
				{"CaseNumber":"23-100001","EncryptedCaseId":"enc-ar-1",
				 "DefendantName":"DOE, JOHN","HearingDate":"04/26/2023 09:00 AM",
				 "HearingTypeId":{"Word":"AR","Description":"Arraignment"},
				 "CaseTypeId":{"Description":"Misdemeanor"},
				 "JudgeParsed":"Anderson, William Bill"},
				{"CaseNumber":"23-100002","EncryptedCaseId":"enc-xx-1",
				 "DefendantName":"ROE, JANE","HearingDate":"04/26/2023 09:30 AM",
				 "HearingTypeId":{"Word":"XX","Description":"Motion Hearing"},
				 "CaseTypeId":{"Description":"Felony"},
				 "JudgeParsed":"Anderson, William Bill"}
			]}`,
		},
		detailPages: map[string]string{"enc-ar-1": caseDetailPage},
	})
	engine := portal.engine(t, Options{
		Entity:              EntityJudge,
		DebugLimit:          1,
		MissingDataSentinel: MissingDataMessage,
	})

	date := time.Date(2023, 4, 26, 0, 0, 0, 0, timezone.Location)
	records, err := engine.GetData(context.Background(), date, date)
	require.NoError(t, err)

	require.Equal(t, []HearingRecord{{
		HearingDate:          "04/26/2023 09:00 AM",
		HearingType:          "Arraignment",
		JudgeName:            "Anderson, William Bill",
		DefendantCaseType:    "Misdemeanor",
		Charges:              "THEFT OF PROPERTY - $1,000 OR LESS, CRIMINAL TRESPASS - CLASS C MISDEMEANOR",
		CaseNumber:           "23-100001",
		DefendantName:        "DOE, JOHN",
		DefendantAddress:     "123 Main St",
		DefendantHasAttorney: true,
		HearingDetails:       portal.srv.URL + "/Case/CaseDetail?eid=enc-ar-1",
	}}, records)

	// the filtered-out hearing must not trigger a detail fetch
	_, _, detailGets := portal.counts()
	require.Equal(t, 1, detailGets)
}

func TestGetDataVisitsDateMajor(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{})
	engine := portal.engine(t, Options{DebugLimit: 2})

	start := time.Date(2023, 4, 24, 0, 0, 0, 0, timezone.Location)
	end := time.Date(2023, 4, 26, 0, 0, 0, 0, timezone.Location)

	records, err := engine.GetData(context.Background(), start, end)
	require.NoError(t, err)
	require.Empty(t, records)

	require.Equal(t, []string{
		"1022|04/24/2023", "1030|04/24/2023",
		"1022|04/25/2023", "1030|04/25/2023",
		"1022|04/26/2023", "1030|04/26/2023",
	}, portal.visitLog())
}

func TestGetDataCourtroomCatalog(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{})
	engine := portal.engine(t, Options{Entity: EntityCourtroom, DebugLimit: 2})

	date := time.Date(2023, 4, 26, 0, 0, 0, 0, timezone.Location)
	_, err := engine.GetData(context.Background(), date, date)
	require.NoError(t, err)

	require.Equal(t, []string{
		"1083|04/26/2023", "1103|04/26/2023",
	}, portal.visitLog())
}

func TestGetDataAbortsOnSearchFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{readStatus: 502})
	engine := portal.engine(t, Options{DebugLimit: 2, RetryCount: 1})

	date := time.Date(2023, 4, 26, 0, 0, 0, 0, timezone.Location)
	records, err := engine.GetData(context.Background(), date, date)

	// a failed day aborts the invocation instead of silently skipping
	require.Error(t, err)
	require.Nil(t, records)
	require.Len(t, portal.visitLog(), 1)
}
