package cjs

import (
	"context"
	"strings"
	"testing"

	"sccjs-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const caseDetailPage = `<html><body>
<div class="roleAddress">
	<span class="text-muted">Address</span>
	<div>123  Main
	St</div>
</div>
<div>
	<span class="text-muted">Lead Attorney</span>
	<span>SMITH, SUSAN</span>
</div>
<div class="charge">
	<div><span class="chargeOffenseDescription">THEFT OF PROPERTY</span></div>
	<div>$1,000 OR LESS</div>
</div>
<div class="charge">
	<div><span class="chargeOffenseDescription">CRIMINAL TRESPASS</span></div>
	<div>CLASS C MISDEMEANOR</div>
</div>
</body></html>`

func parseDoc(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestParseCaseDetailPage(t *testing.T) {
	detail := parseCaseDetailPage(parseDoc(t, caseDetailPage), MissingDataMessage)

	require.Equal(t, "123 Main St", detail.Address)
	require.True(t, detail.HasAttorney)
	require.Equal(
		t,
		"THEFT OF PROPERTY - $1,000 OR LESS, CRIMINAL TRESPASS - CLASS C MISDEMEANOR",
		detail.Charges,
	)
}

func TestParseCaseDetailPageEmpty(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>nothing here</div></body></html>`)

	detail := parseCaseDetailPage(doc, MissingDataMessage)
	require.Equal(t, "", detail.Address)
	require.False(t, detail.HasAttorney)
	require.Equal(t, MissingDataMessage, detail.Charges)

	detail = parseCaseDetailPage(doc, "")
	require.Equal(t, "", detail.Charges)
}

func TestFetchCaseDetailDegradesOnFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{detailStatus: 500})
	engine := portal.engine(t, Options{
		RetryCount:          2,
		MissingDataSentinel: MissingDataMessage,
	})

	detail, err := engine.FetchCaseDetail(context.Background(), "enc-1")
	require.NoError(t, err)
	require.Equal(t, CaseDetail{Address: "", HasAttorney: false, Charges: MissingDataMessage}, detail)

	// the transient 500 must have been retried before degrading
	_, _, detailGets := portal.counts()
	require.Equal(t, 3, detailGets)
}

func TestFetchCaseDetailPropagatePolicy(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{detailStatus: 500})
	engine := portal.engine(t, Options{
		RetryCount:          1,
		DetailFailurePolicy: DetailFailurePropagate,
	})

	_, err := engine.FetchCaseDetail(context.Background(), "enc-1")
	require.Error(t, err)
}

func TestFetchCaseDetailParsesPage(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cjs")
	defer cleanup()

	portal := newFakePortal(t, portalConfig{
		detailPages: map[string]string{"enc-1": caseDetailPage},
	})
	engine := portal.engine(t, Options{MissingDataSentinel: MissingDataMessage})

	detail, err := engine.FetchCaseDetail(context.Background(), "enc-1")
	require.NoError(t, err)
	require.Equal(t, "123 Main St", detail.Address)
	require.True(t, detail.HasAttorney)
}
