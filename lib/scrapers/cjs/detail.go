package cjs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sccjs-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// FetchCaseDetail scrapes the public detail page for one case. The page
// needs no login, so it goes through the anonymous session. Under the
// default policy a failed fetch degrades to default field values instead
// of erroring; one unreadable case must not sink a whole batch.
func (e *Engine) FetchCaseDetail(ctx context.Context, encryptedCaseId string) (CaseDetail, error) {
	client, err := e.anonymousSession()
	if err != nil {
		return CaseDetail{}, err
	}

	ctx, span := tracer.Start(ctx, "FetchCaseDetail")
	defer span.End()

	res, err := client.R().
		SetContext(ctx).
		SetQueryParam("eid", encryptedCaseId).
		Get("/Case/CaseDetail")
	if err == nil && res.IsError() {
		err = fmt.Errorf("case detail: %s", res.Status())
	}

	var doc *goquery.Document
	if err == nil {
		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	}
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch case detail page")
		if e.opts.DetailFailurePolicy == DetailFailurePropagate {
			return CaseDetail{}, err
		}
		slog.WarnContext(
			ctx, "failed to fetch case detail, using defaults",
			"eid", encryptedCaseId,
			"err", err,
		)
		return CaseDetail{Charges: e.opts.MissingDataSentinel}, nil
	}

	return parseCaseDetailPage(doc, e.opts.MissingDataSentinel), nil
}

// parseCaseDetailPage is the only code that knows the detail page's
// markup: float-positioned label/value span pairs located by sibling
// traversal. If the county changes the page, this is the function to
// fix.
func parseCaseDetailPage(doc *goquery.Document, sentinel string) CaseDetail {
	detail := CaseDetail{Charges: sentinel}

	address := findLabel(doc, "Address").Next()
	if address.Length() > 0 {
		detail.Address = htmlutil.NormalizeSpace(address.Text())
	}

	var charges []string
	doc.Find(".chargeOffenseDescription").Each(func(_ int, s *goquery.Selection) {
		// the charge detail lives in the element following the
		// description's parent
		charges = append(charges, s.Text()+" - "+s.Parent().Next().Text())
	})
	if len(charges) > 0 {
		detail.Charges = strings.Join(charges, ", ")
	}

	detail.HasAttorney = findLabel(doc, "Lead Attorney").Length() > 0

	return detail
}

func findLabel(doc *goquery.Document, label string) *goquery.Selection {
	return doc.Find("span.text-muted").FilterFunction(
		func(_ int, s *goquery.Selection) bool {
			return s.Text() == label
		},
	)
}
