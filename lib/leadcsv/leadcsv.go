package leadcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"sccjs-backend/lib/scrapers/cjs"
)

// Header is the fixed column order every exported batch uses. Consumers
// rely on every row carrying exactly these fields in this order.
var Header = []string{
	"hearing_date",
	"hearing_type",
	"judge_name",
	"defendant_case_type",
	"charges",
	"case_number",
	"defendant_name",
	"defendant_address",
	"defendant_has_attorney",
	"hearing_details",
}

func Write(w io.Writer, records []cjs.HearingRecord) error {
	cw := csv.NewWriter(w)
	err := cw.Write(Header)
	if err != nil {
		return err
	}

	for _, r := range records {
		err := cw.Write([]string{
			r.HearingDate,
			r.HearingType,
			r.JudgeName,
			r.DefendantCaseType,
			r.Charges,
			r.CaseNumber,
			r.DefendantName,
			r.DefendantAddress,
			strconv.FormatBool(r.DefendantHasAttorney),
			r.HearingDetails,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func Read(r io.Reader) ([]cjs.HearingRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	if !slices.Equal(rows[0], Header) {
		return nil, fmt.Errorf("unexpected header: %v", rows[0])
	}

	var records []cjs.HearingRecord
	for _, row := range rows[1:] {
		hasAttorney, err := strconv.ParseBool(row[8])
		if err != nil {
			return nil, fmt.Errorf("defendant_has_attorney: %w", err)
		}
		records = append(records, cjs.HearingRecord{
			HearingDate:          row[0],
			HearingType:          row[1],
			JudgeName:            row[2],
			DefendantCaseType:    row[3],
			Charges:              row[4],
			CaseNumber:           row[5],
			DefendantName:        row[6],
			DefendantAddress:     row[7],
			DefendantHasAttorney: hasAttorney,
			HearingDetails:       row[9],
		})
	}
	return records, nil
}
