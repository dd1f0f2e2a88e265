package cjs

// EntityKind selects which portal search filter a scrape iterates over.
type EntityKind string

const (
	EntityJudge     EntityKind = "judge"
	EntityCourtroom EntityKind = "courtroom"
)

type entityCatalog struct {
	searchType string
	searchKey  string
	ids        []string
}

var catalogs = map[EntityKind]entityCatalog{
	EntityJudge: {
		searchType: "JudicialOfficer",
		searchKey:  "SearchCriteria.SelectedJudicialOfficer",
		ids: []string{
			"1022",  // Anderson, William Bill
			"1030",  // Massey, Karen
			"1031",  // Lucchesi, Ronald
			"1032",  // Montesi, Louis J., Jr.
			"26775", // Wilson, Lee
			"26776", // Renfroe, Sheila B.
			"26777", // Gilbert, Greg
			"26778", // Johnson, Christian R.
		},
	},
	EntityCourtroom: {
		searchType: "Courtroom",
		searchKey:  "SearchCriteria.SelectedCourtroom",
		ids: []string{
			"1083", "1103", // division 7
			"1085", "1104", // division 8
			"1087", "1105", // division 9
			"1088", "1106", // division 10
		},
	},
}

// only these hearing types produce usable leads
var hearingTypeWhitelist = []string{"AR", "AR2", "AT", "FA"}

type HearingTypeRef struct {
	Word        string `json:"Word"`
	Description string `json:"Description"`
}

type CaseTypeRef struct {
	Description string `json:"Description"`
}

// HearingSummary is one row of the portal's search results, as returned
// by the results-read endpoint.
type HearingSummary struct {
	CaseNumber      string         `json:"CaseNumber"`
	EncryptedCaseId string         `json:"EncryptedCaseId"`
	DefendantName   string         `json:"DefendantName"`
	HearingDate     string         `json:"HearingDate"`
	HearingTypeId   HearingTypeRef `json:"HearingTypeId"`
	CaseTypeId      CaseTypeRef    `json:"CaseTypeId"`
	JudgeParsed     string         `json:"JudgeParsed"`
}

// CaseDetail holds the fields scraped off a public case-detail page.
// Fields the page doesn't carry are filled with explicit defaults, never
// left "missing", so downstream serialization sees a fixed field set.
type CaseDetail struct {
	Address     string
	HasAttorney bool
	Charges     string
}

// HearingRecord is the flat output row: search summary + detail
// enrichment + the derived detail-page link. The field set and order is
// identical for every record of a scrape.
type HearingRecord struct {
	HearingDate          string
	HearingType          string
	JudgeName            string
	DefendantCaseType    string
	Charges              string
	CaseNumber           string
	DefendantName        string
	DefendantAddress     string
	DefendantHasAttorney bool
	HearingDetails       string
}
