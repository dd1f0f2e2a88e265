package main

import (
	"sccjs-backend/services/leads"
)

type Config struct {
	Port int `json:"port"`
	// PortalUrl overrides the production portal root, mainly for
	// integration testing against a fake portal.
	PortalUrl string `json:"portal_url"`
	// Entity is "judge" or "courtroom"; empty defaults to judge.
	Entity     string `json:"entity"`
	DebugLimit int    `json:"debug_limit"`

	Smtp      leads.SmtpConfig `json:"smtp"`
	EmailFrom string           `json:"email_from"`
	EmailTo   string           `json:"email_to"`

	// Database is an optional sqlite path; scraped batches are recorded
	// there when set.
	Database string `json:"database"`
}
