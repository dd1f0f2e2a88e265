package cjs

import (
	"sccjs-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("sccjs.lib.scrapers.cjs")
