package main

import "sccjs-backend/lib/telemetry"

var tracer = telemetry.Tracer("sccjs.cmd.sccjsd")
