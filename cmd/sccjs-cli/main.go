package main

import (
	"context"

	"sccjs-backend/cmd/sccjs-cli/commands"
	"sccjs-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "sccjs-cli")
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}
