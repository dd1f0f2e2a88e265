package main

import (
	"net/http"

	"sccjs-backend/lib/configutil"
	"sccjs-backend/lib/leadstore"
	"sccjs-backend/lib/serviceutil"
	"sccjs-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = 8310
	}

	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "sccjsd")
	telemetry.InstrumentPerfStats(ctx)

	var store *leadstore.Store
	if config.Database != "" {
		s, err := leadstore.Open(config.Database)
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer s.Close()
		store = &s
	}

	service := NewService(config, store)
	mux := http.NewServeMux()
	mux.Handle("POST /{$}", service)

	go serviceutil.StartHttpServer(config.Port, mux)

	<-ctx.Done()
}
