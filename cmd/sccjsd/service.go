package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sccjs-backend/lib/leadstore"
	"sccjs-backend/lib/scrapers/cjs"
	"sccjs-backend/lib/timezone"
	"sccjs-backend/services/leads"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"
)

type launchRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	// Entity optionally overrides the configured search filter.
	Entity string `json:"entity"`
}

type launchResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Service accepts scrape-and-deliver jobs over HTTP. Credentials are
// verified synchronously so the caller learns about bad passwords
// immediately; the scrape itself runs in the background since it takes
// far longer than any sane request timeout.
type Service struct {
	config Config
	store  *leadstore.Store

	// launch runs the accepted job; swapped out in tests.
	launch func(engine *cjs.Engine, start, end time.Time, jobId string)
}

func NewService(config Config, store *leadstore.Store) Service {
	s := Service{config: config, store: store}
	s.launch = s.run
	return s
}

func (s Service) run(engine *cjs.Engine, start, end time.Time, jobId string) {
	ctx, span := tracer.Start(context.Background(), "run")
	defer span.End()

	slog.InfoContext(ctx, "job started", "job_id", jobId)

	svc := leads.NewService(s.store, leads.Options{
		Smtp: s.config.Smtp,
		From: s.config.EmailFrom,
		To:   s.config.EmailTo,
	})
	err := svc.Run(ctx, engine, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "job failed")
		slog.ErrorContext(ctx, "job failed", "job_id", jobId, "err", err)
		return
	}

	slog.InfoContext(ctx, "job finished", "job_id", jobId)
}

func reply(w http.ResponseWriter, status int, res launchResponse) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(res)
}

func (s Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Launch")
	defer span.End()

	var req launchRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		reply(w, http.StatusBadRequest, launchResponse{Message: "invalid payload"})
		return
	}

	start, err := time.ParseInLocation(cjs.DateFormat, req.StartDate, timezone.Location)
	if err != nil {
		reply(w, http.StatusBadRequest, launchResponse{Message: "invalid start date"})
		return
	}
	end, err := time.ParseInLocation(cjs.DateFormat, req.EndDate, timezone.Location)
	if err != nil {
		reply(w, http.StatusBadRequest, launchResponse{Message: "invalid end date"})
		return
	}
	if end.Before(start) {
		reply(w, http.StatusBadRequest, launchResponse{
			Message: "end date must be on or after start date",
		})
		return
	}

	entity := s.config.Entity
	if req.Entity != "" {
		entity = req.Entity
	}

	engine, err := cjs.NewEngine(cjs.Options{
		Username:                 req.Username,
		Password:                 req.Password,
		Entity:                   cjs.EntityKind(entity),
		BaseUrl:                  s.config.PortalUrl,
		DebugLimit:               s.config.DebugLimit,
		MissingDataSentinel:      cjs.MissingDataMessage,
		AllowLegacyRenegotiation: true,
		BypassBotProtection:      true,
	})
	if err != nil {
		span.RecordError(err)
		reply(w, http.StatusBadRequest, launchResponse{Message: "task failed to launch"})
		return
	}

	verifyCtx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	err = engine.Verify(verifyCtx)
	if errors.Is(err, cjs.ErrLoginFailed) {
		reply(w, http.StatusUnauthorized, launchResponse{Message: "login failed"})
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to verify credentials")
		reply(w, http.StatusBadGateway, launchResponse{Message: "task failed to launch"})
		return
	}

	jobId, err := random.String(12)
	if err != nil {
		span.RecordError(err)
		reply(w, http.StatusInternalServerError, launchResponse{Message: "task failed to launch"})
		return
	}

	go s.launch(engine, start, end, jobId)

	reply(w, http.StatusOK, launchResponse{
		Success: true,
		Message: "task launched",
		Context: map[string]any{"job_id": jobId},
	})
}
