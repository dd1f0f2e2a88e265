package leads

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"sccjs-backend/lib/leadcsv"
	"sccjs-backend/lib/leadstore"
	"sccjs-backend/lib/scrapers/cjs"
	"sccjs-backend/lib/telemetry"
	"sccjs-backend/lib/timezone"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("sccjs.services.leads")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Options struct {
	Smtp SmtpConfig
	From string
	// To is the delivery address. When empty, delivery is skipped and
	// the batch is only logged/stored (debugging runs).
	To string
}

// Service turns a scraped batch into a delivered lead sheet: render to
// CSV, email it as an attachment, and keep a copy in the store when one
// is configured.
type Service struct {
	store  *leadstore.Store
	config Options
}

func NewService(store *leadstore.Store, options Options) Service {
	return Service{
		store:  store,
		config: options,
	}
}

// Run scrapes [start, end] with the given engine and delivers the
// result. An empty batch is not an error; it just skips delivery.
func (s Service) Run(ctx context.Context, engine *cjs.Engine, start, end time.Time) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	records, err := engine.GetData(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		return err
	}
	if len(records) == 0 {
		slog.WarnContext(ctx, "no hearings found")
		return nil
	}

	if s.store != nil {
		err := s.store.Push(ctx, timezone.Now(), records)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to store batch")
			return err
		}
	}

	return s.Deliver(ctx, records, start, end)
}

// Deliver emails the batch as a CSV attachment.
func (s Service) Deliver(ctx context.Context, records []cjs.HearingRecord, start, end time.Time) error {
	ctx, span := tracer.Start(ctx, "Deliver")
	defer span.End()

	if s.config.To == "" {
		slog.InfoContext(
			ctx, "no delivery address configured, skipping email",
			"records", len(records),
		)
		return nil
	}

	var csvData bytes.Buffer
	err := leadcsv.Write(&csvData, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render csv")
		return err
	}

	startStr := start.Format(cjs.DateFormat)
	endStr := end.Format(cjs.DateFormat)

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("SCCJS Leads <%s>", s.config.From)
	mail.To = []string{s.config.To}
	mail.Subject = fmt.Sprintf("SCCJS leads for %s to %s", startStr, endStr)
	mail.Text = []byte("Data attached.")

	_, err = mail.Attach(&csvData, "leads.csv", "text/csv")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to attach csv")
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Smtp.Server, s.config.Smtp.Port)
	err = mail.Send(
		addr,
		smtp.PlainAuth("", s.config.Smtp.EmailAddress, s.config.Smtp.Password, s.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	slog.InfoContext(
		ctx, "lead sheet delivered",
		"to", s.config.To,
		"records", len(records),
	)
	return nil
}
