package commands

import (
	"log/slog"
	"os"
	"time"

	"sccjs-backend/lib/configutil"
	"sccjs-backend/lib/leadcsv"
	"sccjs-backend/lib/leadstore"
	"sccjs-backend/lib/scrapers/cjs"
	"sccjs-backend/lib/serviceutil"
	"sccjs-backend/lib/timezone"
	"sccjs-backend/services/leads"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	Smtp      leads.SmtpConfig `json:"smtp"`
	EmailFrom string           `json:"email_from"`
	EmailTo   string           `json:"email_to"`
}

var (
	scrapeEntity     *string
	scrapeOut        *string
	scrapeDb         *string
	scrapeEmail      *bool
	scrapeDebugLimit *int
	scrapeSentinel   *string
)

func init() {
	scrapeEntity = scrapeCmd.Flags().String("entity", "judge", "The search filter to iterate over, either 'judge' or 'courtroom'.")
	scrapeOut = scrapeCmd.Flags().String("out", "data.csv", "The file to write scraped records to.")
	scrapeDb = scrapeCmd.Flags().String("db", "", "An optional sqlite database to record the batch in.")
	scrapeEmail = scrapeCmd.Flags().Bool("email", false, "Email the batch using the smtp settings in config.json5.")
	scrapeDebugLimit = scrapeCmd.Flags().Int("debug-limit", 0, "Truncate the id catalog to its first N ids, for short debugging runs.")
	scrapeSentinel = scrapeCmd.Flags().String("sentinel", cjs.MissingDataMessage, "The marker substituted for detail fields that could not be scraped.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <username> <password> <start YYYY-MM-DD> <end YYYY-MM-DD>",
	Short: "Scrapes hearing records for a date range and writes them to a CSV.",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		username, password := args[0], args[1]

		start, err := time.ParseInLocation(cjs.DateFormat, args[2], timezone.Location)
		if err != nil {
			serviceutil.Fatal("failed to parse start date", err)
		}
		end, err := time.ParseInLocation(cjs.DateFormat, args[3], timezone.Location)
		if err != nil {
			serviceutil.Fatal("failed to parse end date", err)
		}
		if end.Before(start) {
			slog.Error("end date must be on or after start date", "start", args[2], "end", args[3])
			os.Exit(1)
		}

		engine, err := cjs.NewEngine(cjs.Options{
			Username:                 username,
			Password:                 password,
			Entity:                   cjs.EntityKind(*scrapeEntity),
			DebugLimit:               *scrapeDebugLimit,
			MissingDataSentinel:      *scrapeSentinel,
			AllowLegacyRenegotiation: true,
			BypassBotProtection:      true,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize engine", err)
		}

		t1 := time.Now()
		records, err := engine.GetData(cmd.Context(), start, end)
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		t2 := time.Now()

		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds(), "records", len(records))
		preview(records)

		out, err := os.Create(*scrapeOut)
		if err != nil {
			serviceutil.Fatal("failed to create output file", err)
		}
		defer out.Close()

		err = leadcsv.Write(out, records)
		if err != nil {
			serviceutil.Fatal("failed to write csv", err)
		}

		if *scrapeDb != "" {
			store, err := leadstore.Open(*scrapeDb)
			if err != nil {
				serviceutil.Fatal("failed to open db", err)
			}
			defer store.Close()

			err = store.Push(cmd.Context(), timezone.Now(), records)
			if err != nil {
				serviceutil.Fatal("failed to record batch", err)
			}
		}

		if *scrapeEmail {
			cfg, err := configutil.ReadConfig[Config]("config.json5")
			if err != nil {
				serviceutil.Fatal("failed to read config", err)
			}
			svc := leads.NewService(nil, leads.Options{
				Smtp: cfg.Smtp,
				From: cfg.EmailFrom,
				To:   cfg.EmailTo,
			})
			err = svc.Deliver(cmd.Context(), records, start, end)
			if err != nil {
				serviceutil.Fatal("failed to email batch", err)
			}
		}
	},
}

const previewLimit = 20

func preview(records []cjs.HearingRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Hearing Date", "Type", "Judge", "Case", "Defendant"})

	for i, r := range records {
		if i >= previewLimit {
			break
		}
		t.AppendRow(table.Row{
			r.HearingDate, r.HearingType, r.JudgeName, r.CaseNumber, r.DefendantName,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
