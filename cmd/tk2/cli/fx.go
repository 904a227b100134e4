package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/timmiekettle/tk2/internal/accounting/fx"
)

// FXStore is the persistence the fx commands need.
type FXStore interface {
	fx.RateProvider
	SaveQuotes(ctx context.Context, quotes []fx.Quote) error
}

// FXOpsCLI offers operational helpers to inspect and load exchange rates.
type FXOpsCLI struct {
	store  FXStore
	lookup *fx.Lookup
}

// NewFXOpsCLI constructs a new helper instance converting into base.
func NewFXOpsCLI(store FXStore, base string) (*FXOpsCLI, error) {
	if store == nil {
		return nil, errors.New("fx cli: store is required")
	}
	return &FXOpsCLI{store: store, lookup: fx.NewLookup(base, store)}, nil
}

// FXRateOptions defines available flags for the fx rate command.
type FXRateOptions struct {
	Currency   string
	Date       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// FXRateSummary is the JSON output of fx rate.
type FXRateSummary struct {
	OK       bool    `json:"ok"`
	Currency string  `json:"currency"`
	Base     string  `json:"base"`
	Date     string  `json:"date"`
	Rate     float64 `json:"rate,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// RateCommand prints the rate used for currency on date. It exits 10 when
// no rate is stored, so scripts can tell a gap from a failure.
func (c *FXOpsCLI) RateCommand(ctx context.Context, opts FXRateOptions) int {
	stdout, stderr := outputs(opts.Stdout, opts.Stderr)
	date := time.Now().UTC()
	if strings.TrimSpace(opts.Date) != "" {
		parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(opts.Date))
		if err != nil {
			fmt.Fprintf(stderr, "fx rate: invalid --date %q (expected YYYY-MM-DD)\n", opts.Date)
			return 1
		}
		date = parsed
	}
	summary := FXRateSummary{
		Currency: strings.ToUpper(strings.TrimSpace(opts.Currency)),
		Base:     c.lookup.Base(),
		Date:     date.Format(time.DateOnly),
	}
	rate, err := c.lookup.Rate(ctx, opts.Currency, date)
	code := 0
	var missing *fx.MissingRateError
	switch {
	case errors.As(err, &missing):
		summary.Error = missing.Error()
		code = 10
	case err != nil:
		fmt.Fprintf(stderr, "fx rate: %v\n", err)
		return 1
	default:
		summary.OK = true
		summary.Rate = rate
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			fmt.Fprintf(stderr, "fx rate: encode json: %v\n", err)
			return 1
		}
		return code
	}
	if !summary.OK {
		fmt.Fprintln(stdout, summary.Error)
		return code
	}
	fmt.Fprintf(stdout, "1 %s = %s %s (as of %s)\n", summary.Currency,
		strconv.FormatFloat(summary.Rate, 'f', -1, 64), summary.Base, summary.Date)
	return code
}

// FXImportMode enumerates supported execution strategies.
type FXImportMode string

const (
	// FXImportModeDry parses and reports without writing.
	FXImportModeDry FXImportMode = "dry"
	// FXImportModeApply persists the parsed rates.
	FXImportModeApply FXImportMode = "apply"
)

// FXImportOptions configures the import command. Source is a CSV file with
// from_currency,to_currency,date,exchange_rate columns; "-" reads stdin.
type FXImportOptions struct {
	Source       string
	SourceReader io.Reader
	Mode         FXImportMode
	JSONOutput   bool
	Stdout       io.Writer
	Stderr       io.Writer
}

// FXImportSummary captures the structured reporting outcome.
type FXImportSummary struct {
	Mode    FXImportMode    `json:"mode"`
	Quotes  []FXImportQuote `json:"quotes"`
	Applied bool            `json:"applied"`
}

// FXImportQuote is one parsed CSV row.
type FXImportQuote struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// ImportCommand loads exchange rates from CSV.
func (c *FXOpsCLI) ImportCommand(ctx context.Context, opts FXImportOptions) int {
	stdout, stderr := outputs(opts.Stdout, opts.Stderr)
	if opts.Mode == "" {
		opts.Mode = FXImportModeDry
	}
	mode := FXImportMode(strings.ToLower(string(opts.Mode)))
	switch mode {
	case FXImportModeDry, FXImportModeApply:
	default:
		fmt.Fprintf(stderr, "fx import: invalid mode %q (expected dry or apply)\n", opts.Mode)
		return 1
	}

	reader := opts.SourceReader
	if reader == nil {
		switch strings.TrimSpace(opts.Source) {
		case "":
			fmt.Fprintln(stderr, "fx import: --source is required")
			return 1
		case "-":
			reader = os.Stdin
		default:
			f, err := os.Open(opts.Source)
			if err != nil {
				fmt.Fprintf(stderr, "fx import: %v\n", err)
				return 1
			}
			defer f.Close()
			reader = f
		}
	}

	quotes, err := parseQuotes(reader)
	if err != nil {
		fmt.Fprintf(stderr, "fx import: %v\n", err)
		return 1
	}
	summary := FXImportSummary{Mode: mode, Quotes: make([]FXImportQuote, 0, len(quotes))}
	for _, q := range quotes {
		summary.Quotes = append(summary.Quotes, FXImportQuote{From: q.From, To: q.To, Date: q.Date.Format(time.DateOnly), Rate: q.Rate})
	}
	if mode == FXImportModeApply && len(quotes) > 0 {
		if err := c.store.SaveQuotes(ctx, quotes); err != nil {
			fmt.Fprintf(stderr, "fx import: save: %v\n", err)
			return 1
		}
		summary.Applied = true
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			fmt.Fprintf(stderr, "fx import: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	verb := "would import"
	if summary.Applied {
		verb = "imported"
	}
	fmt.Fprintf(stdout, "%s %d rate(s)\n", verb, len(summary.Quotes))
	for _, q := range summary.Quotes {
		fmt.Fprintf(stdout, " - %s%s %s %s\n", q.From, q.To, q.Date, strconv.FormatFloat(q.Rate, 'f', -1, 64))
	}
	return 0
}

func parseQuotes(r io.Reader) ([]fx.Quote, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	quotes := make([]fx.Quote, 0, len(records))
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "from_currency") {
			continue
		}
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", i+1, rec[2])
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("line %d: invalid rate %q", i+1, rec[3])
		}
		from := strings.ToUpper(strings.TrimSpace(rec[0]))
		to := strings.ToUpper(strings.TrimSpace(rec[1]))
		if from == "" || to == "" {
			return nil, fmt.Errorf("line %d: currency codes are required", i+1)
		}
		quotes = append(quotes, fx.Quote{From: from, To: to, Date: date, Rate: rate})
	}
	return quotes, nil
}

func outputs(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdout, stderr
}
