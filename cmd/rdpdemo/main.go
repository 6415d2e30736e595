package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jessevdk/go-flags"
	"github.com/jrsteele09/go-rdp-session/endpoints"
	"github.com/jrsteele09/go-rdp-session/internal/config"
	"github.com/jrsteele09/go-rdp-session/rdp"
	"github.com/jrsteele09/go-rdp-session/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		log.Error().Err(err).Msg("rdpdemo failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		return err
	}

	cfg, err := config.Load(options.ConfigFile)
	if err != nil {
		return err
	}
	setupLogging(cfg.GetLogLevel())

	if !options.NoBanner {
		displayAppname(out, cfg.GetAppName())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds := session.Credentials{
		Username:     cfg.GetUsername(),
		Password:     cfg.GetPassword(),
		ClientID:     cfg.GetAppKey(),
		ClientSecret: cfg.GetClientSecret(),
		Scope:        cfg.GetScope(),
	}
	baseURL := cfg.GetBaseURL()
	if options.Mock {
		mockURL, stopMock, err := startMockPlatform(cfg.GetEnv(), &creds)
		if err != nil {
			return err
		}
		defer stopMock()
		baseURL = mockURL
	}

	m, err := newManager(ctx, cfg, options, baseURL)
	if err != nil {
		return err
	}

	s, err := m.Open(ctx, creds)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	fmt.Fprintf(out, "Session %s: %s (expires in %s)\n\n", s.ID(), s.State(), s.ExpiresIn())

	for _, c := range demoCalls(options, time.Now()) {
		if ctx.Err() != nil {
			break
		}
		fetch(ctx, out, m, s, c)
	}

	if options.KeepOpen {
		return nil
	}
	if err := m.Close(context.WithoutCancel(ctx), s); err != nil {
		log.Err(err).Msg("Failed to revoke access token")
		return nil
	}
	fmt.Fprintf(out, "Session %s: %s\n", s.ID(), s.State())
	return nil
}

type demoCall struct {
	title   string
	request session.Request
}

func demoCalls(options *Options, now time.Time) []demoCall {
	return []demoCall{
		{"ESG scores", rdp.ESGScoresFull(options.Universe)},
		{"Company fundamentals", rdp.CompanyFundamentals(options.Universe, 0, -4)},
		{"Business summary", rdp.BusinessSummary(options.Universe)},
		{"Historical pricing events", rdp.HistoricalPricingEvents(options.RIC, now.AddDate(0, 0, -1), options.Count)},
	}
}

// fetch prints one result. A failed call is logged and does not stop the next one.
func fetch(ctx context.Context, out io.Writer, m *session.Manager, s *session.Session, c demoCall) {
	resp, err := m.Dispatch(ctx, s, c.request)
	if err != nil {
		log.Err(err).Str("request", c.title).Msg("Data request failed")
		return
	}
	fmt.Fprintf(out, "%s:\n%s\n\n", c.title, prettyJSON(resp.Body))
}

func newManager(ctx context.Context, cfg config.Config, options *Options, baseURL string) (*session.Manager, error) {
	ep := endpoints.WithPaths(baseURL, cfg.GetTokenPath(), cfg.GetRevokePath())
	if options.Issuer != "" {
		discovered, err := endpoints.Discover(ctx, nil, options.Issuer)
		if err != nil {
			return nil, err
		}
		// data calls still go to the configured platform root
		discovered.Base = baseURL
		ep = discovered
	}
	return session.NewManager(ep, session.ConfigOptions(cfg)...)
}

func prettyJSON(body []byte) string {
	var v any
	if json.Unmarshal(body, &v) != nil {
		return string(body)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(body)
	}
	return string(pretty)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
