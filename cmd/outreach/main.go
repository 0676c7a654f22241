package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/browser"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/config"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/lifecycle"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/linkedin"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/logging"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/outreach"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/ratelimit"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/schedule"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/stealth"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/store"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/testdata"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to config file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `outreach - LinkedIn outreach automation CLI

Usage:
  outreach [--config config.yaml] <command> [options]

Commands:
  init-db                          Create the database schema
  login                            Ensure a logged-in session (with cookie reuse)
  search-prospects [--keywords K --location L --limit N --save]
                                   Search people and optionally store them as prospects
  send-connections [--limit N --message M --campaign C --dry-run]
                                   Send connection requests to NEW prospects
  send-messages [--limit N --dry-run]
                                   Send follow-up messages to newly connected prospects
  sync-connections [--limit N]     Detect accepted connection requests
  mark --id N --event E            Apply a lifecycle event (replied|converted|not-interested)
  list-prospects [--status S --company C --location L --limit N]
  create-campaign --name NAME [options]
  campaigns                        List active campaigns
  stats                            Show funnel statistics
  generate-test-data [--count N]   Insert fake prospects for development
  config                           Print the effective configuration
`)
	}

	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging.Level)
	log.Info("outreach starting", "version", "0.1.0", "db_path", cfg.Database.Path)

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		log.Error("db migration failed", "err", err)
		os.Exit(1)
	}

	app := &app{ctx: ctx, cfg: cfg, st: st, log: log}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]
	switch cmd {
	case "init-db":
		err = app.initDB()
	case "login":
		err = app.login()
	case "search-prospects":
		err = app.searchProspects(args)
	case "send-connections":
		err = app.sendConnections(args)
	case "send-messages":
		err = app.sendMessages(args)
	case "sync-connections":
		err = app.syncConnections(args)
	case "mark":
		err = app.mark(args)
	case "list-prospects":
		err = app.listProspects(args)
	case "create-campaign":
		err = app.createCampaign(args)
	case "campaigns":
		err = app.listCampaigns()
	case "stats":
		err = app.stats()
	case "generate-test-data":
		err = app.generateTestData(args)
	case "config":
		err = app.printConfig()
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Error("command failed", "cmd", cmd, "err", err)
		fmt.Fprintf(os.Stderr, "command failed: %v\n", err)
		os.Exit(1)
	}
	log.Info("command completed", "cmd", cmd)
}

type app struct {
	ctx context.Context
	cfg *config.Config
	st  *store.Store
	log *logging.Logger
}

func (a *app) initDB() error {
	// Migrate already ran; this command exists so first-time setup is explicit.
	fmt.Println("database initialized at", a.cfg.Database.Path)
	return nil
}

// newClient launches the browser and ensures a logged-in session.
func (a *app) newClient() (*linkedin.Client, func(), error) {
	br, err := browser.New(a.ctx, a.cfg, a.log)
	if err != nil {
		return nil, nil, err
	}
	cl := linkedin.New(br, a.cfg, a.log)
	lctx, cancel := context.WithTimeout(a.ctx, 5*time.Minute)
	defer cancel()
	if err := cl.Login(lctx); err != nil {
		br.Close()
		return nil, nil, err
	}
	return cl, br.Close, nil
}

// newScheduler builds the shared limiter (seeded from the store so budgets
// survive restarts within a day) and the scheduler on top of it.
func (a *app) newScheduler(connCap, msgCap int) (*schedule.Scheduler, error) {
	lim, err := ratelimit.New(connCap, msgCap, a.cfg.Limits.RateLimitEnabled)
	if err != nil {
		return nil, err
	}
	for _, k := range []ratelimit.Kind{ratelimit.KindConnection, ratelimit.KindMessage} {
		n, err := a.st.CountActionsToday(a.ctx, k)
		if err != nil {
			return nil, err
		}
		lim.Seed(k, n)
	}
	return schedule.New(lim,
		time.Duration(a.cfg.Limits.DelayBetweenActionsMin)*time.Second,
		time.Duration(a.cfg.Limits.DelayBetweenActionsMax)*time.Second), nil
}

func (a *app) login() error {
	_, closeFn, err := a.newClient()
	if err != nil {
		return err
	}
	defer closeFn()
	fmt.Println("logged in")
	return nil
}

func (a *app) searchProspects(args []string) error {
	fs := flag.NewFlagSet("search-prospects", flag.ContinueOnError)
	var keywords, location, industry string
	var limit int
	var save bool
	fs.StringVar(&keywords, "keywords", a.cfg.Search.Defaults.Keywords, "Search keywords")
	fs.StringVar(&location, "location", a.cfg.Search.Defaults.Location, "Target location")
	fs.StringVar(&industry, "industry", a.cfg.Search.Defaults.Industry, "Target industry")
	fs.IntVar(&limit, "limit", a.cfg.Search.MaxProfilesPerSearch, "Max profiles to collect")
	fs.BoolVar(&save, "save", false, "Store results as prospects")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if keywords == "" {
		return errors.New("--keywords is required")
	}

	cl, closeFn, err := a.newClient()
	if err != nil {
		return err
	}
	defer closeFn()

	cands, err := cl.SearchProspects(a.ctx, linkedin.Query{
		Keywords: keywords, Location: location, Industry: industry, Limit: limit,
	})
	if err != nil {
		return err
	}
	fmt.Printf("found %d prospects\n", len(cands))
	for i, c := range cands {
		fmt.Printf("%3d. %s  %s\n", i+1, c.LinkedInURL, c.FullName)
	}
	if !save {
		return nil
	}
	saved, existing := 0, 0
	for _, c := range cands {
		_, existed, err := a.st.CreateProspect(a.ctx, models.Prospect{
			LinkedInURL: c.LinkedInURL,
			FullName:    c.FullName,
			Headline:    c.Headline,
			Location:    c.Location,
			Industry:    c.Industry,
			Source:      "linkedin_search",
		})
		if err != nil {
			a.log.Warn("failed to save prospect", "url", c.LinkedInURL, "err", err)
			continue
		}
		if existed {
			existing++
		} else {
			saved++
		}
	}
	fmt.Printf("saved %d new prospects (%d already known)\n", saved, existing)
	return nil
}

func (a *app) sendConnections(args []string) error {
	fs := flag.NewFlagSet("send-connections", flag.ContinueOnError)
	var limit int
	var message, campaign string
	var dryRun bool
	fs.IntVar(&limit, "limit", 0, "Max requests this run (0 = daily budget)")
	fs.StringVar(&message, "message", "", "Note template override")
	fs.StringVar(&campaign, "campaign", "", "Use a campaign's template and caps")
	fs.BoolVar(&dryRun, "dry-run", false, "Report what would be sent without doing it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	template := a.cfg.Templates.ConnectionNote
	connCap := a.cfg.Limits.MaxConnectionRequestsPerDay
	msgCap := a.cfg.Limits.MaxMessagesPerDay
	if campaign != "" {
		c, err := a.st.FindCampaign(a.ctx, campaign)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("campaign %q not found", campaign)
		}
		if c.ConnectionTemplate != "" {
			template = c.ConnectionTemplate
		}
		if c.DailyConnections < connCap {
			connCap = c.DailyConnections
		}
	}
	if message != "" {
		template = message
	}

	sched, err := a.newScheduler(connCap, msgCap)
	if err != nil {
		return err
	}

	var auto outreach.Automator
	if !dryRun {
		cl, closeFn, err := a.newClient()
		if err != nil {
			return err
		}
		defer closeFn()
		auto = cl
	}

	runner := outreach.NewRunner(a.st, auto, sched, a.log)
	sum, err := runner.Run(a.ctx, outreach.RunConfig{
		Kind:     ratelimit.KindConnection,
		Limit:    limit,
		Template: template,
		DryRun:   dryRun,
	})
	printSummary("send-connections", sum, dryRun)
	return err
}

func (a *app) sendMessages(args []string) error {
	fs := flag.NewFlagSet("send-messages", flag.ContinueOnError)
	var limit int
	var dryRun bool
	fs.IntVar(&limit, "limit", 0, "Max messages this run (0 = daily budget)")
	fs.BoolVar(&dryRun, "dry-run", false, "Report what would be sent without doing it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sched, err := a.newScheduler(
		a.cfg.Limits.MaxConnectionRequestsPerDay, a.cfg.Limits.MaxMessagesPerDay)
	if err != nil {
		return err
	}

	var auto outreach.Automator
	if !dryRun {
		cl, closeFn, err := a.newClient()
		if err != nil {
			return err
		}
		defer closeFn()
		auto = cl
	}

	runner := outreach.NewRunner(a.st, auto, sched, a.log)
	sum, err := runner.Run(a.ctx, outreach.RunConfig{
		Kind:     ratelimit.KindMessage,
		Limit:    limit,
		Template: a.cfg.Templates.FollowUp,
		DryRun:   dryRun,
	})
	printSummary("send-messages", sum, dryRun)
	return err
}

func (a *app) syncConnections(args []string) error {
	fs := flag.NewFlagSet("sync-connections", flag.ContinueOnError)
	var limit int
	fs.IntVar(&limit, "limit", 30, "Max pending requests to probe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	checks, err := a.st.ListPendingConnectionChecks(a.ctx, limit)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		fmt.Println("no pending connection requests")
		return nil
	}

	cl, closeFn, err := a.newClient()
	if err != nil {
		return err
	}
	defer closeFn()

	accepted := 0
	for _, c := range checks {
		res, err := cl.CheckConnection(a.ctx, c.LinkedInURL)
		if err != nil {
			var authErr *outreach.AuthError
			if errors.As(err, &authErr) {
				return err
			}
			a.log.Warn("acceptance check failed", "url", c.LinkedInURL, "err", err)
			continue
		}
		if res.FullName != "" || res.Headline != "" || res.Company != "" {
			if err := a.st.UpdateProspectInfo(a.ctx, c.ProspectID, res.FullName, res.Headline, res.Company); err != nil {
				a.log.Warn("profile backfill failed", "prospect_id", c.ProspectID, "err", err)
			}
		}
		if !res.Accepted {
			stealth.Pause(300, 900)
			continue
		}
		if _, err := a.st.UpdateConnectionStatus(a.ctx, c.RequestID, models.ConnectionAccepted); err != nil {
			return err
		}
		p, err := a.st.GetProspect(a.ctx, c.ProspectID)
		if err != nil {
			return err
		}
		trans, err := lifecycle.Apply(p.Status, lifecycle.ConnectionAccepted)
		if err != nil {
			a.log.Warn("acceptance recorded but status unchanged", "prospect_id", p.ID, "err", err)
			continue
		}
		if err := a.st.UpdateStatus(a.ctx, p.ID, trans.To, trans.StampContacted); err != nil {
			return err
		}
		accepted++
		a.log.Info("connection accepted", "prospect_id", p.ID, "url", c.LinkedInURL)
		stealth.Pause(300, 900)
	}
	fmt.Printf("checked %d pending requests, %d newly accepted\n", len(checks), accepted)
	return nil
}

func (a *app) mark(args []string) error {
	fs := flag.NewFlagSet("mark", flag.ContinueOnError)
	var id int64
	var event string
	fs.Int64Var(&id, "id", 0, "Prospect id")
	fs.StringVar(&event, "event", "", "replied | converted | not-interested")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == 0 || event == "" {
		return errors.New("--id and --event are required")
	}
	events := map[string]lifecycle.Event{
		"replied":        lifecycle.ReplyReceived,
		"converted":      lifecycle.MarkedConverted,
		"not-interested": lifecycle.MarkedNotInterested,
	}
	ev, ok := events[event]
	if !ok {
		return fmt.Errorf("unknown event %q", event)
	}
	p, err := a.st.GetProspect(a.ctx, id)
	if err != nil {
		return err
	}
	trans, err := lifecycle.Apply(p.Status, ev)
	if err != nil {
		return err
	}
	if err := a.st.UpdateStatus(a.ctx, p.ID, trans.To, trans.StampContacted); err != nil {
		return err
	}
	fmt.Printf("prospect %d: %s -> %s\n", p.ID, p.Status, trans.To)
	return nil
}

func (a *app) listProspects(args []string) error {
	fs := flag.NewFlagSet("list-prospects", flag.ContinueOnError)
	var status, company, location string
	var limit int
	fs.StringVar(&status, "status", "", "Filter by lifecycle status")
	fs.StringVar(&company, "company", "", "Filter by company substring")
	fs.StringVar(&location, "location", "", "Filter by location substring")
	fs.IntVar(&limit, "limit", 0, "Max rows (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prospects, err := a.st.ListProspects(a.ctx, store.Filter{
		Status:   models.ProspectStatus(status),
		Company:  company,
		Location: location,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	if len(prospects) == 0 {
		fmt.Println("no prospects found")
		return nil
	}
	fmt.Printf("%d prospects:\n", len(prospects))
	for _, p := range prospects {
		name := p.FullName
		if name == "" {
			name = "(unknown)"
		}
		fmt.Printf("%5d  %-14s %-28s %s\n", p.ID, p.Status, name, p.LinkedInURL)
	}
	return nil
}

func (a *app) createCampaign(args []string) error {
	fs := flag.NewFlagSet("create-campaign", flag.ContinueOnError)
	var c models.Campaign
	fs.StringVar(&c.Name, "name", "", "Campaign name (required)")
	fs.StringVar(&c.Description, "description", "", "Description")
	fs.StringVar(&c.TargetKeywords, "keywords", "", "Comma-separated keywords")
	fs.StringVar(&c.TargetLocations, "locations", "", "Comma-separated locations")
	fs.StringVar(&c.TargetIndustries, "industries", "", "Comma-separated industries")
	fs.StringVar(&c.ConnectionTemplate, "connection-template", "", "Connection note template")
	fs.StringVar(&c.FollowUpTemplate, "follow-up-template", "", "Follow-up message template")
	fs.IntVar(&c.DailyConnections, "daily-connections", 20, "Per-campaign daily connection cap")
	fs.IntVar(&c.DailyMessages, "daily-messages", 15, "Per-campaign daily message cap")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Active = true
	created, err := a.st.CreateCampaign(a.ctx, c)
	if err != nil {
		return err
	}
	fmt.Printf("campaign %q created (id %d)\n", created.Name, created.ID)
	return nil
}

func (a *app) listCampaigns() error {
	campaigns, err := a.st.ActiveCampaigns(a.ctx)
	if err != nil {
		return err
	}
	if len(campaigns) == 0 {
		fmt.Println("no active campaigns")
		return nil
	}
	for _, c := range campaigns {
		fmt.Printf("%3d  %-20s connections/day=%d messages/day=%d keywords=%s\n",
			c.ID, c.Name, c.DailyConnections, c.DailyMessages, c.TargetKeywords)
	}
	return nil
}

func (a *app) stats() error {
	st, err := a.st.Stats(a.ctx)
	if err != nil {
		return err
	}
	fmt.Println("PROSPECTS")
	fmt.Printf("  total: %d\n", st.TotalProspects)
	for _, s := range models.AllStatuses() {
		fmt.Printf("  %-15s %d\n", string(s)+":", st.ByStatus[s])
	}
	fmt.Println("CONNECTIONS")
	fmt.Printf("  total: %d  pending: %d  accepted: %d\n",
		st.TotalRequests, st.PendingRequests, st.AcceptedRequests)
	fmt.Println("MESSAGES")
	fmt.Printf("  total: %d  sent: %d  received: %d\n",
		st.TotalMessages, st.SentMessages, st.ReceivedMessages)
	if st.TotalRequests > 0 {
		fmt.Printf("acceptance rate: %.1f%%\n", st.AcceptanceRate())
	}
	return nil
}

func (a *app) generateTestData(args []string) error {
	fs := flag.NewFlagSet("generate-test-data", flag.ContinueOnError)
	var count int
	fs.IntVar(&count, "count", 10, "Number of fake prospects")
	if err := fs.Parse(args); err != nil {
		return err
	}
	created := 0
	for _, p := range testdata.Prospects(count) {
		if _, existed, err := a.st.CreateProspect(a.ctx, p); err == nil && !existed {
			created++
		}
	}
	fmt.Printf("created %d test prospects\n", created)
	return nil
}

func (a *app) printConfig() error {
	l := a.cfg.Limits
	fmt.Println("AUTOMATION LIMITS")
	fmt.Printf("  connection requests/day: %d\n", l.MaxConnectionRequestsPerDay)
	fmt.Printf("  messages/day:            %d\n", l.MaxMessagesPerDay)
	fmt.Printf("  delay between actions:   %d-%ds\n", l.DelayBetweenActionsMin, l.DelayBetweenActionsMax)
	fmt.Printf("  rate limiting:           %v\n", l.RateLimitEnabled)
	fmt.Println("BROWSER")
	fmt.Printf("  headless:     %v\n", a.cfg.Browser.Headless)
	fmt.Printf("  active hours: %s-%s\n", a.cfg.Browser.ActiveStart, a.cfg.Browser.ActiveEnd)
	fmt.Println("DATABASE")
	fmt.Printf("  path: %s\n", a.cfg.Database.Path)
	fmt.Println("LOGGING")
	fmt.Printf("  level: %s\n", a.cfg.Logging.Level)
	if _, _, err := config.Credentials(); err != nil {
		fmt.Println("CREDENTIALS: not set")
	} else {
		fmt.Println("CREDENTIALS: set")
	}
	return nil
}

func printSummary(cmd string, sum outreach.Summary, dryRun bool) {
	if dryRun {
		fmt.Printf("[dry run] %s would attempt %d prospects (reason: %s)\n",
			cmd, len(sum.Planned), sum.Reason)
		for i, p := range sum.Planned {
			name := p.FullName
			if name == "" {
				name = "(unknown)"
			}
			fmt.Printf("%3d. %s  %s\n", i+1, name, p.LinkedInURL)
		}
		return
	}
	fmt.Printf("%s: attempted=%d succeeded=%d skipped=%d reason=%s\n",
		cmd, sum.Attempted, sum.Succeeded, sum.Skipped, sum.Reason)
}
