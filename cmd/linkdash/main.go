// Command linkdash is an interactive terminal dashboard for a
// URL-shortener server: it manages the session, the user's links and
// (for admins) the custom domains, and runs the first-time setup.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
	"github.com/ebelousov/linkdash/internal/config"
	"github.com/ebelousov/linkdash/internal/gate"
	"github.com/ebelousov/linkdash/internal/logger"
	"github.com/ebelousov/linkdash/internal/notify"
	"github.com/ebelousov/linkdash/internal/session"
	"github.com/ebelousov/linkdash/internal/setup"
	"github.com/ebelousov/linkdash/internal/state"
)

var (
	version   string
	buildDate string
)

// termNavigator satisfies state.Navigator for a terminal UI: pages
// are names, navigation just records and announces them.
type termNavigator struct {
	current string
}

func (n *termNavigator) Path() string { return n.current }

func (n *termNavigator) Navigate(target string) {
	n.current = target
	fmt.Printf("-> %s\n", target)
}

// app bundles the containers the command loop works with.
type app struct {
	sess     *state.Session
	links    *state.Links
	domains  *state.Domains
	repo     *state.DomainRepository
	srvCfg   *state.Config
	wizard   *setup.Wizard
	guard    *gate.Guard
	store    *session.Store
	notifier *notify.Notifier
	nav      *termNavigator
	log      *zap.Logger
}

func (a *app) toasts() {
	for _, n := range a.notifier.Drain() {
		switch n.Level {
		case notify.Error:
			fmt.Printf("[error] %s\n", n.Message)
		case notify.Success:
			fmt.Printf("[ok] %s\n", n.Message)
		default:
			fmt.Printf("[info] %s\n", n.Message)
		}
	}
}

func (a *app) renderLinks(ctx context.Context) gate.Result {
	return a.guard.RequireLogin(func(_ *api.User) string {
		if err := a.links.EnsureLoaded(ctx); err != nil {
			return fmt.Sprintf("failed to load links: %v", err)
		}
		var b strings.Builder
		pg := a.links.Pagination()
		fmt.Fprintf(&b, "Links (page %d of %d, %d total)\n", pg.Page, pg.TotalPages(), pg.TotalCount)
		for _, l := range a.links.Items() {
			fmt.Fprintf(&b, "  %-12s -> %s  [%s]\n", l.EffectiveSlug(), l.OriginalLink, l.Domain)
		}
		return b.String()
	})(ctx)
}

func (a *app) renderDomains(ctx context.Context) gate.Result {
	return a.guard.RequireAdmin(func(_ *api.User) string {
		if err := a.domains.EnsureLoaded(ctx); err != nil {
			return fmt.Sprintf("failed to load domains: %v", err)
		}
		var b strings.Builder
		pg := a.domains.Pagination()
		fmt.Fprintf(&b, "Domains (page %d of %d, %d total)\n", pg.Page, pg.TotalPages(), pg.TotalCount)
		for _, d := range a.domains.Items() {
			locked := ""
			if !a.domains.CanModify(d) {
				locked = " (base domain, locked)"
			}
			fmt.Fprintf(&b, "  #%d %s public=%v%s\n", d.ID, d.Domain, d.Public, locked)
		}
		return b.String()
	})(ctx)
}

func show(res gate.Result) {
	if res.Content != "" {
		fmt.Println(res.Content)
	}
}

const helpText = `Commands:
  login <email> <password>      authenticate
  logout                        end the session
  whoami                        show the session user
  links                         list my links
  shorten <url> <domain-id> [custom-slug]
  rm <slug>                     delete a link
  domains                       list domains (admin)
  domain-add <host> [public]    create a domain (admin)
  domain-set <id> <host|-> <public|-> update a domain (admin)
  domain-rm <id>                delete a domain (admin)
  page <n> | perpage <n>        navigate the current list
  theme <dark|light>            switch theme
  setup <db-url> <base-url> <jwt-secret>  first-run setup
  help | exit`

func repl(ctx context.Context, a *app) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		a.toasts()
		fmt.Print("linkdash> ")
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Println(helpText)

		case "login":
			if len(args) < 3 {
				fmt.Println("Usage: login <email> <password>")
				continue
			}
			if err := a.sess.Login(ctx, args[1], args[2]); err != nil {
				fmt.Printf("Login failed: %s\n", a.sess.Err())
				continue
			}
			fmt.Printf("Logged in as %s\n", a.sess.User().Username)

		case "logout":
			a.sess.Logout(ctx, true)

		case "whoami":
			u := a.sess.User()
			if u == nil {
				fmt.Println("Not logged in")
				continue
			}
			fmt.Printf("%s <%s> admin=%v\n", u.Username, u.Email, u.IsAdmin)

		case "links":
			a.nav.current = "/dash"
			show(a.renderLinks(ctx))

		case "shorten":
			if len(args) < 3 {
				fmt.Println("Usage: shorten <url> <domain-id> [custom-slug]")
				if err := a.repo.Refresh(ctx); err == nil {
					fmt.Println("Available domains:")
					for _, d := range a.repo.Domains() {
						fmt.Printf("  #%d %s\n", d.ID, d.Domain)
					}
				}
				continue
			}
			domainID, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Println("domain-id must be a number")
				continue
			}
			custom := ""
			if len(args) > 3 {
				custom = args[3]
			}
			a.links.Creation().Reset()
			if link, err := a.links.Shorten(ctx, args[1], domainID, custom); err != nil {
				fmt.Printf("Creation failed: %s\n", creationFailure(a.links.Creation(), err))
			} else {
				fmt.Printf("Created %s -> %s\n", link.EffectiveSlug(), link.OriginalLink)
			}

		case "rm":
			if len(args) < 2 {
				fmt.Println("Usage: rm <slug>")
				continue
			}
			_ = a.links.Delete(ctx, args[1])

		case "domains":
			a.nav.current = "/dash/domains"
			show(a.renderDomains(ctx))

		case "domain-add":
			if len(args) < 2 {
				fmt.Println("Usage: domain-add <host> [public]")
				continue
			}
			public := len(args) > 2 && args[2] == "public"
			a.domains.Creation().Reset()
			if d, err := a.domains.Create(ctx, args[1], public); err != nil {
				fmt.Printf("Creation failed: %s\n", creationFailure(a.domains.Creation(), err))
			} else {
				fmt.Printf("Created domain #%d %s\n", d.ID, d.Domain)
			}

		case "domain-set":
			if len(args) < 4 {
				fmt.Println("Usage: domain-set <id> <host|-> <public|->")
				continue
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("id must be a number")
				continue
			}
			var host *string
			if args[2] != "-" {
				host = &args[2]
			}
			var public *bool
			if args[3] != "-" {
				v := args[3] == "true" || args[3] == "public"
				public = &v
			}
			if err := a.domains.Update(ctx, id, host, public); err != nil {
				fmt.Printf("Update failed: %v\n", err)
			}

		case "domain-rm":
			if len(args) < 2 {
				fmt.Println("Usage: domain-rm <id>")
				continue
			}
			id, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("id must be a number")
				continue
			}
			if err := a.domains.Delete(ctx, id); err != nil {
				fmt.Printf("Delete failed: %v\n", err)
			}

		case "page", "perpage":
			if len(args) < 2 {
				fmt.Printf("Usage: %s <n>\n", args[0])
				continue
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("n must be a number")
				continue
			}
			onDomains := a.nav.current == "/dash/domains"
			if args[0] == "page" {
				if onDomains {
					err = a.domains.SetPage(ctx, n)
				} else {
					err = a.links.SetPage(ctx, n)
				}
			} else {
				if onDomains {
					err = a.domains.SetPerPage(ctx, n)
				} else {
					err = a.links.SetPerPage(ctx, n)
				}
			}
			if err != nil {
				fmt.Printf("Fetch failed: %v\n", err)
				continue
			}
			if onDomains {
				show(a.renderDomains(ctx))
			} else {
				show(a.renderLinks(ctx))
			}

		case "theme":
			if len(args) < 2 {
				fmt.Printf("Theme: %s\n", a.store.Theme())
				continue
			}
			if err := a.store.SetTheme(args[1]); err != nil {
				fmt.Printf("Failed to save theme: %v\n", err)
			}

		case "setup":
			if len(args) < 4 {
				fmt.Println("Usage: setup <db-url> <base-url> <jwt-secret>")
				continue
			}
			runSetup(ctx, a, args[1], args[2], args[3])

		case "exit":
			fmt.Println("Bye")
			return

		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func runSetup(ctx context.Context, a *app, dbURL, baseURL, jwtSecret string) {
	cfg := api.SetupConfig{
		DB: &api.SetupDB{URL: dbURL},
		App: &api.SetupApp{
			ShortenedLinkLength:  6,
			AllowRegistering:     true,
			BaseURL:              baseURL,
			EmailVerificationTTL: "24h",
		},
		Security: &api.SetupSecurity{JWTSecret: jwtSecret, MinPasswordStrength: 3},
		Setup:    api.SetupDone{SetupDone: true},
	}
	if err := a.wizard.Apply(ctx, cfg); err != nil {
		if errs := a.wizard.Errors(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Printf("  - %s\n", e)
			}
		} else {
			fmt.Printf("Setup failed: %s\n", a.wizard.ErrMessage())
		}
		return
	}

	fmt.Println("Config accepted, waiting for the server to come back...")
	if err := a.wizard.WaitHealthy(ctx, 10, 2*time.Second); err != nil {
		fmt.Printf("Server did not come back: %v\n", err)
		return
	}
	if err := a.srvCfg.Refresh(ctx); err != nil {
		fmt.Printf("Failed to reload server config: %v\n", err)
		return
	}
	fmt.Println("Setup complete.")
}

func main() {
	options := config.Parse()

	fmt.Printf("linkdash %s (%s)\n", orNA(version), orNA(buildDate))

	zapLogger, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	store := session.NewStore(options.StateFile)
	if err := store.Load(); err != nil {
		zapLogger.Fatal("cannot load state file", zap.Error(err))
	}

	notifier := &notify.Notifier{}
	nav := &termNavigator{current: "/dash"}

	client := api.NewClient(options.ServerURL, &http.Client{Timeout: 30 * time.Second}, store, zapLogger)
	remote := api.New(client)

	sess := state.NewSession(remote, store, nav, notifier, zapLogger)
	links := state.NewLinks(remote, notifier, options.PerPage, zapLogger)
	domains := state.NewDomains(remote, notifier, options.PerPage, zapLogger)
	repo := state.NewDomainRepository(remote, zapLogger)
	srvCfg := state.NewConfig(remote, zapLogger)
	wizard := setup.New(remote, zapLogger)
	guard := gate.New(sess, store)

	// Admins see more domains than anonymous viewers, so the selection
	// list follows the session user.
	sess.OnUserChange(func(ctx context.Context) {
		if err := repo.Refresh(ctx); err != nil {
			zapLogger.Debug("cannot refresh domain list", zap.Error(err))
		}
	})

	a := &app{
		sess: sess, links: links, domains: domains, repo: repo,
		srvCfg: srvCfg, wizard: wizard, guard: guard,
		store: store, notifier: notifier, nav: nav, log: zapLogger,
	}

	ctx := context.Background()
	if err := srvCfg.Load(ctx); err != nil {
		zapLogger.Warn("cannot load server config", zap.Error(err))
	} else {
		cfg := srvCfg.Get()
		domains.SetBaseURL(cfg.BaseURL)
		if !cfg.SetupDone {
			fmt.Println("Server setup is not complete; run 'setup' first.")
		}
	}
	if err := repo.Refresh(ctx); err != nil {
		zapLogger.Debug("cannot load domain list", zap.Error(err))
	}

	fmt.Println("Type 'help' for a list of commands.")
	repl(ctx, a)
}

// creationFailure picks the failure text to show: the server message
// recorded by the creation machine, or the plain error for form
// validation failures that never started a creation.
func creationFailure(c *state.Creation, err error) string {
	if msg := c.Message(); msg != "" {
		return msg
	}
	return err.Error()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
