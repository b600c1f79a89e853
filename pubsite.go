// Package pubsite serves a bilingual marketing site: localized marketing
// pages, a blog read from a hosted content store, a contact form backed by
// an email function, and the sitemap, feeds and robots file around them.
//
// Pages are rendered through the ViewFuncs supplied by the caller, so the
// package owns routing, locale resolution, content access and form handling
// while the views package owns the markup.
package pubsite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/pubsite/contact"
	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/copydeck"
	"github.com/eringen/pubsite/locale"
	"github.com/eringen/pubsite/messages"
)

// ViewFuncs holds the components the app calls to render pages.
type ViewFuncs struct {
	Home        func(p Page) templ.Component
	Features    func(p Page) templ.Component
	Pricing     func(p Page) templ.Component
	About       func(p Page) templ.Component
	Contact     func(p Page, form ContactView) templ.Component
	Blog        func(p Page, posts []content.LocalizedPost) templ.Component
	Post        func(p Page, post content.LocalizedPost) templ.Component
	Legal       func(p Page, doc copydeck.Legal) templ.Component
	NotFound    func(p Page) templ.Component
	ServerError func(p Page) templ.Component
}

// App wires together locales, content, copy, the contact pipeline,
// middleware and the user-provided views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Logger   *slog.Logger
	Locales  *locale.Registry
	Resolver *locale.Resolver
	Store    *content.Store
	Cache    *PostCache
	Messages *messages.Catalog
	Copy     *copydeck.Decks
	Views    ViewFuncs

	source       content.Source
	sender       contact.Sender
	deliverer    contact.Deliverer
	limiter      contact.Limiter
	relay        *contact.Relay
	guard        *contact.Guard
	redis        *redis.Client
	customRoutes []func(*App)
	now          func() time.Time
	builtAt      time.Time
	ready        bool
}

// New creates an App with the given configuration and views. Call Init (or
// Start, which calls it) before serving.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		now:    time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	return a
}

// Init validates configuration, loads locales, copy and messages, opens the
// content store and the contact pipeline, and registers middleware and
// routes.
func (a *App) Init(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return errors.New("pubsite: SessionSecret is required")
	}
	if err := a.Config.validate(); err != nil {
		return err
	}

	reg, err := locale.NewRegistry(a.Config.FallbackLocale, a.Config.Locales...)
	if err != nil {
		return fmt.Errorf("pubsite: %w", err)
	}
	a.Locales = reg
	a.Resolver = locale.NewResolver(reg, a.goneExclusions()...)

	if a.Messages, err = messages.Load(reg); err != nil {
		return fmt.Errorf("pubsite: %w", err)
	}
	if a.Copy, err = copydeck.Load(reg); err != nil {
		return fmt.Errorf("pubsite: %w", err)
	}

	if a.source == nil {
		store, err := content.Open(ctx, content.Config{
			Driver: a.Config.ContentDriver,
			DSN:    a.Config.ContentDSN,
			Table:  a.Config.ContentTable,
		}, reg)
		if err != nil {
			return fmt.Errorf("pubsite: init content store: %w", err)
		}
		switch {
		case !store.Enabled():
			a.Logger.WarnContext(ctx, "content store not configured, blog will be empty")
		case a.Config.ContentDriver == content.DriverSQLite:
			if err := store.EnsureSchema(ctx); err != nil {
				store.Close()
				return fmt.Errorf("pubsite: %w", err)
			}
		}
		a.Store = store
		a.source = store
	}
	a.Cache = NewPostCache(a.source, a.Config.PostCacheTTL)

	if err := a.initContact(ctx); err != nil {
		return err
	}

	a.builtAt = a.now().UTC()
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

func (a *App) initContact(ctx context.Context) error {
	if a.limiter == nil {
		if a.Config.RedisURL != "" {
			opts, err := redis.ParseURL(a.Config.RedisURL)
			if err != nil {
				return fmt.Errorf("pubsite: parse REDIS_URL: %w", err)
			}
			a.redis = redis.NewClient(opts)
			if err := a.redis.Ping(ctx).Err(); err != nil {
				a.Logger.WarnContext(ctx, "redis unreachable, rate limiting fails open until it recovers", slog.Any("error", err))
			}
			a.limiter = contact.NewRedisLimiter(a.redis, a.Config.ContactRateLimit, a.Config.ContactRateWindow, a.Logger)
		} else {
			a.limiter = contact.NewMemoryLimiter(a.Config.ContactRateLimit, a.Config.ContactRateWindow)
		}
	}

	if a.deliverer == nil {
		if a.Config.SendGridAPIKey != "" {
			sg, err := contact.NewSendGrid(contact.SendGridConfig{
				APIKey:    a.Config.SendGridAPIKey,
				FromEmail: a.Config.MailFrom,
				FromName:  a.Config.MailFromName,
				To:        a.Config.MailTo,
			})
			if err != nil {
				return fmt.Errorf("pubsite: %w", err)
			}
			a.deliverer = sg
		} else {
			a.Logger.WarnContext(ctx, "SENDGRID_API_KEY not set, contact messages are logged instead of sent")
			a.deliverer = contact.LogDeliverer{Logger: a.Logger}
		}
	}
	a.relay = contact.NewRelay(a.deliverer, a.limiter, a.Logger)

	if a.sender == nil {
		if a.Config.EmailFunctionURL != "" {
			var opts []contact.ClientOption
			if a.Config.EmailFunctionToken != "" {
				opts = append(opts, contact.WithBearerToken(a.Config.EmailFunctionToken))
			}
			a.sender = contact.NewClient(a.Config.EmailFunctionURL, opts...)
		} else {
			a.sender = a.relay
		}
	}
	a.guard = contact.NewGuard()
	return nil
}

// Handler returns the initialized HTTP handler.
func (a *App) Handler() http.Handler {
	return a.Echo
}

// Start initializes the app if needed and serves until ctx is cancelled,
// then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "listening", slog.String("addr", a.Config.Addr), slog.String("url", a.Config.URL))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Logger.Info("shutting down")
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("pubsite: shutdown: %w", err)
	}
	return <-errc
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if ml, ok := a.limiter.(*contact.MemoryLimiter); ok {
		ml.Stop()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

// ReloadContent drops cached posts so the next request reads the store
// again. Newly scheduled or unpublished posts otherwise wait for the TTL.
func (a *App) ReloadContent(ctx context.Context) {
	if a.Cache == nil {
		return
	}
	a.Cache.Invalidate()
	a.Logger.InfoContext(ctx, "post cache invalidated")
}

// BuiltAt is the time Init ran, used as lastmod for pages without their own
// timestamp.
func (a *App) BuiltAt() time.Time {
	return a.builtAt
}
