package pubsite

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/eringen/pubsite/contact"
	"github.com/eringen/pubsite/content"
)

// SiteConfig holds all configuration for the site. LoadConfig fills it from
// the environment; New fills in defaults for anything left empty.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"        envDefault:"Pubsite"`
	URL         string `env:"SITE_URL"         envDefault:"http://localhost:3000"`
	Description string `env:"SITE_DESCRIPTION"`
	Addr        string `env:"ADDR"             envDefault:":3000"`

	Locales        []string `env:"LOCALES"         envSeparator:"," envDefault:"sv,en"`
	FallbackLocale string   `env:"FALLBACK_LOCALE" envDefault:"sv"`

	ContentDriver string        `env:"CONTENT_DRIVER" envDefault:"sqlite"`
	ContentDSN    string        `env:"CONTENT_DSN"`
	ContentTable  string        `env:"CONTENT_TABLE"  envDefault:"blog_posts"`
	PostCacheTTL  time.Duration `env:"POST_CACHE_TTL" envDefault:"5m"`

	SessionSecret string `env:"SESSION_SECRET"`
	CookieSecure  bool   `env:"COOKIE_SECURE"`

	ContactEmail          string        `env:"CONTACT_EMAIL"           envDefault:"hello@example.com"`
	ContactRequireSubject bool          `env:"CONTACT_REQUIRE_SUBJECT"`
	ContactRateLimit      int           `env:"CONTACT_RATE_LIMIT"      envDefault:"5"`
	ContactRateWindow     time.Duration `env:"CONTACT_RATE_WINDOW"     envDefault:"1h"`
	EmailFunctionURL      string        `env:"EMAIL_FUNCTION_URL"`
	EmailFunctionToken    string        `env:"EMAIL_FUNCTION_TOKEN"`
	SendGridAPIKey        string        `env:"SENDGRID_API_KEY"`
	MailFrom              string        `env:"MAIL_FROM"`
	MailFromName          string        `env:"MAIL_FROM_NAME"`
	MailTo                string        `env:"MAIL_TO"`
	RedisURL              string        `env:"REDIS_URL"`

	GonePaths []string `env:"GONE_PATHS" envSeparator:"," envDefault:"/app"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads dotenv files (".env" when none are given; missing files
// are skipped) and then parses the environment.
func LoadConfig(files ...string) (SiteConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return SiteConfig{}, fmt.Errorf("pubsite: load %s: %w", f, err)
		}
	}
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// validate rejects values the limiter and cache cannot run with.
func (c SiteConfig) validate() error {
	var errs []error
	if c.ContactRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("CONTACT_RATE_LIMIT must be positive, got %d", c.ContactRateLimit))
	}
	if c.ContactRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("CONTACT_RATE_WINDOW must be positive, got %s", c.ContactRateWindow))
	}
	if c.PostCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("POST_CACHE_TTL must not be negative, got %s", c.PostCacheTTL))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("pubsite: invalid config: %w", err)
	}
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Pubsite"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if len(c.Locales) == 0 {
		c.Locales = []string{"sv", "en"}
	}
	if c.FallbackLocale == "" {
		c.FallbackLocale = c.Locales[0]
	}
	if c.ContentDriver == "" {
		c.ContentDriver = content.DriverSQLite
	}
	if c.ContentTable == "" {
		c.ContentTable = content.DefaultTable
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.ContactEmail == "" {
		c.ContactEmail = "hello@example.com"
	}
	if c.ContactRateLimit == 0 {
		c.ContactRateLimit = 5
	}
	if c.ContactRateWindow == 0 {
		c.ContactRateWindow = time.Hour
	}
	if c.GonePaths == nil {
		c.GonePaths = []string{"/app"}
	}
}

func (c SiteConfig) contactRules() contact.Rules {
	if c.ContactRequireSubject {
		return contact.Rules{Subjects: contact.DefaultSubjects}
	}
	return contact.Rules{}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithContentStore replaces the store opened from ContentDSN.
func WithContentStore(src content.Source) Option {
	return func(a *App) {
		a.source = src
	}
}

// WithSender replaces the contact form's sender (normally the remote email
// function client or the in-process relay).
func WithSender(s contact.Sender) Option {
	return func(a *App) {
		a.sender = s
	}
}

// WithDeliverer replaces the relay's email deliverer.
func WithDeliverer(d contact.Deliverer) Option {
	return func(a *App) {
		a.deliverer = d
	}
}

// WithLimiter replaces the contact rate limiter.
func WithLimiter(l contact.Limiter) Option {
	return func(a *App) {
		a.limiter = l
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithClock overrides the time source used for build timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
