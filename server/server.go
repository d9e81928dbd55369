package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"

	"github.com/calderas/storefront"
)

// Config holds the auth service options.
type Config struct {
	SigningKey      string
	TokenExpiration int // hours
	Issuer          string
	Audience        []string
	// Debug dumps request payloads to the log.
	Debug bool
}

// Server is the reference auth service. It exposes the five endpoints the
// storefront session machine depends on: /validate, /login, /signup,
// /reset-password, and /user-data.
type Server struct {
	app     *fiber.App
	users   *Users
	resets  *Resets
	tokens  *TokenService
	limiter *LoginLimiter
	metrics *Collector
	logger  storefront.Logger
	debug   bool
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the server logger.
func WithLogger(logger storefront.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoginLimiter overrides the per-email login throttle.
func WithLoginLimiter(limiter *LoginLimiter) Option {
	return func(s *Server) {
		if limiter != nil {
			s.limiter = limiter
		}
	}
}

// WithCollector overrides the metrics collector.
func WithCollector(collector *Collector) Option {
	return func(s *Server) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

// New builds the auth service over db. The schema must exist; see
// CreateTables.
func New(db *bun.DB, cfg Config, opts ...Option) *Server {
	s := &Server{
		users:   NewUsers(db),
		resets:  NewResets(db),
		tokens:  NewTokenService([]byte(cfg.SigningKey), cfg.TokenExpiration, cfg.Issuer, cfg.Audience),
		limiter: NewLoginLimiter(10, 10),
		metrics: NewCollector(),
		logger:  noopLogger{},
		debug:   cfg.Debug,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "storefront-auth",
		DisableStartupMessage: true,
	})

	app.Post("/validate", s.instrument("validate", s.handleValidate))
	app.Post("/login", s.instrument("login", s.handleLogin))
	app.Post("/signup", s.instrument("signup", s.handleSignup))
	app.Post("/reset-password", s.instrument("reset-password", s.handleResetPassword))
	app.Post("/user-data", s.instrument("user-data", s.handleUserData))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Metrics exposes the collector so a side listener can serve /metrics.
func (s *Server) Metrics() *Collector {
	return s.metrics
}

// Listen serves the API on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the API and the login limiter sweep.
func (s *Server) Shutdown() error {
	s.limiter.Stop()
	return s.app.Shutdown()
}

func (s *Server) handleValidate(c *fiber.Ctx) error {
	payload := &ValidatePayload{}
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err)
	}
	if err := payload.Validate(); err != nil {
		return badRequest(c, err)
	}

	claims, err := s.tokens.Validate(payload.Token)
	if err != nil {
		s.logger.Debug("token validation rejected: %v", err)
		return unauthorized(c)
	}

	uid, err := uuid.Parse(claims.UID)
	if err != nil {
		return unauthorized(c)
	}

	user, err := s.users.GetByID(c.Context(), uid)
	if err != nil {
		s.logger.Warn("validated token for unknown user %s", claims.UID)
		return unauthorized(c)
	}

	return c.JSON(fiber.Map{
		"id":    user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"phone": user.Phone,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	payload := &LoginPayload{}
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err)
	}
	if err := payload.Validate(); err != nil {
		return badRequest(c, err)
	}

	s.debugDump("login", payload)

	if !s.limiter.Allow(payload.Email) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "too many attempts",
		})
	}

	user, err := s.users.GetByEmail(c.Context(), payload.Email)
	if err != nil {
		return unauthorized(c)
	}

	if err := ComparePasswordAndHash(payload.Password, user.PasswordHash); err != nil {
		if err := s.users.TrackAttemptedLogin(c.Context(), user); err != nil {
			s.logger.Error("track attempted login: %v", err)
		}
		return unauthorized(c)
	}

	if err := s.users.TrackSuccessfulLogin(c.Context(), user); err != nil {
		s.logger.Error("track login: %v", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("token mint: %v", err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"id":    user.ID.String(),
		"token": token,
		"name":  user.Name,
		"phone": user.Phone,
	})
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	payload := &SignupPayload{}
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err)
	}
	if err := payload.Validate(); err != nil {
		return badRequest(c, err)
	}

	s.debugDump("signup", payload)

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return badRequest(c, err)
	}

	user, err := s.users.Register(c.Context(), &User{
		Email:        payload.Email,
		Name:         payload.Name,
		Phone:        normalizePhone(payload.Phone),
		PasswordHash: hash,
	})
	if err != nil {
		s.logger.Warn("signup rejected for %s: %v", payload.Email, err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "email already in use",
		})
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("token mint: %v", err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"id":    user.ID.String(),
		"token": token,
	})
}

func (s *Server) handleResetPassword(c *fiber.Ctx) error {
	payload := &ResetPayload{}
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err)
	}
	if err := payload.Validate(); err != nil {
		return badRequest(c, err)
	}

	// The response never reveals whether the account exists.
	if user, err := s.users.GetByEmail(c.Context(), payload.Email); err == nil {
		if reset, err := s.resets.Create(c.Context(), &user.ID, payload.Email); err != nil {
			s.logger.Error("password reset record: %v", err)
		} else {
			s.notifyReset(reset)
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleUserData(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return unauthorized(c)
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return unauthorized(c)
	}
	uid, err := uuid.Parse(claims.UID)
	if err != nil {
		return unauthorized(c)
	}

	payload := &ProfilePayload{}
	if err := c.BodyParser(payload); err != nil {
		return badRequest(c, err)
	}
	if err := payload.Validate(); err != nil {
		return badRequest(c, err)
	}

	s.debugDump("user-data", payload)

	if err := s.users.UpdateProfile(c.Context(), uid, payload.Name, normalizePhone(payload.Phone)); err != nil {
		s.logger.Error("profile update: %v", err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{"saved": true})
}

func (s *Server) instrument(endpoint string, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := h(c)

		outcome := "ok"
		if err != nil {
			outcome = "error"
		} else if c.Response().StatusCode() >= 400 {
			outcome = "rejected"
		}
		s.metrics.RecordRequest(endpoint, outcome, time.Since(start))
		return err
	}
}

func (s *Server) debugDump(endpoint string, payload any) {
	if !s.debug {
		return
	}
	s.logger.Debug("%s payload: %s", endpoint, print.MaybePrettyJSON(payload))
}

// notifyReset stands in for the mail worker; the reset link only reaches
// the log for now.
// TODO: hand reset records to the notification service once it exists.
func (s *Server) notifyReset(reset *PasswordReset) {
	s.logger.Info("password reset requested for %s: /password-reset/%s", reset.Email, reset.ID.String())
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// normalizePhone stores numbers in E.164 when they parse; anything else is
// kept verbatim so a bad region guess never loses user input.
func normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fmt.Sprintf("invalid request: %v", err),
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "invalid credentials",
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
