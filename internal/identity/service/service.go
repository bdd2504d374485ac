package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"gramseva/internal/audit"
	"gramseva/internal/identity"
	"gramseva/internal/identity/device"
	"gramseva/internal/platform/config"
	"gramseva/internal/platform/metrics"
	"gramseva/internal/token"
	dErrors "gramseva/pkg/domain-errors"
	"gramseva/pkg/platform/cache"
	"gramseva/pkg/platform/sentinel"
)

// AuditPublisher records portal actions without coupling the service to a
// concrete sink.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the single source of truth for "who is logged in and what is
// their profile". It owns the profile cache and publishes identity-changed
// events that the entity query layers react to.
type Service struct {
	profiles identity.ProfileStore
	creds    identity.CredentialStore
	sessions identity.SessionStore
	tokens   *token.Service

	cache      *cache.TTL[string, identity.Profile]
	bus        *identity.Bus
	logger     *slog.Logger
	metrics    *metrics.Metrics
	audit      AuditPublisher
	tracer     trace.Tracer
	demoMode   bool
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithDemoMode forces stand-in sessions for every login and registration.
// Selected once at startup when the backing database is unconfigured.
func WithDemoMode(enabled bool) Option {
	return func(s *Service) { s.demoMode = enabled }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.cache = cache.New(config.ProfileCacheTTL, cache.WithClock[string, identity.Profile](now))
	}
}

// New constructs the session/profile service.
func New(profiles identity.ProfileStore, creds identity.CredentialStore, sessions identity.SessionStore, tokens *token.Service, bus *identity.Bus, opts ...Option) *Service {
	s := &Service{
		profiles:   profiles,
		creds:      creds,
		sessions:   sessions,
		tokens:     tokens,
		bus:        bus,
		cache:      cache.New[string, identity.Profile](config.ProfileCacheTTL),
		logger:     slog.Default(),
		tracer:     otel.Tracer("gramseva/identity"),
		sessionTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks credentials and opens a session. Transport failures fall back
// to a stand-in demo session so the portal stays usable without a live
// backend; only remote-rejected credentials surface as errors.
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (identity.Session, error) {
	ctx, span := s.tracer.Start(ctx, "identity.login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return identity.Session{}, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	if s.demoMode {
		return s.demoSession(ctx, email, userAgent, "demo mode"), nil
	}

	creds, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.incLoginFailure()
			return identity.Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		// Credential store unreachable. Degraded mode by design, not an
		// error path for the caller.
		s.logger.WarnContext(ctx, "credential store unavailable, issuing demo session",
			"error", err,
		)
		return s.demoSession(ctx, email, userAgent, "credential store unavailable"), nil
	}

	if err := bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password)); err != nil {
		s.incLoginFailure()
		return identity.Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	profile, err := s.CurrentProfile(ctx, creds.UserID)
	if err != nil {
		// Session stays authenticated even when the profile is missing; the
		// role claim falls back to citizen until a profile shows up.
		s.logger.WarnContext(ctx, "login without profile", "user_id", creds.UserID, "error", err)
		profile = identity.Profile{ID: creds.UserID, Email: creds.Email, Role: identity.RoleCitizen}
	}

	session, err := s.openSession(ctx, profile, userAgent, false)
	if err != nil {
		return identity.Session{}, err
	}

	s.bus.Publish(identity.Event{Kind: identity.EventSignedIn, UserID: profile.ID})
	s.emitAudit(ctx, audit.Event{
		UserID: profile.ID,
		Action: string(audit.EventUserLogin),
		Device: session.Device,
	})
	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}
	return session, nil
}

// Register creates a citizen profile plus credentials and opens a session.
// Shares Login's demo/fallback duality.
func (s *Service) Register(ctx context.Context, req identity.RegisterRequest, userAgent string) (identity.Session, error) {
	ctx, span := s.tracer.Start(ctx, "identity.register")
	defer span.End()

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return identity.Session{}, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	case len(req.Password) < 6:
		return identity.Session{}, dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	case req.FullName == "":
		return identity.Session{}, dErrors.New(dErrors.CodeValidation, "full name is required")
	}

	if s.demoMode {
		session := s.demoSession(ctx, req.Email, userAgent, "demo mode")
		// Demo registrations keep the submitted fields on the stand-in
		// profile so the UI reflects what the user typed.
		profile := identity.DemoProfile(req.Email, s.now())
		profile.FullName = req.FullName
		profile.Phone = req.Phone
		profile.Address = req.Address
		s.cache.Put(identity.DemoUserID, profile)
		return session, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return identity.Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	nowTS := s.now()
	profile := identity.Profile{
		ID:        uuid.NewString(),
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      identity.RoleCitizen,
		CreatedAt: nowTS,
		UpdatedAt: nowTS,
	}

	if err := s.creds.Save(ctx, identity.Credentials{UserID: profile.ID, Email: req.Email, PasswordHash: hash}); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return identity.Session{}, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		s.logger.WarnContext(ctx, "credential store unavailable, issuing demo session", "error", err)
		return s.demoSession(ctx, req.Email, userAgent, "credential store unavailable"), nil
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		s.logger.WarnContext(ctx, "profile save failed during registration", "user_id", profile.ID, "error", err)
		return s.demoSession(ctx, req.Email, userAgent, "profile store unavailable"), nil
	}

	s.cache.Put(profile.ID, profile)

	session, err := s.openSession(ctx, profile, userAgent, false)
	if err != nil {
		return identity.Session{}, err
	}

	s.bus.Publish(identity.Event{Kind: identity.EventSignedIn, UserID: profile.ID})
	s.emitAudit(ctx, audit.Event{UserID: profile.ID, Action: string(audit.EventUserCreated)})
	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	return session, nil
}

// Logout clears local session and profile state immediately, then revokes the
// session record. Revocation failures are logged, never surfaced: local state
// is already gone by then.
func (s *Service) Logout(ctx context.Context, sessionID, userID string) error {
	s.cache.Clear()
	s.bus.Publish(identity.Event{Kind: identity.EventSignedOut, UserID: userID})

	if sessionID != "" {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "session revocation failed", "session_id", sessionID, "error", err)
		}
	}

	s.emitAudit(ctx, audit.Event{UserID: userID, Action: string(audit.EventUserLogout)})
	return nil
}

// CurrentProfile returns the viewer's profile, cache first. A known
// access-policy failure substitutes a best-effort profile derived from
// session metadata rather than failing the session; any other store error is
// returned and the session stays authenticated with an absent profile.
func (s *Service) CurrentProfile(ctx context.Context, userID string) (identity.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "identity.current_profile")
	defer span.End()

	if cached, ok := s.cache.Get(userID); ok {
		s.metrics.IncCacheHit("profile")
		return cached, nil
	}
	s.metrics.IncCacheMiss("profile")

	if userID == identity.DemoUserID {
		profile := identity.DemoProfile("demo@gp.gov.in", s.now())
		s.cache.Put(userID, profile)
		return profile, nil
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrPolicyDenied) {
			s.logger.WarnContext(ctx, "profile access policy error, using fallback profile", "user_id", userID)
			fallback := s.fallbackProfile(userID)
			s.cache.Put(userID, fallback)
			return fallback, nil
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return identity.Profile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return identity.Profile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load profile")
	}

	s.cache.Put(userID, profile)
	return profile, nil
}

// UpdateProfile merges the supplied fields into the caller's profile. A
// no-op success for stand-in sessions, which have nothing durable to update.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update identity.ProfileUpdate) (identity.Profile, error) {
	if s.demoMode || userID == identity.DemoUserID {
		return s.CurrentProfile(ctx, userID)
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return identity.Profile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return identity.Profile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load profile")
	}

	if update.FullName != nil {
		if strings.TrimSpace(*update.FullName) == "" {
			return identity.Profile{}, dErrors.New(dErrors.CodeValidation, "full name cannot be empty")
		}
		profile.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.Phone != nil {
		profile.Phone = *update.Phone
	}
	if update.Address != nil {
		profile.Address = *update.Address
	}
	profile.UpdatedAt = s.now()

	if err := s.profiles.Update(ctx, profile); err != nil {
		return identity.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}

	s.cache.Put(userID, profile)
	s.bus.Publish(identity.Event{Kind: identity.EventProfileUpdated, UserID: userID})
	s.emitAudit(ctx, audit.Event{UserID: userID, Action: string(audit.EventProfileUpdated)})
	return profile, nil
}

// ClearProfileCache drops all cached profiles. Exposed for wiring logout
// paths that bypass the service.
func (s *Service) ClearProfileCache() {
	s.cache.Clear()
}

func (s *Service) openSession(ctx context.Context, profile identity.Profile, userAgent string, demo bool) (identity.Session, error) {
	sessionID := uuid.NewString()
	signed, err := s.tokens.GenerateSessionToken(profile.ID, sessionID, string(profile.Role), s.sessionTTL)
	if err != nil {
		return identity.Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	nowTS := s.now()
	session := identity.Session{
		ID:        sessionID,
		UserID:    profile.ID,
		Role:      profile.Role,
		Token:     signed,
		Device:    device.ParseUserAgent(userAgent),
		DemoMode:  demo,
		CreatedAt: nowTS,
		ExpiresAt: nowTS.Add(s.sessionTTL),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		// The JWT alone keeps the session usable; only revocation degrades.
		s.logger.WarnContext(ctx, "session record save failed", "session_id", sessionID, "error", err)
	}
	return session, nil
}

func (s *Service) demoSession(ctx context.Context, email, userAgent, reason string) identity.Session {
	profile := identity.DemoProfile(email, s.now())
	s.cache.Put(identity.DemoUserID, profile)

	session, err := s.openSession(ctx, profile, userAgent, true)
	if err != nil {
		// Token generation only fails on a broken signing key; hand back an
		// unsigned stand-in so demo mode still renders.
		s.logger.ErrorContext(ctx, "demo session token generation failed", "error", err)
		nowTS := s.now()
		session = identity.Session{
			ID:        uuid.NewString(),
			UserID:    identity.DemoUserID,
			Role:      identity.RoleCitizen,
			DemoMode:  true,
			CreatedAt: nowTS,
			ExpiresAt: nowTS.Add(s.sessionTTL),
		}
	}

	s.bus.Publish(identity.Event{Kind: identity.EventSignedIn, UserID: identity.DemoUserID})
	s.emitAudit(ctx, audit.Event{
		UserID: identity.DemoUserID,
		Action: string(audit.EventUserLogin),
		Reason: reason,
	})
	if s.metrics != nil {
		s.metrics.Logins.Inc()
	}
	return session
}

// fallbackProfile is the best-effort stand-in used when the profile row is
// unreadable due to a store-side policy error. Role mirrors the original
// portal's default for this path.
func (s *Service) fallbackProfile(userID string) identity.Profile {
	nowTS := s.now()
	return identity.Profile{
		ID:        userID,
		FullName:  "User",
		Role:      identity.RoleOfficer,
		CreatedAt: nowTS,
		UpdatedAt: nowTS,
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

func (s *Service) incLoginFailure() {
	if s.metrics != nil {
		s.metrics.LoginFailures.Inc()
	}
}
