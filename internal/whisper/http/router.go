package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/service"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
	"github.com/aussiebroadwan/whisper/pkg/httpx"
	"github.com/aussiebroadwan/whisper/pkg/jwtx"
	"github.com/aussiebroadwan/whisper/pkg/slogx"

	_ "github.com/aussiebroadwan/whisper/api/whisper" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	limits       httpx.RateLimits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	TokenService   *service.TokenService
	UserService    *service.UserService
	MessageService *service.MessageService
}

func NewRouter(
	keys *jwtx.KeyManager,
	limits httpx.RateLimits,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerMessages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Whisper Messaging API
//	@version		0.1.0
//	@description	Direct messages between registered users. Register or log in to get a bearer token;
//	@description	every other endpoint needs it. Tokens do not expire, logout revokes them.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/whisper
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(sessionValidator{r.TokenService})
}

// sessionValidator tags rejected tokens for the guard. Storage errors pass
// through untagged so they surface as 500s.
type sessionValidator struct {
	tokens *service.TokenService
}

func (v sessionValidator) Validate(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := v.tokens.Validate(ctx, token)
	if errors.Is(err, domain.ErrInvalidToken) {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", httpx.ErrInvalidToken, err)
	}
	return claims, err
}

func (r *Router) registerAuth() {
	h := &AuthHandler{UserService: r.UserService}

	// Credential endpoints - strict, keyed by IP and the username being tried
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "username"),
		),
	)

	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.authn(),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		UserService:    r.UserService,
		MessageService: r.MessageService,
	}

	r.Mux.Handle("GET /users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /users/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)

	// Mailboxes are private to their owner
	r.Mux.Handle("GET /users/{username}/to",
		httpx.Chain(http.HandlerFunc(h.HandleInbox),
			r.authn(),
			httpx.EnsureCorrectUser("username"),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /users/{username}/from",
		httpx.Chain(http.HandlerFunc(h.HandleOutbox),
			r.authn(),
			httpx.EnsureCorrectUser("username"),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
}

func (r *Router) registerMessages() {
	h := &MessagesHandler{MessageService: r.MessageService}

	r.Mux.Handle("POST /messages",
		httpx.Chain(http.HandlerFunc(h.HandleSend),
			r.authn(),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("GET /messages/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
	r.Mux.Handle("POST /messages/{id}/read",
		httpx.Chain(http.HandlerFunc(h.HandleMarkRead),
			r.authn(),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Health checks - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)
}
