package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"portfolio-api/api"
	"portfolio-api/storage"
	"portfolio-api/tracker"
)

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing storage config")
	}
	tables := storage.Tables{
		Projects:   envOr("PROJECTS_TABLE", "projects"),
		Skills:     envOr("SKILLS_TABLE", "skills"),
		Categories: envOr("CATEGORIES_TABLE", "skillcategories"),
		Content:    envOr("CONTENT_TABLE", "content"),
		Messages:   envOr("MESSAGES_TABLE", "messages"),
		Visitors:   envOr("VISITORS_TABLE", "visitors"),
		Users:      envOr("USERS_TABLE", "users"),
		VisitQueue: envOr("VISITS_QUEUE", "visits"),
	}
	store, err := storage.New(connStr, tables)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	redisOpts, err := redis.ParseURL(redisConn)
	if err != nil {
		parts := strings.Split(redisConn, ",")
		redisOpts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				redisOpts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					redisOpts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	rc := redis.NewClient(redisOpts)

	cacheTTL := 5 * time.Minute
	if v := os.Getenv("READ_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid READ_CACHE_TTL: %v", err)
		}
		cacheTTL = d
	}
	cached := storage.NewCache(store, rc, cacheTTL)

	dedupeTTL := 30 * time.Minute
	if v := os.Getenv("VISIT_DEDUPE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid VISIT_DEDUPE_TTL: %v", err)
		}
		dedupeTTL = d
	}
	deduper := api.NewRedisDeduper(rc, dedupeTTL)

	var auth *api.Auth
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		auth = api.NewLocalAuth([]byte(secret))
	} else {
		audience := os.Getenv("AUTH_JWKS_AUDIENCE")
		domain := os.Getenv("AUTH_JWKS_DOMAIN")
		if audience == "" || domain == "" {
			log.Fatal("missing auth config: set JWT_SECRET or AUTH_JWKS_DOMAIN and AUTH_JWKS_AUDIENCE")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, audience, "https://"+domain+"/")
	}

	logger := log.New()

	processor := tracker.New(store, logger)
	go processor.Run(context.Background())

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	e.Use(middleware.Decompress())
	e.Use(middleware.Gzip())
	e.Use(echoprometheus.NewMiddleware("portfolio_api"))
	e.GET("/metrics", echoprometheus.NewHandler())

	api.Register(e, cached, auth, deduper, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
