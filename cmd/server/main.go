package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/auth"
	"samudra_back_end/internal/cache"
	"samudra_back_end/internal/cart"
	"samudra_back_end/internal/catalog"
	"samudra_back_end/internal/checkout"
	"samudra_back_end/internal/config"
	"samudra_back_end/internal/database"
	"samudra_back_end/internal/handlers"
	"samudra_back_end/internal/logger"
	"samudra_back_end/internal/middleware"
	"samudra_back_end/internal/realtime"
	"samudra_back_end/internal/repository"
	"samudra_back_end/internal/routes"
	"samudra_back_end/internal/services"
	"samudra_back_end/internal/session"
	"samudra_back_end/internal/supabase"
	"samudra_back_end/internal/utils"
)

const (
	sweepInterval   = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

// backends regroupe les accès aux données choisis par DATA_BACKEND.
type backends struct {
	products catalog.Source
	cart     cart.Backend
	orders   checkout.Store
	auth     auth.Backend
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("❌ Configuration invalide")
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Logger invalide")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := connectBackends(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Service de données indisponible")
	}

	// ✅ Services optionnels : chacun est ignoré s'il n'est pas configuré
	var (
		store   cache.Store = cache.NewMemory()
		bus     realtime.Bus
		counter middleware.Counter
	)
	if cfg.RedisEnabled() {
		client, err := database.ConnectRedis(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Warn("⚠️ Redis indisponible, cache mémoire et sync locale")
		} else {
			defer closeRedis(client, log)
			redisCache := cache.NewRedis(client)
			store = redisCache
			counter = redisCache
			bus = realtime.NewRedisBus(client, log)
		}
	}

	catalogOpts := []catalog.Option{catalog.WithCache(store, cfg.CatalogCacheTTL)}
	if cfg.ElasticEnabled() {
		client, err := database.ConnectElastic(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Warn("⚠️ Elasticsearch indisponible, recherche simple")
		} else {
			catalogOpts = append(catalogOpts, catalog.WithSearcher(catalog.NewElastic(client)))
		}
	}
	products := catalog.NewService(data.products, log, catalogOpts...)

	images := services.NewImageResolver(cfg.ImageCDNBase, log)
	if cfg.MinioEnabled() {
		client, err := database.ConnectMinIO(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Warn("⚠️ MinIO indisponible, images via le CDN")
		} else {
			images.WithMinio(client, cfg.MinioBucket)
		}
	}

	checkoutOpts := []checkout.Option{checkout.WithUPI(cfg.UPIVPA, cfg.UPIPayeeName)}
	if cfg.SMTPEnabled() {
		mailer, err := utils.NewMailer(utils.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, log)
		if err != nil {
			log.WithError(err).Warn("⚠️ E-mails de confirmation désactivés")
		} else {
			checkoutOpts = append(checkoutOpts, checkout.WithMailer(mailer))
		}
	}
	orders := checkout.NewService(data.orders, log, checkoutOpts...)

	// 🍪 Un espace (identité + panier) par navigateur
	verifier := auth.NewTokenVerifier(cfg.SupabaseJWTSecret)
	registry := session.NewRegistry(
		session.NewCookieStore(cfg.SessionSecret, cfg.CookieSecure, cfg.SessionIdleTTL),
		func() (*auth.Holder, *cart.Container) {
			return auth.NewHolder(data.auth, verifier, log), cart.New(data.cart, log)
		},
		cfg.SessionIdleTTL, log,
	)
	go registry.Run(ctx, sweepInterval)

	h := handlers.New(handlers.Deps{
		Catalog:  products,
		Checkout: orders,
		Images:   images,
		Bus:      bus,
		Origins:  cfg.CORSOrigins,
		Log:      log,
	})

	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.Requests(log), gin.Recovery(), middleware.CORS(cfg.CORSOrigins))
	routes.RegisterRoutes(r, h, middleware.Session(registry, log), middleware.NewRateLimiter(counter, log))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "backend": cfg.DataBackend}).Info("🚀 Serveur Samudra lancé")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("❌ Serveur arrêté")
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Arrêt du serveur…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("❌ Arrêt forcé")
	}
	// laisser partir les e-mails de confirmation en cours
	orders.Wait()
	log.Info("👋 Serveur arrêté")
}

func connectBackends(cfg *config.Config, log *logrus.Logger) (backends, error) {
	if cfg.DataBackend == config.BackendMemory {
		mem := repository.NewMemory(cfg.SupabaseJWTSecret)
		mem.SeedProducts(repository.DemoProducts(time.Now())...)
		log.Warn("⚠️ Mode mémoire : données de démonstration, rien n'est persisté")
		return backends{products: mem, cart: mem, orders: mem, auth: mem}, nil
	}

	db, err := supabase.New(supabase.Config{
		URL:     cfg.SupabaseURL,
		APIKey:  cfg.SupabaseAnonKey,
		Timeout: cfg.SupabaseTimeout,
	})
	if err != nil {
		return backends{}, err
	}
	if cfg.SupabaseJWTSecret == "" {
		log.Warn("⚠️ SUPABASE_JWT_SECRET absent : signature des jetons non vérifiée")
	}
	log.WithField("url", cfg.SupabaseURL).Info("✅ Client Supabase prêt")
	return backends{
		products: repository.NewProducts(db),
		cart:     repository.NewCart(db),
		orders:   repository.NewOrders(db),
		auth:     repository.NewAuth(db),
	}, nil
}

func closeRedis(client *redis.Client, log *logrus.Logger) {
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("⚠️ Fermeture Redis")
	}
}
