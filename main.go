package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"prolific/analytics"
	"prolific/auth"
	"prolific/blog"
	"prolific/cache"
	"prolific/common"
	"prolific/config"
	"prolific/dashboard"
	"prolific/database"
	"prolific/posts"
	"prolific/seo"
	"prolific/site"
	"prolific/storage"
	"prolific/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db := common.ConnectDb(cfg.SQLiteDB)
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db, cfg.StoreBackend == config.BackendSQL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	var docs store.DocumentStore
	switch cfg.StoreBackend {
	case config.BackendBadger:
		bdb, err := store.OpenBadger(cfg.BadgerDir)
		if err != nil {
			log.Fatal("Failed to open badger store:", err)
		}
		defer bdb.Close()
		docs = store.NewBadgerStore(bdb)
		log.Printf("Posts stored in badger at %s", cfg.BadgerDir)
	default:
		docs = store.NewSQLStore(db)
		log.Printf("Posts stored in sqlite at %s", cfg.SQLiteDB)
	}

	files, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to open upload directory:", err)
	}

	pageCache, err := cache.New(cfg.CacheDir, cfg.CacheMaxAge)
	if err != nil {
		log.Fatal("Failed to open page cache:", err)
	}
	if err := pageCache.ClearOld(); err != nil {
		log.Printf("Error clearing old cache entries: %v", err)
	}
	go func() {
		for range time.Tick(cfg.CacheMaxAge) {
			if err := pageCache.ClearOld(); err != nil {
				log.Printf("Error clearing old cache entries: %v", err)
			}
		}
	}()

	postService := posts.NewService(docs, files)
	postService.SetInvalidator(pageCache)

	var enhancer seo.Enhancer
	if client := seo.NewClient(cfg.SEOAPIURL, cfg.SEOAPIKey, cfg.SEOModel); client != nil {
		enhancer = client
	} else {
		log.Println("SEO_API_KEY not set, SEO enhancer disabled")
	}

	tracker, err := analytics.NewTracker(db)
	if err != nil {
		log.Printf("Error initializing analytics, views will not be counted: %v", err)
		tracker = nil
	}

	router := gin.Default()

	sessionStore := auth.NewSessionStore(db, []byte(cfg.SessionSecret), cfg.SecureCookies)
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))
	router.Use(auth.Gate())

	router.Static("/public", "./public")

	site.NewSiteModule(postService, cfg.Domain).RegisterRoutes(router)
	blog.NewBlogModule(postService, pageCache, tracker).RegisterRoutes(router)
	storage.NewFilesModule(files).RegisterRoutes(router)

	accounts := auth.NewAccounts(db)
	dashboard.NewDashboardModule(accounts, postService, enhancer, tracker, cfg.LoginRateLimit).RegisterRoutes(router)

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
