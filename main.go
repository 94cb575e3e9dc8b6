package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homevia/admin"
	"homevia/bookings"
	"homevia/chatsession"
	"homevia/chatws"
	"homevia/config"
	"homevia/db"
	"homevia/directory"
	"homevia/globals"
	"homevia/livefeed"
	"homevia/meetings"
	"homevia/mq"
	"homevia/notify"
	"homevia/rdx"
	"homevia/routes"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}
	globals.JwtSecret = []byte(cfg.JWTSecret)

	db.Init(cfg)
	rdx.Init(cfg)

	port := cfg.Port
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	// live feed: services publish through Redis, the worker fans out to
	// websocket subscribers
	feed := livefeed.NewFeed()
	go mq.StartFeedWorker(feed)
	emitter := mq.NewRedisEmitter()

	// notification channels
	dispatcher := notify.NewDispatcher(notify.NewSMTPMailer(cfg), notify.NewGatewayTexter(cfg))

	// core services
	dir := directory.NewMongo()
	meetingStore := meetings.NewMongoStore()
	sessionMgr := chatsession.NewManager(chatsession.NewMongoStore(), meetingStore)
	meetingSvc := meetings.NewService(meetingStore, dir, sessionMgr, dispatcher, emitter)
	bookingSvc := bookings.NewService(bookings.NewMongoStore(), dir, dispatcher, emitter)

	// chat rooms
	hub := chatws.NewHub()
	go hub.Run()
	gate := chatsession.NewRoomGate(sessionMgr)

	router := httprouter.New()
	router.GET("/health", Index)

	routes.AddStaticRoutes(router)
	routes.AddAuthRoutes(router)
	routes.AddProfileRoutes(router)
	routes.AddPropertyRoutes(router)
	routes.AddReviewsRoutes(router)
	routes.AddMeetingRoutes(router, meetings.NewHandlers(meetingSvc))
	routes.AddBookingRoutes(router, bookings.NewHandlers(bookingSvc))
	routes.AddChatRoutes(router, chatsession.NewHandlers(sessionMgr, meetingSvc, hub), hub, gate)
	routes.AddAdminRoutes(router, admin.NewHandlers(dispatcher))
	routes.AddFeedRoutes(router, feed)

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down chat hub...")
		hub.Stop()
	})

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
