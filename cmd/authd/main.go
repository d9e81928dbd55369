// Command authd runs the reference auth service behind the storefront
// front-end.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/calderas/storefront/server"
)

func main() {
	var (
		addr        = flag.String("addr", envOr("AUTHD_ADDR", ":8080"), "API listen address")
		metricsAddr = flag.String("metrics-addr", envOr("AUTHD_METRICS_ADDR", ":9090"), "metrics listen address")
		dbPath      = flag.String("db", envOr("AUTHD_DB", "authd.db"), "sqlite database path")
		signingKey  = flag.String("signing-key", os.Getenv("AUTHD_SIGNING_KEY"), "token signing key")
		issuer      = flag.String("issuer", envOr("AUTHD_ISSUER", "storefront"), "token issuer")
		tokenHours  = flag.Int("token-hours", 72, "token lifetime in hours")
		debug       = flag.Bool("debug", false, "dump request payloads to the log")
	)
	flag.Parse()

	if *signingKey == "" {
		log.Fatal("authd: signing key is required (-signing-key or AUTHD_SIGNING_KEY)")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, *dbPath)
	if err != nil {
		log.Fatalf("authd: open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := server.CreateTables(ctx, db); err != nil {
		cancel()
		log.Fatalf("authd: create tables: %v", err)
	}
	cancel()

	srv := server.New(db, server.Config{
		SigningKey:      *signingKey,
		TokenExpiration: *tokenHours,
		Issuer:          *issuer,
		Audience:        []string{"storefront:app"},
		Debug:           *debug,
	})

	metrics := &http.Server{
		Addr:    *metricsAddr,
		Handler: srv.Metrics().HTTPHandler(),
	}
	go func() {
		if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("authd: metrics listener: %v", err)
		}
	}()

	go func() {
		log.Printf("authd: listening on %s", *addr)
		if err := srv.Listen(*addr); err != nil {
			log.Printf("authd: listener: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("authd: shutting down")
	if err := srv.Shutdown(); err != nil {
		log.Printf("authd: shutdown: %v", err)
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.Printf("authd: metrics shutdown: %v", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
