package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/peerfile/signaling-server/pkg"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded: ", err)
	}

	port := getenv("PORT", "3000")
	staticDir := getenv("STATIC_DIR", "public")
	metricsAddr := getenv("METRICS_ADDR", ":8081")
	sslKeyPath := os.Getenv("SSL_KEY_PATH")
	sslCertPath := os.Getenv("SSL_CERT_PATH")
	useTLS := sslKeyPath != "" && sslCertPath != ""

	manager := pkg.NewManager()

	signalingRouter := mux.NewRouter()
	signalingRouter.HandleFunc("/health", manager.HealthHandler)
	signalingRouter.HandleFunc("/ws", manager.SocketHandler)
	signalingRouter.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	signalingServer := &http.Server{
		Addr: ":" + port,
		Handler: promhttp.InstrumentHandlerInFlight(pkg.SignalingInFlightGauge,
			promhttp.InstrumentHandlerCounter(pkg.SignalingRequestsCounter,
				signalingRouter)),
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("Starting signaling server on port %s (tls=%v)...", port, useTLS)
	go func() {
		var err error
		if useTLS {
			err = signalingServer.ListenAndServeTLS(sslCertPath, sslKeyPath)
		} else {
			err = signalingServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Signaling server failed: ", err)
		}
	}()

	log.Infof("Starting metrics server on %s...", metricsAddr)
	go func() {
		err := metricsServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Metrics server failed: ", err)
		}
	}()

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down signaling server...")
	if err := signalingServer.Shutdown(ctx); err != nil {
		log.Fatal("Signaling server shutdown failed: ", err)
	}

	log.Info("Shutting down metrics server...")
	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Fatal("Metrics server shutdown failed: ", err)
	}
}
