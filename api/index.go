// Package handler exposes the booking API as a single serverless function.
package handler

import (
	"net/http"
	"os"
	"sync"

	"lodge/config"
	"lodge/di"
	"lodge/shared/logger"
)

var (
	once sync.Once
	app  http.Handler
)

func boot() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)
	logger.SetOutput(cfg, os.Stdout)

	app = di.InitializeService()
}

// Handler builds the service on the first invocation and reuses it for warm starts.
func Handler(writer http.ResponseWriter, request *http.Request) {
	once.Do(boot)

	request.RequestURI = request.URL.String()
	app.ServeHTTP(writer, request)
}
