package main

import (
	"context"
	"log"

	_ "github.com/joho/godotenv/autoload"

	_ "github.com/nlysenko/datahub-gateway/docs"
)

// @title DataHub Gateway API
// @version 1.0
// @description OAuth login and S3 ingestion gateway for the DataHub platform
// @swagger 2.0

// @license.name Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	app, err := SetupApp()
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	router := BuildRouter(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer app.Shutdown(context.Background())

	if app.Services.Watcher != nil {
		go app.Services.Watcher.Run(ctx)
	}

	if err := app.Run(router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
