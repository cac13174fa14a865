package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"trustie-admin/infrastructure/config"
	"trustie-admin/infrastructure/di"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	w := &worker{fanout: container.Fanout, logger: container.Logger.Named("fanout-worker")}
	lambda.Start(w.handle)
}
