//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"trustie-admin/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideS3Client,
	ProvideLambdaClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRepositories,
	ProvideUserFileStore,
	ProvideKnowledgeFileStore,
	ProvideSearchClient,
	ProvideImageTransformer,
	ProvideCollector,
	ProvideFanoutMetrics,
	ProvideFanoutService,
	ProvideDispatcher,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideSessionValidator,
	ProvideTracing,
	ProvideRouter,
	wire.FieldsOf(new(Repositories), "DeadLetters"),
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
