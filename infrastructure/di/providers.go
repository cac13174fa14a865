package di

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"trustie-admin/application/commands/bus"
	commandhandlers "trustie-admin/application/commands/handlers"
	"trustie-admin/application/ports"
	querybus "trustie-admin/application/queries/bus"
	queryhandlers "trustie-admin/application/queries/handlers"
	"trustie-admin/application/services"
	"trustie-admin/infrastructure/config"
	"trustie-admin/infrastructure/imaging"
	"trustie-admin/infrastructure/messaging/eventbridge"
	"trustie-admin/infrastructure/messaging/local"
	"trustie-admin/infrastructure/persistence/dynamodb"
	"trustie-admin/infrastructure/persistence/memory"
	"trustie-admin/infrastructure/search"
	"trustie-admin/infrastructure/storage/s3"
	"trustie-admin/interfaces/http/rest"
	"trustie-admin/interfaces/http/rest/middleware"
	"trustie-admin/pkg/auth"
	"trustie-admin/pkg/observability"
	"trustie-admin/pkg/utils"
)

const developmentSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zcfg.Level = level
	}
	return zcfg.Build(zap.Fields(zap.String("environment", cfg.Environment)))
}

// ProvideAWSConfig creates AWS configuration. With X-Ray enabled every client
// built from it records subsegments.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableXRay {
		observability.InstrumentAWS(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideLambdaClient creates a Lambda client
func ProvideLambdaClient(awsCfg aws.Config) *awslambda.Client {
	return awslambda.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// Repositories groups the table-backed ports
type Repositories struct {
	Events      ports.EventRepository
	Users       ports.UserRepository
	Resources   ports.ResourceRepository
	DeadLetters ports.DeadLetterStore
}

// ProvideRepositories selects the storage backend
func ProvideRepositories(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) Repositories {
	if cfg.StorageBackend == config.StorageMemory {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return Repositories{
			Events:      memory.NewEventRepository(),
			Users:       memory.NewUserRepository(0),
			Resources:   memory.NewResourceRepository(),
			DeadLetters: memory.NewDeadLetterStore(),
		}
	}
	return Repositories{
		Events:    dynamodb.NewEventRepository(dynamodb.NewRecordStore(client, cfg.EventsTable, logger), logger),
		Users:     dynamodb.NewUserRepository(dynamodb.NewRecordStore(client, cfg.UsersTable, logger), logger),
		Resources: dynamodb.NewResourceRepository(dynamodb.NewRecordStore(client, cfg.ResourcesTable, logger), logger),
		DeadLetters: dynamodb.NewDeadLetterStore(
			dynamodb.NewRecordStore(client, cfg.FanoutDLQTable, logger), cfg.DeadLetterRetention, logger),
	}
}

// ProvideUserFileStore creates the post image bucket
func ProvideUserFileStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.UserFileStore {
	return s3.NewObjectStore(client, s3.Options{Bucket: cfg.S3Bucket}, logger.Named("user-files"))
}

// ProvideKnowledgeFileStore creates the knowledge base bucket
func ProvideKnowledgeFileStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.KnowledgeFileStore {
	return s3.NewObjectStore(client, s3.Options{Bucket: cfg.KnowledgeBucket}, logger.Named("knowledge-files"))
}

// ProvideSearchClient creates the remote search client with the stats cache
func ProvideSearchClient(client *awslambda.Client, cfg *config.Config, logger *zap.Logger) ports.SearchClient {
	invoker := search.NewLambdaClient(client, search.Functions{
		SearchUser:  cfg.SearchUserFunction,
		SearchEvent: cfg.SearchEventFunction,
		UsageStats:  cfg.UsageStatsFunction,
	}, search.DefaultBreakerConfig(), logger)
	return search.NewCachedStatsClient(invoker, cfg.StatsCacheTTL)
}

// ProvideImageTransformer creates the image resizer
func ProvideImageTransformer(logger *zap.Logger) ports.ImageTransformer {
	return imaging.NewResizer(80, logger)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("trustie_admin")
}

// ProvideFanoutMetrics fans fanout observations out to Prometheus and, inside
// Lambda, to CloudWatch
func ProvideFanoutMetrics(collector *observability.Collector, client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) ports.FanoutMetrics {
	recorders := observability.FanoutRecorders{collector}
	if cfg.EnableMetrics && os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		recorders = append(recorders, observability.NewCloudWatchReporter(cfg.MetricsNamespace, client, logger))
	}
	return recorders
}

// ProvideFanoutService creates the feed fanout service
func ProvideFanoutService(repos Repositories, metrics ports.FanoutMetrics, cfg *config.Config, logger *zap.Logger) *services.FeedFanoutService {
	return services.NewFeedFanoutService(repos.Users, repos.DeadLetters, metrics, cfg.FanoutProfileSK, logger.Named("fanout"))
}

// ProvideDispatcher selects how published posts reach the fanout
func ProvideDispatcher(
	cfg *config.Config,
	fanout *services.FeedFanoutService,
	client *awseventbridge.Client,
	repos Repositories,
	logger *zap.Logger,
) ports.FanoutDispatcher {
	if cfg.FanoutMode == config.FanoutModeEventBridge {
		return eventbridge.NewPublisher(client, cfg.EventBusName, repos.DeadLetters, logger)
	}
	return local.NewDispatcher(fanout, cfg.FanoutConcurrency, logger)
}

// ProvideCommandBus registers every command handler
func ProvideCommandBus(
	cfg *config.Config,
	repos Repositories,
	files ports.UserFileStore,
	knowledge ports.KnowledgeFileStore,
	transformer ports.ImageTransformer,
	dispatcher ports.FanoutDispatcher,
	collector *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	clock := utils.SystemClock{}
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(collector),
	)

	set := commandhandlers.Set{
		CreatePost: commandhandlers.NewCreatePostHandler(
			repos.Events, files, transformer, clock, cfg.PostNamespace, logger),
		PublishPost: commandhandlers.NewPublishPostHandler(
			repos.Events, repos.Users, dispatcher, clock,
			commandhandlers.PublishOrdering{
				AuthorizeFirst: cfg.PublishAuthorizeFirst,
				Strict:         cfg.PublishStrict,
			}, logger),
		Resources: commandhandlers.NewResourceHandler(
			repos.Resources, utils.NewMonotonicClock(clock), logger),
		KnowledgeFile: commandhandlers.NewKnowledgeFileHandler(
			knowledge, clock, cfg.KnowledgeNamespace, cfg.KnowledgeBucketURL, logger),
	}
	if err := set.Register(commandBus); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus registers every query handler
func ProvideQueryBus(
	cfg *config.Config,
	repos Repositories,
	searchClient ports.SearchClient,
	files ports.UserFileStore,
	collector *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.MetricsMiddleware(collector))

	set := queryhandlers.Set{
		Users:      queryhandlers.NewUserQueryHandler(repos.Users, searchClient, logger),
		Events:     queryhandlers.NewEventQueryHandler(repos.Events, searchClient, logger),
		Resources:  queryhandlers.NewResourceQueryHandler(repos.Resources, logger),
		ImageURL:   queryhandlers.NewImageURLHandler(files, cfg.SignedURLTTL),
		UsageStats: queryhandlers.NewUsageStatsHandler(searchClient, logger),
	}
	if err := set.Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideSessionValidator creates the session token validator
func ProvideSessionValidator(cfg *config.Config, logger *zap.Logger) (*auth.SessionValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = developmentSecret
	}
	return auth.NewSessionValidator(auth.SessionConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideTracing installs the OpenTelemetry provider when enabled
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "trustie-admin",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessions *auth.SessionValidator,
	collector *observability.Collector,
	client *awsdynamodb.Client,
	logger *zap.Logger,
) *rest.Router {
	var exposed *observability.Collector
	if cfg.EnableMetrics {
		exposed = collector
	}
	router := rest.NewRouter(
		commandBus,
		queryBus,
		middleware.NewSessionGate(sessions, cfg.SessionCookie, cfg.LoginPath, logger),
		exposed,
		rest.RouterConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			MaxUploadBytes: cfg.MaxUploadBytes,
			Debug:          cfg.IsDevelopment(),
			ServiceName:    "trustie-admin",
			EnableTracing:  cfg.EnableTracing,
		},
		logger,
	)
	if cfg.StorageBackend == config.StorageDynamoDB {
		for _, table := range []string{cfg.UsersTable, cfg.EventsTable, cfg.ResourcesTable} {
			router.AddReadinessCheck(table, tableReady(client, table))
		}
	}
	return router
}

func tableReady(client *awsdynamodb.Client, table string) rest.ReadinessCheck {
	return func(ctx context.Context) error {
		_, err := client.DescribeTable(ctx, &awsdynamodb.DescribeTableInput{TableName: aws.String(table)})
		return err
	}
}
