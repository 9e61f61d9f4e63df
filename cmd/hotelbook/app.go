package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hotelbook/internal/app/booking"
	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	clientsapp "hotelbook/internal/app/handlers/clients"
	commentsapp "hotelbook/internal/app/handlers/comments"
	hotelsapp "hotelbook/internal/app/handlers/hotels"
	reservationsapp "hotelbook/internal/app/handlers/reservations"
	"hotelbook/internal/app/middleware"
	appoutbox "hotelbook/internal/app/outbox"
	"hotelbook/internal/app/queries"
	authsvc "hotelbook/internal/app/services/auth"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	"hotelbook/internal/infra/broker/kafka"
	"hotelbook/internal/infra/config"
	mongostore "hotelbook/internal/infra/db/mongo"
	"hotelbook/internal/infra/db/scylla"
	ginserver "hotelbook/internal/infra/http/gin"
	"hotelbook/internal/infra/lock"
	"hotelbook/internal/infra/obs"
	infraoutbox "hotelbook/internal/infra/outbox"
	"hotelbook/internal/infra/security"
	"hotelbook/internal/infra/storage/memory"
	"hotelbook/internal/infra/storage/s3"
)

const (
	serviceName     = "hotelbook"
	eventSource     = "app://hotelbook"
	redisLockPrefix = "hotelbook:lock:"
	adminName       = "Administrator"
)

type application struct {
	logger   *slog.Logger
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	worker   *infraoutbox.Worker
	closers  []func(context.Context) error
	repos    struct {
		hotels domainhotel.Repository
		rooms  domainhotel.RoomRepository
	}
}

// storage is the entity store selected by STORE_BACKEND.
type storage struct {
	factory     uow.UoWFactory
	hotels      domainhotel.Repository
	rooms       domainhotel.RoomRepository
	clients     domainclient.Repository
	idempotency middleware.IdempotencyStore
	outbox      appoutbox.Outbox
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		logger: logger,
		health: obs.HealthHandlers{Checks: map[string]obs.Check{}},
	}
	ready := false
	defer func() {
		if !ready {
			app.close(context.Background())
		}
	}()

	producer, err := app.buildProducer(cfg)
	if err != nil {
		return nil, err
	}
	comments, err := app.buildComments(cfg)
	if err != nil {
		return nil, err
	}
	store, err := app.buildStorage(ctx, cfg, comments, producer)
	if err != nil {
		return nil, err
	}
	locker, err := app.buildLocker(ctx, cfg)
	if err != nil {
		return nil, err
	}
	uploader, err := app.buildUploader(cfg)
	if err != nil {
		return nil, err
	}
	authService, err := app.buildAuth(ctx, cfg, store.clients)
	if err != nil {
		return nil, err
	}

	engine := &booking.Service{
		UoWFactory: store.factory,
		Locker:     locker,
		Checker:    booking.Checker{Policy: cfg.OverlapPolicy},
		Outbox:     store.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		LockWait:   cfg.LockWait,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[reservationsapp.CreateReservationCommand, *dto.ReservationRef](commandBus, &reservationsapp.CreateReservationHandler{Engine: engine})
	commands.RegisterHandler[reservationsapp.UpdateReservationCommand, *dto.ReservationRef](commandBus, &reservationsapp.UpdateReservationHandler{Engine: engine})
	commands.RegisterHandler[reservationsapp.CancelReservationCommand, *dto.ReservationRef](commandBus, &reservationsapp.CancelReservationHandler{Engine: engine})
	commands.RegisterHandler[reservationsapp.AdminDeleteReservationCommand, *dto.ReservationRef](commandBus, &reservationsapp.AdminDeleteReservationHandler{Engine: engine})
	commands.RegisterHandler[reservationsapp.ExportReservationsCommand, *dto.ExportResult](commandBus, &reservationsapp.ExportReservationsHandler{
		UoWFactory: store.factory,
		Uploader:   uploader,
		Logger:     logger,
	})
	commands.RegisterHandler[clientsapp.DeleteClientCommand, *dto.ClientDeleted](commandBus, &clientsapp.DeleteClientHandler{Engine: engine})
	commands.RegisterHandler[commentsapp.AddCommentCommand, *dto.Comment](commandBus, &commentsapp.AddCommentHandler{
		UoWFactory: store.factory,
		Logger:     logger,
	})
	hotelAdmin := &hotelsapp.AdminHandler{
		UoWFactory: store.factory,
		Locker:     locker,
		LockWait:   cfg.LockWait,
		Logger:     logger,
	}
	hotelAdmin.Register(commandBus)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[hotelsapp.SearchHotelsQuery, dto.HotelCollection](queryBus, &hotelsapp.SearchHotelsHandler{UoWFactory: store.factory, Checker: engine.Checker})
	queries.RegisterHandler[hotelsapp.GetHotelQuery, dto.HotelDetails](queryBus, &hotelsapp.GetHotelHandler{UoWFactory: store.factory, Checker: engine.Checker})
	queries.RegisterHandler[hotelsapp.ListRoomsQuery, dto.RoomCollection](queryBus, &hotelsapp.ListRoomsHandler{UoWFactory: store.factory})
	queries.RegisterHandler[hotelsapp.RoomAvailabilityQuery, dto.RoomAvailability](queryBus, &hotelsapp.RoomAvailabilityHandler{Engine: engine})
	queries.RegisterHandler[reservationsapp.GetReservationQuery, dto.Reservation](queryBus, &reservationsapp.GetReservationHandler{UoWFactory: store.factory})
	queries.RegisterHandler[reservationsapp.ListClientReservationsQuery, dto.ReservationCollection](queryBus, &reservationsapp.ListClientReservationsHandler{UoWFactory: store.factory, Logger: logger})
	queries.RegisterHandler[reservationsapp.ListReservationsQuery, dto.ReservationCollection](queryBus, &reservationsapp.ListReservationsHandler{UoWFactory: store.factory})
	queries.RegisterHandler[clientsapp.GetClientQuery, dto.Client](queryBus, &clientsapp.GetClientHandler{UoWFactory: store.factory})
	queries.RegisterHandler[clientsapp.ListClientsQuery, dto.ClientCollection](queryBus, &clientsapp.ListClientsHandler{UoWFactory: store.factory})
	queries.RegisterHandler[commentsapp.ListRoomCommentsQuery, dto.CommentCollection](queryBus, &commentsapp.ListRoomCommentsHandler{UoWFactory: store.factory})
	queries.RegisterHandler[commentsapp.ListReservationCommentsQuery, dto.CommentCollection](queryBus, &commentsapp.ListReservationCommentsHandler{UoWFactory: store.factory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Authorization(middleware.RoleAuthorizer{}),
		middleware.Validation(middleware.MessageValidator{}),
		middleware.Idempotency(store.idempotency, nil),
		middleware.OutboxFlush(store.outbox, logger),
		middleware.Transaction(store.factory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
		middleware.QueryValidation(middleware.MessageValidator{}),
	)

	app.handlers = ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Service: authService,
			Queries: queryBusWithMiddleware,
			Logger:  logger,
		},
		Hotels: ginserver.HotelHandler{
			Queries: queryBusWithMiddleware,
		},
		Reservations: ginserver.ReservationHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Admin: ginserver.AdminHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		RateLimit:      ginserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(),
	}
	app.repos.hotels = store.hotels
	app.repos.rooms = store.rooms
	ready = true
	return app, nil
}

func (a *application) buildProducer(cfg config.Config) (infraoutbox.Producer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		a.logger.Info("no kafka brokers configured, events are logged only")
		return infraoutbox.LogProducer{Logger: a.logger}, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, serviceName, nil)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	a.onClose(func(context.Context) error { return producer.Close() })
	a.logger.Info("kafka producer ready", "brokers", cfg.KafkaBrokers, "topic_prefix", cfg.KafkaTopicPrefix)
	return producer, nil
}

// buildComments returns nil when comments live in the entity store.
func (a *application) buildComments(cfg config.Config) (domaincomment.Repository, error) {
	if cfg.CommentsBackend != config.BackendScylla {
		return nil, nil
	}
	consistency, err := scylla.ParseConsistency(cfg.ScyllaConsistency)
	if err != nil {
		return nil, fmt.Errorf("invalid SCYLLA_CONSISTENCY: %w", err)
	}
	session, err := scylla.NewSession(scylla.Config{
		Hosts:       cfg.ScyllaHosts,
		Keyspace:    cfg.ScyllaKeyspace,
		Username:    cfg.ScyllaUsername,
		Password:    cfg.ScyllaPassword,
		Timeout:     cfg.ScyllaTimeout,
		Consistency: consistency,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error {
		session.Close()
		return nil
	})
	a.health.Checks["scylla"] = func(ctx context.Context) error {
		return session.Query("SELECT now() FROM system.local").WithContext(ctx).Consistency(gocql.One).Exec()
	}
	return scylla.NewCommentRepository(session), nil
}

func (a *application) buildStorage(ctx context.Context, cfg config.Config, comments domaincomment.Repository, producer infraoutbox.Producer) (storage, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, fmt.Errorf("connect mongo: %w", err)
		}
		a.onClose(client.Close)
		a.health.Checks["mongo"] = client.Ping
		if err := mongostore.EnsureIndexes(ctx, client.DB); err != nil {
			return storage{}, err
		}
		factory := mongostore.NewFactory(client.DB)
		if comments != nil {
			factory.CommentsRepo = comments
		}
		idStore, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return storage{}, err
		}
		box := infraoutbox.NewStore(client.DB)
		a.worker = &infraoutbox.Worker{
			Store:       box,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      eventSource,
			Backoff:     cfg.RetryBackoff,
			Logger:      a.logger,
		}
		return storage{
			factory:     factory,
			hotels:      factory.HotelsRepo,
			rooms:       factory.RoomsRepo,
			clients:     factory.ClientsRepo,
			idempotency: idStore,
			outbox:      box,
		}, nil
	case config.BackendMemory, "":
		factory := memory.NewFactory()
		if comments != nil {
			factory.CommentsRepo = comments
		}
		return storage{
			factory:     factory,
			hotels:      factory.HotelsRepo,
			rooms:       factory.RoomsRepo,
			clients:     factory.ClientsRepo,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			outbox: memory.NewOutbox(infraoutbox.Relay{
				Producer:    producer,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      eventSource,
			}),
		}, nil
	default:
		return storage{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (a *application) buildLocker(ctx context.Context, cfg config.Config) (booking.RoomLocker, error) {
	if cfg.LockBackend != config.BackendRedis {
		return lock.NewMemory(), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	a.onClose(func(context.Context) error { return rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.health.Checks["redis"] = func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
	locker := lock.NewRedis(rdb, cfg.LockTTL, redisLockPrefix)
	locker.Logger = a.logger
	return locker, nil
}

func (a *application) buildUploader(cfg config.Config) (s3.Uploader, error) {
	if cfg.S3Endpoint == "" {
		return s3.NoopUploader{}, nil
	}
	client, err := s3.NewClient(s3.Config{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		Region:         cfg.S3Region,
		UseSSL:         cfg.S3UseSSL,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *application) buildAuth(ctx context.Context, cfg config.Config, clients domainclient.Repository) (*authsvc.Service, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		a.logger.Warn("JWT_SECRET not set, issued tokens will not survive a restart")
	}
	issuer, err := security.NewJWTIssuer(secret, serviceName, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	service := &authsvc.Service{
		Clients:   clients,
		Passwords: security.BcryptHasher{},
		Tokens:    issuer,
		Logger:    a.logger,
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return service, nil
	}
	if _, err := service.EnsureAdmin(ctx, authsvc.RegisterParams{
		Name:     adminName,
		Email:    cfg.AdminEmail,
		Phone:    cfg.AdminPhone,
		Password: cfg.AdminPassword,
	}); err != nil {
		return nil, fmt.Errorf("ensure admin account: %w", err)
	}
	return service, nil
}

func (a *application) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *application) close(ctx context.Context) {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown incomplete", "error", err)
	}
}
