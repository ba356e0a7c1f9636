package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "opevent/internal/jwt_token"
	"opevent/internal/operationevent/fields"
	"opevent/internal/operationevent/handler"
	"opevent/internal/operationevent/service"
	"opevent/internal/operationevent/store/catalog"
	"opevent/internal/operationevent/store/receipts"
	"opevent/internal/platform/config"
	"opevent/internal/platform/httpserver"
	"opevent/internal/platform/logger"
	"opevent/internal/platform/metrics"
	"opevent/internal/platform/middleware"
	platformredis "opevent/internal/platform/redis"
	"opevent/pkg/platform/circuit"
	"opevent/pkg/platform/httputil"
	"opevent/pkg/platform/middleware/auth"
	"opevent/pkg/platform/middleware/metadata"
	"opevent/pkg/platform/middleware/requestid"
	"opevent/pkg/platform/opevent"
	"opevent/pkg/platform/opevent/sink/breaker"
	"opevent/pkg/platform/opevent/sink/fanout"
	"opevent/pkg/platform/opevent/sink/file"
	"opevent/pkg/platform/opevent/sink/kafka"
	"opevent/pkg/platform/opevent/sink/logline"
	pgsink "opevent/pkg/platform/opevent/sink/postgres"
	"opevent/pkg/platform/opevent/sink/redisstream"
	"opevent/pkg/platform/sentinel"
	"opevent/pkg/platform/uow"
)

// main wires dependencies, exposes the HTTP router and keeps the server
// lifecycle small. Business logic lives in internal/operationevent.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "opevent: %v\n", err)
		os.Exit(1)
	}
}

// infra holds the connections shared by sinks and stores.
type infra struct {
	redis   *platformredis.Client
	db      *sql.DB
	pool    *pgxpool.Pool
	closers []func()
}

func (i *infra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	whitelist, err := fields.Load(cfg.FieldsPath)
	if err != nil {
		return err
	}

	in, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.close()

	sink, err := buildSinks(ctx, cfg, in, log)
	if err != nil {
		return err
	}

	emitter := opevent.New(sink,
		opevent.WithLogger(log),
		opevent.WithMetrics(opevent.NewMetrics(reg)),
		opevent.WithLocation(loc),
	)

	var (
		structure service.CourseStructure
		progress  service.SubsectionProgress
		students  service.StudentResolver
	)
	if in.redis != nil {
		c := catalog.NewRedisCatalog(in.redis.Client)
		structure, progress, students = c, c, c
	} else {
		c := catalog.NewInMemoryCatalog()
		structure, progress, students = c, c, c
	}

	svc := service.New(emitter, whitelist,
		service.WithLogger(log),
		service.WithCourseStructure(structure),
		service.WithSubsectionProgress(progress),
		service.WithStudentResolver(students),
	)
	registry := service.NewRegistry()
	svc.Register(registry)

	var (
		runner   uow.Runner = uow.Local{}
		recorder handler.ReceiptRecorder
	)
	if in.db != nil {
		runner = uow.NewSQLRunner(in.db,
			uow.WithTimeout(cfg.TxTimeout),
			uow.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}),
		)
		store := receipts.NewPostgres(in.db)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		recorder = store
	} else {
		recorder = receipts.NewInMemory()
	}

	signals := handler.New(registry, runner, log,
		handler.WithReceipts(recorder),
		handler.WithMetrics(httpMetrics),
		handler.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)

	var actors auth.ActorValidator
	if cfg.JWTSigningKey != "" {
		actors = jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	}
	r := newRouter(routerDeps{
		log:      log,
		gatherer: reg,
		metrics:  httpMetrics,
		health:   healthz(in),
		signals:  signals,
		actors:   actors,
	})

	srv := httpserver.New(cfg.Addr, r)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting opevent", "addr", cfg.Addr, "sinks", cfg.Sinks)
		return httpserver.Serve(gctx, srv, cfg.ShutdownTimeout)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("opevent stopped")
	return nil
}

type routerDeps struct {
	log      *slog.Logger
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	health   http.HandlerFunc
	signals  *handler.Handler
	// actors is nil when bearer authentication is disabled.
	actors auth.ActorValidator
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recovery(d.log))
	r.Use(middleware.Logger(d.log))
	r.Use(middleware.Latency(d.metrics))
	r.Get("/healthz", d.health)
	r.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(metadata.ClientMetadata)
		if d.actors != nil {
			r.Use(auth.Actor(d.actors, d.log))
		}
		d.signals.Register(r)
	})
	return r
}

func connect(ctx context.Context, cfg *config.Config) (*infra, error) {
	in := &infra{}

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		in.redis = client
		in.closers = append(in.closers, func() { _ = client.Close() })
	}

	if cfg.Postgres.DSN == "" {
		return in, nil
	}
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		in.close()
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	in.closers = append(in.closers, func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		in.close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	in.db = db

	if cfg.HasSink(config.SinkPostgres) {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			in.close()
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}
		in.closers = append(in.closers, pool.Close)
		in.pool = pool
	}
	return in, nil
}

func buildSinks(ctx context.Context, cfg *config.Config, in *infra, log *slog.Logger) (opevent.Sink, error) {
	var sinks []opevent.Sink
	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, logline.New(eventLogWriter(cfg.EventLogTarget)))
		case config.SinkRedis:
			sinks = append(sinks, guard(name, cfg.Breaker, log, redisstream.New(in.redis.Client,
				redisstream.WithStream(cfg.Redis.Stream),
				redisstream.WithMaxLen(cfg.Redis.StreamMaxLen),
			)))
		case config.SinkKafka:
			k, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			if err != nil {
				return nil, err
			}
			in.closers = append(in.closers, k.Close)
			if err := k.Ping(ctx); err != nil {
				return nil, fmt.Errorf("kafka sink: %w", err)
			}
			sinks = append(sinks, guard(name, cfg.Breaker, log, k))
		case config.SinkPostgres:
			p := pgsink.New(in.pool)
			if err := p.Migrate(ctx); err != nil {
				return nil, err
			}
			sinks = append(sinks, guard(name, cfg.Breaker, log, p))
		case config.SinkFile:
			f, err := file.Open(cfg.File.Dir, file.WithMaxBytes(cfg.File.MaxBytes), file.WithLogger(log))
			if err != nil {
				return nil, err
			}
			in.closers = append(in.closers, func() { _ = f.Close() })
			sinks = append(sinks, f)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return fanout.New(sinks...), nil
}

// eventLogWriter returns the stream the log sink writes event lines to.
// Application logs always go to stdout.
func eventLogWriter(target string) io.Writer {
	if target == config.EventLogStdout {
		return os.Stdout
	}
	return os.Stderr
}

// guard wraps a remote sink in a circuit breaker named after the sink.
func guard(name string, cfg config.BreakerConfig, log *slog.Logger, s opevent.Sink) opevent.Sink {
	b := circuit.New(name,
		circuit.WithFailureThreshold(cfg.Failures),
		circuit.WithSuccessThreshold(cfg.Successes),
		circuit.WithCooldown(cfg.Cooldown),
	)
	return breaker.New(s, b, breaker.WithLogger(log))
}

func healthz(in *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if in.redis != nil {
			if err := in.redis.Health(ctx); err != nil {
				httputil.WriteError(w, fmt.Errorf("redis: %v: %w", err, sentinel.ErrUnavailable))
				return
			}
		}
		if in.db != nil {
			if err := in.db.PingContext(ctx); err != nil {
				httputil.WriteError(w, fmt.Errorf("postgres: %v: %w", err, sentinel.ErrUnavailable))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
