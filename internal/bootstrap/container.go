package bootstrap

import (
	"context"
	"errors"
	"time"

	"billing-engine-be/internal/config"
	"billing-engine-be/internal/controller"
	"billing-engine-be/internal/gateway"
	"billing-engine-be/internal/mapper"
	"billing-engine-be/internal/notification"
	"billing-engine-be/internal/pkg/clock"
	"billing-engine-be/internal/pkg/lock"
	"billing-engine-be/internal/pkg/logger"
	"billing-engine-be/internal/pkg/mailer"
	"billing-engine-be/internal/pkg/serverutils"
	"billing-engine-be/internal/repository/memory"
	"billing-engine-be/internal/repository/unitofwork"
	"billing-engine-be/internal/service"

	pktNats "billing-engine-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	planCacheTTL = 5 * time.Minute
	sweepLockKey = "billing"
)

type Container struct {
	// Controllers
	InvoiceController       controller.IInvoiceController
	PaymentController       controller.IPaymentController
	PaymentMethodController controller.IPaymentMethodController
	SubscriptionController  controller.ISubscriptionController
	DisputeController       controller.IDisputeController

	// Services
	InvoiceService       service.IInvoiceService
	PaymentService       service.IPaymentService
	PaymentMethodService service.IPaymentMethodService
	SubscriptionService  service.ISubscriptionService
	DisputeService       service.IDisputeService
	Scheduler            service.IBillingScheduler
	NotificationService  *service.NotificationService

	Repositories unitofwork.RepositoryFactory
	Logger       logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	pubSub  *gochannel.GoChannel
	rdb     *redis.Client
	cfg     *config.Config
}

// NewContainer wires the engine. A nil db runs everything on the in-memory
// store; NATS and Redis are optional and fall back to in-process equivalents.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	sysClock := clock.System{}

	// 1. Persistence
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		sysLogger.Warn("BOOTSTRAP", "No database configured, using in-memory store", nil)
		uowFactory = memory.NewRepositoryFactory(memory.NewStore(sysClock))
	}

	// 2. Gateway
	gw := gateway.NewResilientGateway(
		gateway.NewStubGateway(sysClock),
		gateway.ResilientConfig{
			Timeout:          cfg.Billing.GatewayTimeout,
			FailureThreshold: cfg.Billing.BreakerFailures,
			OpenTimeout:      cfg.Billing.BreakerOpenTimeout,
		},
		sysLogger,
	)

	// 3. Event bus
	c := &Container{Repositories: uowFactory, Logger: sysLogger, cfg: cfg}
	sinks := notification.FanoutSink{notification.NewLogSink(sysLogger)}

	natsPub, err := connectNats(cfg)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS unavailable, using in-process bus", map[string]interface{}{"error": err.Error()})
		c.pubSub = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		sinks = append(sinks, notification.NewChannelSink(c.pubSub, cfg.Billing.NotificationSubject))
	} else {
		c.natsPub = natsPub
		sinks = append(sinks, notification.NewNatsSink(natsPub))

		c.natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL, func(subject string, err error) {
			sysLogger.Error("NOTIFICATION", "Failed to handle message", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		})
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
		}
	}

	// 4. Sweep lock
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.App.RedisURL == "" {
		sysLogger.Warn("BOOTSTRAP", "No Redis configured, sweeps run unlocked", nil)
	} else if opt, err := redis.ParseURL(cfg.App.RedisURL); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Invalid Redis URL, sweeps run unlocked", map[string]interface{}{"error": err.Error()})
	} else {
		rdb := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Redis unavailable, sweeps run unlocked", map[string]interface{}{"error": err.Error()})
			_ = rdb.Close()
		} else {
			c.rdb = rdb
			locker = lock.NewRedisLocker(rdb, sweepLockKey)
		}
	}

	// 5. Mailer
	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	} else {
		emailService = mailer.NewLogMailer(sysLogger)
	}

	// 6. Services
	c.InvoiceService = service.NewInvoiceService(uowFactory, sysClock, cfg.Billing.DefaultCurrency)
	c.PaymentService = service.NewPaymentService(uowFactory, gw, sinks, sysClock, sysLogger)
	c.SubscriptionService = service.NewSubscriptionService(uowFactory, memory.NewPlanCache(planCacheTTL), sinks, sysClock, sysLogger)
	c.PaymentMethodService = service.NewPaymentMethodService(uowFactory, gw, c.SubscriptionService, sysClock, sysLogger)
	c.DisputeService = service.NewDisputeService(uowFactory, gw, sysClock, sysLogger)
	c.Scheduler = service.NewBillingScheduler(
		uowFactory,
		c.InvoiceService,
		c.PaymentService,
		c.SubscriptionService,
		sinks,
		locker,
		sysClock,
		sysLogger,
		service.SchedulerConfig{
			DueSoonDays:        cfg.Billing.DueSoonDays,
			AutoPayAdvanceDays: cfg.Billing.AutoPayAdvanceDays,
			LockTTL:            cfg.Billing.SweepLockTTL,
		},
	)
	c.NotificationService = service.NewNotificationService(uowFactory, emailService, sysLogger)

	// 7. Controllers
	auth := serverutils.NewJwtMiddleware(cfg.App.JwtSecret)
	responses := mapper.NewResponseMapper(func() time.Time { return clock.Today(sysClock) })

	c.InvoiceController = controller.NewInvoiceController(c.InvoiceService, c.PaymentService, responses, auth)
	c.PaymentController = controller.NewPaymentController(c.PaymentService, c.DisputeService, responses, auth)
	c.PaymentMethodController = controller.NewPaymentMethodController(c.PaymentMethodService, responses, auth)
	c.SubscriptionController = controller.NewSubscriptionController(c.SubscriptionService, responses, auth)
	c.DisputeController = controller.NewDisputeController(c.DisputeService, responses, auth)

	return c
}

func connectNats(cfg *config.Config) (*pktNats.Publisher, error) {
	if cfg.App.NatsURL == "" {
		return nil, errors.New("NATS_URL is empty")
	}
	return pktNats.NewPublisher(context.Background(), cfg.App.NatsURL, cfg.Billing.NotificationSubject)
}

// StartNotificationWorker consumes billing events from whichever bus is wired.
func (c *Container) StartNotificationWorker(ctx context.Context) error {
	if c.natsSub != nil {
		return c.NotificationService.StartNats(ctx, c.natsSub, c.cfg.Billing.NotificationSubject+".>")
	}
	if c.pubSub != nil {
		return c.NotificationService.StartChannel(ctx, c.pubSub, c.cfg.Billing.NotificationSubject)
	}
	return nil
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.pubSub != nil {
		_ = c.pubSub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
