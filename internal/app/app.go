package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/boost"
	"github.com/avstrong/staybook/internal/config"
	"github.com/avstrong/staybook/internal/idgen/simple"
	"github.com/avstrong/staybook/internal/inventory"
	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/marketplace"
	"github.com/avstrong/staybook/internal/session"
	"github.com/avstrong/staybook/internal/storage"
	"github.com/avstrong/staybook/internal/storage/memory"
	"github.com/avstrong/staybook/internal/storage/redis"
	"github.com/avstrong/staybook/internal/transport/web"
)

// Container holds the wired services shared by the server and the CLI.
type Container struct {
	Config    *config.Config
	L         *logger.Logger
	Market    *marketplace.Client
	Cache     storage.Cache
	Offers    *boost.Manager
	Booking   *booking.Manager
	Inventory *inventory.Manager
	IDGen     *simple.Generator
	Policy    session.CouponPolicy

	closers []func() error
}

// Build wires every service. The memory cache janitor stops with ctx.
func Build(ctx context.Context, conf *config.Config, l *logger.Logger) (*Container, error) {
	policy, err := session.ParseCouponPolicy(conf.CouponPolicy)
	if err != nil {
		return nil, fmt.Errorf("coupon policy: %w", err)
	}

	c := &Container{Config: conf, L: l, Policy: policy, IDGen: simple.New()}

	switch conf.Cache.Backend {
	case config.CacheRedis:
		rc, err := redis.New(ctx, redis.Config{Address: conf.Redis.Addr, Password: conf.Redis.Password, DB: conf.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}

		c.Cache = rc
		c.closers = append(c.closers, rc.Close)

		l.LogInfo("Using redis cache at %s", conf.Redis.Addr)
	default:
		db := memory.New(memory.Config{L: l})
		if conf.Cache.JanitorEvery > 0 {
			go db.RunJanitor(ctx, conf.Cache.JanitorEvery)
		}

		c.Cache = db

		l.LogInfo("Using in-memory cache")
	}

	c.Market = marketplace.New(marketplace.Config{
		BaseURL:     conf.Marketplace.BaseURL,
		Token:       conf.Marketplace.Token,
		Timeout:     conf.Marketplace.Timeout,
		MaxAttempts: conf.Marketplace.MaxAttempts,
		RetryBase:   conf.Marketplace.RetryBase,
		RetryCap:    conf.Marketplace.RetryCap,
	}, nil)

	c.Offers = boost.New(l, c.Market, c.Cache, conf.Cache.OffersTTL)
	c.Booking = booking.New(l, booking.Config{
		TaxTTL:      conf.Cache.TaxTTL,
		LedgerTTL:   conf.Cache.LedgerTTL,
		BookingTTL:  conf.Cache.BookingTTL,
		LedgerLimit: conf.LedgerLimit,
	}, c.Market, c.Offers, c.Cache)
	c.Inventory = inventory.New(l, c.Market, c.Cache)

	return c, nil
}

// NewSession starts a booking page session backed by the container's services.
func (c *Container) NewSession() *session.Session {
	return session.New(c.Booking, c.IDGen, c.Policy)
}

func (c *Container) Close() error {
	var errs []error

	for _, closer := range c.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run serves the HTTP API until a termination signal arrives.
func Run(conf *config.Config, l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	c, err := Build(ctx, conf, l)
	if err != nil {
		return err
	}

	defer func() {
		if err := c.Close(); err != nil {
			l.LogErrorf("Could not close services: %v", err.Error())
		}
	}()

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      l.StdLogger(),
		Host:              conf.HTTP.Host,
		Port:              conf.HTTP.Port,
		ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
		LivenessEndpoint:  conf.HTTP.LivenessEndpoint,
	}

	srv, err := web.New(ctx, webConf, c.Booking, c.Inventory)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()

		return fmt.Errorf("serve http: %w", err)
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}
