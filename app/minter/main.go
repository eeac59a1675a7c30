package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	bCtx "github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/base/log"
	bValidator "github.com/x-xyz/fpomarket/base/validator"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/domain/token"
	mmiddleware "github.com/x-xyz/fpomarket/middleware"
	"github.com/x-xyz/fpomarket/service/cache"
	"github.com/x-xyz/fpomarket/service/cache/provider/primitive"
	"github.com/x-xyz/fpomarket/service/minter/local"
	"github.com/x-xyz/fpomarket/service/minter/natsminter"
	hc_delivery "github.com/x-xyz/fpomarket/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/fpomarket/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/fpomarket/stores/healthcheck/usecase"
	token_delivery "github.com/x-xyz/fpomarket/stores/token/delivery/http"
	token_repository "github.com/x-xyz/fpomarket/stores/token/repository"
	token_usecase "github.com/x-xyz/fpomarket/stores/token/usecase"
)

var configFile = pflag.String("config", "infra/configs/minter/config.yaml", "path of the yaml config")

func init() {
	pflag.Parse()

	// NATS_URL overrides nats.url and so on
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if err := log.Init(viper.GetBool(`debug`)); err != nil {
		panic(err)
	}
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	defer log.Sync()
	ctx, cancel := bCtx.WithCancel(bCtx.Background())
	defer cancel()

	state, err := kvstore.New(kvstore.Config{Path: viper.GetString("kv.path")})
	if err != nil {
		ctx.WithField("err", err).Panic("kvstore.New failed")
	}
	defer state.Close()
	nftState := state.Partition([]byte("nft:"))

	marketAccount := domain.AccountId(viper.GetString("market.contractAccount"))
	if !marketAccount.IsValid() {
		ctx.WithField("account", marketAccount).Panic("invalid market.contractAccount")
	}

	tokenUC := token_usecase.New(&token_usecase.TokenUseCaseCfg{
		Store:         nftState,
		Repo:          token_repository.New(nftState),
		MarketAccount: marketAccount,
	})
	minter := local.New(&local.Config{
		TokenUC:       tokenUC,
		MarketAccount: marketAccount,
		Workers:       viper.GetInt("minter.workers"),
	})
	defer minter.Close()

	e := startEchoServer(ctx, tokenUC, state)
	defer e.Close()

	natsURL := viper.GetString("nats.url")
	ctx.WithField("url", natsURL).Info("connecting to nats")
	conn, err := nats.Connect(natsURL,
		nats.Name(viper.GetString("app_name")),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			ctx.WithField("err", err).Warn("nats disconnected")
		}),
	)
	if err != nil {
		ctx.WithField("err", err).Panic("nats.Connect failed")
	}
	defer conn.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- natsminter.NewWorker(conn, minter).Serve(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-quit:
		ctx.WithField("signal", sig).Info("received signal")
		cancel()
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil {
		ctx.WithField("err", err).Error("minter worker stopped")
		return
	}
	ctx.Info("minter worker stopped")
}

// serves the token queries of the contract this worker owns
func startEchoServer(context bCtx.Ctx, tokenUC token.UseCase, state *kvstore.Store) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	cacheSvc := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("cache.tokenTTL"),
		Pfx:   keys.PfxTokenCache,
		Cache: primitive.NewPrimitive("minter", viper.GetInt("cache.sizeMB")),
	})
	hc_delivery.New(e, hc_usecase.New(hc_repo.New(state, nil, nil)))
	token_delivery.New(e, tokenUC, cacheSvc)

	address := viper.GetString("server.address")
	context.WithField("address", address).Info("starting server")
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			context.WithField("err", err).Error("shutting down the server")
		}
	}()
	return e
}
