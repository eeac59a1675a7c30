package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/database/mongoclient"
	"github.com/x-xyz/fpomarket/base/database/redisclient"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/base/metrics"
	bValidator "github.com/x-xyz/fpomarket/base/validator"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/domain/listing"
	"github.com/x-xyz/fpomarket/domain/token"
	mmiddleware "github.com/x-xyz/fpomarket/middleware"
	"github.com/x-xyz/fpomarket/service/cache"
	"github.com/x-xyz/fpomarket/service/cache/provider"
	"github.com/x-xyz/fpomarket/service/cache/provider/compound"
	"github.com/x-xyz/fpomarket/service/cache/provider/primitive"
	rprovider "github.com/x-xyz/fpomarket/service/cache/provider/redis"
	"github.com/x-xyz/fpomarket/service/minter/local"
	"github.com/x-xyz/fpomarket/service/minter/natsminter"
	"github.com/x-xyz/fpomarket/service/notifier/discord"
	"github.com/x-xyz/fpomarket/service/query"
	"github.com/x-xyz/fpomarket/service/redis"
	activity_delivery "github.com/x-xyz/fpomarket/stores/activity/delivery/http"
	activity_repository "github.com/x-xyz/fpomarket/stores/activity/repository"
	activity_usecase "github.com/x-xyz/fpomarket/stores/activity/usecase"
	auth_delivery "github.com/x-xyz/fpomarket/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/fpomarket/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/fpomarket/stores/auth/usecase"
	hc_delivery "github.com/x-xyz/fpomarket/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/fpomarket/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/fpomarket/stores/healthcheck/usecase"
	ledger_delivery "github.com/x-xyz/fpomarket/stores/ledger/delivery/http"
	ledger_repository "github.com/x-xyz/fpomarket/stores/ledger/repository"
	ledger_usecase "github.com/x-xyz/fpomarket/stores/ledger/usecase"
	listing_delivery "github.com/x-xyz/fpomarket/stores/listing/delivery/http"
	listing_repository "github.com/x-xyz/fpomarket/stores/listing/repository"
	listing_usecase "github.com/x-xyz/fpomarket/stores/listing/usecase"
	token_delivery "github.com/x-xyz/fpomarket/stores/token/delivery/http"
	token_repository "github.com/x-xyz/fpomarket/stores/token/repository"
	token_usecase "github.com/x-xyz/fpomarket/stores/token/usecase"
)

var (
	configFile = pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	signToken  = pflag.String("sign-token", "", "print a bearer token for the given account and exit")
)

func init() {
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	// MONGO_URI overrides mongo.uri and so on
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

func decimalOf(key string) decimal.Decimal {
	v := viper.GetString(key)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", key, err))
	}
	return d
}

func marketConfig() listing.Config {
	cfg := listing.Config{
		SupplyMax:       viper.GetUint32("market.supplyMax"),
		PriceMin:        decimalOf("market.priceMin"),
		PriceStep:       decimalOf("market.priceStep"),
		MinDuration:     viper.GetDuration("market.minDuration"),
		MaxDuration:     viper.GetDuration("market.maxDuration"),
		PenaltyBps:      viper.GetInt64("market.penaltyBps"),
		StorageByteCost: decimalOf("market.storageByteCost"),
		OperatorAccount: domain.AccountId(viper.GetString("market.operatorAccount")),
		ProfitAccount:   domain.AccountId(viper.GetString("market.profitAccount")),
		ContractAccount: domain.AccountId(viper.GetString("market.contractAccount")),
		MintBudget:      viper.GetDuration("market.mintBudget"),
		PageSize:        viper.GetInt("market.pageSize"),
	}
	if cfg.SupplyMax == 0 {
		cfg.SupplyMax = listing.DefaultSupplyMax
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = listing.DefaultPageSize
	}
	return cfg
}

func main() {
	defer log.Sync()
	context := ctx.Background()

	marketCfg := marketConfig()
	if err := marketCfg.Validate(); err != nil {
		context.WithField("err", err).Panic("invalid market config")
	}

	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), viper.GetDuration("auth.tokenTTL"))
	if *signToken != "" {
		tok, err := auth.SignToken(context, domain.AccountId(*signToken))
		if err != nil {
			context.WithField("err", err).Panic("auth.SignToken failed")
		}
		fmt.Println(tok)
		return
	}

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	// init contract state
	context.Info("init state store")
	state, err := kvstore.New(kvstore.Config{Path: viper.GetString("kv.path")})
	if err != nil {
		context.WithField("err", err).Panic("kvstore.New failed")
	}
	defer state.Close()
	marketState := state.Partition([]byte("market:"))
	nftState := state.Partition([]byte("nft:"))

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)
	if err := activity_repository.EnsureIndexes(context, q); err != nil {
		context.WithField("err", err).Warn("activity_repository.EnsureIndexes failed")
	}

	// cache layers, freecache in front of redis when redis is configured
	layers := []provider.Provider{primitive.NewPrimitive("api", viper.GetInt("cache.sizeMB"))}
	var redisCache redis.Service
	if redisCacheURI := viper.GetString("redis_cache.uri"); redisCacheURI != "" {
		context.Info("init redis cache")
		redisCacheName := viper.GetString("redis_cache.name")
		redisCachePwd := viper.GetString("redis_cache.password")
		redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
		redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
			PoolMultiplier: redisCachePoolMultiplier,
			Retry:          true,
		})
		redisCache = redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
			Src: redisCachePool,
		})
		layers = append(layers, rprovider.NewRedis(redisCache, true))
	}
	mmiddleware.SetupCache(layers...)
	cacheSvc := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("cache.tokenTTL"),
		Pfx:   keys.PfxTokenCache,
		Cache: compound.NewCompound(layers),
	})

	var notifier activity.Notifier
	if botKey := viper.GetString("discord.botKey"); botKey != "" {
		notifier, err = discord.New(discord.Config{
			BotKey:           botKey,
			ChannelId:        viper.GetString("discord.channelId"),
			ListingUrlFormat: viper.GetString("discord.listingUrlFormat"),
		})
		if err != nil {
			context.WithField("err", err).Warn("discord.New failed, sale notifications disabled")
			notifier = nil
		}
	}

	// construct repository, usecase and delivery
	ledgerRepo := ledger_repository.New(marketState)
	listingRepo := listing_repository.New(marketState)
	tokenRepo := token_repository.New(nftState)
	activityRepo := activity_repository.New(q)
	hcRepo := hc_repo.New(state, q, redisCache)

	hc := hc_usecase.New(hcRepo)
	activityUC := activity_usecase.New(&activity_usecase.ActivityUseCaseCfg{
		Repo:     activityRepo,
		Notifier: notifier,
	})
	ledgerUC := ledger_usecase.New(&ledger_usecase.LedgerUseCaseCfg{
		Store:           marketState,
		Repo:            ledgerRepo,
		ContractAccount: marketCfg.ContractAccount,
		OperatorAccount: marketCfg.OperatorAccount,
	})
	tokenUC := token_usecase.New(&token_usecase.TokenUseCaseCfg{
		Store:         nftState,
		Repo:          tokenRepo,
		MarketAccount: marketCfg.ContractAccount,
	})

	// with nats the token contract lives in the minter worker, its routes are served there
	var minter token.Minter
	serveTokens := true
	if natsURL := viper.GetString("nats.url"); natsURL != "" {
		context.WithField("url", natsURL).Info("init nats minter")
		conn, err := nats.Connect(natsURL, nats.Name(viper.GetString("app_name")))
		if err != nil {
			context.WithField("err", err).Panic("nats.Connect failed")
		}
		defer conn.Close()
		client, err := natsminter.NewClient(conn)
		if err != nil {
			context.WithField("err", err).Panic("natsminter.NewClient failed")
		}
		defer client.Close()
		minter = client
		serveTokens = false
	} else {
		localMinter := local.New(&local.Config{
			TokenUC:       tokenUC,
			MarketAccount: marketCfg.ContractAccount,
			Workers:       viper.GetInt("minter.workers"),
		})
		defer localMinter.Close()
		minter = localMinter
	}

	listingUC := listing_usecase.New(&listing_usecase.ListingUseCaseCfg{
		Config:      marketCfg,
		Store:       marketState,
		ListingRepo: listingRepo,
		LedgerUC:    ledgerUC,
		ActivityUC:  activityUC,
		Minter:      minter,
	})

	am := auth_middleware.New(auth, marketCfg.OperatorAccount)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, am)
	listing_delivery.New(e, listingUC, am)
	ledger_delivery.New(e, ledgerUC, am)
	if serveTokens {
		token_delivery.New(e, tokenUC, cacheSvc)
	}
	activity_delivery.New(e, activityUC)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	c, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(c); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
