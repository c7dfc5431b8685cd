package main

import (
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/database/mongoclient"
	"github.com/deedchain/goapi/base/database/redisclient"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/base/metrics"
	bValidator "github.com/deedchain/goapi/base/validator"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/ledger"
	mmiddleware "github.com/deedchain/goapi/middleware"
	"github.com/deedchain/goapi/service/query"
	"github.com/deedchain/goapi/service/redis"
	"github.com/deedchain/goapi/service/treasury"
	account_delivery "github.com/deedchain/goapi/stores/account/delivery/http"
	account_repository "github.com/deedchain/goapi/stores/account/repository"
	account_usecase "github.com/deedchain/goapi/stores/account/usecase"
	activity_delivery "github.com/deedchain/goapi/stores/activity/delivery/http"
	activity_repository "github.com/deedchain/goapi/stores/activity/repository"
	activity_usecase "github.com/deedchain/goapi/stores/activity/usecase"
	auction_delivery "github.com/deedchain/goapi/stores/auction/delivery/http"
	auction_repository "github.com/deedchain/goapi/stores/auction/repository"
	auction_usecase "github.com/deedchain/goapi/stores/auction/usecase"
	auth_delivery "github.com/deedchain/goapi/stores/auth/delivery/http"
	auth_middleware "github.com/deedchain/goapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/deedchain/goapi/stores/auth/usecase"
	escrow_delivery "github.com/deedchain/goapi/stores/escrow/delivery/http"
	escrow_repository "github.com/deedchain/goapi/stores/escrow/repository"
	escrow_usecase "github.com/deedchain/goapi/stores/escrow/usecase"
	hc_delivery "github.com/deedchain/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/deedchain/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/deedchain/goapi/stores/healthcheck/usecase"
	ledger_delivery "github.com/deedchain/goapi/stores/ledger/delivery/http"
	ledger_repository "github.com/deedchain/goapi/stores/ledger/repository"
	ledger_usecase "github.com/deedchain/goapi/stores/ledger/usecase"
	property_delivery "github.com/deedchain/goapi/stores/property/delivery/http"
	property_repository "github.com/deedchain/goapi/stores/property/repository"
	property_usecase "github.com/deedchain/goapi/stores/property/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	mmiddleware.SetupCache(redisCache)

	arbiterAddresses := viper.GetStringSlice("registry.arbiters")
	arbiters := make([]domain.Address, 0, len(arbiterAddresses))
	for _, a := range arbiterAddresses {
		arbiters = append(arbiters, domain.Address(a).ToLower())
	}
	arbiter := domain.EmptyAddress
	if len(arbiters) > 0 {
		arbiter = arbiters[0]
	}

	// one lock serializes every state-changing registry operation
	registryMu := &sync.Mutex{}

	var payout ledger.Payout
	if rpcUrl := viper.GetString("treasury.rpcUrl"); len(rpcUrl) > 0 {
		p, err := treasury.New(context, &treasury.Cfg{
			RpcUrl:     rpcUrl,
			PrivateKey: viper.GetString("treasury.privateKey"),
			ChainId:    viper.GetInt64("treasury.chainId"),
		})
		if err != nil {
			context.WithField("err", err).Panic("treasury.New failed")
		}
		payout = p
	} else {
		context.Warn("treasury disabled, withdrawals will fail")
	}

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	accountRepo := account_repository.New(q, redisCache)
	propertyRepo := property_repository.New(q)
	auctionRepo := auction_repository.New(q)
	escrowRepo := escrow_repository.New(q)
	ledgerRepo := ledger_repository.New(q)
	activityRepo := activity_repository.New(q)

	hc := hc_usecase.New(hcRepo)
	activityUC := activity_usecase.New(activityRepo)
	account := account_usecase.New(&account_usecase.AccountUseCaseCfg{
		Repo:         accountRepo,
		SignatureMsg: viper.GetString("auth.signatureMsg"),
		Arbiters:     arbiters,
	})
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), account)
	ledgerUC := ledger_usecase.New(&ledger_usecase.LedgerUseCaseCfg{
		Repo:     ledgerRepo,
		Payout:   payout,
		Activity: activityUC,
		Mu:       registryMu,
	})
	propertyUC := property_usecase.New(&property_usecase.PropertyUseCaseCfg{
		Repo:        propertyRepo,
		AuctionRepo: auctionRepo,
		Activity:    activityUC,
		Arbiter:     arbiter,
		Mu:          registryMu,
	})
	auctionUC := auction_usecase.New(&auction_usecase.AuctionUseCaseCfg{
		Repo:         auctionRepo,
		PropertyRepo: propertyRepo,
		EscrowRepo:   escrowRepo,
		Ledger:       ledgerUC,
		Activity:     activityUC,
		Arbiter:      arbiter,
		Mu:           registryMu,
	})
	escrowUC := escrow_usecase.New(&escrow_usecase.EscrowUseCaseCfg{
		Repo:         escrowRepo,
		PropertyRepo: propertyRepo,
		Ledger:       ledgerUC,
		Activity:     activityUC,
		Arbiter:      arbiter,
		Mu:           registryMu,
	})

	authMiddleware := auth_middleware.New(auth, arbiterAddresses)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	account_delivery.New(e, account, authMiddleware)
	property_delivery.New(e, propertyUC, authMiddleware)
	auction_delivery.New(e, auctionUC, authMiddleware)
	escrow_delivery.New(e, escrowUC, authMiddleware)
	ledger_delivery.New(e, ledgerUC, authMiddleware)
	activity_delivery.New(e, activityUC)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	sctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
