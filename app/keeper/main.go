package main

import (
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	bCtx "github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/database/mongoclient"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/base/metrics"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/auction"
	mmiddleware "github.com/deedchain/goapi/middleware"
	"github.com/deedchain/goapi/service/query"
	activityRepository "github.com/deedchain/goapi/stores/activity/repository"
	activityUsecase "github.com/deedchain/goapi/stores/activity/usecase"
	auctionRepository "github.com/deedchain/goapi/stores/auction/repository"
	auctionUsecase "github.com/deedchain/goapi/stores/auction/usecase"
	escrowRepository "github.com/deedchain/goapi/stores/escrow/repository"
	ledgerRepository "github.com/deedchain/goapi/stores/ledger/repository"
	ledgerUsecase "github.com/deedchain/goapi/stores/ledger/usecase"
	propertyRepository "github.com/deedchain/goapi/stores/property/repository"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/keeper/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	ctx, cancel := bCtx.WithCancel(bCtx.Background())

	// start server to pass cloud run health check
	startEchoServer()

	interval := viper.GetDuration("keeper.interval")
	if interval == 0 {
		interval = 30 * time.Second
	}

	ctx.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	arbiter := domain.Address(viper.GetString("registry.arbiter")).ToLower()

	registryMu := &sync.Mutex{}
	activityUC := activityUsecase.New(activityRepository.New(q))
	ledgerUC := ledgerUsecase.New(&ledgerUsecase.LedgerUseCaseCfg{
		Repo:     ledgerRepository.New(q),
		Activity: activityUC,
		Mu:       registryMu,
	})
	auctionUC := auctionUsecase.New(&auctionUsecase.AuctionUseCaseCfg{
		Repo:         auctionRepository.New(q),
		PropertyRepo: propertyRepository.New(q),
		EscrowRepo:   escrowRepository.New(q),
		Ledger:       ledgerUC,
		Activity:     activityUC,
		Arbiter:      arbiter,
		Mu:           registryMu,
	})

	met := metrics.New("keeper")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll(ctx, auctionUC, met)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	cancel()
}

// poll runs one check-and-close round. The trigger data crosses the
// boundary as opaque bytes, the same shape an on-chain keeper would
// carry it in.
func poll(ctx bCtx.Ctx, au auction.Usecase, met metrics.Service) {
	defer met.BumpTime("poll.time").End()

	due, data, err := au.CheckTrigger(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("au.CheckTrigger failed")
		met.BumpSum("checkTrigger.err", 1)
		return
	}
	if !due {
		return
	}

	raw, err := data.Encode()
	if err != nil {
		ctx.WithField("err", err).Error("data.Encode failed")
		return
	}
	decoded, err := auction.DecodeTriggerData(raw)
	if err != nil {
		ctx.WithField("err", err).Error("auction.DecodeTriggerData failed")
		return
	}

	if err := au.CloseTriggered(ctx, decoded); err == domain.ErrNotDue {
		// another keeper instance got there first
		ctx.WithField("locations", decoded.Locations).Info("close already handled")
	} else if err != nil {
		ctx.WithField("err", err).Error("au.CloseTriggered failed")
		met.BumpSum("closeTriggered.err", 1)
	} else {
		ctx.WithField("locations", decoded.Locations).Info("closed auctions")
		met.BumpSum("closeTriggered.count", float64(len(decoded.Locations)))
	}
}

func startEchoServer() {
	context := bCtx.Background()

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"healthy": "ok"})
	})

	address := viper.GetString("server.address")
	context.WithField("address", address).Info("starting server")
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			context.Error("shutting down the server")
		}
	}()
}
