package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/database/mongoclient"
	"github.com/deedchain/goapi/domain/healthcheck"
	"github.com/deedchain/goapi/domain/keys"
	"github.com/deedchain/goapi/service/redis"
)

type impl struct {
	mgoClient  *mongoclient.Client
	redisCache redis.Service
}

// New creates the healthcheck repo probing mongo and redis
func New(mgoClient *mongoclient.Client, redisCache redis.Service) healthcheck.Repo {
	return &impl{
		mgoClient:  mgoClient,
		redisCache: redisCache,
	}
}

func (im *impl) Ping(c ctx.Ctx) error {
	pc, cancel := ctx.WithTimeout(c, 2*time.Second)
	defer cancel()

	if err := im.mgoClient.Ping(pc, readpref.Primary()); err != nil {
		c.WithField("err", err).Error("ping mongo failed")
		return err
	}

	if im.redisCache != nil {
		if err := im.redisCache.Set(pc, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
			c.WithField("err", err).Error("test redis set failed")
			return err
		}
	}
	return nil
}
