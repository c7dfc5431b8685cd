package usecase

import (
	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain/healthcheck"
)

type impl struct {
	repo healthcheck.Repo
}

// New creates the healthcheck usecase
func New(repo healthcheck.Repo) healthcheck.Usecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) error {
	return im.repo.Ping(c)
}
