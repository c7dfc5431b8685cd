package usecase

import (
	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain/activity"
)

type impl struct {
	repo activity.Repo
}

// New creates activity usecase
func New(repo activity.Repo) activity.Usecase {
	return &impl{repo}
}

func (im *impl) Insert(c ctx.Ctx, a *activity.Activity) error {
	if err := im.repo.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"type": a.Type, "err": err}).Error("repo.Insert failed")
		return err
	}
	return nil
}

func (im *impl) FindActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) ([]activity.Activity, error) {
	return im.repo.FindActivities(c, opts...)
}
