package repository

import (
	"sort"
	"sync"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/domain/activity"
)

type memoryImpl struct {
	sync.Mutex
	activities []activity.Activity
}

// NewMemory creates an in-memory activity repo for tests and local runs
func NewMemory() activity.Repo {
	return &memoryImpl{}
}

func (im *memoryImpl) Insert(c ctx.Ctx, a *activity.Activity) error {
	im.Lock()
	defer im.Unlock()
	cp := *a
	cp.Account = cp.Account.ToLower()
	cp.To = cp.To.ToLower()
	im.activities = append(im.activities, cp)
	return nil
}

func (im *memoryImpl) FindActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) ([]activity.Activity, error) {
	im.Lock()
	defer im.Unlock()
	options, err := activity.GetFindActivityOptions(opts...)
	if err != nil {
		return nil, err
	}
	res := []activity.Activity{}
	for _, a := range im.activities {
		if options.Gps != nil && a.Gps != *options.Gps {
			continue
		}
		if options.Account != nil && !a.Account.Equals(*options.Account) {
			continue
		}
		if len(options.Types) > 0 {
			matched := false
			for _, t := range options.Types {
				if a.Type == t {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Time.After(res[j].Time) })
	return res, nil
}

func (im *memoryImpl) CountActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) (int, error) {
	res, err := im.FindActivities(c, opts...)
	if err != nil {
		return 0, err
	}
	return len(res), nil
}
