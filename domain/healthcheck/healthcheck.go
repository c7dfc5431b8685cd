package healthcheck

import (
	"github.com/deedchain/goapi/base/ctx"
)

// Usecase reports whether the service's backing stores are reachable
type Usecase interface {
	Check(c ctx.Ctx) error
}

// Repo probes the backing stores
type Repo interface {
	Ping(c ctx.Ctx) error
}
