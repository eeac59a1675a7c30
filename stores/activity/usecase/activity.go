package usecase

import (
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
)

type ActivityUseCaseCfg struct {
	Repo activity.Repo
	// optional
	Notifier activity.Notifier
}

type impl struct {
	repo       activity.Repo
	notifier   activity.Notifier
	workerPool *goroutines.Pool
}

func New(cfg *ActivityUseCaseCfg) activity.UseCase {
	return &impl{
		repo:       cfg.Repo,
		notifier:   cfg.Notifier,
		workerPool: goroutines.NewPool(4, goroutines.WithTaskQueueLength(256)),
	}
}

func (im *impl) Record(c ctx.Ctx, a *activity.Activity) {
	if err := im.repo.Insert(c, a); err != nil {
		c.WithFields(log.Fields{"err": err, "type": a.Type, "listing": a.Listing}).Error("repo.Insert failed")
	}

	if a.Type != activity.ActivityTypePurchaseSucceeded || im.notifier == nil {
		return
	}
	err := im.workerPool.ScheduleWithTimeout(3*time.Second, func() {
		if err := im.notifier.NotifySale(c, a); err != nil {
			c.WithFields(log.Fields{"err": err, "listing": a.Listing, "ticket": a.TicketId}).Error("notifier.NotifySale failed")
		}
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "listing": a.Listing}).Error("failed to ScheduleWithTimeout")
	}
}

func (im *impl) ActivitiesByAccount(c ctx.Ctx, account domain.AccountId, offset, limit int) ([]activity.Activity, int, error) {
	opts := []activity.FindActivityOptions{activity.WithAccount(account)}

	res, err := im.repo.FindAll(c, append(opts, activity.WithPagination(offset, limit))...)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "account": account}).Error("repo.FindAll failed")
		return nil, 0, err
	}

	cnt, err := im.repo.Count(c, opts...)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "account": account}).Error("repo.Count failed")
		return nil, 0, err
	}
	return res, cnt, nil
}
