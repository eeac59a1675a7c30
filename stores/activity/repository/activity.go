package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/activity"
	"github.com/x-xyz/fpomarket/service/query"
)

func makeFindQuery(optFns ...activity.FindActivityOptions) (bson.M, error) {
	opts, err := activity.GetFindActivityOptions(optFns...)
	if err != nil {
		return nil, err
	}

	qry := bson.M{}

	if opts.Account != nil {
		qry["$or"] = bson.A{
			bson.M{"account": *opts.Account},
			bson.M{"to": *opts.Account},
		}
	}

	if opts.Listing != nil {
		qry["listing"] = *opts.Listing
	}

	if len(opts.Types) > 1 {
		qry["type"] = bson.M{"$in": opts.Types}
	} else if len(opts.Types) > 0 {
		qry["type"] = opts.Types[0]
	}

	return qry, nil
}

type activityRepo struct {
	q query.Mongo
}

func New(q query.Mongo) activity.Repo {
	return &activityRepo{q: q}
}

// EnsureIndexes creates the indexes the feed queries rely on
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	for _, keys := range [][]string{
		{"account", "-time"},
		{"to", "-time"},
		{"listing", "-time"},
	} {
		if err := q.EnsureIndex(c, domain.TableActivities, false, keys...); err != nil {
			return err
		}
	}
	return nil
}

func (r *activityRepo) Insert(c ctx.Ctx, a *activity.Activity) error {
	if err := r.q.Insert(c, domain.TableActivities, a); err != nil {
		c.WithFields(log.Fields{
			"activity": a,
			"err":      err,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *activityRepo) FindAll(c ctx.Ctx, optFns ...activity.FindActivityOptions) ([]activity.Activity, error) {
	opts, err := activity.GetFindActivityOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindActivityOptions failed")
		return nil, err
	}

	qry, err := makeFindQuery(optFns...)
	if err != nil {
		c.WithField("err", err).Error("makeFindQuery failed")
		return nil, err
	}

	offset := 0
	limit := 0

	if opts.Offset != nil {
		offset = *opts.Offset
	}

	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []activity.Activity{}

	err = r.q.SearchNSorts(c, domain.TableActivities, offset, limit, []string{"-time", "_id"}, qry, &res)
	if err != nil {
		c.WithField("err", err).WithField("query", qry).Error("q.SearchNSorts failed")
		return nil, err
	}

	return res, nil
}

func (r *activityRepo) Count(c ctx.Ctx, optFns ...activity.FindActivityOptions) (int, error) {
	qry, err := makeFindQuery(optFns...)
	if err != nil {
		c.WithField("err", err).Error("makeFindQuery failed")
		return 0, err
	}

	cnt, err := r.q.Count(c, domain.TableActivities, qry)
	if err != nil {
		c.WithField("err", err).WithField("query", qry).Error("q.Count failed")
		return 0, err
	}

	return cnt, nil
}
