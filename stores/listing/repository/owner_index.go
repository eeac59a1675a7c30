package repository

import (
	"encoding/json"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/domain/listing"
)

func (im *impl) findOwnerSet(c ctx.Ctx, owner domain.AccountId) (*ownerSet, error) {
	raw, err := im.store.Bucket(c, keys.PfxOwnerSets).Get(ownerPrefix(owner))
	if err == kvstore.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	set := &ownerSet{}
	if err := json.Unmarshal(raw, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (im *impl) putOwnerSet(c ctx.Ctx, owner domain.AccountId, set *ownerSet) error {
	b := im.store.Bucket(c, keys.PfxOwnerSets)
	if set.Count == 0 {
		return b.Delete(ownerPrefix(owner))
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return b.Put(ownerPrefix(owner), raw)
}

func (im *impl) AddToOwnerIndex(c ctx.Ctx, owner domain.AccountId, id listing.ListingId) error {
	set, err := im.findOwnerSet(c, owner)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("findOwnerSet failed")
		return err
	}
	if set == nil {
		set = &ownerSet{}
	}

	ns := ownerPrefix(owner)
	b := im.store.Bucket(c, keys.PfxOwnerIndex)
	reverse := keys.Join(ns, reverseSuffix, []byte(id.String()))
	if ok, err := b.Has(reverse); err != nil {
		return err
	} else if ok {
		return nil
	}

	seq := set.NextSeq
	if err := b.Put(keys.Join(ns, entrySuffix, keys.Uint64(seq)), []byte(id.String())); err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner, "id": id}).Error("bucket.Put failed")
		return err
	}
	if err := b.Put(reverse, keys.Uint64(seq)); err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner, "id": id}).Error("bucket.Put failed")
		return err
	}

	set.NextSeq++
	set.Count++
	return im.putOwnerSet(c, owner, set)
}

func (im *impl) RemoveFromOwnerIndex(c ctx.Ctx, owner domain.AccountId, id listing.ListingId) error {
	set, err := im.findOwnerSet(c, owner)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("findOwnerSet failed")
		return err
	} else if set == nil {
		return domain.ErrRecordMissing
	}

	ns := ownerPrefix(owner)
	b := im.store.Bucket(c, keys.PfxOwnerIndex)
	reverse := keys.Join(ns, reverseSuffix, []byte(id.String()))
	raw, err := b.Get(reverse)
	if err == kvstore.ErrNotFound {
		return domain.ErrRecordMissing
	} else if err != nil {
		return err
	}

	if err := b.Delete(keys.Join(ns, entrySuffix, raw)); err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner, "id": id}).Error("bucket.Delete failed")
		return err
	}
	if err := b.Delete(reverse); err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner, "id": id}).Error("bucket.Delete failed")
		return err
	}

	set.Count--
	return im.putOwnerSet(c, owner, set)
}

func (im *impl) FindAllByOwner(c ctx.Ctx, owner domain.AccountId, optFns ...listing.FindAllOptionsFunc) ([]*listing.Listing, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}
	offset, limit := 0, -1
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	ids := []listing.ListingId{}
	skipped := 0
	err = im.store.Bucket(c, keys.PfxOwnerIndex).Iterate(keys.Join(ownerPrefix(owner), entrySuffix), func(_, v []byte) (bool, error) {
		if skipped < offset {
			skipped++
			return true, nil
		}
		if limit >= 0 && len(ids) >= limit {
			return false, nil
		}
		id, err := listing.ParseListingId(string(v))
		if err != nil {
			return false, err
		}
		ids = append(ids, id)
		return true, nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("bucket.Iterate failed")
		return nil, err
	}

	res := make([]*listing.Listing, 0, len(ids))
	for _, id := range ids {
		l, err := im.FindOne(c, id)
		if err == domain.ErrListingNotFound {
			c.WithFields(log.Fields{"owner": owner, "id": id}).Error("orphaned owner index entry")
			return nil, domain.ErrRecordMissing
		} else if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, nil
}

func (im *impl) CountByOwner(c ctx.Ctx, owner domain.AccountId) (int, error) {
	set, err := im.findOwnerSet(c, owner)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("findOwnerSet failed")
		return 0, err
	} else if set == nil {
		return 0, nil
	}
	return set.Count, nil
}
