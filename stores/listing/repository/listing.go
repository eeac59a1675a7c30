package repository

import (
	"encoding/json"
	"strconv"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/domain/listing"
)

const (
	nsListing = "listing"
	nsOwner   = "owner"
)

var (
	keyListingCount = []byte("listings")
	entrySuffix     = []byte("e")
	reverseSuffix   = []byte("r")
)

type ownerSet struct {
	Count   int    `json:"count"`
	NextSeq uint64 `json:"nextSeq"`
}

type impl struct {
	store *kvstore.Store
}

func New(store *kvstore.Store) listing.Repo {
	return &impl{store: store}
}

func proposalPrefix(id listing.ListingId) []byte {
	return keys.Namespace(nsListing, id.String())
}

func ownerPrefix(owner domain.AccountId) []byte {
	return keys.Namespace(nsOwner, owner.String())
}

func (im *impl) FindOne(c ctx.Ctx, id listing.ListingId) (*listing.Listing, error) {
	raw, err := im.store.Bucket(c, keys.PfxListings).Get([]byte(id.String()))
	if err == kvstore.ErrNotFound {
		return nil, domain.ErrListingNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Get failed")
		return nil, err
	}

	l := &listing.Listing{}
	if err := json.Unmarshal(raw, l); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("json.Unmarshal failed")
		return nil, err
	}

	l.Proposals = []*listing.Proposal{}
	l.Settling = []*listing.Proposal{}
	err = im.store.Bucket(c, keys.PfxProposals).Iterate(proposalPrefix(id), func(_, v []byte) (bool, error) {
		p := &listing.Proposal{}
		if err := json.Unmarshal(v, p); err != nil {
			return false, err
		}
		if p.Settling {
			l.Settling = append(l.Settling, p)
		} else {
			l.Proposals = append(l.Proposals, p)
		}
		return true, nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Iterate failed")
		return nil, err
	}
	l.Resort()
	return l, nil
}

func (im *impl) putHeader(c ctx.Ctx, l *listing.Listing) error {
	header := *l
	header.Proposals = nil
	header.Settling = nil
	raw, err := json.Marshal(&header)
	if err != nil {
		return err
	}
	return im.store.Bucket(c, keys.PfxListings).Put([]byte(l.Id.String()), raw)
}

func (im *impl) Insert(c ctx.Ctx, l *listing.Listing) error {
	b := im.store.Bucket(c, keys.PfxListings)
	if ok, err := b.Has([]byte(l.Id.String())); err != nil {
		c.WithFields(log.Fields{"err": err, "id": l.Id}).Error("bucket.Has failed")
		return err
	} else if ok {
		return domain.ErrListingExists
	}

	if err := im.putHeader(c, l); err != nil {
		c.WithFields(log.Fields{"err": err, "id": l.Id}).Error("putHeader failed")
		return err
	}
	for _, p := range append(append([]*listing.Proposal{}, l.Proposals...), l.Settling...) {
		if err := im.PutProposal(c, l.Id, p); err != nil {
			return err
		}
	}
	return im.addCount(c, 1)
}

func (im *impl) Update(c ctx.Ctx, l *listing.Listing) error {
	if err := im.putHeader(c, l); err != nil {
		c.WithFields(log.Fields{"err": err, "id": l.Id}).Error("putHeader failed")
		return err
	}
	return nil
}

func (im *impl) Remove(c ctx.Ctx, id listing.ListingId) error {
	b := im.store.Bucket(c, keys.PfxListings)
	if ok, err := b.Has([]byte(id.String())); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Has failed")
		return err
	} else if !ok {
		return domain.ErrListingNotFound
	}

	pb := im.store.Bucket(c, keys.PfxProposals)
	stale := [][]byte{}
	err := pb.Iterate(proposalPrefix(id), func(k, _ []byte) (bool, error) {
		stale = append(stale, k)
		return true, nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Iterate failed")
		return err
	}
	for _, k := range stale {
		if err := pb.Delete(k); err != nil {
			c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Delete failed")
			return err
		}
	}

	if err := b.Delete([]byte(id.String())); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Delete failed")
		return err
	}
	return im.addCount(c, -1)
}

func (im *impl) PutProposal(c ctx.Ctx, id listing.ListingId, p *listing.Proposal) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	k := keys.Join(proposalPrefix(id), keys.Uint64(p.Id))
	if err := im.store.Bucket(c, keys.PfxProposals).Put(k, raw); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id, "proposal": p.Id}).Error("bucket.Put failed")
		return err
	}
	return nil
}

func (im *impl) RemoveProposal(c ctx.Ctx, id listing.ListingId, proposalId uint64) error {
	b := im.store.Bucket(c, keys.PfxProposals)
	k := keys.Join(proposalPrefix(id), keys.Uint64(proposalId))
	if ok, err := b.Has(k); err != nil {
		return err
	} else if !ok {
		return domain.ErrProposalNotFound
	}
	if err := b.Delete(k); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id, "proposal": proposalId}).Error("bucket.Delete failed")
		return err
	}
	return nil
}

func (im *impl) addCount(c ctx.Ctx, n int) error {
	cnt, err := im.Count(c)
	if err != nil {
		return err
	}
	cnt += n
	if cnt < 0 {
		return domain.ErrRecordMissing
	}
	return im.store.Bucket(c, keys.PfxMeta).Put(keyListingCount, []byte(strconv.Itoa(cnt)))
}

func (im *impl) Count(c ctx.Ctx) (int, error) {
	raw, err := im.store.Bucket(c, keys.PfxMeta).Get(keyListingCount)
	if err == kvstore.ErrNotFound {
		return 0, nil
	} else if err != nil {
		c.WithField("err", err).Error("bucket.Get failed")
		return 0, err
	}
	return strconv.Atoi(string(raw))
}
