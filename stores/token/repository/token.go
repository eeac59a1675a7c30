package repository

import (
	"encoding/json"
	"strconv"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/kvstore"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/domain/token"
)

const nsOwner = "token.owner"

type impl struct {
	store *kvstore.Store
}

func New(store *kvstore.Store) token.Repo {
	return &impl{store: store}
}

func ownerPrefix(owner domain.AccountId) []byte {
	return keys.Namespace(nsOwner, owner.String())
}

func (im *impl) FindOne(c ctx.Ctx, id token.TokenId) (*token.Token, error) {
	raw, err := im.store.Bucket(c, keys.PfxTokens).Get([]byte(id))
	if err == kvstore.ErrNotFound {
		return nil, domain.ErrTokenNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("bucket.Get failed")
		return nil, err
	}

	t := &token.Token{}
	if err := json.Unmarshal(raw, t); err != nil {
		c.WithFields(log.Fields{"err": err, "id": id}).Error("json.Unmarshal failed")
		return nil, err
	}
	return t, nil
}

// Insert stores t, indexes it under its owner and counts it in its collection supply
func (im *impl) Insert(c ctx.Ctx, t *token.Token) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}

	tokens := im.store.Bucket(c, keys.PfxTokens)
	if ok, err := tokens.Has([]byte(t.Id)); err != nil {
		c.WithFields(log.Fields{"err": err, "id": t.Id}).Error("bucket.Has failed")
		return err
	} else if ok {
		return domain.ErrFatalInconsistency
	}
	if err := tokens.Put([]byte(t.Id), raw); err != nil {
		c.WithFields(log.Fields{"err": err, "id": t.Id}).Error("bucket.Put failed")
		return err
	}

	ownership := im.store.Bucket(c, keys.PfxTokenOwnership)
	if err := ownership.Put(keys.Join(ownerPrefix(t.Owner), []byte(t.Id)), []byte{}); err != nil {
		c.WithFields(log.Fields{"err": err, "id": t.Id, "owner": t.Owner}).Error("bucket.Put failed")
		return err
	}

	supply, err := im.TotalSupply(c, t.Collection)
	if err != nil {
		return err
	}
	return im.store.Bucket(c, keys.PfxTokenSupply).Put([]byte(t.Collection), []byte(strconv.FormatUint(supply+1, 10)))
}

func (im *impl) NextSerial(c ctx.Ctx, collection string) (uint64, error) {
	supply, err := im.TotalSupply(c, collection)
	if err != nil {
		return 0, err
	}
	return supply + 1, nil
}

func (im *impl) TotalSupply(c ctx.Ctx, collection string) (uint64, error) {
	raw, err := im.store.Bucket(c, keys.PfxTokenSupply).Get([]byte(collection))
	if err == kvstore.ErrNotFound {
		return 0, nil
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "collection": collection}).Error("bucket.Get failed")
		return 0, err
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

// FindAllByOwner pages through the owner's tokens in id order, limit < 0 returns all
func (im *impl) FindAllByOwner(c ctx.Ctx, owner domain.AccountId, offset, limit int) ([]*token.Token, error) {
	ids := []token.TokenId{}
	skipped := 0
	pfx := ownerPrefix(owner)
	err := im.store.Bucket(c, keys.PfxTokenOwnership).Iterate(pfx, func(k, _ []byte) (bool, error) {
		if skipped < offset {
			skipped++
			return true, nil
		}
		if limit >= 0 && len(ids) >= limit {
			return false, nil
		}
		ids = append(ids, token.TokenId(k[len(pfx):]))
		return true, nil
	})
	if err != nil {
		c.WithFields(log.Fields{"err": err, "owner": owner}).Error("bucket.Iterate failed")
		return nil, err
	}

	res := make([]*token.Token, 0, len(ids))
	for _, id := range ids {
		t, err := im.FindOne(c, id)
		if err == domain.ErrTokenNotFound {
			return nil, domain.ErrRecordMissing
		} else if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}
