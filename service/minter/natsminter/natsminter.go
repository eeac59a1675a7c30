// Package natsminter carries mint calls over NATS: the API publishes requests,
// minter workers run them and publish the results back.
package natsminter

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
	"github.com/x-xyz/fpomarket/domain/token"
	"github.com/x-xyz/fpomarket/service/minter/local"
)

const (
	SubjectRequest = "nft.mint.request"
	SubjectResult  = "nft.mint.result"

	workerQueue = "minters"
)

// Client implements token.Minter on top of a NATS connection
type Client struct {
	conn *nats.Conn
	sub  *nats.Subscription

	mu sync.RWMutex
	cb func(ctx.Ctx, token.MintResult)
}

func NewClient(conn *nats.Conn) (*Client, error) {
	cl := &Client{conn: conn}
	sub, err := conn.Subscribe(SubjectResult, cl.handleResult)
	if err != nil {
		return nil, err
	}
	cl.sub = sub
	return cl, nil
}

func (cl *Client) Mint(c ctx.Ctx, req token.MintRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := cl.conn.Publish(SubjectRequest, raw); err != nil {
		c.WithFields(log.Fields{"err": err, "request": req.Id}).Error("conn.Publish failed")
		return err
	}
	return nil
}

func (cl *Client) OnResult(cb func(ctx.Ctx, token.MintResult)) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.cb = cb
}

func (cl *Client) handleResult(msg *nats.Msg) {
	c := ctx.Background()
	res := token.MintResult{}
	if err := json.Unmarshal(msg.Data, &res); err != nil {
		c.WithField("err", err).Error("json.Unmarshal failed")
		return
	}

	cl.mu.RLock()
	cb := cl.cb
	cl.mu.RUnlock()
	if cb == nil {
		c.WithField("request", res.RequestId).Warn("mint result dropped, no receiver")
		return
	}
	cb(c, res)
}

func (cl *Client) Close() error {
	return cl.sub.Unsubscribe()
}

// Worker takes mint requests off NATS, runs them on a local minter and publishes the results
type Worker struct {
	conn   *nats.Conn
	minter *local.Minter
}

func NewWorker(conn *nats.Conn, minter *local.Minter) *Worker {
	w := &Worker{conn: conn, minter: minter}
	minter.OnResult(w.publish)
	return w
}

// Serve blocks until c is done
func (w *Worker) Serve(c ctx.Ctx) error {
	sub, err := w.conn.QueueSubscribe(SubjectRequest, workerQueue, func(msg *nats.Msg) {
		req := token.MintRequest{}
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.WithField("err", err).Error("json.Unmarshal failed")
			return
		}
		if err := w.minter.Mint(c, req); err != nil {
			w.publish(c, token.MintResult{
				RequestId: req.Id,
				Status:    token.MintStatusFailed,
				Payload:   req.Payload,
				Err:       err.Error(),
			})
		}
	})
	if err != nil {
		c.WithField("err", err).Error("conn.QueueSubscribe failed")
		return err
	}

	<-c.Done()
	return sub.Drain()
}

func (w *Worker) publish(c ctx.Ctx, res token.MintResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "request": res.RequestId}).Error("json.Marshal failed")
		return
	}
	if err := w.conn.Publish(SubjectResult, raw); err != nil {
		c.WithFields(log.Fields{"err": err, "request": res.RequestId}).Error("conn.Publish failed")
	}
}
