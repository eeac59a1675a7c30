package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type RecoverableGoOptions struct {
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(panic interface{}, stack []byte)
}

type RecoverableGoOptionsFunc = func(*RecoverableGoOptions)

func WithBeforeStart(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) {
		options.beforeStart = f
	}
}

func WithAfterEnded(f func()) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) {
		options.afterEnded = f
	}
}

func WithAfterRecovered(f func(panic interface{}, stack []byte)) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) {
		options.afterRecovered = f
	}
}

// Recover runs f on the calling goroutine and turns a panic into a PanicEvent
func Recover(c ctx.Ctx, f func(), fns ...RecoverableGoOptionsFunc) (ev *PanicEvent) {
	opts := RecoverableGoOptions{}
	for _, fn := range fns {
		fn(&opts)
	}

	defer func() {
		if opts.afterEnded != nil {
			opts.afterEnded()
		}
		if p := recover(); p != nil {
			stack := debug.Stack()
			c.WithFields(log.Fields{
				"err":   p,
				"stack": string(stack),
			}).Error("panic")

			if opts.afterRecovered != nil {
				opts.afterRecovered(p, stack)
			}
			ev = &PanicEvent{p, stack}
		}
	}()

	if opts.beforeStart != nil {
		opts.beforeStart()
	}
	f()
	return nil
}

// RecoverableGo runs f on a new goroutine. The channel yields the panic, if any, then closes.
func RecoverableGo(c ctx.Ctx, f func(), fns ...RecoverableGoOptionsFunc) chan *PanicEvent {
	panicChan := make(chan *PanicEvent, 1)
	go func() {
		defer close(panicChan)
		if ev := Recover(c, f, fns...); ev != nil {
			panicChan <- ev
		}
	}()
	return panicChan
}
