package assets

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Kind tells the receiver what a decoded image is for.
type Kind int

const (
	KindMap Kind = iota
	KindAvatar
)

func (k Kind) String() string {
	if k == KindMap {
		return "map"
	}
	return "avatar"
}

// Request asks for src to be decoded. Gen is echoed back so the receiver can
// recognise results that a newer request superseded.
type Request struct {
	Kind Kind
	Src  string
	Gen  uint64
}

// Result is a finished decode.
type Result struct {
	Request
	Image image.Image
	Err   error
}

// Loader decodes images on worker goroutines. Concurrent requests for the
// same source share one decode. Results are collected with Drain from the
// goroutine that owns the board.
type Loader struct {
	log     logrus.FieldLogger
	group   singleflight.Group
	results chan Result
	wg      sync.WaitGroup

	// pending is only touched by the owning goroutine.
	pending map[Request]bool
}

// NewLoader creates a loader.
func NewLoader(log logrus.FieldLogger) *Loader {
	return &Loader{
		log:     log.WithField("component", "assets"),
		results: make(chan Result, 64),
		pending: make(map[Request]bool),
	}
}

// Load starts decoding req unless the same request is already in flight.
// Cancelling ctx drops the result.
func (l *Loader) Load(ctx context.Context, req Request) {
	if req.Src == "" || l.pending[req] {
		return
	}
	l.pending[req] = true
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		v, err, shared := l.group.Do(req.Src, func() (any, error) {
			return Decode(req.Src)
		})
		if ctx.Err() != nil {
			l.log.WithField("generation", req.Gen).Debug("Dropping cancelled decode")
			l.results <- Result{Request: req, Err: ctx.Err()}
			return
		}
		res := Result{Request: req, Err: err}
		if err == nil {
			res.Image = v.(image.Image)
		}
		l.log.WithFields(logrus.Fields{
			"kind":       req.Kind,
			"generation": req.Gen,
			"shared":     shared,
		}).Debug("Decoded image")
		l.results <- res
	}()
}

// Pending reports whether req is being decoded.
func (l *Loader) Pending(req Request) bool {
	return l.pending[req]
}

// Drain returns the finished results without blocking. Cancelled requests
// are cleared but not returned.
func (l *Loader) Drain() []Result {
	var out []Result
	for {
		select {
		case res := <-l.results:
			delete(l.pending, res.Request)
			if isCancel(res.Err) {
				continue
			}
			out = append(out, res)
		default:
			return out
		}
	}
}

// Wait blocks until every started decode has delivered its result.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
