package main

import (
	"context"
	"net"
	"sync"

	"github.com/stewi1014/glhologram/anim"
	"github.com/stewi1014/glhologram/config"
	"github.com/stewi1014/glhologram/scenes"
)

// Messages exchanged between the render and config windows. The render
// window sends PanelInit once, then LoadProgress and Saved as they happen.
// The config window sends *anim.Params snapshots and SaveRequest.

type PanelInit struct {
	Scene          string
	Params         anim.Params
	Fields         scenes.PanelFields
	GlitchStrength config.Range
	Rotation       config.Range
}

type LoadProgress struct {
	Path          string
	Loaded, Total int
	Err           string
	Done          bool
}

type SaveRequest struct {
	Name string
}

type Saved struct {
	Name string
	Err  string
}

// NewPipeListener returns both ends of an in-process connection. The
// listener hands out its end once; it closes when ctx is done.
func NewPipeListener(ctx context.Context) (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	p := &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
	context.AfterFunc(ctx, func() {
		p.Close()
		clientPipe.Close()
	})
	return clientPipe, p
}

type pipeListener struct {
	mu       sync.Mutex
	pipe     net.Conn
	accepted bool

	done      chan struct{}
	closeOnce sync.Once
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	if !p.accepted {
		p.accepted = true
		p.mu.Unlock()
		return p.pipe, nil
	}
	p.mu.Unlock()

	<-p.done
	return nil, net.ErrClosed
}

func (p *pipeListener) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.pipe.Close()
	})
	return err
}

func (p *pipeListener) Addr() net.Addr {
	return p.pipe.LocalAddr()
}
