package transport

import (
	"sync"
)

const pipeBuffer = 256

type pipeEnd struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

// Pipe returns two connected in-memory links
// Closing either end closes both.
func Pipe() (Link, Link) {
	a := make(chan []byte, pipeBuffer)
	b := make(chan []byte, pipeBuffer)
	done := make(chan struct{})
	once := &sync.Once{}

	return &pipeEnd{in: a, out: b, done: done, once: once},
		&pipeEnd{in: b, out: a, done: done, once: once}
}

func (p *pipeEnd) ReadMessage() ([]byte, error) {
	select {
	case data := <-p.in:
		return data, nil
	default:
	}

	select {
	case data := <-p.in:
		return data, nil
	case <-p.done:
		return nil, ErrClosed
	}
}

func (p *pipeEnd) WriteMessage(data []byte) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	select {
	case p.out <- cp:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

func (p *pipeEnd) Ping() error {
	select {
	case <-p.done:
		return ErrClosed
	default:
		return nil
	}
}

func (p *pipeEnd) Close() error {
	err := ErrClosed
	p.once.Do(func() {
		close(p.done)
		err = nil
	})

	return err
}
