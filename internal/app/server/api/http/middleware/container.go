package middleware

import "github.com/danielgtaylor/huma/v2"

// Container accumulates middlewares for one handler and hands them over as a
// batch, so the api wiring can stack per-handler chains without sharing
// slices.
type Container struct {
	middlewares huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw func(huma.Context, func(huma.Context))) {
	c.middlewares = append(c.middlewares, mw)
}

// GetAllAndClear returns the accumulated chain and resets the container for
// the next handler.
func (c *Container) GetAllAndClear() huma.Middlewares {
	mws := c.middlewares
	c.middlewares = nil
	return mws
}
