// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package hostbridge

import (
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// defaultSpurtSize is the per-tick task budget of the drain.
	defaultSpurtSize = 5
	// defaultTickInterval is the cadence of the host timer that drives the
	// drain.
	defaultTickInterval = 2 * time.Millisecond
)

// options holds configuration for Bridge creation.
type options struct {
	logger       *logiface.Logger[logiface.Event]
	spurtSize    int
	tickInterval time.Duration
	stackTraces  bool
	metrics      bool
}

// Option configures a Bridge instance.
type Option interface {
	apply(*options) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyFunc func(*options) error
}

func (o *optionImpl) apply(opts *options) error {
	return o.applyFunc(opts)
}

// WithLogger attaches a structured logger to the bridge. The logger is
// optional; a nil logger disables logging entirely.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *options) error {
		opts.logger = logger
		return nil
	}}
}

// WithSpurtSize sets how many queued tasks the drain executes per host
// timer tick. Work beyond the budget waits for the next tick.
func WithSpurtSize(n int) Option {
	return &optionImpl{func(opts *options) error {
		if n <= 0 {
			return fmt.Errorf("hostbridge: spurt size must be positive, got %d", n)
		}
		opts.spurtSize = n
		return nil
	}}
}

// WithTickInterval sets the cadence of the recurring host timer that
// drives the drain.
func WithTickInterval(d time.Duration) Option {
	return &optionImpl{func(opts *options) error {
		if d <= 0 {
			return fmt.Errorf("hostbridge: tick interval must be positive, got %v", d)
		}
		opts.tickInterval = d
		return nil
	}}
}

// WithStackTraces enables capture of a full stack snapshot at the point of
// a contained callback failure. The snapshot is attached to the resulting
// PanicError and included in the printed report.
func WithStackTraces(enabled bool) Option {
	return &optionImpl{func(opts *options) error {
		opts.stackTraces = enabled
		return nil
	}}
}

// WithMetrics enables runtime metrics collection on the Bridge.
// When enabled, metrics can be accessed via Bridge.Metrics().
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *options) error {
		opts.metrics = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to options.
func resolveOptions(opts []Option) (*options, error) {
	cfg := &options{
		spurtSize:    defaultSpurtSize,
		tickInterval: defaultTickInterval,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // skip nil options gracefully
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
