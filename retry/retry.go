package retry

import "time"

type Options struct {
	MaxAttempts int
	Interval    time.Duration
	Backoff     float32
}

type Opt func(*Options)

func WithMaxAttempts(attempts int) Opt {
	return func(o *Options) {
		o.MaxAttempts = attempts
	}
}

func WithInterval(interval time.Duration) Opt {
	return func(o *Options) {
		o.Interval = interval
	}
}

func WithBackoff(backoff float32) Opt {
	return func(o *Options) {
		o.Backoff = backoff
	}
}

// Do runs task until it succeeds or MaxAttempts is reached, sleeping
// Interval between attempts and multiplying it by Backoff each time. The last
// error is returned on exhaustion.
func Do(task func() error, opts ...Opt) (err error) {
	cfg := &Options{
		MaxAttempts: 1,
		Backoff:     1,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	interval := cfg.Interval
	for i := 0; i < cfg.MaxAttempts; i++ {
		if err = task(); err == nil {
			return nil
		}
		if i < cfg.MaxAttempts-1 && interval > 0 {
			time.Sleep(interval)
			interval = time.Duration(float32(interval) * cfg.Backoff)
		}
	}
	return
}

// Do1 is Do for tasks that produce a value.
func Do1[T any](task func() (T, error), opts ...Opt) (res T, err error) {
	err = Do(func() error {
		res, err = task()
		return err
	}, opts...)
	return
}
