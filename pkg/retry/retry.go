// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package retry runs remote interactions under a bounded, fixed-interval retry policy.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultMaxAttempts = 10
	DefaultDelay       = time.Second
)

// ErrNotYet is reported by Until when a probe says the condition does not hold yet.
var ErrNotYet = errors.Base("condition not met yet")

// 🔁 Policy bounds how often and how far apart an operation is attempted.
// There is no backoff growth and no jitter.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// Sleep waits between attempts. Nil means a context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// 🏭 DefaultPolicy returns ten attempts one second apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// 🔍 Validate checks the policy can be applied
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Delay < 0 {
		return errors.Errorf("delay cannot be negative, got %s", p.Delay)
	}
	return nil
}

// WithDefaults replaces zero values with the defaults.
func (p Policy) WithDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Delay <= 0 {
		p.Delay = DefaultDelay
	}
	return p
}

// ExhaustedError carries the last failure after every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// 🔁 Do runs op until it succeeds or the policy's attempts are used up.
// Only the last failure is reported; earlier failures are logged at debug level.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if err := p.Validate(); err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)

	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if last == nil {
				return errors.Errorf("retry cancelled: %w", err)
			}
			return &ExhaustedError{Attempts: attempt - 1, Last: last}
		}

		last = op(ctx)
		if last == nil {
			return nil
		}

		logger.Debug().Int("attempt", attempt).Int("max_attempts", p.MaxAttempts).Err(last).Msg("attempt failed")

		if attempt == p.MaxAttempts {
			break
		}
		if err := p.sleep(ctx); err != nil {
			return &ExhaustedError{Attempts: attempt, Last: last}
		}
	}

	return &ExhaustedError{Attempts: p.MaxAttempts, Last: last}
}

// ⏳ Until polls probe until it reports true. A false result without an error counts as a
// failed attempt carrying ErrNotYet, so exhaustion surfaces either the probe's last error
// or ErrNotYet.
func Until(ctx context.Context, p Policy, probe func(ctx context.Context) (bool, error)) error {
	return Do(ctx, p, func(ctx context.Context) error {
		ok, err := probe(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.WithStack(ErrNotYet)
		}
		return nil
	})
}

// Value runs op like Do and returns the value of the first successful attempt.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (p Policy) sleep(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Delay)
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
