package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time.Now so services with validity windows and
// period bounds stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
