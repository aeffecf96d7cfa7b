package auth

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/oshokin/geektime-grabber/internal/logger"
)

// simulateHumanBehavior performs random mouse movements and scrolling to appear more human-like.
func (s *ServiceImpl) simulateHumanBehavior(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "simulateHumanBehavior panic recovered: %v", r)
		}
	}()

	maxX, maxY, ok := s.viewportSize()
	if !ok {
		return
	}

	// Perform random mouse movements.
	for range mouseMovementsPerCheck {
		//nolint:gosec // Weak random is fine for simulating human behavior.
		x := rand.IntN(maxX)
		//nolint:gosec // Weak random is fine for simulating human behavior.
		y := rand.IntN(maxY)

		// Move mouse to random position.
		s.page.Mouse.MustMoveTo(float64(x), float64(y))

		// Random small delay between movements.
		time.Sleep(randomDurationBetween(mouseMovementMinDelay, mouseMovementMaxDelay))
	}

	// Occasionally skim down the page like a reader would.
	//nolint:gosec // Weak random is fine for simulating human behavior.
	if rand.IntN(scrollProbability) == 0 {
		//nolint:gosec // Weak random is fine for simulating human behavior.
		scrollAmount := rand.IntN(skimScrollMaxPixels-skimScrollMinPixels) + skimScrollMinPixels
		s.page.Mouse.MustScroll(0, float64(scrollAmount))
	}
}

// randomHumanDelay sleeps for a random duration to simulate human timing.
func randomHumanDelay() {
	time.Sleep(randomDurationBetween(humanBehaviorMinDelay, humanBehaviorMaxDelay))
}

// simulateRandomPageInteraction performs random, harmless page interactions.
func (s *ServiceImpl) simulateRandomPageInteraction(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(ctx, "simulateRandomPageInteraction panic recovered: %v", r)
		}
	}()

	//nolint:gosec // Weak random is fine for simulating human behavior.
	action := rand.IntN(interactionActionCount)

	switch action {
	case 0:
		// Skim a little further down the page.
		//nolint:gosec // Weak random is fine for simulating human behavior.
		scrollDelta := float64(rand.IntN(skimScrollMaxPixels-skimScrollMinPixels) + skimScrollMinPixels)
		s.page.Mouse.MustScroll(0, scrollDelta)
	case 1:
		// Scroll back up a bit, as if re-reading something.
		s.page.Mouse.MustScroll(0, -backScrollPixels)
	case 2:
		// Pause (humans don't move constantly).
		time.Sleep(randomDurationBetween(pauseMinDelay, pauseMaxDelay))
	default:
		// Drift the mouse cursor to a new position.
		if maxX, maxY, ok := s.viewportSize(); ok {
			//nolint:gosec // Weak random is fine for simulating human behavior.
			x := float64(rand.IntN(maxX))
			//nolint:gosec // Weak random is fine for simulating human behavior.
			y := float64(rand.IntN(maxY))
			s.page.Mouse.MustMoveTo(x, y)
		}
	}
}

// viewportSize returns the current viewport dimensions in pixels.
func (s *ServiceImpl) viewportSize() (width, height int, ok bool) {
	eval, err := s.page.Eval(`() => ({width: window.innerWidth, height: window.innerHeight})`)
	if err != nil {
		return 0, 0, false
	}

	dims := eval.Value.Map()
	width = int(dims["width"].Num())
	height = int(dims["height"].Num())

	if width <= 0 || height <= 0 {
		return 0, 0, false
	}

	return width, height, true
}

// randomDurationBetween returns a random duration in the [minDelay, maxDelay) range.
func randomDurationBetween(minDelay, maxDelay time.Duration) time.Duration {
	//nolint:gosec // Weak random is fine for simulating human behavior.
	return time.Duration(rand.Int64N(int64(maxDelay-minDelay))) + minDelay
}
