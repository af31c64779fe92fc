package pong

// Hooks are extension points invoked from inside Tick. Play modes register
// hooks instead of overriding engine steps; nil members are skipped.
type Hooks struct {
	// PrePaddle runs before intents are applied and paddles move.
	PrePaddle func(e *Engine)

	// PostBall runs after the ball moved and collisions were resolved.
	PostBall func(e *Engine)

	// PostScore runs after the score check, including the tick that ends the match.
	PostScore func(e *Engine)
}

func (e *Engine) runHooks(pick func(Hooks) func(*Engine)) {
	for _, h := range e.hooks {
		if fn := pick(h); fn != nil {
			fn(e)
		}
	}
}

func prePaddle(h Hooks) func(*Engine) { return h.PrePaddle }
func postBall(h Hooks) func(*Engine)  { return h.PostBall }
func postScore(h Hooks) func(*Engine) { return h.PostScore }
