package combat

// Subscribe registers fn to receive a Snapshot after every completed action
// and after Reset. Observers are called synchronously in registration order
// and must not call actions on the engine.
//
// Precondition: fn must be non-nil.
// Postcondition: Returns an idempotent cancel function that removes fn.
func (e *Engine) Subscribe(fn func(Snapshot)) (cancel func()) {
	e.mustBeReady()
	if fn == nil {
		panic("combat: Subscribe precondition violated: fn must be non-nil")
	}
	id := e.nextID
	e.nextID++
	e.observers = append(e.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range e.observers {
			if o.id == id {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, o := range e.observers {
		o.fn(snap)
	}
}
