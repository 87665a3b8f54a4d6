package js

// PromiseState tracks settlement.
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseState) String() string {
	switch s {
	case PromisePending:
		return "pending"
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// reaction is a pair of handlers registered by Then.
type reaction struct {
	onFulfill *Func
	onReject  *Func
	next      *Promise
}

// Promise is a single-threaded promise. All methods must run on the loop
// goroutine; cross-goroutine settlement goes through the injected scheduler,
// which posts a microtask.
type Promise struct {
	state     PromiseState
	value     Value
	schedule  func(func())
	reactions []reaction
}

// NewPromise creates a pending promise. schedule posts a microtask onto the
// event loop and must not be nil.
func NewPromise(schedule func(func())) *Promise {
	return &Promise{state: PromisePending, schedule: schedule}
}

func (p *Promise) Kind() Kind { return KindPromise }

// State returns the current settlement state.
func (p *Promise) State() PromiseState { return p.state }

// Value returns the settled value, or Undefined while pending.
func (p *Promise) Value() Value {
	if p.state == PromisePending || p.value == nil {
		return Undefined
	}
	return p.value
}

// Resolve fulfills the promise and flushes reactions as microtasks.
// Settling twice is a no-op.
func (p *Promise) Resolve(v Value) {
	p.settle(PromiseFulfilled, v)
}

// Reject rejects the promise and flushes reactions as microtasks.
func (p *Promise) Reject(v Value) {
	p.settle(PromiseRejected, v)
}

func (p *Promise) settle(state PromiseState, v Value) {
	if p.state != PromisePending {
		return
	}
	if v == nil {
		v = Undefined
	}
	p.state = state
	p.value = v
	pending := p.reactions
	p.reactions = nil
	for _, r := range pending {
		p.queue(r)
	}
}

// Then registers handlers and returns the derived promise. Either handler
// may be nil; a missing handler passes the outcome through unchanged.
// On an already-settled promise the reaction still runs as a microtask.
func (p *Promise) Then(onFulfill, onReject *Func) *Promise {
	r := reaction{
		onFulfill: onFulfill,
		onReject:  onReject,
		next:      NewPromise(p.schedule),
	}
	if p.state == PromisePending {
		p.reactions = append(p.reactions, r)
	} else {
		p.queue(r)
	}
	return r.next
}

// Catch is Then with only a rejection handler.
func (p *Promise) Catch(onReject *Func) *Promise {
	return p.Then(nil, onReject)
}

func (p *Promise) queue(r reaction) {
	state, value := p.state, p.value
	p.schedule(func() {
		var handler *Func
		if state == PromiseFulfilled {
			handler = r.onFulfill
		} else {
			handler = r.onReject
		}
		if handler == nil {
			// Pass-through: fulfillment and rejection both propagate.
			if state == PromiseFulfilled {
				r.next.Resolve(value)
			} else {
				r.next.Reject(value)
			}
			return
		}
		out, err := handler.Invoke(Undefined, []Value{value})
		if err != nil {
			r.next.Reject(String(err.Error()))
			return
		}
		// A handler returning a promise chains the derived promise to it.
		if inner, ok := out.(*Promise); ok {
			inner.Then(
				NewFunc("", func(_ Value, args []Value) (Value, error) {
					r.next.Resolve(first(args))
					return Undefined, nil
				}),
				NewFunc("", func(_ Value, args []Value) (Value, error) {
					r.next.Reject(first(args))
					return Undefined, nil
				}),
			)
			return
		}
		r.next.Resolve(out)
	})
}

func first(args []Value) Value {
	if len(args) == 0 {
		return Undefined
	}
	return args[0]
}
