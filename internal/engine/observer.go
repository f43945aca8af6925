/*
Package engine
File: observer.go
Description:
    Purchase listeners. Listeners are called in subscription order after the
    engine lock is released, so they may read state back.
*/

package engine

import "sync"

// PurchaseEvent is delivered to listeners after every successful purchase.
type PurchaseEvent struct {
	UpgradeID int `json:"upgrade_id"`
	NewLevel  int `json:"new_level"`
}

// PurchaseListener reacts to a purchase. It runs on the purchasing goroutine
// and may read engine state, but must not block.
type PurchaseListener func(PurchaseEvent)

type subscription struct {
	id uint64
	fn PurchaseListener
}

// observers is a typed listener list, kept in subscription order.
type observers struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

func (o *observers) add(fn PurchaseListener) func() {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription{id: id, fn: fn})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.subs {
		if s.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

func (o *observers) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// notify calls every listener registered at the time of the call.
// Listeners may subscribe or unsubscribe from inside the callback.
func (o *observers) notify(ev PurchaseEvent) {
	o.mu.Lock()
	subs := make([]subscription, len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
