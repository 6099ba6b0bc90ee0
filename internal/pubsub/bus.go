// Package pubsub - внутрипроцессная шина событий с подписками по топикам.
package pubsub

import (
	"context"
	"sync"

	"github.com/UkralStul/social-feed/internal/metrics"
	"github.com/google/uuid"
)

// Bus рассылает события всем текущим подписчикам топика.
type Bus struct {
	mu sync.RWMutex
	//          map[topic] map[subscriberID] subscription
	subs map[string]map[string]*subscription
}

// New - конструктор шины.
func New() *Bus {
	return &Bus{
		subs: make(map[string]map[string]*subscription),
	}
}

// Publish кладет payload в очередь каждого подписчика топика и возвращает их число.
// Без подписчиков событие отбрасывается. Publish не блокируется на медленных подписчиках.
func (b *Bus) Publish(topic string, payload any) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topicSubs := b.subs[topic]
	metrics.EventsPublishedTotal.WithLabelValues(topic).Inc()
	if len(topicSubs) == 0 {
		metrics.EventsDroppedTotal.WithLabelValues(topic).Inc()
		return 0
	}
	for _, sub := range topicSubs {
		sub.enqueue(payload)
	}
	return len(topicSubs)
}

// Subscribe регистрирует подписчика на топик.
// Канал закрывается после отмены ctx, подписчик при этом снимается с шины.
func (b *Bus) Subscribe(ctx context.Context, topic string) <-chan any {
	sub := newSubscription(ctx)
	id := uuid.NewString()

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]*subscription)
	}
	b.subs[topic][id] = sub
	b.mu.Unlock()
	metrics.ActiveSubscriptions.WithLabelValues(topic).Inc()

	// Горутина для очистки при отключении клиента
	go func() {
		<-sub.ctx.Done()
		b.unsubscribe(topic, id)
		sub.wake()
	}()

	return sub.ch
}

// NumSubscribers - число активных подписчиков топика.
func (b *Bus) NumSubscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) unsubscribe(topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	topicSubs, ok := b.subs[topic]
	if !ok {
		return
	}
	if _, ok := topicSubs[id]; !ok {
		return
	}
	delete(topicSubs, id)
	if len(topicSubs) == 0 {
		delete(b.subs, topic)
	}
	metrics.ActiveSubscriptions.WithLabelValues(topic).Dec()
}

// subscription - неограниченная FIFO-очередь подписчика, которую разбирает своя горутина.
type subscription struct {
	ctx   context.Context
	ch    chan any
	mu    sync.Mutex
	cond  *sync.Cond
	queue []any
}

func newSubscription(ctx context.Context) *subscription {
	sub := &subscription{
		ctx: ctx,
		ch:  make(chan any),
	}
	sub.cond = sync.NewCond(&sub.mu)
	go sub.processMessages()
	return sub
}

func (sub *subscription) enqueue(payload any) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, payload)
	sub.mu.Unlock()
	sub.cond.Signal()
}

// wake будит горутину после отмены контекста.
func (sub *subscription) wake() {
	sub.mu.Lock()
	sub.cond.Broadcast()
	sub.mu.Unlock()
}

func (sub *subscription) processMessages() {
	defer close(sub.ch)
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && sub.ctx.Err() == nil {
			sub.cond.Wait()
		}
		if sub.ctx.Err() != nil {
			sub.queue = nil
			sub.mu.Unlock()
			return
		}
		msg := sub.queue[0]
		sub.queue[0] = nil
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case <-sub.ctx.Done():
			return
		case sub.ch <- msg:
		}
	}
}
