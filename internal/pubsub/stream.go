package pubsub

import "context"

// Stream - типизированное представление подписки на топик.
// Payload другого типа пропускается.
func Stream[T any](ctx context.Context, b *Bus, topic string) <-chan T {
	return Map(ctx, b.Subscribe(ctx, topic), func(v any) (T, bool) {
		t, ok := v.(T)
		return t, ok
	})
}

// Filter пропускает только элементы, для которых keep вернул true.
// Выходной канал закрывается, когда закрыт входной или отменен ctx.
// Отмена ctx должна освобождать и источник in.
func Filter[T any](ctx context.Context, in <-chan T, keep func(T) bool) <-chan T {
	return Map(ctx, in, func(v T) (T, bool) {
		return v, keep(v)
	})
}

// Map преобразует поток; элементы с ok == false отбрасываются.
func Map[In, Out any](ctx context.Context, in <-chan In, fn func(In) (Out, bool)) <-chan Out {
	out := make(chan Out)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				mapped, keep := fn(v)
				if !keep {
					continue
				}
				select {
				case out <- mapped:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
