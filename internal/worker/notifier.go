package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/rabbitmq/queue"
)

//go:generate mockgen -source=notifier.go -destination=../mocks/worker/mock.go -package=mocks

type domainQueue interface {
	Consume(out chan<- queue.DomainEventMessage, strategy retry.Strategy) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg queue.DomainEventMessage)
}

// Notifier consumes domain events from the web application and fans them
// out to a pool of workers driving the scheduler.
type Notifier struct {
	queue   domainQueue
	handler messageHandler
}

func NewNotifier(q domainQueue, h messageHandler) *Notifier {
	return &Notifier{
		queue:   q,
		handler: h,
	}
}

// Run blocks until ctx cancellation and every worker has finished its
// in-flight message. A failed consume leaves the workers draining the
// channel; the process keeps serving HTTP and cron.
func (n *Notifier) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	var wg sync.WaitGroup
	msgChan := make(chan queue.DomainEventMessage, workerCount*10)

	go func() {
		if err := n.queue.Consume(msgChan, strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume messages")
		}
	}()

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Printf("worker-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("worker-%d shutting down", id)
					return
				case msg, ok := <-msgChan:
					if !ok {
						zlog.Logger.Printf("worker-%d channel closed, shutting down", id)
						return
					}

					n.handler.HandleMessage(ctx, msg)
				}
			}
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
	zlog.Logger.Print("domain event consumer stopped")
}
