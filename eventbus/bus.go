// Package eventbus fans events out to subscribed handlers. The orchestration
// layer publishes step lifecycle events on it, hosts subscribe to observe
// progress without coupling to the execution loop.
package eventbus

import (
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// Event you can subscribe to
type Event struct {
	Name string
	At   time.Time
	Args interface{}
}

// An EventHandler deals with handling events
type EventHandler interface {
	On(Event) error
}

// NopHandler drops events on the floor without taking action
var NopHandler = Handler(func(Event) error { return nil })

// Handler wraps a function that will be called when an event is received.
// Errors produced by the function are passed to the bus error handler.
func Handler(on func(Event) error) EventHandler {
	return &defaultHandler{on: on}
}

type defaultHandler struct {
	on func(Event) error
}

func (h *defaultHandler) On(event Event) error {
	return h.on(event)
}

// EventPredicate for filtering events
type EventPredicate func(Event) bool

// Filtered composes an event handler with a filter, only matching events are
// passed on to next
func Filtered(matches EventPredicate, next EventHandler) EventHandler {
	return &filteredHandler{matches: matches, next: next}
}

type filteredHandler struct {
	next    EventHandler
	matches EventPredicate
}

func (f *filteredHandler) On(evt Event) error {
	if !f.matches(evt) {
		return nil
	}
	return f.next.On(evt)
}

// EventBus does fanout to registered handlers
type EventBus interface {
	Close() error
	Publish(Event)
	Subscribe(...EventHandler)
	Unsubscribe(...EventHandler)
	Len() int
}

// NopBus drops published events on the floor
var NopBus EventBus = &nopBus{}

type nopBus struct{}

func (n *nopBus) Close() error                { return nil }
func (n *nopBus) Publish(Event)               {}
func (n *nopBus) Subscribe(...EventHandler)   {}
func (n *nopBus) Unsubscribe(...EventHandler) {}
func (n *nopBus) Len() int                    { return 0 }

// New event bus with the specified logger
func New(log logrus.FieldLogger) EventBus {
	return NewWithTimeout(log, 100*time.Millisecond)
}

// NewWithTimeout creates a new event bus with a timeout after which delivery
// to a slow handler is abandoned
func NewWithTimeout(log logrus.FieldLogger, timeout time.Duration) EventBus {
	if log == nil {
		log = logrus.New().WithFields(nil)
	}
	e := &defaultEventBus{
		closing:      make(chan chan struct{}),
		channel:      make(chan Event, 100),
		log:          log,
		errorHandler: func(err error) { log.Errorln(err) },
	}
	go e.dispatcherLoop(timeout)
	return e
}

type defaultEventBus struct {
	lock sync.RWMutex

	channel      chan Event
	handlers     []*subscription
	closing      chan chan struct{}
	log          logrus.FieldLogger
	errorHandler func(error)
}

func (e *defaultEventBus) dispatcherLoop(timeout time.Duration) {
	inFlight := new(sync.WaitGroup)
	for {
		select {
		case evt := <-e.channel:
			e.log.Debugf("dispatching event %+v", evt)
			timer := metrics.GetOrRegisterTimer("events.notify", metrics.DefaultRegistry)
			go timer.Time(func() {
				inFlight.Add(1)
				e.lock.RLock()

				if len(e.handlers) == 0 {
					e.log.Debugf("there are no active listeners, skipping broadcast")
					e.lock.RUnlock()
					inFlight.Done()
					return
				}

				var wg sync.WaitGroup
				wg.Add(len(e.handlers))
				for _, handler := range e.handlers {
					go func(listener chan<- Event) {
						timer := time.NewTimer(timeout)
						select {
						case listener <- evt:
							timer.Stop()
						case <-timer.C:
							e.log.Warnf("failed to send event %+v to listener within %v", evt, timeout)
						}
						wg.Done()
					}(handler.listener)
				}

				wg.Wait()
				e.lock.RUnlock()
				inFlight.Done()
			})
		case closed := <-e.closing:
			inFlight.Wait()
			close(e.channel)
			e.lock.Lock()
			for _, h := range e.handlers {
				h.Stop()
			}
			e.handlers = nil
			e.lock.Unlock()

			closed <- struct{}{}
			e.log.Debug("event bus closed")
			return
		}
	}
}

// Publish an event to all interested subscribers
func (e *defaultEventBus) Publish(evt Event) {
	e.channel <- evt
}

// Subscribe to events published in the bus
func (e *defaultEventBus) Subscribe(handlers ...EventHandler) {
	e.lock.Lock()
	e.log.Debugf("adding %d listeners", len(handlers))
	for _, handler := range handlers {
		sub := &subscription{handler: handler, once: new(sync.Once), onError: e.errorHandler}
		e.handlers = append(e.handlers, sub)
		sub.Listen()
	}
	e.lock.Unlock()
}

func (e *defaultEventBus) Unsubscribe(handlers ...EventHandler) {
	e.lock.Lock()
	if len(e.handlers) == 0 {
		e.lock.Unlock()
		return
	}
	e.log.Debugf("removing %d listeners", len(handlers))
	for _, h := range handlers {
		for i, handler := range e.handlers {
			if handler.Matches(h) {
				handler.Stop()
				// the handler will still process messages in flight
				e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
				break
			}
		}
	}
	e.lock.Unlock()
}

func (e *defaultEventBus) Close() error {
	ch := make(chan struct{})
	e.closing <- ch
	<-ch
	close(e.closing)
	return nil
}

func (e *defaultEventBus) Len() int {
	e.lock.RLock()
	sz := len(e.handlers)
	e.lock.RUnlock()
	return sz
}

type subscription struct {
	listener chan Event
	handler  EventHandler
	once     *sync.Once
	onError  func(error)
}

func (s *subscription) Listen() {
	s.once.Do(func() {
		s.listener = make(chan Event)
		go func() {
			for evt := range s.listener {
				if err := s.handler.On(evt); err != nil {
					s.onError(err)
				}
			}
		}()
	})
}

func (s *subscription) Stop() {
	close(s.listener)
	s.listener = nil
	s.once = new(sync.Once)
}

func (s *subscription) Matches(handler EventHandler) bool {
	return s.handler == handler
}
