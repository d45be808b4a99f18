package draftsync

import (
	"reflect"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/internal/queue"
)

// watcher queues the events it accepts until they are read from its channel.
type watcher struct {
	accepts func(events.Event) bool
	eventCh *queue.QueuedChannel[events.Event]
}

func newWatcher(accepts func(events.Event) bool) *watcher {
	return &watcher{
		accepts: accepts,
		eventCh: queue.NewQueuedChannel[events.Event](1, 1),
	}
}

// ofTypes accepts the events of the given types, or all events if no type is given.
func ofTypes(ofType ...events.Event) func(events.Event) bool {
	if len(ofType) == 0 {
		return func(events.Event) bool { return true }
	}

	types := make(map[reflect.Type]struct{}, len(ofType))

	for _, t := range ofType {
		types[reflect.TypeOf(t)] = struct{}{}
	}

	return func(event events.Event) bool {
		_, ok := types[reflect.TypeOf(event)]
		return ok
	}
}

// ofDraft accepts every event about the draft.
func ofDraft(id draft.ID) func(events.Event) bool {
	return func(event events.Event) bool {
		return event.DraftID() == id
	}
}

func (w *watcher) isWatching(event events.Event) bool {
	return w.accepts(event)
}

func (w *watcher) getChannel() <-chan events.Event {
	return w.eventCh.GetChannel()
}

func (w *watcher) send(event events.Event) bool {
	return w.eventCh.Enqueue(event)
}

func (w *watcher) close() {
	w.eventCh.CloseAndDiscardQueued()
}
