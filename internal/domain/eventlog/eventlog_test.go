package eventlog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ideastack/ember/internal/adapters/repository"
	"github.com/ideastack/ember/internal/domain/eventlog"
	"github.com/ideastack/ember/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var errStore = errors.New("store unavailable")

type failingStore struct{}

func (failingStore) Append(context.Context, model.Event) error { return errStore }
func (failingStore) ByIdea(context.Context, string) ([]model.Event, error) {
	return nil, errStore
}
func (failingStore) ByAuthor(context.Context, string) ([]model.Event, error) {
	return nil, errStore
}

func TestLog(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a log over a healthy store", t, func() {
		store := repository.NewMemStore()
		log := eventlog.New(store, eventlog.WithClock(func() time.Time { return fixed }))

		Convey("When an event arrives without id or timestamp", func() {
			log.Record(ctx, model.Event{Type: model.EventSave, IdeaID: "i1", AuthorID: "a1"})
			evs := log.EventsForIdea(ctx, "i1")

			Convey("Then both are filled before the append", func() {
				So(evs, ShouldHaveLength, 1)
				So(evs[0].EventID, ShouldNotBeEmpty)
				So(evs[0].TS.Equal(fixed), ShouldBeTrue)
			})
		})

		Convey("When several events land for the same idea", func() {
			for i, ts := range []time.Time{fixed, fixed.Add(time.Minute), fixed.Add(2 * time.Minute)} {
				log.Record(ctx, model.Event{
					EventID: string(rune('a' + i)), Type: model.EventSave,
					IdeaID: "ordered", AuthorID: "a1", TS: ts,
				})
			}
			evs := log.EventsForIdea(ctx, "ordered")

			Convey("Then read-back preserves append order", func() {
				So(evs, ShouldHaveLength, 3)
				So(evs[0].EventID, ShouldEqual, "a")
				So(evs[1].EventID, ShouldEqual, "b")
				So(evs[2].EventID, ShouldEqual, "c")
			})
		})

		Convey("When events are attributed to an author", func() {
			log.Record(ctx, model.Event{EventID: "e1", Type: model.EventBuild, IdeaID: "i2", AuthorID: "author-x", TS: fixed})
			log.Record(ctx, model.Event{EventID: "e2", Type: model.EventCopy, IdeaID: "i3", AuthorID: "author-y", TS: fixed})

			Convey("Then the author read returns only their events", func() {
				evs := log.EventsForAuthor(ctx, "author-x")
				So(evs, ShouldHaveLength, 1)
				So(evs[0].EventID, ShouldEqual, "e1")
			})
		})
	})

	Convey("Given a log over a failing store", t, func() {
		log := eventlog.New(failingStore{})

		Convey("When an event is recorded", func() {
			Convey("Then the failure is swallowed", func() {
				So(func() {
					log.Record(ctx, model.Event{EventID: "doomed", Type: model.EventSave, IdeaID: "i1"})
				}, ShouldNotPanic)
			})
		})

		Convey("When histories are read", func() {
			Convey("Then reads degrade to empty instead of erroring", func() {
				So(log.EventsForIdea(ctx, "i1"), ShouldBeEmpty)
				So(log.EventsForAuthor(ctx, "a1"), ShouldBeEmpty)
			})
		})
	})
}
