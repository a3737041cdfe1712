package activity

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/models"
	"github.com/dhima/inventory-activity/platform/events"
)

// ErrPublishQueueFull is reported when a recorded event is dropped from the event stream
// because the publish queue has no room, or the service is already closed.
var ErrPublishQueueFull = errors.New("publish queue full")

type publishJob struct {
	input RecordInput
	event models.ActivityEvent
}

// enqueuePublish hands a stored event to the publish worker without waiting.
func (s *Service) enqueuePublish(in RecordInput, event *models.ActivityEvent) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if !s.closed {
		select {
		case s.publishQueue <- publishJob{input: in, event: *event}:
			return
		default:
		}
	}
	publishDrops.Inc()
	s.fail(StagePublish, in, ErrPublishQueueFull)
}

// publishWorker drains the queue until Close. Each publish gets its own record timeout.
func (s *Service) publishWorker() {
	defer s.publishWG.Done()

	for job := range s.publishQueue {
		ctx, cancel := context.WithTimeout(context.Background(), s.recordTimeout)
		err := isolate(func() error { return s.publish(ctx, &job.event) })
		cancel()
		if err != nil {
			publishFailures.Inc()
			s.fail(StagePublish, job.input, err)
		}
	}
}

func (s *Service) publish(ctx context.Context, event *models.ActivityEvent) error {
	msg := events.ActivityRecorded{
		Type:        events.TypeActivityRecorded,
		ID:          event.ID,
		ActorID:     event.ActorID,
		Action:      event.Action,
		Description: event.Description,
		IPAddress:   event.IPAddress,
		CreatedAt:   event.CreatedAt,
	}
	return s.publisher.Publish(ctx, strconv.FormatInt(event.ID, 10), msg)
}

// Close stops accepting events for publishing and waits until the queued ones have
// been handed to the publisher. Recording keeps working after Close; only the event
// stream is cut off. Close is safe to call more than once.
func (s *Service) Close() error {
	s.closeMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.publishQueue)
	}
	s.closeMu.Unlock()

	s.publishWG.Wait()
	s.logger.Debug("activity publish queue drained", zap.Int("buffer", cap(s.publishQueue)))
	return nil
}
