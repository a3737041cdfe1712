package activity

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/models"
)

const (
	maxActionLength      = 64
	maxDescriptionLength = 1000
)

// Record failure stages.
const (
	StageVerify  = "verify"
	StageAppend  = "append"
	StagePublish = "publish"
)

// RecordInput describes one attributable action. A nil ActorID records a system event.
type RecordInput struct {
	ActorID     *int64
	Action      string
	Description string
	IPAddress   string
}

// RecordResult reports whether the event was durably stored.
type RecordResult struct {
	Event    *models.ActivityEvent
	Recorded bool
}

// RecordFailure is a write-path failure that was kept away from the caller.
type RecordFailure struct {
	Stage string
	Input RecordInput
	Err   error
	At    time.Time
}

func (f RecordFailure) Error() string {
	return fmt.Sprintf("record %s failed at %s: %v", f.Input.Action, f.Stage, f.Err)
}

func (f RecordFailure) Unwrap() error {
	return f.Err
}

// Record appends one activity event. Malformed input is rejected with a ValidationError;
// every other failure, including a panic in the store, is reported on the failure
// channel and surfaces only as Recorded == false.
//
// The write is detached from ctx cancellation and bounded by the record timeout.
// Publishing to the event stream happens afterwards on the publish worker, so a slow
// or unreachable broker never delays the caller.
func (s *Service) Record(ctx context.Context, in RecordInput) (RecordResult, error) {
	event, err := s.validateRecord(in)
	if err != nil {
		recordTotal.WithLabelValues(outcomeRejected).Inc()
		s.logger.Warn("activity record rejected",
			zap.String("action", in.Action),
			zap.Error(err))
		return RecordResult{}, err
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()

	if in.ActorID != nil && s.users != nil {
		var known bool
		if err := isolate(func() error {
			var lookupErr error
			known, lookupErr = s.actorExists(writeCtx, *in.ActorID)
			return lookupErr
		}); err != nil {
			s.fail(StageVerify, in, err)
			return RecordResult{}, nil
		}
		if !known {
			recordTotal.WithLabelValues(outcomeRejected).Inc()
			return RecordResult{}, NewValidationError("actor %d does not exist", *in.ActorID)
		}
	}

	if err := isolate(func() error { return s.store.AppendActivity(writeCtx, event) }); err != nil {
		s.fail(StageAppend, in, &StorageError{Op: "append activity", Err: err})
		return RecordResult{}, nil
	}

	recordTotal.WithLabelValues(outcomeRecorded).Inc()
	s.logger.Debug("activity recorded",
		zap.Int64("id", event.ID),
		zap.String("action", event.Action),
		zap.Bool("registered_action", s.taxonomy.Contains(event.Action)))

	s.enqueuePublish(in, event)

	return RecordResult{Event: event, Recorded: true}, nil
}

func (s *Service) validateRecord(in RecordInput) (*models.ActivityEvent, error) {
	action := strings.TrimSpace(in.Action)
	if action == "" {
		return nil, NewValidationError("action is required")
	}
	if len(action) > maxActionLength {
		return nil, NewValidationError("action must be at most %d characters", maxActionLength)
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, NewValidationError("description is required")
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, NewValidationError("description must be at most %d characters", maxDescriptionLength)
	}

	if in.ActorID != nil && *in.ActorID < 1 {
		return nil, NewValidationError("actor id must be positive")
	}

	event := &models.ActivityEvent{
		Action:      action,
		Description: description,
	}
	if in.ActorID != nil {
		id := *in.ActorID
		event.ActorID = &id
	}
	if ip := strings.TrimSpace(in.IPAddress); ip != "" {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return nil, NewValidationError("invalid ip address %q", in.IPAddress)
		}
		normalized := parsed.String()
		event.IPAddress = &normalized
	}
	return event, nil
}

func (s *Service) actorExists(ctx context.Context, id int64) (bool, error) {
	found, err := s.users.LookupUsers(ctx, []int64{id})
	if err != nil {
		return false, &StorageError{Op: "lookup actor", Err: err}
	}
	_, ok := found[id]
	return ok, nil
}

// fail reports a suppressed failure through the log, the metrics and the failure channel.
func (s *Service) fail(stage string, in RecordInput, err error) {
	if stage != StagePublish {
		recordTotal.WithLabelValues(outcomeFailed).Inc()
	}

	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("action", in.Action),
		zap.Error(err),
	}
	if in.ActorID != nil {
		fields = append(fields, zap.Int64("actor_id", *in.ActorID))
	}
	s.logger.Error("activity record failed", fields...)

	failure := RecordFailure{Stage: stage, Input: in, Err: err, At: s.clock.Now()}
	select {
	case s.failures <- failure:
	default:
		failureDrops.Inc()
	}
}

// isolate runs fn and converts a panic into an error.
func isolate(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
