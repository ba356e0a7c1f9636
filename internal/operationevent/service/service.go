// Package service turns trigger notifications into operation events.
//
// Each handler builds the event message for one family of triggers (model
// saves and deletes, forum posts, grades, completions, submissions) and hands
// it to the emitter. Emission failures are logged and never returned, so a
// broken sink cannot fail the change that triggered the event. Only
// configuration errors, such as a kind without a field whitelist, surface.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"opevent/internal/operationevent/fields"
	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/flatten"
	"opevent/pkg/platform/opevent"
	"opevent/pkg/platform/record"
	"opevent/pkg/platform/sentinel"
	"opevent/pkg/requestcontext"
)

const maxStructureDepth = 32

var errNoSubsection = errors.New("no enclosing subsection")

// Service builds and emits operation events.
type Service struct {
	emitter   Emitter
	whitelist *fields.Whitelist
	structure CourseStructure
	progress  SubsectionProgress
	students  StudentResolver
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCourseStructure sets the course structure used to find the subsection
// of a completed block.
func WithCourseStructure(cs CourseStructure) Option {
	return func(s *Service) {
		s.structure = cs
	}
}

// WithSubsectionProgress sets the progress lookup for block completions.
func WithSubsectionProgress(p SubsectionProgress) Option {
	return func(s *Service) {
		s.progress = p
	}
}

// WithStudentResolver sets the anonymous id resolver for submissions.
func WithStudentResolver(r StudentResolver) Option {
	return func(s *Service) {
		s.students = r
	}
}

// New creates a Service.
func New(emitter Emitter, whitelist *fields.Whitelist, opts ...Option) *Service {
	s := &Service{
		emitter:   emitter,
		whitelist: whitelist,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register wires every handler into r. Whitelisted kinds without a dedicated
// handler get the generic model handler on save.
func (s *Service) Register(r *Registry) {
	r.Register(models.SignalPostSave, models.KindBlockCompletion, s.BlockCompletion)
	r.Register(models.SignalPostSave, models.KindSubmission, s.Submission)
	for _, kind := range s.whitelist.Kinds() {
		if !r.Handles(models.SignalPostSave, kind) {
			r.Register(models.SignalPostSave, kind, s.ModelEvent)
		}
	}
	r.Register(models.SignalPostDelete, models.KindCourseAccessRole, s.ModelEvent)
	r.Register(models.SignalPostDelete, models.KindProctoredExamStudentAttempt, s.ModelEvent)

	for _, signal := range models.ForumSignals {
		r.Register(signal, "", s.ForumPost)
	}
	r.Register(models.SignalCourseGradeChanged, "", s.CourseGrade)
	r.Register(models.SignalSubsectionScoreChanged, "", s.SubsectionGrade)
}

// ModelEvent emits the whitelisted fields of a saved or deleted record.
func (s *Service) ModelEvent(ctx context.Context, n models.Notification) error {
	message, err := s.flatten(n)
	if err != nil {
		return err
	}
	opts := []opevent.EmitOption{opevent.WithDeleted(n.Signal == models.SignalPostDelete)}
	if n.Created != nil {
		opts = append(opts, opevent.WithCreated(*n.Created))
	}
	s.emit(ctx, n.Kind, message, opts...)
	return nil
}

// ForumPost emits a forum thread or comment change.
func (s *Service) ForumPost(ctx context.Context, n models.Notification) error {
	if !n.Signal.IsForum() {
		return fmt.Errorf("%s is not a forum signal: %w", n.Signal, sentinel.ErrInvalidInput)
	}
	if n.Payload == nil {
		return fmt.Errorf("%s without post: %w", n.Signal, sentinel.ErrInvalidInput)
	}
	created := n.Signal == models.SignalCommentCreated || n.Signal == models.SignalThreadCreated
	deleted := n.Signal == models.SignalCommentDeleted || n.Signal == models.SignalThreadDeleted
	s.emit(ctx, models.SenderForumPost, n.Payload, opevent.WithCreated(created), opevent.WithDeleted(deleted))
	return nil
}

// CourseGrade emits a computed course grade with its per-grader summary.
func (s *Service) CourseGrade(ctx context.Context, n models.Notification) error {
	g, ok := n.Payload.(*models.CourseGrade)
	if !ok || g == nil {
		return fmt.Errorf("%s without course grade: %w", n.Signal, sentinel.ErrInvalidInput)
	}

	summary := flatten.NewMap()
	if g.Attempted {
		for _, grader := range g.Graders {
			entry := flatten.NewMap()
			entry.Set("min_count", grader.MinCount)
			entry.Set("weight", grader.Weight)
			if percent, ok := g.Subgrades[grader.Type]; ok {
				entry.Set("percent", percent)
				entry.Set("weighted_percent", grader.Weight*percent)
			}
			summary.Set(grader.Type, entry)
		}
	}

	message := flatten.NewMap()
	message.Set("user_id", g.UserID)
	message.Set("course_id", g.CourseID)
	message.Set("percent_grade", g.Percent)
	message.Set("letter_grade", g.LetterGrade)
	message.Set("passed", g.Passed)
	message.Set("grade_summary", summary)
	s.emit(ctx, models.SenderCourseGrade, message)
	return nil
}

// SubsectionGrade emits a recomputed subsection score.
func (s *Service) SubsectionGrade(ctx context.Context, n models.Notification) error {
	g, ok := n.Payload.(*models.SubsectionGrade)
	if !ok || g == nil {
		return fmt.Errorf("%s without subsection grade: %w", n.Signal, sentinel.ErrInvalidInput)
	}

	message := flatten.NewMap()
	message.Set("user_id", g.UserID)
	message.Set("course_id", g.CourseID)
	message.Set("usage_key", g.UsageKey)
	message.Set("earned_all", g.EarnedAll)
	message.Set("possible_all", g.PossibleAll)
	message.Set("earned_graded", g.EarnedGraded)
	message.Set("possible_graded", g.PossibleGraded)
	s.emit(ctx, models.SenderSubsectionGrade, message)
	return nil
}

// BlockCompletion emits a fully completed block together with the state of
// its enclosing subsection. Partial completions are ignored.
func (s *Service) BlockCompletion(ctx context.Context, n models.Notification) error {
	message, err := s.flatten(n)
	if err != nil {
		return err
	}
	completion, _ := record.Resolve(n.Record, "completion")
	if toFloat(completion) < 1.0 {
		return nil
	}
	if s.structure == nil || s.progress == nil {
		s.logger.WarnContext(ctx, "block completion skipped - course structure not configured",
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}

	blockKey, _ := message.Get("block_key")
	subsection, err := s.subsectionOf(ctx, fmt.Sprint(blockKey))
	if err != nil {
		s.logger.WarnContext(ctx, "block completion skipped - subsection lookup failed",
			"block_key", blockKey,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil
	}

	userID, _ := message.Get("user_id")
	status, err := s.progress.Subsection(ctx, userID, subsection.UsageKey)
	if err != nil {
		s.logger.WarnContext(ctx, "block completion skipped - subsection progress lookup failed",
			"subsection_usage_key", subsection.UsageKey,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil
	}

	message.Set("subsection_usage_key", subsection.UsageKey)
	message.Set("subsection_complete", status.Complete)
	message.Set("due", status.Due)
	s.emit(ctx, models.KindBlockCompletion, message)
	return nil
}

// Submission emits a saved submission with the user id behind its anonymous
// student id.
func (s *Service) Submission(ctx context.Context, n models.Notification) error {
	message, err := s.flatten(n)
	if err != nil {
		return err
	}

	var userID any
	if anonymousID := studentID(n.Record); anonymousID != "" && s.students != nil {
		id, err := s.students.UserID(ctx, anonymousID)
		if err != nil {
			s.logger.WarnContext(ctx, "submission user lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		} else {
			userID = id
		}
	}
	message.Set("user_id", userID)

	var opts []opevent.EmitOption
	if n.Created != nil {
		opts = append(opts, opevent.WithCreated(*n.Created))
	}
	s.emit(ctx, models.KindSubmission, message, opts...)
	return nil
}

func (s *Service) flatten(n models.Notification) (*flatten.Map, error) {
	paths, err := s.whitelist.For(n.Kind)
	if err != nil {
		return nil, err
	}
	if record.IsNil(n.Record) {
		return nil, fmt.Errorf("%s notification for %s without record: %w", n.Signal, n.Kind, sentinel.ErrInvalidInput)
	}
	return flatten.Flatten(n.Record, paths), nil
}

func (s *Service) emit(ctx context.Context, sender models.Kind, message any, opts ...opevent.EmitOption) {
	if err := s.emitter.Emit(ctx, sender, message, opts...); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit operation event",
			"sender", string(sender),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// subsectionOf walks up from usageKey to the nearest sequential block.
func (s *Service) subsectionOf(ctx context.Context, usageKey string) (models.Block, error) {
	key := usageKey
	for range maxStructureDepth {
		parent, err := s.structure.Parent(ctx, key)
		if err != nil {
			return models.Block{}, fmt.Errorf("parent of %s: %w", key, err)
		}
		if parent.Type == models.BlockTypeSequential {
			return parent, nil
		}
		if parent.UsageKey == "" || parent.UsageKey == key {
			break
		}
		key = parent.UsageKey
	}
	return models.Block{}, fmt.Errorf("%s: %w", usageKey, errNoSubsection)
}

func studentID(r record.Record) string {
	item, _ := record.Resolve(r, "student_item")
	related, ok := record.As(item)
	if !ok {
		return ""
	}
	id, _ := related.Attr("student_id")
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case uint32:
		return float64(n)
	}
	return math.Inf(-1)
}
