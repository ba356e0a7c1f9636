package service

import (
	"context"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/opevent"
)

// Emitter writes events. *opevent.Emitter satisfies it.
type Emitter interface {
	Emit(ctx context.Context, sender any, message any, opts ...opevent.EmitOption) error
}

// CourseStructure navigates the block tree of a course.
type CourseStructure interface {
	// Parent returns the parent of the block at usageKey.
	Parent(ctx context.Context, usageKey string) (models.Block, error)
}

// SubsectionProgress reports a learner's progress through a subsection.
type SubsectionProgress interface {
	Subsection(ctx context.Context, userID any, usageKey string) (models.SubsectionStatus, error)
}

// StudentResolver maps anonymous student ids to user ids.
type StudentResolver interface {
	UserID(ctx context.Context, anonymousID string) (any, error)
}
