package models

import (
	"opevent/pkg/platform/record"
)

// Kind names a record kind, such as "CourseEnrollment". It doubles as the
// event sender, so the event type is "operation_event.<lowercase kind>".
type Kind string

// EventKind implements opevent.Kind.
func (k Kind) EventKind() string { return string(k) }

// Record kinds with a field whitelist.
const (
	KindCourseOverview              Kind = "CourseOverview"
	KindCourseAccessRole            Kind = "CourseAccessRole"
	KindUser                        Kind = "User"
	KindUserProfile                 Kind = "UserProfile"
	KindCourseEnrollment            Kind = "CourseEnrollment"
	KindBlockCompletion             Kind = "BlockCompletion"
	KindProctoredExamStudentAttempt Kind = "ProctoredExamStudentAttempt"
	KindSubmission                  Kind = "Submission"
	KindScore                       Kind = "Score"
	KindEnterpriseCustomer          Kind = "EnterpriseCustomer"
	KindEnterpriseCustomerUser      Kind = "EnterpriseCustomerUser"
	KindEnterpriseCourseEnrollment  Kind = "EnterpriseCourseEnrollment"
	KindSite                        Kind = "Site"
)

// Senders of occurrences that are not backed by a single record.
const (
	SenderForumPost       Kind = "ForumPost"
	SenderCourseGrade     Kind = "CourseGrade"
	SenderSubsectionGrade Kind = "SubsectionGrade"
)

// Signal names a trigger.
type Signal string

const (
	SignalPostSave   Signal = "post_save"
	SignalPostDelete Signal = "post_delete"

	SignalCommentCreated Signal = "comment_created"
	SignalCommentEdited  Signal = "comment_edited"
	SignalCommentVoted   Signal = "comment_voted"
	SignalCommentDeleted Signal = "comment_deleted"
	SignalThreadCreated  Signal = "thread_created"
	SignalThreadEdited   Signal = "thread_edited"
	SignalThreadVoted    Signal = "thread_voted"
	SignalThreadDeleted  Signal = "thread_deleted"

	SignalCourseGradeChanged     Signal = "course_grade_changed"
	SignalSubsectionScoreChanged Signal = "subsection_score_changed"
)

// ForumSignals lists the forum post triggers.
var ForumSignals = []Signal{
	SignalCommentCreated, SignalCommentEdited, SignalCommentVoted, SignalCommentDeleted,
	SignalThreadCreated, SignalThreadEdited, SignalThreadVoted, SignalThreadDeleted,
}

// IsForum reports whether s is a forum post trigger.
func (s Signal) IsForum() bool {
	for _, f := range ForumSignals {
		if s == f {
			return true
		}
	}
	return false
}

// Notification is one trigger occurrence handed to the registry.
type Notification struct {
	Signal Signal
	// Kind is the record kind for model triggers; empty otherwise.
	Kind Kind
	// Record is the changed record for model triggers.
	Record record.Record
	// Created is the save's creation flag; nil when the trigger has none.
	Created *bool
	// Payload carries the occurrence data of non-model triggers: a forum
	// post map, *CourseGrade or *SubsectionGrade.
	Payload any
}

// Grader is one grader of a course grading policy.
type Grader struct {
	Type     string
	MinCount int
	Weight   float64
}

// CourseGrade is a computed course grade.
type CourseGrade struct {
	UserID      any
	CourseID    string
	Percent     float64
	LetterGrade string
	Passed      bool
	Attempted   bool
	Graders     []Grader
	// Subgrades maps a grader type to the percent scored on it.
	Subgrades map[string]float64
}

// SubsectionGrade is a recomputed subsection score.
type SubsectionGrade struct {
	UserID         any
	CourseID       string
	UsageKey       string
	EarnedAll      float64
	PossibleAll    float64
	EarnedGraded   float64
	PossibleGraded float64
}

// Block is a node of a course structure.
type Block struct {
	UsageKey string
	Type     string
}

// BlockTypeSequential marks subsections.
const BlockTypeSequential = "sequential"

// SubsectionStatus is a learner's progress through one subsection.
type SubsectionStatus struct {
	Complete bool
	// Due is the rendered due date, empty when there is none.
	Due string
}
