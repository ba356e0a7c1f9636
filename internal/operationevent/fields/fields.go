// Package fields holds the per-kind field whitelists that decide which
// attributes of a record end up in its event.
package fields

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/sentinel"
)

// Whitelist maps a record kind to its ordered field paths. It is read-only
// after startup.
type Whitelist struct {
	paths map[models.Kind][]string
}

// Default returns the built-in whitelist.
func Default() *Whitelist {
	return &Whitelist{paths: map[models.Kind][]string{
		models.KindCourseOverview: {
			"created", "modified", "id", "display_name", "invitation_only",
			"course_image_url", "effort", "visible_to_staff_only", "start", "end",
			"enrollment_start", "enrollment_end", "certificate_available_date", "pacing",
		},
		models.KindCourseAccessRole: {"id", "user_id", "course_id", "org", "role"},
		models.KindUser: {
			"id", "username", "email", "is_active", "is_staff", "is_superuser",
			"last_login", "date_joined",
		},
		models.KindUserProfile:      {"id", "user_id", "name", "year_of_birth"},
		models.KindCourseEnrollment: {"created", "id", "user_id", "course_id", "mode", "is_active"},
		models.KindBlockCompletion:  {"user_id", "context_key", "block_key"},
		models.KindProctoredExamStudentAttempt: {
			"created", "modified", "id", "user_id", "status",
			"proctored_exam__course_id", "proctored_exam__content_id", "proctored_exam__is_active",
		},
		models.KindSubmission: {
			"id", "uuid", "student_item__student_id", "student_item__course_id",
			"student_item__item_id", "submitted_at", "created_at", "status",
		},
		models.KindScore: {
			"id", "submission__uuid", "points_earned", "points_possible", "created_at", "reset",
		},
		models.KindEnterpriseCustomer: {"created", "modified", "uuid", "name", "slug", "active", "site_id"},
		models.KindEnterpriseCustomerUser: {
			"created", "modified", "id", "enterprise_customer_id", "user_id", "active", "linked",
		},
		models.KindEnterpriseCourseEnrollment: {
			"created", "modified", "enterprise_customer_user_id", "course_id",
			"saved_for_later", "unenrolled", "unenrolled_at",
		},
		models.KindSite: {"id", "name", "domain"},
	}}
}

// Load returns the default whitelist with the kinds listed in the YAML file at
// path replaced or added. The file maps kind names to field path lists:
//
//	CourseEnrollment: [id, user_id, course_id, mode]
//	Certificate: [id, user_id, status]
func Load(path string) (*Whitelist, error) {
	w := Default()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field whitelist: %w", err)
	}
	if err := w.merge(data); err != nil {
		return nil, fmt.Errorf("parse field whitelist %s: %w", path, err)
	}
	return w, nil
}

func (w *Whitelist) merge(data []byte) error {
	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return err
	}
	for kind, paths := range overrides {
		if kind == "" {
			return fmt.Errorf("empty kind name: %w", sentinel.ErrInvalidInput)
		}
		if len(paths) == 0 {
			return fmt.Errorf("kind %s has no fields: %w", kind, sentinel.ErrInvalidInput)
		}
		w.paths[models.Kind(kind)] = slices.Clone(paths)
	}
	return nil
}

// For returns the field paths of kind. A kind without a whitelist is a
// configuration error and wraps sentinel.ErrUnknownKind.
func (w *Whitelist) For(kind models.Kind) ([]string, error) {
	paths, ok := w.paths[kind]
	if !ok {
		return nil, fmt.Errorf("no field whitelist for %q: %w", kind, sentinel.ErrUnknownKind)
	}
	return slices.Clone(paths), nil
}

// Has reports whether kind has a whitelist.
func (w *Whitelist) Has(kind models.Kind) bool {
	_, ok := w.paths[kind]
	return ok
}

// Kinds returns every configured kind, sorted.
func (w *Whitelist) Kinds() []models.Kind {
	out := make([]models.Kind, 0, len(w.paths))
	for k := range w.paths {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
