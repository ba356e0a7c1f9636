package handler

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/record"
	"opevent/pkg/platform/sentinel"
)

// decodeBatch reads {"notifications": [...]} into notifications for signal.
// The returned records reference v and must not outlive its parser.
func decodeBatch(signal models.Signal, v *fastjson.Value) ([]models.Notification, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("body must be an object: %w", sentinel.ErrInvalidInput)
	}
	items := v.GetArray("notifications")
	if len(items) == 0 {
		return nil, fmt.Errorf("notifications must be a non-empty array: %w", sentinel.ErrInvalidInput)
	}

	out := make([]models.Notification, 0, len(items))
	for i, item := range items {
		n, err := decodeNotification(signal, item)
		if err != nil {
			return nil, fmt.Errorf("notification %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeNotification(signal models.Signal, item *fastjson.Value) (models.Notification, error) {
	if item.Type() != fastjson.TypeObject {
		return models.Notification{}, fmt.Errorf("must be an object: %w", sentinel.ErrInvalidInput)
	}
	n := models.Notification{
		Signal: signal,
		Kind:   models.Kind(item.GetStringBytes("kind")),
	}

	if c := item.Get("created"); c != nil && c.Type() != fastjson.TypeNull {
		created, err := c.Bool()
		if err != nil {
			return models.Notification{}, fmt.Errorf("created: %v: %w", err, sentinel.ErrInvalidInput)
		}
		n.Created = &created
	}

	if rec := item.Get("record"); rec != nil && rec.Type() != fastjson.TypeNull {
		if rec.Type() != fastjson.TypeObject {
			return models.Notification{}, fmt.Errorf("record must be an object: %w", sentinel.ErrInvalidInput)
		}
		n.Record = record.FromJSON(rec)
	}

	payload := item.Get("payload")
	if payload == nil || payload.Type() == fastjson.TypeNull {
		return n, nil
	}
	if payload.Type() != fastjson.TypeObject {
		return models.Notification{}, fmt.Errorf("payload must be an object: %w", sentinel.ErrInvalidInput)
	}
	switch signal {
	case models.SignalCourseGradeChanged:
		n.Payload = decodeCourseGrade(payload)
	case models.SignalSubsectionScoreChanged:
		n.Payload = decodeSubsectionGrade(payload)
	default:
		// Raw bytes keep the sender's key order in the event message.
		n.Payload = json.RawMessage(payload.MarshalTo(nil))
	}
	return n, nil
}

func decodeCourseGrade(v *fastjson.Value) *models.CourseGrade {
	g := &models.CourseGrade{
		UserID:      decodeField(v, "user_id"),
		CourseID:    string(v.GetStringBytes("course_id")),
		Percent:     v.GetFloat64("percent"),
		LetterGrade: string(v.GetStringBytes("letter_grade")),
		Passed:      v.GetBool("passed"),
		Attempted:   v.GetBool("attempted"),
		Subgrades:   make(map[string]float64),
	}
	for _, grader := range v.GetArray("graders") {
		g.Graders = append(g.Graders, models.Grader{
			Type:     string(grader.GetStringBytes("type")),
			MinCount: grader.GetInt("min_count"),
			Weight:   grader.GetFloat64("weight"),
		})
	}
	if subgrades := v.GetObject("subgrades"); subgrades != nil {
		subgrades.Visit(func(key []byte, pct *fastjson.Value) {
			g.Subgrades[string(key)] = pct.GetFloat64()
		})
	}
	return g
}

func decodeSubsectionGrade(v *fastjson.Value) *models.SubsectionGrade {
	return &models.SubsectionGrade{
		UserID:         decodeField(v, "user_id"),
		CourseID:       string(v.GetStringBytes("course_id")),
		UsageKey:       string(v.GetStringBytes("usage_key")),
		EarnedAll:      v.GetFloat64("earned_all"),
		PossibleAll:    v.GetFloat64("possible_all"),
		EarnedGraded:   v.GetFloat64("earned_graded"),
		PossibleGraded: v.GetFloat64("possible_graded"),
	}
}

func decodeField(v *fastjson.Value, key string) any {
	field := v.Get(key)
	if field == nil {
		return nil
	}
	return record.Decode(field)
}
