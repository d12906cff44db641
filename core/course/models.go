package course

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kozihq/kozi/core"
)

// Course levels
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Content types
const (
	ContentVideo = "video"
	ContentPDF   = "pdf"
	ContentQuiz  = "quiz"
)

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Instructor  string    `json:"instructor"`
	Duration    int       `json:"duration"` // hours
	Level       string    `json:"level"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Content is a single course item (video, pdf or quiz), played in sequence order.
type Content struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	ContentURL  string `json:"content_url"`
	Duration    string `json:"duration,omitempty"` // for videos, e.g. "12:30"
	Sequence    int    `json:"sequence"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Instructor  string `json:"instructor"`
	Duration    int    `json:"duration" validate:"omitempty,min=1"`
	Level       string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	nc.Instructor = core.CleanString(nc.Instructor)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Instructor  string `json:"instructor"`
	Duration    int    `json:"duration" validate:"omitempty,min=1"`
	Level       string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	uc.Category = core.CleanString(uc.Category)
	uc.Instructor = core.CleanString(uc.Instructor)
	return validate.Struct(uc)
}

// NewContent contains information needed to attach a content item to a Course.
type NewContent struct {
	Title       string `json:"title" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=video pdf quiz"`
	ContentURL  string `json:"content_url" validate:"required,url"`
	Duration    string `json:"duration"`
	Sequence    int    `json:"sequence" validate:"min=0"`
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.ContentURL = core.CleanString(nc.ContentURL)
	return validate.Struct(nc)
}

// QueryFilter narrows course queries. Search does a case-insensitive
// substring match against title, description and category.
type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	Level    string `query:"level"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.Level == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.Level = core.CleanString(qf.Level)
}

// Matches reports whether a course satisfies the filter; repositories that
// cannot push the filter down to SQL use it directly.
func (qf *QueryFilter) Matches(c Course) bool {
	if qf.Category != "" && c.Category != qf.Category {
		return false
	}
	if qf.Level != "" && c.Level != qf.Level {
		return false
	}
	if qf.Search != "" {
		q := core.CleanString(qf.Search, true /* lower */)
		if !containsFold(c.Title, q) && !containsFold(c.Description, q) && !containsFold(c.Category, q) {
			return false
		}
	}
	return true
}

func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}
