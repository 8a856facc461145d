package model

// CourseKey is the identity type of a course store: numeric for the
// relational table, a caller-chosen code for the catalog.
type CourseKey interface {
	~int64 | ~string
}

// Course is a single course record keyed by K.
type Course[K CourseKey] struct {
	CourseID K `json:"CourseID" db:"course_id"`
	CourseFields
}

// CourseFields holds every mutable attribute of a course.
type CourseFields struct {
	CourseName  string `json:"CourseName" db:"course_name"`
	Credits     int    `json:"Credits" db:"credits"`
	Description string `json:"Description" db:"description"`
	Semester    int    `json:"Semester" db:"semester"`
}

// CourseFilter narrows a course listing. A nil Semester lists everything.
type CourseFilter struct {
	Semester *int
}

// Matches reports whether c passes the filter.
func (f CourseFilter) Matches(c CourseFields) bool {
	return f.Semester == nil || c.Semester == *f.Semester
}

// CreateCourseRequest is the payload for creating a persistent course and
// for fully replacing any course. Fields are pointers so that a missing
// field can be told apart from a zero value.
type CreateCourseRequest struct {
	CourseName  *string `json:"CourseName" binding:"required,min=1"`
	Credits     *int    `json:"Credits" binding:"required,gt=0"`
	Description *string `json:"Description"`
	Semester    *int    `json:"Semester" binding:"required,gt=0"`
}

// Fields returns the validated attributes, defaulting Description to "".
func (r *CreateCourseRequest) Fields() CourseFields {
	return newCourseFields(r.CourseName, r.Credits, r.Description, r.Semester)
}

// CreateCatalogCourseRequest is the payload for creating a catalog course,
// whose identity is chosen by the caller.
type CreateCatalogCourseRequest struct {
	CourseID    *string `json:"CourseID" binding:"required,min=1"`
	CourseName  *string `json:"CourseName" binding:"required,min=1"`
	Credits     *int    `json:"Credits" binding:"required,gt=0"`
	Description *string `json:"Description"`
	Semester    *int    `json:"Semester" binding:"required,gt=0"`
}

// Course builds the catalog record described by the request.
func (r *CreateCatalogCourseRequest) Course() *Course[string] {
	return &Course[string]{
		CourseID:     deref(r.CourseID),
		CourseFields: newCourseFields(r.CourseName, r.Credits, r.Description, r.Semester),
	}
}

func newCourseFields(name *string, credits *int, description *string, semester *int) CourseFields {
	return CourseFields{
		CourseName:  deref(name),
		Credits:     deref(credits),
		Description: deref(description),
		Semester:    deref(semester),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
