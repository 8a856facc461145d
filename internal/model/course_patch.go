package model

// CoursePatch is a partial update. A nil field is absent and is left
// untouched when the patch is applied. CourseID is not a member, so a
// patch can never change identity.
type CoursePatch struct {
	CourseName  *string `json:"CourseName" binding:"omitnil,min=1"`
	Credits     *int    `json:"Credits" binding:"omitnil,gt=0"`
	Description *string `json:"Description"`
	Semester    *int    `json:"Semester" binding:"omitnil,gt=0"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p CoursePatch) IsEmpty() bool {
	return p.CourseName == nil && p.Credits == nil && p.Description == nil && p.Semester == nil
}

// ApplyTo merges the present fields into f.
func (p CoursePatch) ApplyTo(f *CourseFields) {
	if p.CourseName != nil {
		f.CourseName = *p.CourseName
	}
	if p.Credits != nil {
		f.Credits = *p.Credits
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Semester != nil {
		f.Semester = *p.Semester
	}
}

// Columns returns the present fields keyed by their table column.
func (p CoursePatch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.CourseName != nil {
		cols["course_name"] = *p.CourseName
	}
	if p.Credits != nil {
		cols["credits"] = *p.Credits
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Semester != nil {
		cols["semester"] = *p.Semester
	}
	return cols
}
