package model

// KeySeparator joins a student's name and ID into one sortable key.
const KeySeparator = "_"

// Student is one roster entry.
type Student struct {
	ID       string
	Name     string
	Teachers map[PeriodCode]string // period → teacher email
}

// NewStudent creates a Student with an empty period table.
func NewStudent(id, name string) *Student {
	return &Student{ID: id, Name: name, Teachers: make(map[PeriodCode]string)}
}

// Key returns "Name_ID", the form students are listed and sorted by.
func (s *Student) Key() string {
	return s.Name + KeySeparator + s.ID
}

// TeacherFor returns the teacher email for a period, if the student has one.
func (s *Student) TeacherFor(p PeriodCode) (string, bool) {
	email, ok := s.Teachers[p]
	return email, ok
}

// Roster maps student ID to student.
type Roster map[string]*Student
