// Package student contains the domain model of a student and their grades.
//
// The package defines:
//
//   - Entities: Student
//   - Value Objects: Grade, Letter, Result
//   - Validation: NewStudent, ParseGrade
//
// # Invariants
//
// A Student always has a non-empty first name and surname (trimmed at
// construction). Every stored grade is an integer in [0, 100]; this is
// checked when a grade is assigned, the grade map itself starts empty.
//
// # Usage
//
//	s, err := student.NewStudent("Ada", "Lovelace")
//	if err != nil {
//	    return err // shared.ErrEmptyName
//	}
//
//	if err := s.AddGrade("Math", 90); err != nil {
//	    return err // shared.ErrInvalidGrade
//	}
//
//	s.FullName() // "Ada Lovelace"
//	s.Average()  // 90
//	s.Letter()   // A*
//	s.Result()   // Distinction
//
// Grades entered as text go through ParseGrade, which rejects non-integer
// input with the same error as an out-of-range value:
//
//	g, err := student.ParseGrade(" 85 ")
//
// Students are owned by a gradebook.Gradebook; the package itself knows
// nothing about subjects lists or uniqueness.
package student
