// Package student contains the domain model for the students linked to a
// family account.
//
// A Student is a plain value: the store owns the collection and hands out
// copies. The package has zero external dependencies beyond the shared
// domain package.
//
//	s := student.Student{ID: "3", Name: "Maya Johnson", Grade: "5th Grade"}
//	if err := s.Validate(); err != nil {
//	    return err
//	}
package student
