package subjects

import "testing"

func TestNormalize(t *testing.T) {
	sub, err := normalize(CreateInput{
		Code:        " ma201 ",
		Name:        " Discrete Mathematics ",
		Semester:    3,
		Departments: []string{" cs ", "EC", "", "me"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if sub.Code != "MA201" {
		t.Errorf("Code = %q, want MA201", sub.Code)
	}
	if sub.Name != "Discrete Mathematics" {
		t.Errorf("Name = %q", sub.Name)
	}
	if len(sub.Departments) != 3 || sub.Departments[0] != "CS" || sub.Departments[1] != "EC" || sub.Departments[2] != "ME" {
		t.Errorf("Departments = %v", sub.Departments)
	}
}

func TestNormalizeRejectsBadSemester(t *testing.T) {
	for _, sem := range []int{0, 9, -1} {
		if _, err := normalize(CreateInput{Code: "X", Semester: sem}); err != ErrBadSemester {
			t.Errorf("semester %d: err = %v, want ErrBadSemester", sem, err)
		}
	}
}
