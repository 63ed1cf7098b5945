package students

import "testing"

func TestParseBatch(t *testing.T) {
	cases := []struct {
		in   string
		want Batch
		ok   bool
	}{
		{"b1", BatchB1, true},
		{"B2", BatchB2, true},
		{"Both", BatchBoth, true},
		{"", "", false},
		{"b3", "", false},
	}
	for _, c := range cases {
		got, ok := ParseBatch(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseBatch(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCovers(t *testing.T) {
	cases := []struct {
		session, student Batch
		want             bool
	}{
		{BatchBoth, BatchB1, true},
		{BatchBoth, BatchB2, true},
		{BatchB1, BatchB1, true},
		{BatchB1, BatchB2, false},
		{BatchB2, BatchB1, false},
		{BatchB1, BatchBoth, true},
	}
	for _, c := range cases {
		if got := Covers(c.session, c.student); got != c.want {
			t.Errorf("Covers(%q, %q) = %v, want %v", c.session, c.student, got, c.want)
		}
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	svc := &Service{}
	base := CreateInput{
		RegisterNumber: "R001", Name: "Anu", Email: "anu@college.edu",
		Department: "cs", Semester: 5, Batch: "b1",
	}

	if _, err := svc.validate(base); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	bad := base
	bad.Batch = "b9"
	if _, err := svc.validate(bad); err != ErrBadBatch {
		t.Errorf("bad batch: err = %v", err)
	}

	bad = base
	bad.Department = "nope"
	if _, err := svc.validate(bad); err != ErrBadDepartment {
		t.Errorf("bad department: err = %v", err)
	}

	bad = base
	bad.Semester = 9
	if _, err := svc.validate(bad); err != ErrBadSemester {
		t.Errorf("bad semester: err = %v", err)
	}
}

func TestValidateNormalizes(t *testing.T) {
	svc := &Service{}
	st, err := svc.validate(CreateInput{
		RegisterNumber: " R001 ", Name: " Anu ", Email: "Anu@College.EDU",
		Department: "CS", Semester: 5, Batch: "B1",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if st.RegisterNumber != "R001" || st.Name != "Anu" {
		t.Errorf("trim failed: %+v", st)
	}
	if st.Email != "anu@college.edu" {
		t.Errorf("email = %q, want lowercase", st.Email)
	}
	if st.Department != "cs" || st.Batch != BatchB1 {
		t.Errorf("normalize failed: dept %q batch %q", st.Department, st.Batch)
	}
}
