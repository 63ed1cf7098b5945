package attendance

import (
	"testing"

	"rollbook/internal/students"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"present", StatusPresent, true},
		{"Present", StatusPresent, true},
		{"ABSENT", StatusAbsent, true},
		{"leave", StatusLeave, true},
		{"", "", false},
		{"late", "", false},
	}
	for _, c := range cases {
		got, ok := ParseStatus(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCreditedHours(t *testing.T) {
	if got := creditedHours(StatusPresent, 2); got != 2 {
		t.Errorf("present = %v, want 2", got)
	}
	if got := creditedHours(StatusAbsent, 2); got != 0 {
		t.Errorf("absent = %v, want 0", got)
	}
	if got := creditedHours(StatusLeave, 1.5); got != 0 {
		t.Errorf("leave = %v, want 0", got)
	}
}

func TestBuildSessionDerivesDuration(t *testing.T) {
	svc := &Service{}
	sess, err := svc.buildSession(CreateSessionInput{
		Date:       "2026-08-20",
		TimeSlot:   "09:00-11:00",
		SubjectID:  "sub1",
		LecturerID: "u1",
		Semester:   5,
		Department: "CS",
		Batch:      "both",
	})
	if err != nil {
		t.Fatalf("buildSession: %v", err)
	}
	if sess.DurationHours != 2 {
		t.Errorf("duration = %v, want 2", sess.DurationHours)
	}
	if sess.Department != "cs" {
		t.Errorf("department = %q, want lowercased cs", sess.Department)
	}
	if sess.Batch != students.BatchBoth {
		t.Errorf("batch = %q", sess.Batch)
	}
}

func TestBuildSessionRejectsBadInput(t *testing.T) {
	svc := &Service{}
	base := CreateSessionInput{
		Date: "2026-08-20", TimeSlot: "09:00-10:00", SubjectID: "sub1",
		LecturerID: "u1", Semester: 5, Department: "cs", Batch: "b1",
	}

	bad := base
	bad.Date = "20-08-2026"
	if _, err := svc.buildSession(bad); err != ErrBadDate {
		t.Errorf("bad date: err = %v, want ErrBadDate", err)
	}

	bad = base
	bad.Batch = "b3"
	if _, err := svc.buildSession(bad); err != ErrBadBatch {
		t.Errorf("bad batch: err = %v, want ErrBadBatch", err)
	}

	bad = base
	bad.Department = "xx"
	if _, err := svc.buildSession(bad); err != ErrBadDepartment {
		t.Errorf("bad department: err = %v, want ErrBadDepartment", err)
	}
}

func TestSessionAppliesTo(t *testing.T) {
	both := Session{Batch: students.BatchBoth}
	b1 := Session{Batch: students.BatchB1}
	if !both.AppliesTo(students.BatchB1) || !both.AppliesTo(students.BatchB2) {
		t.Error("batch both session must cover every student")
	}
	if !b1.AppliesTo(students.BatchB1) || b1.AppliesTo(students.BatchB2) {
		t.Error("batch b1 session must cover b1 only")
	}
	if !b1.AppliesTo(students.BatchBoth) {
		t.Error("a both-batch student attends every session")
	}
}

func TestSessionFilterNormalized(t *testing.T) {
	f := SessionFilter{Department: " CS ", SubjectID: "sub-1", Semester: 5}
	got := f.normalized()
	if got.Department != "cs" {
		t.Errorf("Department = %q, want cs", got.Department)
	}
	if got.SubjectID != "sub-1" || got.Semester != 5 {
		t.Errorf("other fields changed: %+v", got)
	}
}
