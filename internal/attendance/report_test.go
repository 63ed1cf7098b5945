package attendance

import (
	"testing"
	"time"

	"rollbook/internal/students"
	"rollbook/internal/timeslot"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		attended, held, want float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{2, 2, 100},
		{0, 4, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{7.5, 10, 75},
	}
	for _, c := range cases {
		if got := Percentage(c.attended, c.held); got != c.want {
			t.Errorf("Percentage(%v, %v) = %v, want %v", c.attended, c.held, got, c.want)
		}
	}
}

func TestBuildStudentSubjectTotals(t *testing.T) {
	sessions := []Session{
		{ID: "s1", Batch: students.BatchBoth, DurationHours: 2},
		{ID: "s2", Batch: students.BatchB1, DurationHours: 1},
		{ID: "s3", Batch: students.BatchB2, DurationHours: 1.5},
	}
	recs := []Record{
		{SessionID: "s1", Status: StatusPresent, Hours: 2},
		{SessionID: "s3", Status: StatusPresent, Hours: 1.5},
	}

	// A batch-1 student: s3 is out of scope, so both its held hours
	// and any stray record for it are excluded.
	held, attended := BuildStudentSubjectTotals(sessions, recs, students.BatchB1)
	if held != 3 {
		t.Errorf("held = %v, want 3", held)
	}
	if attended != 2 {
		t.Errorf("attended = %v, want 2", attended)
	}

	held, attended = BuildStudentSubjectTotals(sessions, recs, students.BatchBoth)
	if held != 4.5 {
		t.Errorf("held for both = %v, want 4.5", held)
	}
	if attended != 3.5 {
		t.Errorf("attended for both = %v, want 3.5", attended)
	}
}

// A two hour session with three of five students present yields 100%
// for present students and 0% for absent ones.
func TestBuildClassReportSingleSession(t *testing.T) {
	dur := timeslot.Hours("09:00-11:00")
	if dur != 2 {
		t.Fatalf("duration for 09:00-11:00 = %v, want 2", dur)
	}
	sess := Session{
		ID: "s1", SubjectID: "sub1", SubjectCode: "CS301", SubjectName: "Compilers",
		Semester: 5, Batch: students.BatchBoth, DurationHours: dur,
	}

	roster := make([]students.Student, 5)
	records := make([]RecordWithStudent, 5)
	for i := range roster {
		roster[i] = students.Student{ID: string(rune('a' + i)), Batch: students.BatchBoth}
		status, hours := StatusPresent, dur
		if i >= 3 {
			status, hours = StatusAbsent, 0
		}
		records[i] = RecordWithStudent{
			Record:  Record{SessionID: sess.ID, StudentID: roster[i].ID, Status: status, Hours: hours},
			Student: roster[i],
		}
	}

	reports := BuildClassReport([]Session{sess}, records)
	if len(reports) != 1 {
		t.Fatalf("got %d subject groups, want 1", len(reports))
	}
	rep := reports[0]
	if rep.SubjectCode != "CS301" || rep.TotalHours != 2 {
		t.Errorf("subject header = %q/%v, want CS301/2", rep.SubjectCode, rep.TotalHours)
	}
	if len(rep.Students) != 5 {
		t.Fatalf("got %d students, want 5", len(rep.Students))
	}
	for i, row := range rep.Students {
		want := 100.0
		if i >= 3 {
			want = 0
		}
		if row.HeldHours != 2 {
			t.Errorf("student %d held = %v, want 2", i, row.HeldHours)
		}
		if row.Percentage != want {
			t.Errorf("student %d percentage = %v, want %v", i, row.Percentage, want)
		}
	}
}

func TestBuildClassReportBatchAwareHeld(t *testing.T) {
	sessions := []Session{
		{ID: "s1", SubjectID: "sub1", Batch: students.BatchBoth, DurationHours: 2},
		{ID: "s2", SubjectID: "sub1", Batch: students.BatchB1, DurationHours: 1},
	}
	b1 := students.Student{ID: "st1", Batch: students.BatchB1}
	b2 := students.Student{ID: "st2", Batch: students.BatchB2}
	records := []RecordWithStudent{
		{Record: Record{SessionID: "s1", StudentID: b1.ID, Status: StatusPresent, Hours: 2}, Student: b1},
		{Record: Record{SessionID: "s2", StudentID: b1.ID, Status: StatusAbsent}, Student: b1},
		{Record: Record{SessionID: "s1", StudentID: b2.ID, Status: StatusPresent, Hours: 2}, Student: b2},
	}

	reports := BuildClassReport(sessions, records)
	if len(reports) != 1 || len(reports[0].Students) != 2 {
		t.Fatalf("unexpected shape: %+v", reports)
	}
	rows := map[string]ClassStudentReport{}
	for _, row := range reports[0].Students {
		rows[row.Student.ID] = row
	}
	// The batch-1 session is held for st1 but not st2, so the same
	// attended hours yield different percentages.
	if got := rows["st1"]; got.HeldHours != 3 || got.Percentage != 66.67 {
		t.Errorf("st1 = held %v pct %v, want 3 / 66.67", got.HeldHours, got.Percentage)
	}
	if got := rows["st2"]; got.HeldHours != 2 || got.Percentage != 100 {
		t.Errorf("st2 = held %v pct %v, want 2 / 100", got.HeldHours, got.Percentage)
	}
}

func TestBuildOverallReport(t *testing.T) {
	recs := []RecordWithSession{
		{
			Record:  Record{SessionID: "s1", Status: StatusPresent, Hours: 2},
			Session: Session{ID: "s1", SubjectID: "sub1", SubjectCode: "CS301", Batch: students.BatchBoth, DurationHours: 2},
		},
		{
			Record:  Record{SessionID: "s2", Status: StatusAbsent},
			Session: Session{ID: "s2", SubjectID: "sub1", SubjectCode: "CS301", Batch: students.BatchBoth, DurationHours: 1},
		},
		{
			Record:  Record{SessionID: "s3", Status: StatusPresent, Hours: 1},
			Session: Session{ID: "s3", SubjectID: "sub2", SubjectCode: "MA201", Batch: students.BatchBoth, DurationHours: 1},
		},
	}

	out := BuildOverallReport(recs, students.BatchB1)
	if len(out) != 2 {
		t.Fatalf("got %d subjects, want 2", len(out))
	}
	cs := out[0]
	if cs.SubjectCode != "CS301" || cs.TotalHours != 3 || cs.AttendedHours != 2 || cs.AbsentHours != 1 {
		t.Errorf("CS301 totals wrong: %+v", cs)
	}
	if cs.Percentage != 66.67 {
		t.Errorf("CS301 percentage = %v, want 66.67", cs.Percentage)
	}
	if ma := out[1]; ma.Percentage != 100 {
		t.Errorf("MA201 percentage = %v, want 100", ma.Percentage)
	}
}

func TestBuildSubjectHistoriesSynthesizesAbsences(t *testing.T) {
	sessions := []Session{
		{ID: "s1", SubjectID: "sub1", Batch: students.BatchBoth, DurationHours: 2, TimeSlot: "09:00-11:00"},
		{ID: "s2", SubjectID: "sub1", Batch: students.BatchB2, DurationHours: 1, TimeSlot: "11:00-12:00"},
	}
	st := students.Student{ID: "st1", Name: "Anu", RegisterNumber: "R001", Batch: students.BatchB1}
	records := []RecordWithStudent{
		{Record: Record{SessionID: "s1", StudentID: st.ID, Status: StatusPresent, Hours: 2}, Student: st},
	}

	out := BuildSubjectHistories(sessions, []students.Student{st}, records)
	if len(out) != 1 {
		t.Fatalf("got %d histories, want 1", len(out))
	}
	hist := out[0]
	if hist.RegisterNumber != "R001" {
		t.Errorf("register = %q, want R001", hist.RegisterNumber)
	}
	// s2 targets the other batch and is skipped entirely.
	if len(hist.Sessions) != 1 {
		t.Fatalf("got %d session rows, want 1", len(hist.Sessions))
	}
	if hist.Sessions[0].Status != StatusPresent || hist.Sessions[0].Duration != 2 {
		t.Errorf("session row = %+v", hist.Sessions[0])
	}

	// Without a record the row is synthesized as absent.
	out = BuildSubjectHistories(sessions, []students.Student{st}, nil)
	if got := out[0].Sessions[0]; got.Status != StatusAbsent || got.Duration != 2 {
		t.Errorf("synthesized row = %+v, want absent with session duration", got)
	}
}

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(2, 2024)
	if from.Day() != 1 || from.Month() != time.February {
		t.Errorf("from = %v", from)
	}
	if to.Month() != time.February || to.Day() != 29 {
		t.Errorf("to = %v, want last day of Feb 2024", to)
	}
	if !to.Before(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to %v spills into March", to)
	}
}
