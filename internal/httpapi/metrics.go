package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollbook_attendance_records_marked_total",
		Help: "Attendance records written through the marking endpoints.",
	})
	studentsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollbook_students_imported_total",
		Help: "Students created through the bulk-add endpoint.",
	})
)
