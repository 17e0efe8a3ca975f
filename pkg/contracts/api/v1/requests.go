// Package api contains API contract definitions for the FSN analytics
// backend. Version v1 represents the current stable API version.
package api

import (
	"net/http"
	"strings"
)

// RecordsQuery carries the multi-select dataset filters from query
// parameters. Each parameter is repeatable (?gender=A&gender=B); an absent
// parameter places no constraint.
type RecordsQuery struct {
	Genders   []string `json:"genders,omitempty" query:"gender"`
	Races     []string `json:"races,omitempty" query:"race"`
	Districts []string `json:"districts,omitempty" query:"district"`
}

// ParseRecordsQuery extracts the dataset filters from a request. Values are
// trimmed; blank values are dropped rather than matching nothing.
func ParseRecordsQuery(r *http.Request) RecordsQuery {
	q := r.URL.Query()
	return RecordsQuery{
		Genders:   cleanValues(q["gender"]),
		Races:     cleanValues(q["race"]),
		Districts: cleanValues(q["district"]),
	}
}

func cleanValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FeedbackSubmitRequest represents a usability feedback submission.
type FeedbackSubmitRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Bind implements render.Binder; validation runs in the service layer.
func (req *FeedbackSubmitRequest) Bind(r *http.Request) error {
	req.Comment = strings.TrimSpace(req.Comment)
	return nil
}

// AdminPasswordHeader is the header carrying the admin password for the
// protected endpoints (feedback listing, forced dataset refresh).
const AdminPasswordHeader = "X-Admin-Password"

// ExportQuery selects the CSV export format options.
type ExportQuery struct {
	// BOM controls the UTF-8 byte-order mark Excel needs; default true.
	BOM bool `json:"bom" query:"bom"`
}

// ParseExportQuery reads export options; bom=0/false disables the BOM.
func ParseExportQuery(r *http.Request) ExportQuery {
	v := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("bom")))
	return ExportQuery{BOM: v != "0" && v != "false"}
}
