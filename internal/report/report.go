// Package report renders location data backups as PDF documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/tutorbase/notifications/internal/model"
)

// Generator renders PDF reports.
type Generator struct{}

// NewGenerator builds a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// LocationBackup writes a PDF export of a location's user profiles and
// weekly appointments to w.
func (g *Generator) LocationBackup(w io.Writer, loc model.Location, profiles []model.UserProfile, appts []model.Appointment) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(loc.Name+" Data Backup", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, loc.Name+" Data Backup", "", "C", false)
	pdf.Ln(4)

	if len(appts) > 0 {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, "Weekly Appointments", "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		for _, appt := range appts {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, appt.Time.Day+"s - "+appt.For.Subject+":", "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, "Weekly appointment between "+attendee(appt, model.TypeTutor)+
				" (the tutor) and "+attendee(appt, model.TypePupil)+" (the pupil) at the "+
				appt.Location.Name+" from "+appt.Time.From+" until "+appt.Time.To+".",
				"", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	for _, profile := range profiles {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, profile.Name, "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		g.field(pdf, "Type", profile.Type)
		g.field(pdf, "Grade", profile.Grade)
		g.field(pdf, "Email", profile.Email)
		g.field(pdf, "Phone", profile.Phone)
		g.field(pdf, "Subjects", listOr(profile.Subjects, "No subjects")+".")
		g.field(pdf, "Availability", listOr(AvailabilityStrings(profile.Availability), "No availability")+".")
		pdf.Ln(3)
	}

	return pdf.Output(w)
}

func (g *Generator) field(pdf *gofpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Write(6, label+": ")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Write(6, value)
	pdf.Ln(6)
}

func attendee(appt model.Appointment, userType string) string {
	for _, a := range appt.Attendees {
		if a.Type == userType {
			return a.Name
		}
	}
	return "Unknown"
}

func listOr(vals []string, fallback string) string {
	if len(vals) == 0 {
		return fallback
	}
	return strings.Join(vals, ", ")
}

// AvailabilityStrings renders a profile's availability map
// ({location: {day: [{open, close}]}}) as human-readable sentences.
func AvailabilityStrings(availability map[string]interface{}) []string {
	var out []string
	for location, days := range availability {
		dayMap, ok := days.(map[string]interface{})
		if !ok {
			continue
		}
		for day, windows := range dayMap {
			windowList, ok := windows.([]interface{})
			if !ok {
				continue
			}
			for _, w := range windowList {
				window, ok := w.(map[string]interface{})
				if !ok {
					continue
				}
				out = append(out, fmt.Sprintf("%ss at the %s from %v until %v",
					day, location, window["open"], window["close"]))
			}
		}
	}
	return out
}
