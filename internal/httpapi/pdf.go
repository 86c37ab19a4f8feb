package httpapi

import (
	"net/http"

	"github.com/tutorbase/notifications/internal/model"
)

// BackupAsPDF exports a location's user data as a PDF. Query parameters:
// token, location, tutors/pupils ("true" to include each type), test.
func (a *API) BackupAsPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	p := queryPartition(r)

	claims, err := a.auth.Verify(ctx, q.Get("token"))
	if err != nil || !claims.Supervisor {
		http.Error(w, "[ERROR] Given authentication token lacks supervisor custom auth.", http.StatusBadRequest)
		return
	}
	if !contains(claims.Locations, q.Get("location")) {
		http.Error(w, "[ERROR] Token's locations did not contain requested location.", http.StatusBadRequest)
		return
	}
	loc, err := a.store.Location(ctx, p, q.Get("location"))
	if err != nil {
		http.Error(w, "[ERROR] Requested location doesn't exist.", http.StatusBadRequest)
		return
	}
	if q.Get("tutors") != "true" && q.Get("pupils") != "true" {
		http.Error(w, "[ERROR] Skipping empty request.", http.StatusBadRequest)
		return
	}

	var types []string
	if q.Get("tutors") == "true" {
		types = append(types, model.TypeTutor)
	}
	if q.Get("pupils") == "true" {
		types = append(types, model.TypePupil)
	}
	var profiles []model.UserProfile
	for _, t := range types {
		users, err := a.store.UsersByFilter(ctx, p, model.UserFilter{Location: loc.Name, Type: t})
		if err != nil {
			http.Error(w, "[ERROR] Could not fetch user data.", http.StatusInternalServerError)
			a.log.Errorf("unable to fetch %s profiles for %s: %s", t, loc.Name, err)
			return
		}
		profiles = append(profiles, users...)
	}

	appts, err := a.store.AppointmentsAt(ctx, loc.ID)
	if err != nil {
		http.Error(w, "[ERROR] Could not fetch appointment data.", http.StatusInternalServerError)
		a.log.Errorf("unable to fetch appointments for %s: %s", loc.ID, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	if err := a.reports.LocationBackup(w, loc, profiles, appts); err != nil {
		a.log.Errorf("unable to render PDF backup for %s: %s", loc.Name, err)
	}
}

func contains(vals []string, v string) bool {
	for _, val := range vals {
		if val == v {
			return true
		}
	}
	return false
}
