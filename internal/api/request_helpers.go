package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// requireSession returns the session placed in the context by the
// authentication middleware. It writes a 401 when there is none, which only
// happens if a route was registered outside the authenticated group.
func requireSession(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	session, ok := shared.SessionFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Please authenticate.")
		return nil, false
	}
	return session, true
}

// getPathUUID extracts a UUID from the URL path parameters. ok is false for
// a missing or malformed value.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseTaskQuery builds the listing query for ownerID from the request's
// completed, sortBy, limit and skip parameters. Unparseable values are
// ignored rather than rejected.
func parseTaskQuery(ownerID uuid.UUID, params url.Values) store.TaskQuery {
	q := store.TaskQuery{OwnerID: ownerID}

	if raw := params.Get("completed"); raw != "" {
		completed := raw == "true"
		q.Completed = &completed
	}

	if raw := params.Get("sortBy"); raw != "" {
		if sort, ok := store.ParseTaskSort(raw); ok {
			q.Sort = &sort
		}
	}

	if n, ok := parseLeadingInt(params.Get("limit")); ok && n > 0 {
		q.Limit = n
	}
	if n, ok := parseLeadingInt(params.Get("skip")); ok && n > 0 {
		q.Skip = n
	}

	return q
}

// parseLeadingInt parses the optionally signed run of digits at the start
// of s, ignoring leading whitespace and anything after the digits: "10abc"
// is 10, "abc" is not a number.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
