package shared

import "net/http"

// Window is the limit/offset slice requested from a list endpoint.
type Window struct {
	Limit  int
	Offset int
}

// ReadWindow reads ?limit= and ?offset=. Values that are not integers, a
// limit below one and a negative offset are reported on v. A limit above max
// is clamped instead.
func ReadWindow(r *http.Request, v *Validator, def, max int) Window {
	win := Window{Limit: def}

	if limit, ok := QueryInt(r, "limit"); !ok {
		v.Add("limit", "must be an integer")
	} else if r.URL.Query().Has("limit") {
		if limit < 1 {
			v.Add("limit", "must be at least 1")
		} else {
			win.Limit = limit
		}
	}
	if offset, ok := QueryInt(r, "offset"); !ok {
		v.Add("offset", "must be an integer")
	} else if offset < 0 {
		v.Add("offset", "must not be negative")
	} else {
		win.Offset = offset
	}

	if max > 0 && win.Limit > max {
		win.Limit = max
	}
	return win
}
