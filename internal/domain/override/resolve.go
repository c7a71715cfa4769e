package override

// Cascade returns the employee-level value when present, else the
// unit-level value, else fallback, together with the level that supplied it.
func Cascade[T any](employee, unit *T, fallback T) (T, Level) {
	if employee != nil {
		return *employee, LevelEmployee
	}
	if unit != nil {
		return *unit, LevelOrgUnit
	}
	return fallback, LevelNone
}

type indexKey struct {
	templateID string
	scopeKey   string
}

// Index answers Resolve for one year from a preloaded set of overrides.
type Index struct {
	year    int
	entries map[indexKey]Override
}

// NewIndex keeps only overrides for year. When duplicates exist for the same
// key the last one wins.
func NewIndex(year int, overrides []Override) *Index {
	idx := &Index{year: year, entries: make(map[indexKey]Override, len(overrides))}
	for _, o := range overrides {
		if o.Year != year || o.Level() == LevelNone {
			continue
		}
		idx.entries[indexKey{templateID: o.TemplateID, scopeKey: o.ScopeKey()}] = o
	}
	return idx
}

func (idx *Index) Year() int {
	return idx.year
}

func (idx *Index) Len() int {
	return len(idx.entries)
}

// Resolve looks up the exception for an employee and template: the
// employee-level entry, then the entry for the employee's organizational
// unit, then none.
func (idx *Index) Resolve(employeeID, orgUnitID, templateID string) Resolution {
	if idx == nil {
		return Resolution{}
	}
	var employee, unit *Override
	if o, ok := idx.entries[indexKey{templateID, "employee:" + employeeID}]; ok && employeeID != "" {
		employee = &o
	}
	if o, ok := idx.entries[indexKey{templateID, "org_unit:" + orgUnitID}]; ok && orgUnitID != "" {
		unit = &o
	}
	o, level := Cascade(employee, unit, Override{})
	if level == LevelNone {
		return Resolution{}
	}
	return Resolution{Excluded: o.Excluded, Weight: o.Weight, Source: level, ID: o.ID}
}
