package equalize

import (
	"aggstat/domain/series"
	"aggstat/domain/table"
	"aggstat/internal"
)

// Request carries the variables event equalization partitions over.
type Request struct {
	IndyVar       string
	SeriesVals    []series.ValueSet
	FixedVals     []series.ValueSet
	ByIndependent bool
	// MultiEvent allows several records per case inside one partition,
	// as the spread/skill line type produces. Suppresses the
	// non-uniqueness warning.
	MultiEvent bool
}

// Equalize filters the table down to the cases present in every partition of
// series and fixed variable values, so no series is compared against dates
// another series is missing. It only removes rows. Diagnostics go to the
// logger and are never fatal; the result may be empty.
func Equalize(data *table.Table, req Request, logger *internal.Logger) *table.Table {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if data.Empty() {
		return data
	}
	temporal, ok := data.TemporalColumn()
	if !ok {
		logger.Warn("event equalization skipped: no temporal key column")
		return data
	}

	keys := caseKeys(data, temporal, req)
	partitions := partitionValues(req)

	var surviving []string
	survivingSet := map[string]struct{}{}
	for i, partition := range partitions {
		partKeys := partitionCaseKeys(data, keys, partition)

		if !req.MultiEvent && hasDuplicates(partKeys) {
			logger.Warn("event equalization detected non-unique events for %v", partition.values())
		}

		if i == 0 {
			surviving = dedupe(partKeys)
			survivingSet = toSet(surviving)
			continue
		}

		partSet := toSet(partKeys)
		var next []string
		for _, key := range surviving {
			if _, ok := partSet[key]; ok {
				next = append(next, key)
			} else {
				logger.Warn("event equalization discarding case %q for %v", key, partition.values())
			}
		}
		nextSet := toSet(next)
		for _, key := range dedupe(partKeys) {
			if _, ok := survivingSet[key]; !ok {
				logger.Warn("event equalization discarding case %q for %v", key, partition.values())
			}
		}
		surviving, survivingSet = next, nextSet
	}

	kept := 0
	out := table.New(data.Columns())
	for i := 0; i < data.Len(); i++ {
		if _, ok := survivingSet[keys[i]]; ok {
			out.AppendRow(data.Row(i))
			kept++
		}
	}
	if removed := data.Len() - kept; removed > 0 {
		logger.Warn("event equalization removed %d rows", removed)
	}
	return out
}

// caseKeys builds the per-row case key: temporal value, lead time, and the
// independent value when requested and the independent variable is not itself
// a temporal column.
func caseKeys(data *table.Table, temporal string, req Request) []string {
	ti := data.ColumnIndex(temporal)
	li := data.ColumnIndex("fcst_lead")
	ii := -1
	if req.ByIndependent && req.IndyVar != "" && !table.IsTemporalColumn(req.IndyVar) {
		ii = data.ColumnIndex(req.IndyVar)
	}

	keys := make([]string, data.Len())
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		key := row[ti].Text()
		if li >= 0 {
			key += " " + row[li].Text()
		}
		if ii >= 0 {
			key += " " + row[ii].Text()
		}
		keys[i] = key
	}
	return keys
}

// partition is one combination of series and fixed variable values.
type partition []struct {
	column string
	value  string
}

func (p partition) values() []string {
	vals := make([]string, len(p))
	for i, pv := range p {
		vals[i] = pv.value
	}
	return vals
}

// partitionValues builds the cartesian product of all ungrouped series values
// and fixed values, skipping temporal columns.
func partitionValues(req Request) []partition {
	var vars []series.ValueSet
	for _, vs := range req.SeriesVals {
		if table.IsTemporalColumn(vs.Name) {
			continue
		}
		var flat []string
		for _, v := range vs.Values {
			flat = append(flat, series.Split(v)...)
		}
		vars = append(vars, series.ValueSet{Name: vs.Name, Values: flat})
	}
	for _, vs := range req.FixedVals {
		if table.IsTemporalColumn(vs.Name) {
			continue
		}
		vars = append(vars, vs)
	}

	partitions := []partition{{}}
	for _, vs := range vars {
		var next []partition
		for _, p := range partitions {
			for _, v := range vs.Values {
				grown := make(partition, len(p), len(p)+1)
				copy(grown, p)
				grown = append(grown, struct{ column, value string }{vs.Name, v})
				next = append(next, grown)
			}
		}
		partitions = next
	}
	return partitions
}

// partitionCaseKeys returns the case keys of rows matching the partition.
func partitionCaseKeys(data *table.Table, keys []string, p partition) []string {
	var out []string
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		match := true
		for _, pv := range p {
			ci := data.ColumnIndex(pv.column)
			if ci < 0 || !row[ci].Matches(pv.value) {
				match = false
				break
			}
		}
		if match {
			out = append(out, keys[i])
		}
	}
	return out
}

func hasDuplicates(keys []string) bool {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
