package excel

// ToRecords converts indexed rows into header-keyed maps. Duplicate headers
// are not disambiguated: the later cell wins.
func ToRecords(table *ParsedTable) []RawRowData {
	if table == nil {
		return nil
	}
	records := make([]RawRowData, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := make(RawRowData, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}
