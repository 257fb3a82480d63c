// Package export walks an analysis's dependency graph and assembles the
// self-contained dump bundle for it.
package export

import (
	"sort"

	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// assetIDs extracts the asset ID from the named ARN field of each entry,
// deduplicated in first-seen order. An entry without the field is a
// structural error.
func assetIDs(entries []qsapi.Document, arnKey string) ([]string, error) {
	var ids []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		v, ok := entry[arnKey]
		if !ok {
			return nil, &qsapi.MissingFieldError{Field: arnKey, Entry: entry}
		}
		arn, _ := v.(string)
		id := qsapi.IDFromARN(arn)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// AnalysisDatasetIDs returns the IDs of the datasets an analysis definition
// declares. A definition with no declarations yields an empty set.
func AnalysisDatasetIDs(analysis qsapi.Document) ([]string, error) {
	return assetIDs(analysis.Map("Definition").Docs("DataSetIdentifierDeclarations"), "DataSetArn")
}

// SecurityDatasetIDs returns the IDs of the row-level-security datasets the
// given datasets reference. Datasets without row-level security contribute
// nothing; if none declare it the result is empty, not an error.
func SecurityDatasetIDs(datasets []qsapi.Document) ([]string, error) {
	var refs []qsapi.Document
	for _, ds := range datasets {
		if rls := ds.Map("RowLevelPermissionDataSet"); rls != nil {
			refs = append(refs, rls)
		}
	}
	return assetIDs(refs, "Arn")
}

// DataSourceIDs returns the IDs of every data source referenced by the
// physical tables of the given datasets.
func DataSourceIDs(datasets []qsapi.Document) ([]string, error) {
	var refs []qsapi.Document
	for _, ds := range datasets {
		tables := ds.Map("PhysicalTableMap")
		keys := make([]string, 0, len(tables))
		for k := range tables {
			keys = append(keys, k)
		}
		// Map iteration order is random; sorted keys keep dumps stable.
		sort.Strings(keys)
		for _, k := range keys {
			t := tables.Map(k)
			if t == nil {
				continue
			}
			for _, kind := range qsapi.PhysicalTableKinds {
				if ref := t.Map(kind); ref != nil {
					refs = append(refs, ref)
				}
			}
		}
	}
	return assetIDs(refs, "DataSourceArn")
}
