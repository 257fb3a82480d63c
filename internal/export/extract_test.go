package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicksight-tools/qssync/internal/qsapi"
)

func TestAnalysisDatasetIDs(t *testing.T) {
	analysis := qsapi.Document{
		"Definition": map[string]any{
			"DataSetIdentifierDeclarations": []any{
				map[string]any{"Identifier": "orders", "DataSetArn": "arn:aws:quicksight:eu-west-1:111:dataset/ds-1"},
				map[string]any{"Identifier": "customers", "DataSetArn": "arn:aws:quicksight:eu-west-1:111:dataset/ds-2"},
				map[string]any{"Identifier": "orders2", "DataSetArn": "arn:aws:quicksight:eu-west-1:111:dataset/ds-1"},
			},
		},
	}

	ids, err := AnalysisDatasetIDs(analysis)
	require.NoError(t, err)
	assert.Equal(t, []string{"ds-1", "ds-2"}, ids)
}

func TestAnalysisDatasetIDsEmpty(t *testing.T) {
	ids, err := AnalysisDatasetIDs(qsapi.Document{"Definition": map[string]any{}})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAnalysisDatasetIDsMissingArn(t *testing.T) {
	analysis := qsapi.Document{
		"Definition": map[string]any{
			"DataSetIdentifierDeclarations": []any{
				map[string]any{"Identifier": "orders"},
			},
		},
	}

	_, err := AnalysisDatasetIDs(analysis)
	var missing *qsapi.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "DataSetArn", missing.Field)
}

func TestSecurityDatasetIDs(t *testing.T) {
	datasets := []qsapi.Document{
		{
			"DataSetId": "ds-1",
			"RowLevelPermissionDataSet": map[string]any{
				"Arn": "arn:aws:quicksight:eu-west-1:111:dataset/rls-1",
			},
		},
		{"DataSetId": "ds-2"},
		{
			"DataSetId": "ds-3",
			"RowLevelPermissionDataSet": map[string]any{
				"Arn": "arn:aws:quicksight:eu-west-1:111:dataset/rls-1",
			},
		},
	}

	ids, err := SecurityDatasetIDs(datasets)
	require.NoError(t, err)
	assert.Equal(t, []string{"rls-1"}, ids)
}

func TestSecurityDatasetIDsNone(t *testing.T) {
	ids, err := SecurityDatasetIDs([]qsapi.Document{{"DataSetId": "ds-1"}})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDataSourceIDs(t *testing.T) {
	datasets := []qsapi.Document{
		{
			"PhysicalTableMap": map[string]any{
				"t1": map[string]any{
					"RelationalTable": map[string]any{
						"DataSourceArn": "arn:aws:quicksight:eu-west-1:111:datasource/src-1",
					},
				},
				"t2": map[string]any{
					"CustomSql": map[string]any{
						"DataSourceArn": "arn:aws:quicksight:eu-west-1:111:datasource/src-2",
						"SqlQuery":      "select 1",
					},
				},
			},
		},
		{
			"PhysicalTableMap": map[string]any{
				"t3": map[string]any{
					"S3Source": map[string]any{
						"DataSourceArn": "arn:aws:quicksight:eu-west-1:111:datasource/src-1",
					},
				},
			},
		},
	}

	ids, err := DataSourceIDs(datasets)
	require.NoError(t, err)
	assert.Equal(t, []string{"src-1", "src-2"}, ids)
}

func TestDataSourceIDsMissingArn(t *testing.T) {
	datasets := []qsapi.Document{
		{
			"PhysicalTableMap": map[string]any{
				"t1": map[string]any{
					"CustomSql": map[string]any{"SqlQuery": "select 1"},
				},
			},
		},
	}

	_, err := DataSourceIDs(datasets)
	var missing *qsapi.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "DataSourceArn", missing.Field)
}
