package importer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicksight-tools/qssync/internal/bundle"
	"github.com/quicksight-tools/qssync/internal/qsapi"
)

const (
	sourceAccount = "111111111111"
	targetAccount = "222222222222"
)

// targetAPI simulates the target account's create surface: every create
// succeeds and returns the ARN the real service would mint. Assets listed in
// existing answer create with ResourceExistsException instead.
type targetAPI struct {
	existing map[string]bool
	calls    []targetCall
}

type targetCall struct {
	op     qsapi.Op
	params qsapi.Document
}

func targetARN(kind, id string) string {
	return fmt.Sprintf("arn:aws:quicksight:eu-west-1:%s:%s/%s", targetAccount, kind, id)
}

func sourceARN(kind, id string) string {
	return fmt.Sprintf("arn:aws:quicksight:eu-west-1:%s:%s/%s", sourceAccount, kind, id)
}

func (f *targetAPI) Call(_ context.Context, op qsapi.Op, params qsapi.Document) (qsapi.Document, error) {
	// Clone so later mutations by the importer don't rewrite history.
	recorded, err := params.Clone()
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, targetCall{op: op, params: recorded})

	switch op.Name {
	case "CreateDataSource":
		id := params.String("DataSourceId")
		if f.existing[id] {
			return nil, &qsapi.APIError{Op: op.Name, Code: "ResourceExistsException", HTTPStatus: 409}
		}
		return qsapi.Document{"Status": 202, "Arn": targetARN("datasource", id), "DataSourceId": id}, nil
	case "UpdateDataSource":
		id := params.String("DataSourceId")
		return qsapi.Document{"Status": 200, "Arn": targetARN("datasource", id), "DataSourceId": id}, nil
	case "CreateDataSet":
		id := params.String("DataSetId")
		if f.existing[id] {
			return nil, &qsapi.APIError{Op: op.Name, Code: "ResourceExistsException", HTTPStatus: 409}
		}
		return qsapi.Document{
			"Status":       201,
			"Arn":          targetARN("dataset", id),
			"DataSetId":    id,
			"IngestionId":  id + "-ingest",
			"IngestionArn": targetARN("ingestion", id+"-ingest"),
		}, nil
	case "UpdateDataSet":
		id := params.String("DataSetId")
		return qsapi.Document{"Status": 200, "Arn": targetARN("dataset", id), "DataSetId": id}, nil
	case "CreateAnalysis":
		id := params.String("AnalysisId")
		if f.existing[id] {
			return nil, &qsapi.APIError{Op: op.Name, Code: "ResourceExistsException", HTTPStatus: 409}
		}
		return qsapi.Document{"Status": 202, "Arn": targetARN("analysis", id), "AnalysisId": id}, nil
	case "UpdateAnalysis":
		id := params.String("AnalysisId")
		return qsapi.Document{"Status": 200, "Arn": targetARN("analysis", id), "AnalysisId": id}, nil
	case "CreateDashboard", "UpdateDashboard":
		id := params.String("DashboardId")
		if op.Name == "CreateDashboard" && f.existing[id] {
			return nil, &qsapi.APIError{Op: op.Name, Code: "ResourceExistsException", HTTPStatus: 409}
		}
		return qsapi.Document{
			"Status":      202,
			"Arn":         targetARN("dashboard", id),
			"DashboardId": id,
			"VersionArn":  targetARN("dashboard", id) + "/version/1",
		}, nil
	case "UpdateDashboardPublishedVersion":
		return qsapi.Document{"Status": 200}, nil
	default:
		return nil, fmt.Errorf("unexpected operation %s", op.Name)
	}
}

func (f *targetAPI) callsTo(opName string) []targetCall {
	var out []targetCall
	for _, c := range f.calls {
		if c.op.Name == opName {
			out = append(out, c)
		}
	}
	return out
}

func sampleBundle() *bundle.Bundle {
	return &bundle.Bundle{
		Analysis: qsapi.Document{
			"AnalysisId": "an-1",
			"Name":       "sales",
			"Definition": map[string]any{
				"DataSetIdentifierDeclarations": []any{
					map[string]any{"Identifier": "orders", "DataSetArn": sourceARN("dataset", "ds-1")},
				},
				"Sheets": []any{},
			},
			"Permissions": []any{map[string]any{"Principal": "p", "Actions": []any{"quicksight:DescribeAnalysis"}}},
		},
		AnalysisDatasets: []qsapi.Document{
			{
				"DataSetId": "ds-1",
				"Name":      "orders",
				"PhysicalTableMap": map[string]any{
					"t1": map[string]any{
						"RelationalTable": map[string]any{"DataSourceArn": sourceARN("datasource", "src-1")},
					},
				},
				"RowLevelPermissionDataSet": map[string]any{
					"Arn":              sourceARN("dataset", "rls-1"),
					"PermissionPolicy": "GRANT_ACCESS",
				},
				"OutputColumns": []any{map[string]any{"Name": "id", "Type": "INTEGER"}},
				"ImportMode":    "SPICE",
			},
		},
		SecurityDatasets: []qsapi.Document{
			{
				"DataSetId": "rls-1",
				"Name":      "rls-rules",
				"PhysicalTableMap": map[string]any{
					"t2": map[string]any{
						"CustomSql": map[string]any{"DataSourceArn": sourceARN("datasource", "src-1"), "SqlQuery": "select 1"},
					},
				},
				"ImportMode": "SPICE",
			},
		},
		DataSources: []qsapi.Document{
			{
				"DataSourceId": "src-1",
				"Name":         "warehouse",
				"Type":         "POSTGRESQL",
				"Credentials":  nil,
				"DataSourceParameters": map[string]any{
					"PostgreSqlParameters": map[string]any{"Host": "db.internal", "Port": float64(5432), "Database": "dw"},
				},
			},
		},
	}
}

func TestRunCreatesEverythingInOrder(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount}

	result, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	var order []string
	for _, c := range api.calls {
		order = append(order, c.op.Name)
	}
	assert.Equal(t, []string{
		"CreateDataSource",
		"CreateDataSet", // rls-1
		"CreateDataSet", // ds-1
		"CreateAnalysis",
		"CreateDashboard",
		"UpdateDashboardPublishedVersion",
	}, order)

	require.Len(t, result.DataSources, 1)
	assert.Equal(t, "src-1-imported", result.DataSources[0].ID)
	assert.Equal(t, "warehouse-imported", result.DataSources[0].Name)
	assert.Equal(t, "src-1", result.DataSources[0].OriginalID)

	require.Len(t, result.SecurityDatasets, 1)
	assert.Equal(t, "rls-1-imported", result.SecurityDatasets[0].ID)

	require.Len(t, result.AnalysisDatasets, 1)
	assert.Equal(t, "ds-1-imported", result.AnalysisDatasets[0].ID)

	assert.Equal(t, "an-1-imported", result.Analysis.ID)
	assert.Equal(t, "sales-imported", result.Analysis.Name)

	assert.Equal(t, "an-1_dashboard", result.Dashboard.ID)
	assert.Equal(t, 1, result.Dashboard.Version)
	assert.Equal(t, 200, result.Dashboard.PublishStatus)
	assert.Equal(t, targetAccount, result.TargetAccount)
}

func TestRunRewritesDataSourceReferences(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount}

	_, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	createDataSets := api.callsTo("CreateDataSet")
	require.Len(t, createDataSets, 2)

	for _, c := range createDataSets {
		for _, table := range c.params.Map("PhysicalTableMap") {
			td := qsapi.Document(table.(map[string]any))
			for _, kind := range qsapi.PhysicalTableKinds {
				if ref := td.Map(kind); ref != nil {
					assert.Equal(t, targetARN("datasource", "src-1-imported"), ref.String("DataSourceArn"))
				}
			}
		}
	}
}

func TestRunRewritesSecurityReference(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount}

	_, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	var analysisDataset *targetCall
	for _, c := range api.callsTo("CreateDataSet") {
		if c.params.String("DataSetId") == "ds-1-imported" {
			analysisDataset = &c
			break
		}
	}
	require.NotNil(t, analysisDataset)

	rls := analysisDataset.params.Map("RowLevelPermissionDataSet")
	require.NotNil(t, rls)
	assert.Equal(t, targetARN("dataset", "rls-1-imported"), rls.String("Arn"))
	assert.Equal(t, "GRANT_ACCESS", rls.String("PermissionPolicy"))
}

func TestRunRewritesAnalysisDeclarations(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount}

	_, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	creates := api.callsTo("CreateAnalysis")
	require.Len(t, creates, 1)

	decls := creates[0].params.Map("Definition").Docs("DataSetIdentifierDeclarations")
	require.Len(t, decls, 1)
	assert.Equal(t, targetARN("dataset", "ds-1-imported"), decls[0].String("DataSetArn"))
	assert.Equal(t, "orders", decls[0].String("Identifier"))
}

func TestRunStripsOutputColumnsAndNulls(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount}

	_, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	for _, c := range api.callsTo("CreateDataSet") {
		assert.NotContains(t, c.params, "OutputColumns")
	}
	for _, c := range api.callsTo("CreateDataSource") {
		assert.NotContains(t, c.params, "Credentials")
	}
}

func TestRunLeavesBundleUntouched(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount}

	b := sampleBundle()
	_, err := imp.Run(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, "ds-1", b.AnalysisDatasets[0].String("DataSetId"))
	assert.Equal(t, sourceARN("datasource", "src-1"),
		b.AnalysisDatasets[0].Map("PhysicalTableMap").Map("t1").Map("RelationalTable").String("DataSourceArn"))
	assert.Equal(t, "an-1", b.Analysis.String("AnalysisId"))
	assert.NotNil(t, b.AnalysisDatasets[0].List("OutputColumns"))
}

func TestRunCustomSuffix(t *testing.T) {
	api := &targetAPI{}
	imp := &Importer{API: api, AccountID: targetAccount, Suffix: "-qa"}

	result, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	assert.Equal(t, "src-1-qa", result.DataSources[0].ID)
	assert.Equal(t, "ds-1-qa", result.AnalysisDatasets[0].ID)
	assert.Equal(t, "an-1-qa", result.Analysis.ID)
}

func TestRunExistingAssetsUpdate(t *testing.T) {
	api := &targetAPI{existing: map[string]bool{
		"src-1-imported": true,
		"ds-1-imported":  true,
	}}
	imp := &Importer{API: api, AccountID: targetAccount}

	_, err := imp.Run(context.Background(), sampleBundle())
	require.NoError(t, err)

	updates := api.callsTo("UpdateDataSource")
	require.Len(t, updates, 1)
	assert.NotContains(t, updates[0].params, "Type")
	assert.NotContains(t, updates[0].params, "Permissions")

	assert.Len(t, api.callsTo("UpdateDataSet"), 1)
}

func TestRunUnknownDataSourceReference(t *testing.T) {
	b := sampleBundle()
	b.DataSources = []qsapi.Document{} // reference target missing

	imp := &Importer{API: &targetAPI{}, AccountID: targetAccount}
	_, err := imp.Run(context.Background(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no imported counterpart")
	assert.Contains(t, err.Error(), "src-1")
}

func TestRunRejectsInvalidBundle(t *testing.T) {
	imp := &Importer{API: &targetAPI{}, AccountID: targetAccount}
	_, err := imp.Run(context.Background(), &bundle.Bundle{})
	assert.ErrorContains(t, err, "no analysis")
}

func TestRunRequiresAccount(t *testing.T) {
	imp := &Importer{API: &targetAPI{}}
	_, err := imp.Run(context.Background(), sampleBundle())
	assert.ErrorContains(t, err, "account ID")
}
