// Package importer recreates a dump bundle's assets in a target account,
// assigning fresh identifiers and rewriting every cross-asset reference
// through remap tables built as the import progresses.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quicksight-tools/qssync/internal/bundle"
	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// DefaultSuffix is appended to the name and identifier of every recreated
// asset so imports never collide with assets native to the target account.
const DefaultSuffix = "-imported"

// Importer recreates bundles in a target account.
type Importer struct {
	API       qsapi.Caller
	AccountID string
	// Suffix overrides DefaultSuffix when non-empty.
	Suffix string
	// DashboardGrants are attached as the published dashboard's permissions.
	DashboardGrants []Grant
	Logger          *slog.Logger
}

// Grant is one dashboard permission entry.
type Grant struct {
	Principal string   `koanf:"principal" json:"Principal"`
	Actions   []string `koanf:"actions" json:"Actions"`
}

// Asset describes one recreated object.
type Asset struct {
	Name         string
	ARN          string
	ID           string
	OriginalID   string
	IngestionID  string
	IngestionARN string
}

// Dashboard describes the published dashboard.
type Dashboard struct {
	ID            string
	ARN           string
	Version       int
	PublishStatus int
}

// Result enumerates everything an import created, in creation order.
type Result struct {
	TargetAccount    string
	DataSources      []Asset
	SecurityDatasets []Asset
	AnalysisDatasets []Asset
	Analysis         Asset
	Dashboard        Dashboard
}

// remapTable maps an original asset ID to the ARN of its recreated
// counterpart. It is append-only within one import run.
type remapTable map[string]string

// resolve rewrites an original ARN to the recreated asset's ARN.
func (t remapTable) resolve(arn string) (string, error) {
	id := qsapi.IDFromARN(arn)
	mapped, ok := t[id]
	if !ok {
		return "", fmt.Errorf("no imported counterpart recorded for %q", id)
	}
	return mapped, nil
}

// Run imports the bundle in strict dependency order: data sources, then
// security datasets, then analysis datasets, then the analysis, then the
// published dashboard. Any failure aborts the run; assets already created in
// the target account are left in place.
func (i *Importer) Run(ctx context.Context, b *bundle.Bundle) (*Result, error) {
	if i.AccountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}
	if i.API == nil {
		return nil, fmt.Errorf("API client is required")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	result := &Result{TargetAccount: i.AccountID}

	datasources, err := i.importDataSources(ctx, b.DataSources)
	if err != nil {
		return nil, err
	}
	result.DataSources = datasources

	datasourceMap := make(remapTable, len(datasources))
	for _, ds := range datasources {
		datasourceMap[ds.OriginalID] = ds.ARN
	}

	// Security datasets first: analysis datasets may reference them. Their
	// own row-level-security references resolve against an empty table, so a
	// security dataset cannot depend on another one.
	securityDatasets, err := i.importDatasets(ctx, b.SecurityDatasets, datasourceMap, remapTable{})
	if err != nil {
		return nil, err
	}
	result.SecurityDatasets = securityDatasets

	datasetMap := make(remapTable, len(securityDatasets)+len(b.AnalysisDatasets))
	for _, ds := range securityDatasets {
		datasetMap[ds.OriginalID] = ds.ARN
	}

	analysisDatasets, err := i.importDatasets(ctx, b.AnalysisDatasets, datasourceMap, datasetMap)
	if err != nil {
		return nil, err
	}
	result.AnalysisDatasets = analysisDatasets
	for _, ds := range analysisDatasets {
		datasetMap[ds.OriginalID] = ds.ARN
	}

	analysis, definition, err := i.importAnalysis(ctx, b.Analysis, datasetMap)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis

	dashboard, err := i.importDashboard(ctx, b.Analysis, definition)
	if err != nil {
		return nil, err
	}
	result.Dashboard = dashboard

	return result, nil
}

func (i *Importer) suffix() string {
	if i.Suffix != "" {
		return i.Suffix
	}
	return DefaultSuffix
}

func (i *Importer) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (i *Importer) importDataSources(ctx context.Context, datasources []qsapi.Document) ([]Asset, error) {
	out := make([]Asset, 0, len(datasources))
	for _, ds := range datasources {
		params := ds.WithoutNulls()
		originalID := params.String("DataSourceId")

		params["Name"] = params.String("Name") + i.suffix()
		params["DataSourceId"] = originalID + i.suffix()
		params["AwsAccountId"] = i.AccountID

		i.logger().Info("importing data source", "name", params.String("Name"))

		resp, err := qsapi.CreateOrUpdate(ctx, i.API, qsapi.OpCreateDataSource, qsapi.OpUpdateDataSource, params)
		if err != nil {
			return nil, err
		}

		out = append(out, Asset{
			Name:       params.String("Name"),
			ARN:        resp.String("Arn"),
			ID:         resp.String("DataSourceId"),
			OriginalID: originalID,
		})
	}
	return out, nil
}

func (i *Importer) importDatasets(ctx context.Context, datasets []qsapi.Document, datasourceMap, datasetMap remapTable) ([]Asset, error) {
	out := make([]Asset, 0, len(datasets))
	for _, ds := range datasets {
		params, err := i.prepareDataset(ds, datasourceMap, datasetMap)
		if err != nil {
			return nil, err
		}

		i.logger().Info("importing dataset", "name", params.String("Name"))

		resp, err := qsapi.CreateOrUpdate(ctx, i.API, qsapi.OpCreateDataSet, qsapi.OpUpdateDataSet, params)
		if err != nil {
			return nil, err
		}

		out = append(out, Asset{
			Name:         params.String("Name"),
			ARN:          resp.String("Arn"),
			ID:           resp.String("DataSetId"),
			OriginalID:   ds.String("DataSetId"),
			IngestionID:  resp.String("IngestionId"),
			IngestionARN: resp.String("IngestionArn"),
		})
	}
	return out, nil
}

// prepareDataset builds the create parameters for one dataset: null fields
// and the server-computed OutputColumns are dropped, name and ID get the
// import suffix, and every data-source and row-level-security reference is
// rewritten to its recreated counterpart.
func (i *Importer) prepareDataset(ds qsapi.Document, datasourceMap, datasetMap remapTable) (qsapi.Document, error) {
	params, err := ds.Clone()
	if err != nil {
		return nil, err
	}
	params = params.WithoutNulls()
	delete(params, "OutputColumns")

	originalID := params.String("DataSetId")
	params["Name"] = params.String("Name") + i.suffix()
	params["DataSetId"] = originalID + i.suffix()
	params["AwsAccountId"] = i.AccountID

	if err := rewritePhysicalTables(params.Map("PhysicalTableMap"), datasourceMap); err != nil {
		return nil, err
	}

	if rls := params.Map("RowLevelPermissionDataSet"); rls != nil {
		if arn := rls.String("Arn"); arn != "" {
			mapped, err := datasetMap.resolve(arn)
			if err != nil {
				return nil, err
			}
			rls["Arn"] = mapped
		}
	}

	return params, nil
}

func rewritePhysicalTables(tables qsapi.Document, datasourceMap remapTable) error {
	for _, table := range tables {
		t, ok := table.(map[string]any)
		if !ok {
			continue
		}
		for _, kind := range qsapi.PhysicalTableKinds {
			ref := qsapi.Document(t).Map(kind)
			if ref == nil {
				continue
			}
			mapped, err := datasourceMap.resolve(ref.String("DataSourceArn"))
			if err != nil {
				return err
			}
			ref["DataSourceArn"] = mapped
		}
	}
	return nil
}

// importAnalysis recreates the analysis with its dataset declarations
// rewritten through the dataset remap table. The rewritten definition is
// returned for reuse by the dashboard step.
func (i *Importer) importAnalysis(ctx context.Context, analysis qsapi.Document, datasetMap remapTable) (Asset, qsapi.Document, error) {
	params, err := analysis.Clone()
	if err != nil {
		return Asset{}, nil, err
	}
	params = params.WithoutNulls()

	originalID := params.String("AnalysisId")
	params["Name"] = params.String("Name") + i.suffix()
	params["AnalysisId"] = originalID + i.suffix()
	params["AwsAccountId"] = i.AccountID

	definition := params.Map("Definition")
	for _, decl := range definition.Docs("DataSetIdentifierDeclarations") {
		mapped, err := datasetMap.resolve(decl.String("DataSetArn"))
		if err != nil {
			return Asset{}, nil, err
		}
		decl["DataSetArn"] = mapped
	}

	i.logger().Info("importing analysis", "name", params.String("Name"))

	resp, err := qsapi.CreateOrUpdate(ctx, i.API, qsapi.OpCreateAnalysis, qsapi.OpUpdateAnalysis, params)
	if err != nil {
		return Asset{}, nil, err
	}

	return Asset{
		Name:       params.String("Name"),
		ARN:        resp.String("Arn"),
		ID:         resp.String("AnalysisId"),
		OriginalID: originalID,
	}, definition, nil
}
