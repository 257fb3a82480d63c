package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quicksight-tools/qssync/internal/bundle"
	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// Exporter produces dump bundles from a source account.
type Exporter struct {
	API       qsapi.Caller
	AccountID string
	Logger    *slog.Logger
}

// fetched pairs an asset's definition with its permission list.
type fetched struct {
	definition  qsapi.Document
	permissions []any
}

// Dump assembles the complete bundle for one analysis: the analysis itself,
// the datasets it declares, the row-level-security datasets those reference,
// and every data source any of them depend on. Any fetch failure aborts the
// export; no partial bundle is produced.
func (e *Exporter) Dump(ctx context.Context, analysisID string) (*bundle.Bundle, error) {
	if e.AccountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}
	if e.API == nil {
		return nil, fmt.Errorf("API client is required")
	}
	if analysisID == "" {
		return nil, fmt.Errorf("analysis ID is required")
	}
	log := e.logger()

	analysis, err := e.analysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	log.Info("fetched analysis", "id", analysisID, "name", analysis.definition.String("Name"))

	datasetIDs, err := AnalysisDatasetIDs(analysis.definition)
	if err != nil {
		return nil, err
	}
	analysisDatasets, err := e.datasets(ctx, datasetIDs)
	if err != nil {
		return nil, err
	}
	log.Info("fetched analysis datasets", "count", len(analysisDatasets))

	securityIDs, err := SecurityDatasetIDs(definitions(analysisDatasets))
	if err != nil {
		return nil, err
	}
	securityDatasets, err := e.datasets(ctx, securityIDs)
	if err != nil {
		return nil, err
	}
	log.Info("fetched security datasets", "count", len(securityDatasets))

	allDatasets := append(definitions(analysisDatasets), definitions(securityDatasets)...)
	datasourceIDs, err := DataSourceIDs(allDatasets)
	if err != nil {
		return nil, err
	}
	datasources, err := e.datasources(ctx, datasourceIDs)
	if err != nil {
		return nil, err
	}
	log.Info("fetched data sources", "count", len(datasources))

	b := &bundle.Bundle{
		Analysis:         dumpAnalysis(analysis),
		AnalysisDatasets: []qsapi.Document{},
		SecurityDatasets: []qsapi.Document{},
		DataSources:      []qsapi.Document{},
	}
	for _, ds := range analysisDatasets {
		b.AnalysisDatasets = append(b.AnalysisDatasets, dumpDataset(ds))
	}
	for _, ds := range securityDatasets {
		b.SecurityDatasets = append(b.SecurityDatasets, dumpDataset(ds))
	}
	for _, ds := range datasources {
		b.DataSources = append(b.DataSources, dumpDataSource(ds))
	}
	return b, nil
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (e *Exporter) analysis(ctx context.Context, analysisID string) (fetched, error) {
	params := qsapi.Document{"AwsAccountId": e.AccountID, "AnalysisId": analysisID}

	def, err := qsapi.Describe(ctx, e.API, qsapi.OpDescribeAnalysisDefinition, params)
	if err != nil {
		return fetched{}, err
	}
	perms, err := qsapi.Describe(ctx, e.API, qsapi.OpDescribeAnalysisPermissions, params)
	if err != nil {
		return fetched{}, err
	}
	return fetched{definition: def, permissions: perms.List("Permissions")}, nil
}

func (e *Exporter) datasets(ctx context.Context, ids []string) ([]fetched, error) {
	out := make([]fetched, 0, len(ids))
	for _, id := range ids {
		params := qsapi.Document{"AwsAccountId": e.AccountID, "DataSetId": id}

		resp, err := qsapi.Describe(ctx, e.API, qsapi.OpDescribeDataSet, params)
		if err != nil {
			return nil, err
		}
		perms, err := qsapi.Describe(ctx, e.API, qsapi.OpDescribeDataSetPermissions, params)
		if err != nil {
			return nil, err
		}
		out = append(out, fetched{definition: resp.Map("DataSet"), permissions: perms.List("Permissions")})
	}
	return out, nil
}

func (e *Exporter) datasources(ctx context.Context, ids []string) ([]fetched, error) {
	out := make([]fetched, 0, len(ids))
	for _, id := range ids {
		params := qsapi.Document{"AwsAccountId": e.AccountID, "DataSourceId": id}

		resp, err := qsapi.Describe(ctx, e.API, qsapi.OpDescribeDataSource, params)
		if err != nil {
			return nil, err
		}
		perms, err := qsapi.Describe(ctx, e.API, qsapi.OpDescribeDataSourcePermissions, params)
		if err != nil {
			return nil, err
		}
		out = append(out, fetched{definition: resp.Map("DataSource"), permissions: perms.List("Permissions")})
	}
	return out, nil
}

func definitions(assets []fetched) []qsapi.Document {
	out := make([]qsapi.Document, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.definition)
	}
	return out
}

// dumpAnalysis flattens an analysis fetch into a single bundle record.
func dumpAnalysis(a fetched) qsapi.Document {
	return qsapi.Document{
		"AnalysisId":  a.definition["AnalysisId"],
		"Name":        a.definition["Name"],
		"Definition":  a.definition["Definition"],
		"Permissions": a.permissions,
	}
}

func dumpDataset(ds fetched) qsapi.Document {
	return qsapi.Document{
		"DataSetId":                 ds.definition["DataSetId"],
		"Name":                      ds.definition["Name"],
		"PhysicalTableMap":          ds.definition["PhysicalTableMap"],
		"LogicalTableMap":           ds.definition["LogicalTableMap"],
		"OutputColumns":             ds.definition["OutputColumns"],
		"ImportMode":                ds.definition["ImportMode"],
		"Permissions":               ds.permissions,
		"RowLevelPermissionDataSet": ds.definition["RowLevelPermissionDataSet"],
		"DataSetUsageConfiguration": ds.definition["DataSetUsageConfiguration"],
	}
}

// dumpDataSource flattens a data source record. Credentials are always
// cleared: the describe API never returns them, so a dump can never carry
// secrets between accounts.
func dumpDataSource(ds fetched) qsapi.Document {
	return qsapi.Document{
		"DataSourceId":            ds.definition["DataSourceId"],
		"Name":                    ds.definition["Name"],
		"Type":                    ds.definition["Type"],
		"DataSourceParameters":    ds.definition["DataSourceParameters"],
		"Credentials":             nil,
		"Permissions":             ds.permissions,
		"VpcConnectionProperties": ds.definition["VpcConnectionProperties"],
		"SslProperties":           ds.definition["SslProperties"],
		"ErrorInfo":               ds.definition["ErrorInfo"],
	}
}
