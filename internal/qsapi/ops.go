package qsapi

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
)

// Op identifies one QuickSight control-plane operation: its REST method and
// path template. Path members in braces are filled from the call parameters;
// whatever is left over becomes the request body on POST/PUT.
type Op struct {
	Name   string
	Method string
	Path   string
}

// Operations used by the export and import pipelines.
var (
	OpDescribeAnalysisDefinition    = Op{"DescribeAnalysisDefinition", http.MethodGet, "/accounts/{AwsAccountId}/analyses/{AnalysisId}/definition"}
	OpDescribeAnalysisPermissions   = Op{"DescribeAnalysisPermissions", http.MethodGet, "/accounts/{AwsAccountId}/analyses/{AnalysisId}/permissions"}
	OpDescribeDataSet               = Op{"DescribeDataSet", http.MethodGet, "/accounts/{AwsAccountId}/data-sets/{DataSetId}"}
	OpDescribeDataSetPermissions    = Op{"DescribeDataSetPermissions", http.MethodGet, "/accounts/{AwsAccountId}/data-sets/{DataSetId}/permissions"}
	OpDescribeDataSource            = Op{"DescribeDataSource", http.MethodGet, "/accounts/{AwsAccountId}/data-sources/{DataSourceId}"}
	OpDescribeDataSourcePermissions = Op{"DescribeDataSourcePermissions", http.MethodGet, "/accounts/{AwsAccountId}/data-sources/{DataSourceId}/permissions"}

	OpSearchAnalyses    = Op{"SearchAnalyses", http.MethodPost, "/accounts/{AwsAccountId}/search/analyses"}
	OpSearchDataSets    = Op{"SearchDataSets", http.MethodPost, "/accounts/{AwsAccountId}/search/data-sets"}
	OpSearchDataSources = Op{"SearchDataSources", http.MethodPost, "/accounts/{AwsAccountId}/search/data-sources"}

	OpCreateDataSource = Op{"CreateDataSource", http.MethodPost, "/accounts/{AwsAccountId}/data-sources"}
	OpUpdateDataSource = Op{"UpdateDataSource", http.MethodPut, "/accounts/{AwsAccountId}/data-sources/{DataSourceId}"}
	OpCreateDataSet    = Op{"CreateDataSet", http.MethodPost, "/accounts/{AwsAccountId}/data-sets"}
	OpUpdateDataSet    = Op{"UpdateDataSet", http.MethodPut, "/accounts/{AwsAccountId}/data-sets/{DataSetId}"}
	OpCreateAnalysis   = Op{"CreateAnalysis", http.MethodPost, "/accounts/{AwsAccountId}/analyses/{AnalysisId}"}
	OpUpdateAnalysis   = Op{"UpdateAnalysis", http.MethodPut, "/accounts/{AwsAccountId}/analyses/{AnalysisId}"}
	OpCreateDashboard  = Op{"CreateDashboard", http.MethodPost, "/accounts/{AwsAccountId}/dashboards/{DashboardId}"}
	OpUpdateDashboard  = Op{"UpdateDashboard", http.MethodPut, "/accounts/{AwsAccountId}/dashboards/{DashboardId}"}

	OpUpdateDashboardPublishedVersion = Op{"UpdateDashboardPublishedVersion", http.MethodPut, "/accounts/{AwsAccountId}/dashboards/{DashboardId}/versions/{VersionNumber}"}
)

var pathMemberRe = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// render substitutes path members from params and returns the resolved path
// together with the leftover parameters (the request body candidates).
func (op Op) render(params Document) (string, Document, error) {
	body := make(Document, len(params))
	for k, v := range params {
		body[k] = v
	}

	var renderErr error
	path := pathMemberRe.ReplaceAllStringFunc(op.Path, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := body[key]
		if !ok || v == nil {
			renderErr = fmt.Errorf("%s: missing required parameter %q", op.Name, key)
			return m
		}
		delete(body, key)
		return url.PathEscape(fmt.Sprint(v))
	})
	if renderErr != nil {
		return "", nil, renderErr
	}
	return path, body, nil
}
