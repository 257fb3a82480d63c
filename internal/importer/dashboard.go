package importer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quicksight-tools/qssync/internal/qsapi"
)

// dashboardSuffix derives the dashboard's ID and name from the original
// analysis's.
const dashboardSuffix = "_dashboard"

// defaultPublishOptions is the fixed publish configuration applied to every
// imported dashboard: exports enabled, ad-hoc filtering off, sheet controls
// collapsed.
func defaultPublishOptions() qsapi.Document {
	return qsapi.Document{
		"AdHocFilteringOption":                 qsapi.Document{"AvailabilityStatus": "DISABLED"},
		"ExportToCSVOption":                    qsapi.Document{"AvailabilityStatus": "ENABLED"},
		"SheetControlsOption":                  qsapi.Document{"VisibilityState": "COLLAPSED"},
		"SheetLayoutElementMaximizationOption": qsapi.Document{"AvailabilityStatus": "ENABLED"},
		"VisualMenuOption":                     qsapi.Document{"AvailabilityStatus": "ENABLED"},
		"VisualAxisSortOption":                 qsapi.Document{"AvailabilityStatus": "ENABLED"},
		"ExportWithHiddenFieldsOption":         qsapi.Document{"AvailabilityStatus": "DISABLED"},
		"DataPointDrillUpDownOption":           qsapi.Document{"AvailabilityStatus": "ENABLED"},
		"DataPointMenuLabelOption":             qsapi.Document{"AvailabilityStatus": "ENABLED"},
		"DataPointTooltipOption":               qsapi.Document{"AvailabilityStatus": "ENABLED"},
	}
}

// dashboardVersion parses the draft version number from a dashboard version
// ARN, e.g. arn:...:dashboard/id/version/3 -> 3.
func dashboardVersion(versionARN string) (int, error) {
	v, err := strconv.Atoi(qsapi.IDFromARN(versionARN))
	if err != nil {
		return 0, fmt.Errorf("can't parse version from %q: %w", versionARN, err)
	}
	return v, nil
}

// importDashboard publishes a dashboard from the recreated analysis. The
// dashboard's ID and name derive from the original analysis's, the definition
// is the already-remapped one, and the draft version returned by create is
// published explicitly with a second call.
func (i *Importer) importDashboard(ctx context.Context, analysis, definition qsapi.Document) (Dashboard, error) {
	dashboardID := analysis.String("AnalysisId") + dashboardSuffix

	params := qsapi.Document{
		"AwsAccountId":            i.AccountID,
		"DashboardId":             dashboardID,
		"Name":                    analysis.String("Name") + dashboardSuffix,
		"Definition":              definition,
		"DashboardPublishOptions": defaultPublishOptions(),
	}
	if len(i.DashboardGrants) > 0 {
		params["Permissions"] = i.DashboardGrants
	}

	i.logger().Info("importing dashboard", "id", dashboardID)

	resp, err := qsapi.CreateOrUpdate(ctx, i.API, qsapi.OpCreateDashboard, qsapi.OpUpdateDashboard, params)
	if err != nil {
		return Dashboard{}, err
	}

	version, err := dashboardVersion(resp.String("VersionArn"))
	if err != nil {
		return Dashboard{}, err
	}

	publishResp, err := i.API.Call(ctx, qsapi.OpUpdateDashboardPublishedVersion, qsapi.Document{
		"AwsAccountId":  i.AccountID,
		"DashboardId":   resp.String("DashboardId"),
		"VersionNumber": version,
	})
	if err != nil {
		return Dashboard{}, err
	}
	if !qsapi.StatusOK(publishResp.Int("Status")) {
		return Dashboard{}, &qsapi.ResponseError{
			Op:       qsapi.OpUpdateDashboardPublishedVersion.Name,
			Status:   publishResp.Int("Status"),
			Response: publishResp,
		}
	}

	i.logger().Info("published dashboard", "id", resp.String("DashboardId"), "version", version)

	return Dashboard{
		ID:            resp.String("DashboardId"),
		ARN:           resp.String("Arn"),
		Version:       version,
		PublishStatus: publishResp.Int("Status"),
	}, nil
}
