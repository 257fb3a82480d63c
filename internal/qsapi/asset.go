package qsapi

import (
	"context"
	"fmt"
)

// searchMaxResults bounds filtered search responses. Lookups expect zero or
// one match, so a small page is enough to detect ambiguity.
const searchMaxResults = 10

// StatusOK reports whether a response status lies in the success range.
func StatusOK(status int) bool {
	return status >= 200 && status < 300
}

// Describe performs a describe operation and validates the response status.
// The full response document is returned; callers pick out the member they
// need (the definition object, the Permissions list, ...).
func Describe(ctx context.Context, c Caller, op Op, params Document) (Document, error) {
	resp, err := c.Call(ctx, op, params)
	if err != nil {
		return nil, err
	}
	if !StatusOK(resp.Int("Status")) {
		return nil, &ResponseError{Op: op.Name, Status: resp.Int("Status"), Response: resp}
	}
	return resp, nil
}

// FindAssets performs a filtered search and returns the matches found under
// lookupField. Zero matches is an error: the caller asked for something that
// does not exist.
func FindAssets(ctx context.Context, c Caller, op Op, accountID string, filters []Document, lookupField string) ([]Document, error) {
	params := Document{
		"AwsAccountId": accountID,
		"Filters":      filters,
		"MaxResults":   searchMaxResults,
	}
	resp, err := c.Call(ctx, op, params)
	if err != nil {
		return nil, err
	}
	if !StatusOK(resp.Int("Status")) {
		return nil, &ResponseError{Op: op.Name, Status: resp.Int("Status"), Response: resp}
	}

	assets := resp.Docs(lookupField)
	if len(assets) == 0 {
		return nil, &NotFoundError{Op: op.Name, Filters: filters}
	}
	return assets, nil
}

// FindAssetIDs searches and returns the idKey field of every match.
func FindAssetIDs(ctx context.Context, c Caller, op Op, accountID string, filters []Document, lookupField, idKey string) ([]string, error) {
	assets, err := FindAssets(ctx, c, op, accountID, filters, lookupField)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.String(idKey))
	}
	return ids, nil
}

// FindAssetID searches for exactly one asset and returns its ID. More than
// one match is an ambiguity error.
func FindAssetID(ctx context.Context, c Caller, op Op, accountID string, filters []Document, lookupField, idKey string) (string, error) {
	ids, err := FindAssetIDs(ctx, c, op, accountID, filters, lookupField, idKey)
	if err != nil {
		return "", err
	}
	if len(ids) > 1 {
		return "", &AmbiguousMatchError{Op: op.Name, IDs: ids}
	}
	return ids[0], nil
}

// CreateOrUpdate attempts the create operation and, when the provider reports
// the asset already exists, retries as an update with the fields that are
// illegal on update (Permissions, and Type for data sources) stripped. Any
// other create failure propagates unchanged. The response of whichever call
// ran is status-validated.
func CreateOrUpdate(ctx context.Context, c Caller, createOp, updateOp Op, params Document) (Document, error) {
	resp, err := c.Call(ctx, createOp, params)
	if err != nil {
		if !IsResourceExists(err) {
			return nil, err
		}

		update := make(Document, len(params))
		for k, v := range params {
			update[k] = v
		}
		delete(update, "Permissions")
		delete(update, "Type")

		resp, err = c.Call(ctx, updateOp, update)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", updateOp.Name, err)
		}
	}

	if !StatusOK(resp.Int("Status")) {
		return nil, &ResponseError{Op: createOp.Name, Status: resp.Int("Status"), Response: resp}
	}
	return resp, nil
}
