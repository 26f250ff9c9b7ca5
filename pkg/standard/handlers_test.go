package standard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *ConfigStore) {
	t.Helper()
	store := newTestStore(t)
	srv := httptest.NewServer(NewRouter(store))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Principal", "alice")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_AddAndListTechnologies(t *testing.T) {
	srv, _ := newTestServer(t)

	var entry ChangeLogEntry
	status := doJSON(t, http.MethodPost, srv.URL+"/technologies",
		map[string]string{"code": "VIB", "description": "Vibration analysis"}, &entry)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, StatusApplied, entry.Status)
	assert.Equal(t, "alice", entry.RequestedBy)

	status = doJSON(t, http.MethodPost, srv.URL+"/technologies",
		map[string]string{"code": "VIB"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	var list struct {
		Technologies []Technology `json:"technologies"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/technologies", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Technologies, 1)
	assert.Equal(t, "VIB", list.Technologies[0].Code)
}

func TestAPI_ResolveClass(t *testing.T) {
	srv, store := newTestServer(t)
	seedStandard(t, store)

	var result struct {
		Class        string                      `json:"class"`
		Technologies map[string]ClassRequirement `json:"technologies"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/classes/Centrifugal%20Pump/technologies", nil, &result)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Centrifugal Pump", result.Class)
	require.Len(t, result.Technologies, 2)
	assert.Equal(t, ApplicationPrimary, result.Technologies["VIB"].ApplicationType)
	assert.Equal(t, []string{"Coupling", "Pump Unit"}, result.Technologies["VIB"].Components)

	status = doJSON(t, http.MethodGet, srv.URL+"/classes/Turbine/technologies", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_AssignmentsValidation(t *testing.T) {
	srv, store := newTestServer(t)
	seedStandard(t, store)

	status := doJSON(t, http.MethodPost, srv.URL+"/components/Pump%20Unit/technologies",
		map[string]string{"technologyCode": "OIL", "applicationType": "Tertiary"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/components/Shaft/technologies",
		map[string]string{"technologyCode": "OIL", "applicationType": "Primary"}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/components/Pump%20Unit/technologies",
		map[string]string{"technologyCode": "OIL", "applicationType": "Primary"}, nil)
	assert.Equal(t, http.StatusCreated, status)

	// Repeating the identical assignment is acknowledged, not re-logged.
	var noop struct {
		Status string `json:"status"`
	}
	status = doJSON(t, http.MethodPost, srv.URL+"/components/Pump%20Unit/technologies",
		map[string]string{"technologyCode": "OIL", "applicationType": "Primary"}, &noop)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "unchanged", noop.Status)
}

func TestAPI_RequestLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	seedStandard(t, store)

	var queued struct {
		RequestID string       `json:"requestId"`
		Status    ChangeStatus `json:"status"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/requests/remove-component",
		map[string]string{"componentName": "Coupling", "reason": "obsolete"}, &queued)
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, StatusPending, queued.Status)
	require.NotEmpty(t, queued.RequestID)

	var pending struct {
		Requests  []ChangeLogEntry `json:"requests"`
		TotalSize int              `json:"totalSize"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/requests", nil, &pending)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, pending.TotalSize)

	var approved ChangeLogEntry
	status = doJSON(t, http.MethodPost, srv.URL+"/requests/"+queued.RequestID+"/approve", map[string]string{}, &approved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "alice", approved.ReviewedBy)

	comp, err := store.GetComponent("Coupling")
	require.NoError(t, err)
	assert.Nil(t, comp)

	// A second approval of the same entry conflicts.
	status = doJSON(t, http.MethodPost, srv.URL+"/requests/"+queued.RequestID+"/approve", map[string]string{}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// An unknown request kind is not routed.
	status = doJSON(t, http.MethodPost, srv.URL+"/requests/drop-everything", map[string]string{}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_RejectKeepsData(t *testing.T) {
	srv, store := newTestServer(t)
	seedStandard(t, store)

	var queued struct {
		RequestID string `json:"requestId"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/requests/update-application-type",
		map[string]string{
			"componentName":   "Coupling",
			"technologyCode":  "VIB",
			"applicationType": "Primary",
		}, &queued)
	require.Equal(t, http.StatusAccepted, status)

	var rejected ChangeLogEntry
	status = doJSON(t, http.MethodPost, srv.URL+"/requests/"+queued.RequestID+"/reject",
		map[string]string{"note": "keep as is"}, &rejected)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "keep as is", rejected.ReviewNote)

	row, err := store.GetComponentTechnology("Coupling", "VIB")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, ApplicationSecondary, row.ApplicationType)
}

func TestAPI_BulkDecision(t *testing.T) {
	srv, store := newTestServer(t)
	seedStandard(t, store)

	var first, second struct {
		RequestID string `json:"requestId"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/requests/remove-component-technology",
		map[string]string{"componentName": "Pump Unit", "technologyCode": "IR"}, &first)
	require.Equal(t, http.StatusAccepted, status)
	status = doJSON(t, http.MethodPost, srv.URL+"/requests/remove-class-component",
		map[string]string{"className": "Centrifugal Pump", "componentName": "Coupling"}, &second)
	require.Equal(t, http.StatusAccepted, status)

	var result struct {
		Outcomes []BatchOutcome `json:"outcomes"`
	}
	status = doJSON(t, http.MethodPost, srv.URL+"/requests/approve-all",
		map[string]any{"ids": []string{first.RequestID, "no-such-id", second.RequestID}}, &result)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "approved", result.Outcomes[0].Kind)
	assert.Equal(t, "invalid_state", result.Outcomes[1].Kind)
	assert.Equal(t, "approved", result.Outcomes[2].Kind)

	status = doJSON(t, http.MethodPost, srv.URL+"/requests/approve-all",
		map[string]any{"ids": []string{}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_ValidateAndSummary(t *testing.T) {
	srv, store := newTestServer(t)
	seedStandard(t, store)
	require.NoError(t, store.InsertComponent(&Component{Name: "Shaft"}))

	var validation struct {
		Findings []Finding `json:"findings"`
		Clean    bool      `json:"clean"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/validate", nil, &validation)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, validation.Clean)
	require.Len(t, validation.Findings, 2)

	var summary struct {
		Counts          map[string]int64 `json:"counts"`
		PendingRequests int              `json:"pendingRequests"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/summary", nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(4), summary.Counts["components"])
	assert.Zero(t, summary.PendingRequests)
}

func TestAPI_ChangeLogPagination(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, code := range []string{"VIB", "IR", "OIL"} {
		status := doJSON(t, http.MethodPost, srv.URL+"/technologies",
			map[string]string{"code": code}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var page struct {
		Entries       []ChangeLogEntry `json:"entries"`
		NextPageToken string           `json:"nextPageToken"`
		TotalSize     int              `json:"totalSize"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/changelog?pageSize=2", nil, &page)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, page.TotalSize)
	assert.Len(t, page.Entries, 2)
	assert.NotEmpty(t, page.NextPageToken)
}
