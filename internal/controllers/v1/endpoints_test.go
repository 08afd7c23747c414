package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampattitrack/engine/internal/analytics"
	v1 "github.com/sampattitrack/engine/internal/controllers/v1"
	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
	"github.com/sampattitrack/engine/internal/sync"
	"github.com/sampattitrack/engine/internal/types"
	"github.com/sampattitrack/engine/test"
)

func (suite *TestSuiteStandard) TestGetTransactionsEmpty() {
	recorder := suite.request(http.MethodGet, "/v1/transactions", nil)

	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	assert.JSONEq(suite.T(), `[]`, recorder.Body.String())
}

func (suite *TestSuiteStandard) TestCreateTransaction() {
	recorder := suite.request(http.MethodPost, "/v1/transactions", balancedTransactionBody())
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var created models.Transaction
	test.DecodeResponse(suite.T(), &recorder, &created)
	assert.True(suite.T(), created.Dirty)
	assert.NotEqual(suite.T(), uuid.Nil, created.ID)

	// The write is queued for delivery
	queueRecorder := suite.request(http.MethodGet, "/v1/queue", nil)
	test.AssertHTTPStatus(suite.T(), &queueRecorder, http.StatusOK)

	var items []models.SyncQueueItem
	test.DecodeResponse(suite.T(), &queueRecorder, &items)
	require.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), store.OpCreateTransaction, items[0].OperationType)
}

func (suite *TestSuiteStandard) TestCreateTransactionUnbalanced() {
	transaction := balancedTransactionBody()
	transaction.Postings = transaction.Postings[:1]

	recorder := suite.request(http.MethodPost, "/v1/transactions", transaction)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
	assert.Contains(suite.T(), recorder.Body.String(), "sum to zero")
}

func (suite *TestSuiteStandard) TestCreateTransactionInvalidBody() {
	recorder := suite.request(http.MethodPost, "/v1/transactions", `{ "date": `)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestDeleteTransaction() {
	transaction := balancedTransactionBody()
	require.NoError(suite.T(), store.CreateTransaction(&transaction))

	recorder := suite.request(http.MethodDelete, fmt.Sprintf("/v1/transactions/%s", transaction.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	listRecorder := suite.request(http.MethodGet, "/v1/transactions", nil)
	assert.JSONEq(suite.T(), `[]`, listRecorder.Body.String())
}

func (suite *TestSuiteStandard) TestDeleteTransactionInvalidID() {
	recorder := suite.request(http.MethodDelete, "/v1/transactions/not-a-uuid", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestDeleteTransactionNotFound() {
	recorder := suite.request(http.MethodDelete, fmt.Sprintf("/v1/transactions/%s", uuid.New()), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestGetAccountsGlob() {
	for _, path := range []string{"Assets:Checking", "Assets:Broker", "Expenses:Food"} {
		require.NoError(suite.T(), models.DB.Create(&models.Account{Path: path, Category: models.CategoryAsset}).Error)
	}

	recorder := suite.request(http.MethodGet, "/v1/accounts?path=Assets:*", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var accounts []models.Account
	test.DecodeResponse(suite.T(), &recorder, &accounts)
	assert.Len(suite.T(), accounts, 2)
}

func (suite *TestSuiteStandard) TestUpsertAccount() {
	account := models.Account{Path: "Assets:Checking", Name: "Checking", Category: models.CategoryAsset}

	recorder := suite.request(http.MethodPut, "/v1/accounts", account)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var saved models.Account
	test.DecodeResponse(suite.T(), &recorder, &saved)
	assert.True(suite.T(), saved.Dirty)
	assert.Equal(suite.T(), "Assets", saved.ParentPath)
}

func (suite *TestSuiteStandard) TestUpsertAccountInvalidCategory() {
	account := models.Account{Path: "Things", Category: "Stuff"}

	recorder := suite.request(http.MethodPut, "/v1/accounts", account)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
	assert.Contains(suite.T(), recorder.Body.String(), "category")
}

func (suite *TestSuiteStandard) TestComputeAccountXIRRPathRequired() {
	recorder := suite.request(http.MethodPost, "/v1/accounts/xirr", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestComputeAccountXIRRUnknownAccount() {
	recorder := suite.request(http.MethodPost, "/v1/accounts/xirr?path=Assets:Nope", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestUpsertAndGetTags() {
	recorder := suite.request(http.MethodPut, "/v1/tags", models.Tag{ID: "tag-food", Name: "Food"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	listRecorder := suite.request(http.MethodGet, "/v1/tags", nil)
	test.AssertHTTPStatus(suite.T(), &listRecorder, http.StatusOK)

	var tags []models.Tag
	test.DecodeResponse(suite.T(), &listRecorder, &tags)
	require.Len(suite.T(), tags, 1)
	assert.Equal(suite.T(), "Food", tags[0].Name)
}

func (suite *TestSuiteStandard) TestUpsertAndGetUnits() {
	recorder := suite.request(http.MethodPut, "/v1/units", models.Unit{Code: "INR", Name: "Indian Rupee", Symbol: "₹"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	listRecorder := suite.request(http.MethodGet, "/v1/units", nil)
	test.AssertHTTPStatus(suite.T(), &listRecorder, http.StatusOK)

	var units []models.Unit
	test.DecodeResponse(suite.T(), &listRecorder, &units)
	require.Len(suite.T(), units, 1)
	assert.Equal(suite.T(), "INR", units[0].Code)
}

func (suite *TestSuiteStandard) TestGetSummary() {
	require.NoError(suite.T(), models.DB.Create(&models.Account{Path: "Income:Salary", Category: models.CategoryIncome}).Error)
	require.NoError(suite.T(), models.DB.Create(&models.Account{Path: "Assets:Checking", Category: models.CategoryAsset}).Error)

	transaction := models.Transaction{
		Date: types.NewDate(2024, time.March, 1),
		Postings: []models.Posting{
			{AccountPath: "Income:Salary", Amount: decimal.NewFromInt(-1000)},
			{AccountPath: "Assets:Checking", Amount: decimal.NewFromInt(1000)},
		},
	}
	require.NoError(suite.T(), models.DB.Create(&transaction).Error)

	recorder := suite.request(http.MethodGet, "/v1/summary?from=2024-03-01&until=2024-03-31", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var summary analytics.Summary
	test.DecodeResponse(suite.T(), &recorder, &summary)
	assert.True(suite.T(), summary.Income.Equal(decimal.NewFromInt(1000)))
	assert.True(suite.T(), summary.NetWorth.Equal(decimal.NewFromInt(1000)))
}

func (suite *TestSuiteStandard) TestInvalidateCache() {
	require.NoError(suite.T(), models.DB.Create(&models.Account{Path: "Income:Salary", Category: models.CategoryIncome}).Error)
	require.NoError(suite.T(), models.DB.Create(&models.Account{Path: "Assets:Checking", Category: models.CategoryAsset}).Error)

	// Warm the cache on the empty ledger
	recorder := suite.request(http.MethodGet, "/v1/summary", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	// A write that bypasses the handlers stays invisible to the cached
	// projection
	transaction := models.Transaction{
		Date: types.NewDate(2024, time.March, 1),
		Postings: []models.Posting{
			{AccountPath: "Income:Salary", Amount: decimal.NewFromInt(-1000)},
			{AccountPath: "Assets:Checking", Amount: decimal.NewFromInt(1000)},
		},
	}
	require.NoError(suite.T(), models.DB.Create(&transaction).Error)

	recorder = suite.request(http.MethodGet, "/v1/summary", nil)
	var stale analytics.Summary
	test.DecodeResponse(suite.T(), &recorder, &stale)
	assert.True(suite.T(), stale.Income.IsZero())

	recorder = suite.request(http.MethodPost, "/v1/cache/invalidate", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = suite.request(http.MethodGet, "/v1/summary", nil)
	var fresh analytics.Summary
	test.DecodeResponse(suite.T(), &recorder, &fresh)
	assert.True(suite.T(), fresh.Income.Equal(decimal.NewFromInt(1000)))
}

func (suite *TestSuiteStandard) TestGetSummaryInvalidDate() {
	recorder := suite.request(http.MethodGet, "/v1/summary?from=tomorrow", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestGetNetWorthHistory() {
	recorder := suite.request(http.MethodGet, "/v1/net-worth-history?from=2024-01-01&until=2024-12-31", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var points []analytics.NetWorthPoint
	test.DecodeResponse(suite.T(), &recorder, &points)
	require.Len(suite.T(), points, 1)
	assert.True(suite.T(), points[0].Baseline)
}

func (suite *TestSuiteStandard) TestGetTagBreakdown() {
	recorder := suite.request(http.MethodGet, "/v1/tags/breakdown", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	assert.JSONEq(suite.T(), `[]`, recorder.Body.String())
}

func (suite *TestSuiteStandard) TestGetReportNotFound() {
	recorder := suite.request(http.MethodGet, "/v1/reports/portfolio", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestGetReport() {
	require.NoError(suite.T(), store.SaveReport("portfolio", "", json.RawMessage(`{"totalValue": 5}`)))

	recorder := suite.request(http.MethodGet, "/v1/reports/portfolio", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var report models.Report
	test.DecodeResponse(suite.T(), &recorder, &report)
	assert.JSONEq(suite.T(), `{"totalValue": 5}`, string(report.Payload))
}

func (suite *TestSuiteStandard) TestTriggerFullSync() {
	recorder := suite.request(http.MethodPost, "/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusAccepted)

	// The cycle runs asynchronously; wait for it to complete before the
	// database is torn down
	require.Eventually(suite.T(), func() bool {
		statusRecorder := suite.request(http.MethodGet, "/v1/sync/status", nil)

		var status sync.Status
		test.DecodeResponse(suite.T(), &statusRecorder, &status)
		return !status.Syncing && status.LastSyncAt != nil
	}, 5*time.Second, 10*time.Millisecond)
}

func (suite *TestSuiteStandard) TestTriggerPullInvalidScope() {
	recorder := suite.request(http.MethodPost, "/v1/sync/pull?scope=bogus", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestGetSyncStatus() {
	recorder := suite.request(http.MethodGet, "/v1/sync/status", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var status v1.SyncStatusResponse
	test.DecodeResponse(suite.T(), &recorder, &status)
	assert.False(suite.T(), status.Syncing)
	assert.Zero(suite.T(), status.QueueDepth)
}

func (suite *TestSuiteStandard) TestClearQueueNeedsConfirmation() {
	recorder := suite.request(http.MethodDelete, "/v1/queue", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = suite.request(http.MethodDelete, "/v1/queue?confirm=yes-please-delete-everything", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestClearAllLocalData() {
	transaction := balancedTransactionBody()
	require.NoError(suite.T(), store.CreateTransaction(&transaction))

	recorder := suite.request(http.MethodDelete, "/v1/data", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = suite.request(http.MethodDelete, "/v1/data?confirm=yes-please-delete-everything", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	listRecorder := suite.request(http.MethodGet, "/v1/transactions", nil)
	assert.JSONEq(suite.T(), `[]`, listRecorder.Body.String())
}

func (suite *TestSuiteStandard) TestMethodNotAllowed() {
	recorder := suite.request(http.MethodPatch, "/v1/transactions", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusMethodNotAllowed)
}
