package store_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
	"github.com/sampattitrack/engine/internal/types"
)

func remoteTransaction(id uuid.UUID, description string) models.Transaction {
	transaction := models.Transaction{
		Date:        types.NewDate(2024, time.March, 1),
		Description: description,
		Postings: []models.Posting{
			{AccountPath: "Expenses:Rent", Amount: decimal.NewFromInt(15000)},
			{AccountPath: "Assets:Checking", Amount: decimal.NewFromInt(-15000)},
		},
	}
	transaction.ID = id
	return transaction
}

func (suite *TestSuiteStandard) TestImportInsertsUnknown() {
	id := uuid.New()

	result, err := store.ImportTransactions([]models.Transaction{remoteTransaction(id, "Rent")}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Inserted)
	assert.Equal(suite.T(), 0, result.Skipped)

	var loaded models.Transaction
	require.NoError(suite.T(), models.DB.Preload("Postings").First(&loaded, "id = ?", id).Error)
	assert.False(suite.T(), loaded.Dirty, "pulled records are owned by the server")
	assert.Len(suite.T(), loaded.Postings, 2)
	assert.Equal(suite.T(), 0, loaded.Postings[0].Position)
	assert.Equal(suite.T(), 1, loaded.Postings[1].Position)
}

func (suite *TestSuiteStandard) TestImportIdempotent() {
	id := uuid.New()
	batch := []models.Transaction{remoteTransaction(id, "Rent")}

	_, err := store.ImportTransactions(batch, nil)
	require.NoError(suite.T(), err)

	// Importing the same record again must not duplicate anything
	result, err := store.ImportTransactions([]models.Transaction{remoteTransaction(id, "Rent")}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, result.Inserted)
	assert.Equal(suite.T(), 1, result.Skipped)

	var transactionCount, postingCount int64
	models.DB.Model(&models.Transaction{}).Count(&transactionCount)
	models.DB.Model(&models.Posting{}).Count(&postingCount)
	assert.Equal(suite.T(), int64(1), transactionCount)
	assert.Equal(suite.T(), int64(2), postingCount)
}

func (suite *TestSuiteStandard) TestImportNeverOverwritesClean() {
	id := uuid.New()
	_, err := store.ImportTransactions([]models.Transaction{remoteTransaction(id, "Rent")}, nil)
	require.NoError(suite.T(), err)

	// The server would not normally change an immutable transaction, but
	// even if it does, the local clean copy is skipped, not replaced
	changed := remoteTransaction(id, "Rent, revised")
	_, err = store.ImportTransactions([]models.Transaction{changed}, nil)
	require.NoError(suite.T(), err)

	var loaded models.Transaction
	require.NoError(suite.T(), models.DB.First(&loaded, "id = ?", id).Error)
	assert.Equal(suite.T(), "Rent", loaded.Description)
}

func (suite *TestSuiteStandard) TestImportLeavesDirtyUntouched() {
	local := groceriesTransaction()
	require.NoError(suite.T(), store.CreateTransaction(&local))
	require.True(suite.T(), local.Dirty)

	incoming := remoteTransaction(local.ID, "Server version")
	result, err := store.ImportTransactions([]models.Transaction{incoming}, nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Skipped)

	var loaded models.Transaction
	require.NoError(suite.T(), models.DB.First(&loaded, "id = ?", local.ID).Error)
	assert.Equal(suite.T(), "Groceries", loaded.Description)
	assert.True(suite.T(), loaded.Dirty, "the local edit wins until it is pushed")
}

func (suite *TestSuiteStandard) TestImportResolvesTags() {
	food := models.Tag{ID: "tag-food", Name: "Food"}
	require.NoError(suite.T(), models.DB.Create(&food).Error)

	transaction := remoteTransaction(uuid.New(), "Dinner")
	transaction.Postings[0].Tags = []models.Tag{{ID: "tag-food"}, {ID: "tag-unknown"}}

	_, err := store.ImportTransactions([]models.Transaction{transaction}, map[string]models.Tag{"tag-food": food})
	require.NoError(suite.T(), err)

	var loaded models.Transaction
	require.NoError(suite.T(), models.DB.Preload("Postings.Tags").First(&loaded, "id = ?", transaction.ID).Error)

	require.Len(suite.T(), loaded.Postings[0].Tags, 1, "unknown tag references are dropped")
	assert.Equal(suite.T(), "Food", loaded.Postings[0].Tags[0].Name)
}

func (suite *TestSuiteStandard) TestUpsertAccountsPreservesLocalState() {
	rate := 0.12
	computedAt := time.Now().In(time.UTC)

	existing := models.Account{
		Path:           "Assets:Broker",
		Name:           "Old name",
		Category:       models.CategoryAsset,
		Dirty:          true,
		CachedXIRR:     &rate,
		XIRRComputedAt: &computedAt,
	}
	require.NoError(suite.T(), models.DB.Create(&existing).Error)

	err := store.UpsertAccounts([]models.Account{{
		Path:     "Assets:Broker",
		Name:     "Broker",
		Category: models.CategoryAsset,
	}})
	require.NoError(suite.T(), err)

	var loaded models.Account
	require.NoError(suite.T(), models.DB.First(&loaded, "path = ?", existing.Path).Error)

	assert.Equal(suite.T(), "Broker", loaded.Name, "remote fields are merged in")
	assert.True(suite.T(), loaded.Dirty, "the dirty flag is device-local state")
	require.NotNil(suite.T(), loaded.CachedXIRR)
	assert.Equal(suite.T(), rate, *loaded.CachedXIRR)
}

func (suite *TestSuiteStandard) TestUpsertAccountsInsertsClean() {
	err := store.UpsertAccounts([]models.Account{{
		Path:     "Income:Salary",
		Category: models.CategoryIncome,
	}})
	require.NoError(suite.T(), err)

	var loaded models.Account
	require.NoError(suite.T(), models.DB.First(&loaded, "path = ?", "Income:Salary").Error)
	assert.False(suite.T(), loaded.Dirty)
}

func (suite *TestSuiteStandard) TestUpsertTagsLastWriteWins() {
	require.NoError(suite.T(), store.UpsertTags([]models.Tag{{ID: "tag-food", Name: "Food"}}))
	require.NoError(suite.T(), store.UpsertTags([]models.Tag{{ID: "tag-food", Name: "Food & Drink"}}))

	var loaded models.Tag
	require.NoError(suite.T(), models.DB.First(&loaded, "id = ?", "tag-food").Error)
	assert.Equal(suite.T(), "Food & Drink", loaded.Name)

	var count int64
	models.DB.Model(&models.Tag{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestUpsertTagsKeepsCreatedAt() {
	require.NoError(suite.T(), store.UpsertTags([]models.Tag{{ID: "tag-food", Name: "Food"}}))

	var created models.Tag
	require.NoError(suite.T(), models.DB.First(&created, "id = ?", "tag-food").Error)
	require.False(suite.T(), created.CreatedAt.IsZero())

	require.NoError(suite.T(), store.UpsertTags([]models.Tag{{ID: "tag-food", Name: "Food & Drink"}}))

	var updated models.Tag
	require.NoError(suite.T(), models.DB.First(&updated, "id = ?", "tag-food").Error)
	assert.Equal(suite.T(), "Food & Drink", updated.Name)
	assert.True(suite.T(), updated.CreatedAt.Equal(created.CreatedAt), "re-pull reset CreatedAt to %s", updated.CreatedAt)
}

func (suite *TestSuiteStandard) TestUpsertUnitsKeepsCreatedAt() {
	require.NoError(suite.T(), store.UpsertUnits([]models.Unit{{Code: "INR", Name: "Rupee"}}))

	var created models.Unit
	require.NoError(suite.T(), models.DB.First(&created, "code = ?", "INR").Error)
	require.False(suite.T(), created.CreatedAt.IsZero())

	require.NoError(suite.T(), store.UpsertUnits([]models.Unit{{Code: "INR", Name: "Indian Rupee", Symbol: "₹"}}))

	var updated models.Unit
	require.NoError(suite.T(), models.DB.First(&updated, "code = ?", "INR").Error)
	assert.Equal(suite.T(), "Indian Rupee", updated.Name)
	assert.True(suite.T(), updated.CreatedAt.Equal(created.CreatedAt), "re-pull reset CreatedAt to %s", updated.CreatedAt)
}

func (suite *TestSuiteStandard) TestUpsertPrices() {
	prices := []models.Price{
		{UnitCode: "NIFTYBEES", Date: types.NewDate(2024, time.March, 1), Price: decimal.NewFromFloat(245.10), Currency: "INR"},
		{UnitCode: "NIFTYBEES", Date: types.NewDate(2024, time.March, 4), Price: decimal.NewFromFloat(247.85), Currency: "INR"},
	}
	require.NoError(suite.T(), store.UpsertPrices(prices))

	// Re-pulling a corrected quote overwrites by (unit, date)
	require.NoError(suite.T(), store.UpsertPrices([]models.Price{
		{UnitCode: "NIFTYBEES", Date: types.NewDate(2024, time.March, 4), Price: decimal.NewFromFloat(248.00), Currency: "INR"},
	}))

	latest, err := store.LatestPrice("NIFTYBEES")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), types.NewDate(2024, time.March, 4), latest.Date)
	assert.True(suite.T(), latest.Price.Equal(decimal.NewFromFloat(248.00)))

	var count int64
	models.DB.Model(&models.Price{}).Count(&count)
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *TestSuiteStandard) TestSaveReport() {
	payload := json.RawMessage(`{"totalValue": 123456}`)
	require.NoError(suite.T(), store.SaveReport("portfolio", "", payload))

	// A fresher snapshot replaces the stored one
	fresher := json.RawMessage(`{"totalValue": 130000}`)
	require.NoError(suite.T(), store.SaveReport("portfolio", "", fresher))

	report, err := store.Report("portfolio", "")
	require.NoError(suite.T(), err)
	assert.JSONEq(suite.T(), string(fresher), string(report.Payload))
	assert.False(suite.T(), report.FetchedAt.IsZero())
}

func (suite *TestSuiteStandard) TestAccountsGlobFilter() {
	for _, path := range []string{"Assets:Checking", "Assets:Broker", "Expenses:Food"} {
		require.NoError(suite.T(), models.DB.Create(&models.Account{Path: path, Category: models.CategoryAsset}).Error)
	}

	accounts, err := store.Accounts("Assets:*")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), accounts, 2)
	assert.Equal(suite.T(), "Assets:Broker", accounts[0].Path)
	assert.Equal(suite.T(), "Assets:Checking", accounts[1].Path)
}
