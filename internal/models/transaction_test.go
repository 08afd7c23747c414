package models_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/types"
)

func balancedTransaction() models.Transaction {
	return models.Transaction{
		Date:        types.NewDate(2024, time.March, 15),
		Description: "Groceries",
		Postings: []models.Posting{
			{AccountPath: "Expenses:Food", Amount: decimal.NewFromFloat(54.30)},
			{AccountPath: "Assets:Checking", Amount: decimal.NewFromFloat(-54.30)},
		},
	}
}

func (suite *TestSuiteStandard) TestTransactionValidate() {
	assert.NoError(suite.T(), balancedTransaction().Validate())
}

func (suite *TestSuiteStandard) TestTransactionValidateUnbalanced() {
	transaction := balancedTransaction()
	transaction.Postings[1].Amount = decimal.NewFromFloat(-54.00)

	assert.ErrorIs(suite.T(), transaction.Validate(), models.ErrTransactionUnbalanced)
}

func (suite *TestSuiteStandard) TestTransactionValidateTolerance() {
	// Rounding drift of one cent is accepted
	transaction := balancedTransaction()
	transaction.Postings[1].Amount = decimal.NewFromFloat(-54.29)

	assert.NoError(suite.T(), transaction.Validate())
}

func (suite *TestSuiteStandard) TestTransactionValidateNoPostings() {
	transaction := balancedTransaction()
	transaction.Postings = nil

	assert.ErrorIs(suite.T(), transaction.Validate(), models.ErrTransactionNoPostings)
}

func (suite *TestSuiteStandard) TestTransactionValidateDate() {
	transaction := balancedTransaction()
	transaction.Date = "15.03.2024"

	assert.ErrorIs(suite.T(), transaction.Validate(), models.ErrTransactionDateInvalid)
}

func (suite *TestSuiteStandard) TestTransactionTrimWhitespace() {
	transaction := balancedTransaction()
	transaction.Description = "  Groceries\t"
	transaction.Note = " weekly run  "

	created := suite.createTestTransaction(transaction)

	assert.Equal(suite.T(), "Groceries", created.Description)
	assert.Equal(suite.T(), "weekly run", created.Note)
}

func (suite *TestSuiteStandard) TestTransactionPostingsPersist() {
	tag := suite.createTestTag(models.Tag{ID: "tag-food", Name: "Food"})

	transaction := balancedTransaction()
	transaction.Postings[0].Tags = []models.Tag{tag}
	created := suite.createTestTransaction(transaction)

	var loaded models.Transaction
	err := models.DB.Preload("Postings.Tags").First(&loaded, "id = ?", created.ID).Error
	assert.NoError(suite.T(), err)

	assert.Len(suite.T(), loaded.Postings, 2)
	assert.Len(suite.T(), loaded.Postings[0].Tags, 1)
	assert.Equal(suite.T(), "Food", loaded.Postings[0].Tags[0].Name)
	assert.True(suite.T(), loaded.Postings[0].Amount.Equal(decimal.NewFromFloat(54.30)))
}

func (suite *TestSuiteStandard) TestTransactionKeepsServerID() {
	id := uuid.New()

	transaction := balancedTransaction()
	transaction.ID = id
	created := suite.createTestTransaction(transaction)

	assert.Equal(suite.T(), id, created.ID, "a pre-set UUID must survive creation")
}

func (suite *TestSuiteStandard) TestTransactionGeneratesID() {
	created := suite.createTestTransaction(balancedTransaction())
	assert.NotEqual(suite.T(), uuid.Nil, created.ID)
}
