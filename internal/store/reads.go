package store

import (
	"time"

	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/types"
)

// Accounts returns all accounts, optionally filtered by a glob pattern on
// the hierarchical path, e.g. "Assets:*".
func Accounts(pattern string) ([]models.Account, error) {
	var accounts []models.Account
	err := models.DB.Order("path ASC").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	if pattern == "" {
		return accounts, nil
	}

	matched := accounts[:0]
	for _, a := range accounts {
		if glob.Glob(pattern, a.Path) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// Account returns one account by path.
func Account(path string) (models.Account, error) {
	var account models.Account
	err := models.DB.First(&account, "path = ?", path).Error
	return account, err
}

// Transactions returns all live transactions with their postings and tags,
// ordered by date. Zero range bounds are open.
func Transactions(from, until types.Date) ([]models.Transaction, error) {
	query := models.DB.
		Preload("Postings", func(db *gorm.DB) *gorm.DB { return db.Order("postings.position ASC") }).
		Preload("Postings.Tags").
		Where("deleted = ?", false).
		Order("date ASC, created_at ASC")

	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !until.IsZero() {
		query = query.Where("date <= ?", until)
	}

	var transactions []models.Transaction
	err := query.Find(&transactions).Error
	return transactions, err
}

// LatestPrice returns the most recent price for a unit.
func LatestPrice(unitCode string) (models.Price, error) {
	var price models.Price
	err := models.DB.
		Where("unit_code = ?", unitCode).
		Order("date DESC").
		First(&price).Error
	return price, err
}

// Report returns a stored report snapshot.
func Report(name, argument string) (models.Report, error) {
	var report models.Report
	err := models.DB.First(&report, "name = ? AND argument = ?", name, argument).Error
	return report, err
}

// SetAccountXIRR stores the computed annualized return for an account
// together with the computation time.
func SetAccountXIRR(path string, rate float64) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().In(time.UTC)
	return models.DB.Model(&models.Account{}).
		Where("path = ?", path).
		Updates(map[string]any{
			"cached_xirr":      rate,
			"xirr_computed_at": now,
		}).Error
}
