package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "deseos/internal/models/db_models"
	"deseos/pkg/utils"
)

// TransactionRepository is the store of monetary records. Status only moves pending -> approved or
// pending -> rejected; terminal rows are never rewritten.
type TransactionRepository interface {
	Create(ctx context.Context, txn *dbm.Transaction) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dbm.Transaction, error)
	GetByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]dbm.Transaction, int64, error)
	GetByGiftList(ctx context.Context, listID uuid.UUID, page, pageSize int) ([]dbm.Transaction, int64, error)
	GetByExternalReference(ctx context.Context, ref string) ([]dbm.Transaction, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status dbm.TransactionStatus) error
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata datatypes.JSON) error

	// ApplyGatewayResult moves every pending row carrying ref to status and returns how many rows
	// actually changed. Rows that are already terminal are left untouched.
	ApplyGatewayResult(ctx context.Context, ref string, status dbm.TransactionStatus, paymentID string, payload datatypes.JSON) (int64, error)

	ApprovedTotalForList(ctx context.Context, listID uuid.UUID) (decimal.Decimal, error)

	WithTx(tx *gorm.DB) TransactionRepository
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	return &transactionRepository{db: tx}
}

func (r *transactionRepository) Create(ctx context.Context, txn *dbm.Transaction) (uuid.UUID, error) {
	if txn.GiftListID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: gift list id is required", utils.ErrInvalidInput)
	}
	if !txn.Amount.IsPositive() {
		return uuid.Nil, fmt.Errorf("%w: amount must be greater than zero", utils.ErrInvalidInput)
	}
	if txn.Status == "" {
		txn.Status = dbm.TxnStatusPending
	}
	if txn.Quantity <= 0 {
		txn.Quantity = 1
	}
	if txn.Status == dbm.TxnStatusApproved && txn.PaidAt == nil {
		now := time.Now().Unix()
		txn.PaidAt = &now
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(txn).Error; err != nil {
		return uuid.Nil, err
	}
	return txn.ID, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*dbm.Transaction, error) {
	var t dbm.Transaction
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) GetByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]dbm.Transaction, int64, error) {
	return r.paged(ctx, r.db.Where("buyer_id = ?", userID), page, pageSize)
}

func (r *transactionRepository) GetByGiftList(ctx context.Context, listID uuid.UUID, page, pageSize int) ([]dbm.Transaction, int64, error) {
	return r.paged(ctx, r.db.Where("gift_list_id = ?", listID), page, pageSize)
}

func (r *transactionRepository) paged(ctx context.Context, scope *gorm.DB, page, pageSize int) ([]dbm.Transaction, int64, error) {
	var (
		out   []dbm.Transaction
		total int64
	)
	q := scope.WithContext(ctx).Model(&dbm.Transaction{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&out).Error
	return out, total, err
}

func (r *transactionRepository) GetByExternalReference(ctx context.Context, ref string) ([]dbm.Transaction, error) {
	var out []dbm.Transaction
	err := r.db.WithContext(ctx).
		Where("external_reference = ?", ref).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status dbm.TransactionStatus) error {
	if !status.IsTerminal() {
		return utils.ErrInvalidTransition
	}

	updates := map[string]any{"status": status}
	if status == dbm.TxnStatusApproved {
		updates["paid_at"] = time.Now().Unix()
	}

	res := r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Where("id = ? AND status = ?", id, dbm.TxnStatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return utils.ErrTransactionNotFound
	}
	return utils.ErrInvalidTransition
}

func (r *transactionRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Where("id = ?", id).
		Update("metadata", metadata).Error
}

func (r *transactionRepository) ApplyGatewayResult(ctx context.Context, ref string, status dbm.TransactionStatus, paymentID string, payload datatypes.JSON) (int64, error) {
	if !status.IsTerminal() {
		return 0, utils.ErrInvalidTransition
	}

	updates := map[string]any{
		"status":             status,
		"gateway_payment_id": paymentID,
	}
	if len(payload) > 0 {
		updates["gateway_payload"] = payload
	}
	if status == dbm.TxnStatusApproved {
		updates["paid_at"] = time.Now().Unix()
	}

	res := r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Where("external_reference = ? AND status = ?", ref, dbm.TxnStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *transactionRepository) ApprovedTotalForList(ctx context.Context, listID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("gift_list_id = ? AND status = ?", listID, dbm.TxnStatusApproved).
		Row().
		Scan(&total)
	return total, err
}
