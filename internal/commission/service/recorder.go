package service

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/commission/domain"
	orderdomain "github.com/bazaarlabs/settlement/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecordForTransaction writes one commission per attributable order line of
// a succeeded payment. The whole batch commits in a single transaction, and
// each line is deduplicated on (transaction_id, order_item_id), so calling
// this twice for the same payment never double-credits a seller.
func (s *Service) RecordForTransaction(ctx context.Context, transactionID snowflake.ID) error {
	graph, err := s.orders.LoadTransactionGraph(ctx, s.db, transactionID)
	if err != nil {
		return err
	}
	if graph == nil {
		return domain.ErrTransactionNotFound
	}

	if graph.Transaction.Status != orderdomain.TransactionStatusSucceeded {
		s.log.Warn("transaction is not succeeded, skipping commission recording",
			zap.Int64("transaction_id", int64(transactionID)),
			zap.String("status", string(graph.Transaction.Status)),
		)
		return nil
	}

	includeShipping := s.appliesToShipping(ctx)
	now := s.clock.Now().UTC()

	// The allocation base is the sum of the loaded line totals, not the
	// stored order subtotal; the two can drift apart and the shares must
	// still sum to the shipping charge.
	subtotal := decimal.Zero
	for _, line := range graph.Lines {
		subtotal = subtotal.Add(line.Item.Total)
	}

	records := make([]*domain.Commission, 0, len(graph.Lines))
	for _, line := range graph.Lines {
		if line.Store == nil {
			s.log.Warn("order item has no store attribution, skipping",
				zap.Int64("transaction_id", int64(transactionID)),
				zap.Int64("order_item_id", int64(line.Item.ID)),
			)
			continue
		}

		base := line.Item.Total
		if includeShipping && subtotal.IsPositive() && graph.Order.Shipping.IsPositive() {
			share := graph.Order.Shipping.
				Mul(line.Item.Total).
				Div(subtotal).
				Round(2)
			base = base.Add(share)
		}

		match, err := s.Resolve(ctx, line.Store.OwnerID, line.Product.CategoryID, base)
		if err != nil {
			return err
		}

		amount, match, err := s.Calculate(ctx, base, match)
		if err != nil {
			return err
		}

		records = append(records, &domain.Commission{
			ID:               s.genID.Generate(),
			TransactionID:    transactionID,
			OrderID:          graph.Order.ID,
			OrderItemID:      line.Item.ID,
			SellerID:         line.Store.OwnerID,
			StoreID:          line.Store.ID,
			RuleID:           match.RuleID,
			RuleSource:       match.Source,
			RuleType:         match.Type,
			RuleValue:        match.Value,
			OrderAmount:      base,
			CommissionAmount: amount,
			Currency:         graph.Transaction.Currency,
			Status:           domain.StatusConfirmed,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	if len(records) == 0 {
		s.log.Info("no attributable lines for transaction",
			zap.Int64("transaction_id", int64(transactionID)),
		)
		return nil
	}

	var inserted, deduped int
	wrote := make([]bool, len(records))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, deduped = 0, 0
		for i, record := range records {
			ok, err := s.repo.Insert(ctx, tx, record)
			if err != nil {
				return err
			}
			wrote[i] = ok
			if ok {
				inserted++
			} else {
				deduped++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, record := range records {
		if wrote[i] {
			s.metrics.RecordCommission(string(record.RuleSource))
		} else {
			s.metrics.RecordCommissionDeduped()
		}
	}

	s.log.Info("commissions recorded",
		zap.Int64("transaction_id", int64(transactionID)),
		zap.Int("inserted", inserted),
		zap.Int("deduped", deduped),
	)
	return nil
}
