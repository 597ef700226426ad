package repository

import (
	"context"

	"github.com/bazaarlabs/settlement/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LoadTransactionGraph(ctx context.Context, db *gorm.DB, transactionID snowflake.ID) (*domain.TransactionGraph, error) {
	var txn domain.PaymentTransaction
	err := db.WithContext(ctx).
		Where("id = ?", transactionID).
		Take(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var order domain.Order
	if err := db.WithContext(ctx).
		Where("id = ?", txn.OrderID).
		Take(&order).Error; err != nil {
		return nil, err
	}

	var items []domain.OrderItem
	if err := db.WithContext(ctx).
		Where("order_id = ?", order.ID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}

	graph := &domain.TransactionGraph{
		Transaction: txn,
		Order:       order,
		Lines:       make([]domain.TransactionLine, 0, len(items)),
	}

	for _, item := range items {
		var product domain.Product
		if err := db.WithContext(ctx).
			Where("id = ?", item.ProductID).
			Take(&product).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				graph.Lines = append(graph.Lines, domain.TransactionLine{Item: item})
				continue
			}
			return nil, err
		}

		line := domain.TransactionLine{Item: item, Product: product}

		if product.StoreID != nil {
			var store domain.Store
			err := db.WithContext(ctx).
				Where("id = ?", *product.StoreID).
				Take(&store).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, err
			}
			if err == nil {
				line.Store = &store
			}
		}

		if product.CategoryID != nil {
			var category domain.Category
			err := db.WithContext(ctx).
				Where("id = ?", *product.CategoryID).
				Take(&category).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, err
			}
			if err == nil {
				line.Category = &category
			}
		}

		graph.Lines = append(graph.Lines, line)
	}

	return graph, nil
}
